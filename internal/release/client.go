package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LatestFetcher describes the release-metadata lookup. It is implemented
// by *Client and can be faked for testing.
type LatestFetcher interface {
	FetchLatest(ctx context.Context) (*Release, error)
}

// Ensure Client implements LatestFetcher at compile time.
var _ LatestFetcher = (*Client)(nil)

// Release is the subset of the release-metadata response the updater
// needs.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Version returns the release version with any leading tag prefix
// stripped ("v0.0.2" yields "0.0.2").
func (r *Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// PackageAsset returns the first asset whose name carries the given
// extension, or false when the release ships none.
func (r *Release) PackageAsset(ext string) (Asset, bool) {
	for _, a := range r.Assets {
		if strings.HasSuffix(a.Name, ext) {
			return a, true
		}
	}
	return Asset{}, false
}

// StatusError reports a non-2xx response from the release endpoint.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("release endpoint returned HTTP %d", e.Code)
}

// Client fetches latest-release metadata over HTTP.
type Client struct {
	url       string
	http      *http.Client
	userAgent string
}

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "cordium/0.1"
)

// NewClient builds a Client for the given release-listing URL. A zero
// timeout uses the default bound.
func NewClient(url string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, fmt.Errorf("release url is empty")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url: trimmed,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchLatest retrieves and decodes the latest-release document.
func (c *Client) FetchLatest(ctx context.Context) (*Release, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var payload Release
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &payload, nil
}
