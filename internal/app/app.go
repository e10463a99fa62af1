// Package app wires the settings document, the key-value store, the
// self-update workflow and the UI together and runs the program.
package app

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/heckerdev/cordium/internal/download"
	"github.com/heckerdev/cordium/internal/release"
	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/settings"
	"github.com/heckerdev/cordium/internal/store"
	"github.com/heckerdev/cordium/internal/ui"
	"github.com/heckerdev/cordium/internal/update"
)

//go:embed settings.json
var defaultDocument []byte

const (
	appName           = "cordium"
	defaultStateDir   = "~/.local/share/cordium"
	defaultReleaseURL = "https://api.github.com/repos/hecker-01/cordium/releases/latest"
	packageExt        = ".apk"
)

// Options configures a run. Zero values select the shipped defaults.
type Options struct {
	// SettingsPath overrides the embedded settings document.
	SettingsPath string
	// StateDir overrides where the value store and downloads live.
	StateDir string
	// ReleaseURL overrides the release endpoint.
	ReleaseURL string
	// CheckTimeout bounds one release check. Zero uses the client default.
	CheckTimeout time.Duration

	// Version and Commit describe the running build.
	Version string
	Commit  string
}

// Run builds the application from opts and blocks until the UI exits.
func Run(ctx context.Context, opts Options) error {
	doc, err := loadDocument(opts.SettingsPath)
	if err != nil {
		return err
	}
	cfg, err := schema.Parse(doc)
	if err != nil {
		return fmt.Errorf("load settings document: %w", err)
	}

	stateDir, err := resolveStateDir(opts.StateDir)
	if err != nil {
		return err
	}
	kv, err := store.Open(filepath.Join(stateDir, "settings.toml"))
	if err != nil {
		return err
	}

	releaseURL := opts.ReleaseURL
	if releaseURL == "" {
		releaseURL = defaultReleaseURL
	}
	client, err := release.NewClient(releaseURL, opts.CheckTimeout)
	if err != nil {
		return err
	}

	downloads := download.NewManager()
	defer downloads.Close()

	sink := ui.NewSink()
	workflow := update.New(update.Config{
		CurrentVersion: opts.Version,
		AppName:        appName,
		PackageExt:     packageExt,
		Dir:            filepath.Join(stateDir, "downloads"),
		Client:         client,
		Downloads:      downloads,
		Installer:      update.OpenInstaller{},
		Gate:           &installGate{kv: kv, sink: sink},
		Notifier:       &updateStatus{sink: sink},
	})

	build := settings.BuildInfo{Version: opts.Version, Commit: opts.Commit}
	ctrl := settings.NewController(cfg, sink, kv)
	ctrl.Register(settings.BuildNumberID, &build)
	ctrl.Register(settings.CheckUpdatesID, &settings.UpdateCheck{Workflow: workflow})
	defer ctrl.Close()

	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: ctrl,
		Store:      kv,
		Workflow:   workflow,
		Sink:       sink,
		Build:      build.String(),
	})
}

// loadDocument returns the settings document bytes, preferring an
// explicit path over the embedded default.
func loadDocument(path string) ([]byte, error) {
	if path == "" {
		return defaultDocument, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings document: %w", err)
	}
	return data, nil
}

func resolveStateDir(dir string) (string, error) {
	if dir == "" {
		dir = defaultStateDir
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// installGate persists the install-permission grant in the value store.
// Once the user accepts, later updates install without asking again.
type installGate struct {
	kv   *store.Store
	sink *ui.Sink
}

var _ update.Gate = (*installGate)(nil)

func (g *installGate) Allowed() bool {
	return g.kv.GetBool(settings.AllowInstallKey, false)
}

func (g *installGate) Request() {
	g.sink.RequestInstallPermission()
}

// updateStatus routes workflow progress onto the update row's subtitle
// and the status line.
type updateStatus struct {
	sink *ui.Sink
}

var _ update.Notifier = (*updateStatus)(nil)

func (n *updateStatus) Status(text string) {
	n.sink.UpdateSubtitle(settings.CheckUpdatesID, text)
}

func (n *updateStatus) Notify(text string) {
	n.sink.Notify(text)
}
