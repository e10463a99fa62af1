// Package update orchestrates the self-update workflow: query the
// release endpoint, compare versions, download the package asset and
// hand it to the installer once install permission is granted.
package update

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heckerdev/cordium/internal/download"
	"github.com/heckerdev/cordium/internal/release"
	"github.com/heckerdev/cordium/internal/version"
)

// State is the workflow position. Every state except Checking,
// Downloading and PermissionPending is terminal for one invocation;
// terminal failures are recoverable by triggering again.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateUpToDate
	StateUpdateAvailable
	StateNoPackage
	StateCheckFailed
	StateDownloading
	StateDownloadFailed
	StateDownloadComplete
	StatePermissionPending
	StatePermissionDenied
	StateInstallLaunched
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateUpToDate:
		return "up-to-date"
	case StateUpdateAvailable:
		return "update-available"
	case StateNoPackage:
		return "no-package"
	case StateCheckFailed:
		return "check-failed"
	case StateDownloading:
		return "downloading"
	case StateDownloadFailed:
		return "download-failed"
	case StateDownloadComplete:
		return "download-complete"
	case StatePermissionPending:
		return "permission-pending"
	case StatePermissionDenied:
		return "permission-denied"
	case StateInstallLaunched:
		return "install-launched"
	default:
		return "unknown"
	}
}

// Notifier receives user-visible progress. Status replaces the update
// row's subtitle; Notify emits a transient notification.
type Notifier interface {
	Status(text string)
	Notify(text string)
}

// Queue is the download service the workflow drives. *download.Manager
// implements it; tests substitute fakes.
type Queue interface {
	Enqueue(ctx context.Context, url, dest string) int64
	Subscribe(id int64) (<-chan download.Event, func())
	Query(id int64) download.Status
	Err(id int64) error
}

var _ Queue = (*download.Manager)(nil)

// Gate decides whether handing a package to the installer is permitted.
// When Allowed is false the workflow suspends, calls Request, and waits
// for the decision to arrive through ResolvePermission.
type Gate interface {
	Allowed() bool
	Request()
}

// Installer launches the platform install step for a downloaded package.
type Installer interface {
	Install(path string) error
}

// Config wires a Workflow.
type Config struct {
	CurrentVersion string
	AppName        string // package filename stem, e.g. "cordium"
	PackageExt     string // asset extension, e.g. ".apk"
	Dir            string // download destination directory

	Client    release.LatestFetcher
	Downloads Queue
	Installer Installer
	Gate      Gate
	Notifier  Notifier

	// PollInterval is the cadence of the status-poll completion path.
	// Zero uses the 500ms default.
	PollInterval time.Duration
}

const defaultPollInterval = 500 * time.Millisecond

// Workflow is one self-update state machine instance. The cached
// release URL and version survive between two triggers: the first
// activation checks, the second confirms and downloads.
type Workflow struct {
	cfg Config

	mu            sync.Mutex
	state         State
	latestURL     string
	latestVersion string
	downloadID    int64
	pendingFile   string
	cancelWatch   context.CancelFunc
}

// New builds an idle Workflow.
func New(cfg Config) *Workflow {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PackageExt == "" {
		cfg.PackageExt = ".apk"
	}
	return &Workflow{cfg: cfg}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Trigger advances the workflow from a user activation. The first
// activation checks the release endpoint; when a newer release was
// found, the next activation confirms and starts the download. While a
// check or download is in flight the trigger is a no-op, so two
// invocations can never interleave.
func (w *Workflow) Trigger(ctx context.Context) {
	w.mu.Lock()
	switch w.state {
	case StateChecking, StateDownloading, StatePermissionPending:
		w.mu.Unlock()
		return
	case StateUpdateAvailable:
		if w.latestURL != "" {
			url, ver := w.latestURL, w.latestVersion
			w.latestURL, w.latestVersion = "", ""
			w.state = StateDownloading
			w.mu.Unlock()
			w.cfg.Notifier.Notify("Downloading update...")
			w.startDownload(ctx, url, ver)
			return
		}
	}
	w.state = StateChecking
	w.mu.Unlock()

	w.cfg.Notifier.Status("Checking for updates...")
	go w.check(ctx)
}

// check runs off the foreground context; results come back through the
// notifier, which marshals onto the UI.
func (w *Workflow) check(ctx context.Context) {
	rel, err := w.cfg.Client.FetchLatest(ctx)
	if err != nil {
		w.setState(StateCheckFailed)
		if se, ok := asStatusError(err); ok {
			w.publish(fmt.Sprintf("Failed to check for updates (HTTP %d)", se.Code), "")
		} else {
			w.publish("Error checking for updates", fmt.Sprintf("Update check failed: %v", err))
		}
		return
	}

	latest := rel.Version()
	if !version.IsNewer(w.cfg.CurrentVersion, latest) {
		w.setState(StateUpToDate)
		w.publish("You're on the latest version", "You're on the latest version!")
		return
	}

	asset, ok := rel.PackageAsset(w.cfg.PackageExt)
	if !ok {
		w.setState(StateNoPackage)
		w.publish("No package found in release", "No package found in the release")
		return
	}

	w.mu.Lock()
	w.state = StateUpdateAvailable
	w.latestURL = asset.BrowserDownloadURL
	w.latestVersion = latest
	w.mu.Unlock()
	w.publish(
		fmt.Sprintf("New version available: %s. Select again to update", latest),
		fmt.Sprintf("New version available: %s", latest),
	)
}

func (w *Workflow) startDownload(ctx context.Context, url, ver string) {
	dest := filepath.Join(w.cfg.Dir, packageFilename(w.cfg.AppName, ver, w.cfg.PackageExt))
	id := w.cfg.Downloads.Enqueue(ctx, url, dest)

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.downloadID = id
	w.cancelWatch = cancel
	w.mu.Unlock()

	w.cfg.Notifier.Status("Downloading update...")
	w.watch(watchCtx, id, dest)
}

// watch races the two completion-detection paths: the event
// subscription and a fixed-interval status poll. Whichever fires first
// resolves the download; the single-fire guard cancels the loser so the
// install step can never run twice. The poll path is the backstop for
// event delivery that never happens.
func (w *Workflow) watch(ctx context.Context, id int64, dest string) {
	var resolved atomic.Bool
	resolve := func(status download.Status, err error) {
		if !resolved.CompareAndSwap(false, true) {
			return
		}
		w.mu.Lock()
		if w.cancelWatch != nil {
			w.cancelWatch()
			w.cancelWatch = nil
		}
		w.mu.Unlock()
		w.finishDownload(dest, status, err)
	}

	go func() {
		events, cancel := w.cfg.Downloads.Subscribe(id)
		defer cancel()
		select {
		case <-ctx.Done():
		case ev := <-events:
			resolve(ev.Status, ev.Err)
		}
	}()

	go func() {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				switch status := w.cfg.Downloads.Query(id); status {
				case download.StatusSuccessful, download.StatusFailed:
					resolve(status, w.cfg.Downloads.Err(id))
					return
				}
			}
		}
	}()
}

func (w *Workflow) finishDownload(dest string, status download.Status, err error) {
	if status != download.StatusSuccessful {
		w.setState(StateDownloadFailed)
		detail := "Download failed"
		if err != nil {
			detail = fmt.Sprintf("Download failed: %v", err)
		}
		w.publish("Download failed", detail)
		return
	}

	w.setState(StateDownloadComplete)
	w.publish("Download complete", "Download complete, installing...")
	w.install(dest)
}

func (w *Workflow) install(dest string) {
	if !w.cfg.Gate.Allowed() {
		w.mu.Lock()
		w.pendingFile = dest
		w.state = StatePermissionPending
		w.mu.Unlock()
		w.cfg.Notifier.Status("Waiting for install permission")
		w.cfg.Gate.Request()
		return
	}
	w.launchInstall(dest)
}

// ResolvePermission delivers the install-permission decision. Denial is
// terminal for this invocation; the user can trigger a fresh check.
func (w *Workflow) ResolvePermission(granted bool) {
	w.mu.Lock()
	if w.state != StatePermissionPending {
		w.mu.Unlock()
		return
	}
	dest := w.pendingFile
	w.pendingFile = ""
	if !granted {
		w.state = StatePermissionDenied
		w.mu.Unlock()
		w.publish("Install permission denied", "Install permission denied")
		return
	}
	w.mu.Unlock()
	w.launchInstall(dest)
}

func (w *Workflow) launchInstall(dest string) {
	if err := w.cfg.Installer.Install(dest); err != nil {
		w.setState(StateDownloadFailed)
		w.publish("Installation failed", fmt.Sprintf("Installation failed: %v", err))
		return
	}
	w.setState(StateInstallLaunched)
	w.publish("Installing update...", "")
}

// Cleanup stops the completion watchers. Call it when the hosting page
// is torn down.
func (w *Workflow) Cleanup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelWatch != nil {
		w.cancelWatch()
		w.cancelWatch = nil
	}
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// publish emits the status subtitle and, when non-empty, a transient
// notification.
func (w *Workflow) publish(status, note string) {
	w.cfg.Notifier.Status(status)
	if note != "" {
		w.cfg.Notifier.Notify(note)
	}
}

func packageFilename(app, ver, ext string) string {
	return fmt.Sprintf("%s-%s%s", app, ver, ext)
}

func asStatusError(err error) (*release.StatusError, bool) {
	var se *release.StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
