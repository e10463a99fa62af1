// Package download runs asynchronous, resumable file downloads and
// exposes two independent completion signals per download: an event
// subscription and a pollable status query.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Status is the lifecycle state of one download.
type Status int

const (
	// StatusUnknown means the id was never assigned by this manager.
	StatusUnknown Status = iota
	StatusRunning
	StatusSuccessful
	StatusFailed
)

// String returns a short human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSuccessful:
		return "successful"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event announces that a download reached a terminal state.
type Event struct {
	ID     int64
	Status Status
	Err    error
}

type job struct {
	status  Status
	err     error
	subs    map[int]chan Event
	nextSub int
	cancel  context.CancelFunc
}

// Manager enqueues downloads and tracks their state. Each download gets
// a unique id used by both completion-detection paths.
type Manager struct {
	mu     sync.Mutex
	http   *http.Client
	nextID int64
	jobs   map[int64]*job
}

// NewManager builds an idle Manager. Downloads carry no overall timeout;
// the enqueue context bounds their lifetime.
func NewManager() *Manager {
	return &Manager{
		http: &http.Client{},
		jobs: make(map[int64]*job),
	}
}

// Enqueue starts downloading url into dest and returns the assigned id.
// The transfer runs in the background; completion is observable through
// Subscribe or Query. A partial file from an earlier attempt resumes
// where it left off.
func (m *Manager) Enqueue(ctx context.Context, url, dest string) int64 {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.jobs[id] = &job{
		status: StatusRunning,
		subs:   make(map[int]chan Event),
		cancel: cancel,
	}
	m.mu.Unlock()

	go func() {
		err := m.fetch(ctx, url, dest)
		m.finish(id, err)
	}()
	return id
}

// Subscribe returns a channel that delivers the terminal event for id,
// plus a cancel func releasing the subscription. A download that already
// finished delivers its event immediately.
func (m *Manager) Subscribe(id int64) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		ch <- Event{ID: id, Status: StatusUnknown}
		return ch, func() {}
	}
	if j.status != StatusRunning {
		ev := Event{ID: id, Status: j.status, Err: j.err}
		m.mu.Unlock()
		ch <- ev
		return ch, func() {}
	}
	sub := j.nextSub
	j.nextSub++
	j.subs[sub] = ch
	m.mu.Unlock()

	return ch, func() {
		m.mu.Lock()
		if j, ok := m.jobs[id]; ok {
			delete(j.subs, sub)
		}
		m.mu.Unlock()
	}
}

// Query reports the current status of a download id.
func (m *Manager) Query(id int64) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j.status
	}
	return StatusUnknown
}

// Err returns the failure cause for id, or nil.
func (m *Manager) Err(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j.err
	}
	return nil
}

// Close cancels every in-flight download.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		j.cancel()
	}
}

func (m *Manager) finish(id int64, err error) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok || j.status != StatusRunning {
		m.mu.Unlock()
		return
	}
	if err != nil {
		j.status = StatusFailed
		j.err = err
	} else {
		j.status = StatusSuccessful
	}
	ev := Event{ID: id, Status: j.status, Err: j.err}
	subs := j.subs
	j.subs = make(map[int]chan Event)
	m.mu.Unlock()

	for _, ch := range subs {
		ch <- ev
	}
}

// fetch transfers url into dest via a .part staging file, resuming any
// existing partial content with a Range request.
func (m *Manager) fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	part := dest + ".part"
	var offset int64
	if info, err := os.Stat(part); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	case http.StatusOK:
		flags |= os.O_TRUNC
	default:
		return fmt.Errorf("download returned HTTP %d", resp.StatusCode)
	}

	file, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open staging file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		return fmt.Errorf("write download: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	if err := os.Rename(part, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}
