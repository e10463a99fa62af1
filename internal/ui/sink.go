package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/settings"
)

// Messages delivered into the Bubble Tea loop. Every mutation carries a
// monotonically increasing revision so a racing stale update can never
// overwrite a newer one.
type (
	pageMsg struct {
		title       string
		categories  []schema.Category
		backEnabled bool
		rev         uint64
	}
	subtitleMsg struct {
		itemID   string
		subtitle string
		rev      uint64
	}
	noticeMsg struct {
		text string
		rev  uint64
	}
	selectionMsg struct {
		item    schema.Item
		current string
	}
	permissionMsg struct{}
)

// Sink is the rendering collaborator handed to the settings controller
// and the update workflow. It marshals every call onto the UI loop as a
// message, so background goroutines never touch model state directly.
type Sink struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	rev     atomic.Uint64
}

var _ settings.Renderer = (*Sink)(nil)

// NewSink builds an unbound Sink. Calls made before Bind are queued and
// flushed once the program is running.
func NewSink() *Sink { return &Sink{} }

// Bind attaches the sink to a running program's Send and flushes any
// queued messages in order.
func (s *Sink) Bind(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, msg := range pending {
		send(msg)
	}
}

// post hands a message to the program without blocking the caller.
// Controller calls originate inside Update, where a synchronous Send
// would deadlock the event loop, so delivery is asynchronous; the
// revision stamps make delivery order irrelevant.
func (s *Sink) post(msg tea.Msg) {
	s.mu.Lock()
	if s.send == nil {
		s.pending = append(s.pending, msg)
		s.mu.Unlock()
		return
	}
	send := s.send
	s.mu.Unlock()
	go send(msg)
}

// ShowPage implements settings.Renderer.
func (s *Sink) ShowPage(title string, categories []schema.Category, backEnabled bool) {
	s.post(pageMsg{title: title, categories: categories, backEnabled: backEnabled, rev: s.rev.Add(1)})
}

// UpdateSubtitle implements settings.Renderer.
func (s *Sink) UpdateSubtitle(itemID, subtitle string) {
	s.post(subtitleMsg{itemID: itemID, subtitle: subtitle, rev: s.rev.Add(1)})
}

// Notify implements settings.Renderer.
func (s *Sink) Notify(text string) {
	s.post(noticeMsg{text: text, rev: s.rev.Add(1)})
}

// ShowSelection implements settings.Renderer.
func (s *Sink) ShowSelection(item schema.Item, current string) {
	s.post(selectionMsg{item: item, current: current})
}

// RequestInstallPermission surfaces the install-permission prompt.
func (s *Sink) RequestInstallPermission() {
	s.post(permissionMsg{})
}
