package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heckerdev/cordium/internal/settings"
	"github.com/heckerdev/cordium/internal/store"
	"github.com/heckerdev/cordium/internal/update"
)

// Options configures the UI runtime.
type Options struct {
	Context    context.Context
	Controller *settings.Controller
	Store      *store.Store
	Workflow   *update.Workflow
	Sink       *Sink
	Build      string
}

// Run starts the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a settings controller")
	}
	if opts.Sink == nil {
		return fmt.Errorf("ui requires a sink")
	}

	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	opts.Sink.Bind(p.Send)

	if opts.Context != nil {
		go func() {
			<-opts.Context.Done()
			p.Quit()
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
