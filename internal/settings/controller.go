// Package settings drives the dynamic settings pages: current-page
// state, per-variant default behavior and handler dispatch.
package settings

import (
	"context"
	"fmt"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/store"
)

// RootTitle is the title published for the root settings page.
const RootTitle = "Settings"

// ErrPageNotFound reports a subpage id missing from the config. The
// current page stays unchanged; the failure is surfaced to the user and
// nothing else happens.
var ErrPageNotFound = fmt.Errorf("settings page not found")

// Renderer is the rendering collaborator boundary. The controller
// pushes page content and dynamic updates through it and receives item
// activations back via HandleClick.
type Renderer interface {
	// ShowPage replaces the visible page. backEnabled is true on subpages.
	ShowPage(title string, categories []schema.Category, backEnabled bool)
	// UpdateSubtitle refreshes one item's subtitle, keyed by item id.
	UpdateSubtitle(itemID, subtitle string)
	// Notify emits a transient user-facing notification.
	Notify(text string)
	// ShowSelection opens a single-choice chooser for a selection item.
	// The chosen value comes back through ApplySelection.
	ShowSelection(item schema.Item, current string)
}

// Handler overrides the default behavior for one item id. A registered
// handler receives full control on activation; variant defaults are
// skipped entirely.
type Handler interface {
	Handle(ctx context.Context, item schema.Item, page *Controller, kv *store.Store)
	// Cleanup releases any subscriptions or timers the handler holds.
	// Called once when the hosting page is torn down.
	Cleanup()
}

// Refresher is implemented by handlers that can repaint a dynamic item
// without an activation, e.g. at page load.
type Refresher interface {
	Refresh(page *Controller)
}

// Controller owns one settings screen: the parsed config, the current
// page (root or one subpage deep) and the handler registry.
type Controller struct {
	cfg      *schema.Config
	renderer Renderer
	kv       *store.Store
	handlers map[string]Handler
	current  string // "" means root
}

// NewController builds a Controller showing nothing yet; call LoadPage
// to publish the first page.
func NewController(cfg *schema.Config, renderer Renderer, kv *store.Store) *Controller {
	return &Controller{
		cfg:      cfg,
		renderer: renderer,
		kv:       kv,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to an item id. A later registration for the
// same id replaces the earlier one.
func (c *Controller) Register(id string, h Handler) {
	c.handlers[id] = h
}

// Store exposes the backing key-value store to handlers.
func (c *Controller) Store() *store.Store { return c.kv }

// CurrentPage returns the active subpage id, or "" for the root page.
func (c *Controller) CurrentPage() string { return c.current }

// OnSubpage reports whether back navigation is available.
func (c *Controller) OnSubpage() bool { return c.current != "" }

// LoadPage publishes the root page ("" id) or a subpage. An unknown
// subpage id leaves the current page unchanged, notifies the user and
// returns ErrPageNotFound. After a successful load, dynamic items with
// refresh-capable handlers are repainted.
func (c *Controller) LoadPage(pageID string) error {
	var title string
	var categories []schema.Category

	if pageID == "" {
		title = RootTitle
		categories = c.cfg.Categories
	} else {
		sub, ok := c.cfg.Subpages[pageID]
		if !ok {
			c.renderer.Notify("Page not found: " + pageID)
			return fmt.Errorf("%w: %q", ErrPageNotFound, pageID)
		}
		title = sub.Title
		categories = sub.Categories
	}

	c.current = pageID
	c.renderer.ShowPage(title, categories, pageID != "")
	c.refreshDynamic(categories)
	return nil
}

// Back returns from a subpage to the root. It reports whether a
// navigation happened; on the root there is no further parent.
func (c *Controller) Back() bool {
	if c.current == "" {
		return false
	}
	_ = c.LoadPage("")
	return true
}

// HandleClick routes an activated item: a registered handler for its id
// wins outright, otherwise the variant default applies.
func (c *Controller) HandleClick(ctx context.Context, item schema.Item) {
	if h, ok := c.handlers[item.ID]; ok {
		h.Handle(ctx, item, c, c.kv)
		return
	}

	switch item.Kind {
	case schema.KindSubpage:
		_ = c.LoadPage(item.PageID)
	case schema.KindSelection:
		current := c.kv.GetString(item.Key, item.DefaultValue)
		c.renderer.ShowSelection(item, current)
	case schema.KindToggle:
		value := !c.kv.GetBool(item.Key, item.DefaultBool)
		if err := c.kv.SetBool(item.Key, value); err != nil {
			c.renderer.Notify(fmt.Sprintf("Could not save %s: %v", item.Title, err))
			return
		}
		state := "OFF"
		if value {
			state = "ON"
		}
		c.renderer.Notify(item.Title + ": " + state)
	case schema.KindAction:
		c.renderer.Notify("Action: " + item.Title)
	case schema.KindInfo:
		// Non-interactive.
	}
}

// ApplySelection persists a choice made in the selection chooser.
func (c *Controller) ApplySelection(item schema.Item, value string) {
	if err := c.kv.SetString(item.Key, value); err != nil {
		c.renderer.Notify(fmt.Sprintf("Could not save %s: %v", item.Title, err))
		return
	}
	c.renderer.Notify("Selected: " + item.OptionLabel(value))
}

// UpdateSubtitle forwards a dynamic subtitle change to the renderer.
func (c *Controller) UpdateSubtitle(itemID, subtitle string) {
	c.renderer.UpdateSubtitle(itemID, subtitle)
}

// Notify forwards a transient notification to the renderer.
func (c *Controller) Notify(text string) {
	c.renderer.Notify(text)
}

// Close releases every registered handler's resources.
func (c *Controller) Close() {
	for _, h := range c.handlers {
		h.Cleanup()
	}
}

func (c *Controller) refreshDynamic(categories []schema.Category) {
	for _, cat := range categories {
		for _, it := range cat.Items {
			if !it.Dynamic {
				continue
			}
			if r, ok := c.handlers[it.ID].(Refresher); ok {
				r.Refresh(c)
			}
		}
	}
}
