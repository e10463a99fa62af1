package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/store"
)

type shownPage struct {
	title       string
	categories  []schema.Category
	backEnabled bool
}

type fakeRenderer struct {
	pages      []shownPage
	subtitles  map[string]string
	notices    []string
	selections []schema.Item
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{subtitles: make(map[string]string)}
}

func (r *fakeRenderer) ShowPage(title string, categories []schema.Category, backEnabled bool) {
	r.pages = append(r.pages, shownPage{title, categories, backEnabled})
}

func (r *fakeRenderer) UpdateSubtitle(itemID, subtitle string) {
	r.subtitles[itemID] = subtitle
}

func (r *fakeRenderer) Notify(text string) {
	r.notices = append(r.notices, text)
}

func (r *fakeRenderer) ShowSelection(item schema.Item, current string) {
	r.selections = append(r.selections, item)
}

func (r *fakeRenderer) lastPage(t *testing.T) shownPage {
	t.Helper()
	if len(r.pages) == 0 {
		t.Fatal("no page shown")
	}
	return r.pages[len(r.pages)-1]
}

type spyHandler struct {
	handled   []string
	cleanedUp int
}

func (h *spyHandler) Handle(ctx context.Context, item schema.Item, page *Controller, kv *store.Store) {
	h.handled = append(h.handled, item.ID)
	page.UpdateSubtitle(item.ID, "handled")
}

func (h *spyHandler) Cleanup() { h.cleanedUp++ }

func testController(t *testing.T) (*Controller, *fakeRenderer, *store.Store) {
	t.Helper()
	cfg, err := schema.Parse([]byte(`{
	  "categories": [
	    {"id": "general", "title": "General", "items": [
	      {"type": "toggle", "id": "notifications", "title": "Notifications", "key": "notifications", "default": true},
	      {"type": "selection", "id": "theme", "title": "Theme", "key": "theme", "default": "dark",
	       "options": [{"value": "dark", "label": "Dark"}, {"value": "light", "label": "Light"}]},
	      {"type": "subpage", "id": "advanced_link", "title": "Advanced", "page": "advanced"},
	      {"type": "action", "id": "clear_cache", "title": "Clear cache"},
	      {"type": "info", "id": "build_number", "title": "Build", "dynamic": true}
	    ]}
	  ],
	  "subpages": {
	    "advanced": {"title": "Advanced", "categories": [
	      {"id": "adv", "title": "Advanced", "items": [
	        {"type": "toggle", "id": "telemetry", "title": "Telemetry", "key": "telemetry", "default": false}
	      ]}
	    ]}
	  }
	}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	kv, err := store.Open(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	renderer := newFakeRenderer()
	return NewController(cfg, renderer, kv), renderer, kv
}

func mustItem(t *testing.T, c *Controller, id string) schema.Item {
	t.Helper()
	it, ok := c.cfg.Item(id)
	if !ok {
		t.Fatalf("fixture item %q missing", id)
	}
	return it
}

func TestController_LoadRootPage(t *testing.T) {
	c, renderer, _ := testController(t)

	if err := c.LoadPage(""); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	page := renderer.lastPage(t)
	if page.title != RootTitle {
		t.Fatalf("title = %q, want %q", page.title, RootTitle)
	}
	if page.backEnabled {
		t.Fatal("back enabled on root page")
	}
	if len(page.categories) != 1 || page.categories[0].ID != "general" {
		t.Fatalf("categories = %#v", page.categories)
	}
	if c.OnSubpage() {
		t.Fatal("OnSubpage() = true on root")
	}
}

func TestController_LoadSubpage(t *testing.T) {
	c, renderer, _ := testController(t)

	if err := c.LoadPage("advanced"); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	page := renderer.lastPage(t)
	if page.title != "Advanced" || !page.backEnabled {
		t.Fatalf("page = %#v", page)
	}
	if !c.OnSubpage() || c.CurrentPage() != "advanced" {
		t.Fatalf("CurrentPage = %q", c.CurrentPage())
	}
}

func TestController_UnknownPageLeavesStateUnchanged(t *testing.T) {
	c, renderer, _ := testController(t)
	if err := c.LoadPage(""); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	shown := len(renderer.pages)

	err := c.LoadPage("missing")
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("error = %v, want ErrPageNotFound", err)
	}
	if c.CurrentPage() != "" {
		t.Fatalf("CurrentPage = %q, want root", c.CurrentPage())
	}
	if len(renderer.pages) != shown {
		t.Fatal("a page was published for an unknown id")
	}
	if len(renderer.notices) == 0 {
		t.Fatal("user was not notified")
	}
}

func TestController_BackNavigation(t *testing.T) {
	c, renderer, _ := testController(t)
	_ = c.LoadPage("")
	_ = c.LoadPage("advanced")

	if !c.Back() {
		t.Fatal("Back() = false on subpage")
	}
	if page := renderer.lastPage(t); page.title != RootTitle || page.backEnabled {
		t.Fatalf("page after back = %#v", page)
	}
	if c.Back() {
		t.Fatal("Back() = true on root")
	}
}

func TestController_HandlerPrecedence(t *testing.T) {
	c, renderer, _ := testController(t)
	_ = c.LoadPage("")

	// Even an info item, which has no default behavior at all, yields
	// full control to its handler.
	spy := &spyHandler{}
	c.Register("build_number", spy)
	c.HandleClick(context.Background(), mustItem(t, c, "build_number"))

	if len(spy.handled) != 1 || spy.handled[0] != "build_number" {
		t.Fatalf("handled = %#v", spy.handled)
	}
	if renderer.subtitles["build_number"] != "handled" {
		t.Fatal("handler side effect not visible")
	}

	// A handler on a subpage item suppresses navigation.
	c.Register("advanced_link", &spyHandler{})
	c.HandleClick(context.Background(), mustItem(t, c, "advanced_link"))
	if c.OnSubpage() {
		t.Fatal("default navigation ran despite registered handler")
	}
}

func TestController_DefaultSubpageNavigates(t *testing.T) {
	c, _, _ := testController(t)
	_ = c.LoadPage("")

	c.HandleClick(context.Background(), mustItem(t, c, "advanced_link"))
	if c.CurrentPage() != "advanced" {
		t.Fatalf("CurrentPage = %q, want advanced", c.CurrentPage())
	}
}

func TestController_DefaultToggleFlipsAndPersists(t *testing.T) {
	c, renderer, kv := testController(t)
	_ = c.LoadPage("")
	item := mustItem(t, c, "notifications")

	// Default is true, so the first activation turns it off.
	c.HandleClick(context.Background(), item)
	if kv.GetBool("notifications", true) {
		t.Fatal("toggle did not persist false")
	}
	if len(renderer.notices) == 0 || renderer.notices[len(renderer.notices)-1] != "Notifications: OFF" {
		t.Fatalf("notices = %#v", renderer.notices)
	}

	c.HandleClick(context.Background(), item)
	if !kv.GetBool("notifications", false) {
		t.Fatal("toggle did not persist true")
	}
}

func TestController_DefaultSelectionOpensChooserAndPersists(t *testing.T) {
	c, renderer, kv := testController(t)
	_ = c.LoadPage("")
	item := mustItem(t, c, "theme")

	c.HandleClick(context.Background(), item)
	if len(renderer.selections) != 1 || renderer.selections[0].ID != "theme" {
		t.Fatalf("selections = %#v", renderer.selections)
	}

	c.ApplySelection(item, "light")
	if got := kv.GetString("theme", "dark"); got != "light" {
		t.Fatalf("stored theme = %q, want light", got)
	}
	if renderer.notices[len(renderer.notices)-1] != "Selected: Light" {
		t.Fatalf("notices = %#v", renderer.notices)
	}
}

func TestController_DefaultActionAcknowledges(t *testing.T) {
	c, renderer, _ := testController(t)
	_ = c.LoadPage("")

	c.HandleClick(context.Background(), mustItem(t, c, "clear_cache"))
	if len(renderer.notices) == 0 || renderer.notices[len(renderer.notices)-1] != "Action: Clear cache" {
		t.Fatalf("notices = %#v", renderer.notices)
	}
}

func TestController_DynamicRefreshOnPageLoad(t *testing.T) {
	c, renderer, _ := testController(t)

	c.Register(BuildNumberID, &BuildInfo{Version: "0.0.1", Commit: "abc1234"})
	_ = c.LoadPage("")

	if got := renderer.subtitles[BuildNumberID]; got != "0.0.1 (abc1234)" {
		t.Fatalf("build subtitle = %q", got)
	}
}

func TestController_CloseCleansUpHandlers(t *testing.T) {
	c, _, _ := testController(t)

	first := &spyHandler{}
	second := &spyHandler{}
	c.Register("a", first)
	c.Register("b", second)
	c.Close()

	if first.cleanedUp != 1 || second.cleanedUp != 1 {
		t.Fatalf("cleanups = %d, %d, want 1 each", first.cleanedUp, second.cleanedUp)
	}
}
