package schema

// Kind discriminates the settings item variants.
type Kind string

const (
	KindInfo      Kind = "info"
	KindAction    Kind = "action"
	KindToggle    Kind = "toggle"
	KindSelection Kind = "selection"
	KindSubpage   Kind = "subpage"
)

// Config is the root of a parsed settings document. Categories render in
// document order; Subpages is keyed by the page id referenced from
// subpage items. Config is immutable after Parse returns it.
type Config struct {
	Categories []Category
	Subpages   map[string]Subpage
}

// Category is one titled section of settings rows.
type Category struct {
	ID    string
	Title string
	Items []Item
}

// Subpage is a secondary settings page reached through a subpage item.
type Subpage struct {
	Title      string
	Categories []Category
}

// Option is one choice of a selection item.
type Option struct {
	Value string
	Label string
}

// Item is a single settings row. Kind selects the variant; only the
// fields belonging to that variant are meaningful. Item ids are the
// dispatch key for handlers and dynamic subtitle updates, so they must
// be unique across the whole document.
type Item struct {
	Kind     Kind
	ID       string
	Title    string
	Subtitle string
	Icon     string

	// info, action
	Dynamic bool

	// toggle, selection
	Key string

	// toggle
	DefaultBool bool

	// selection
	DefaultValue string
	Options      []Option

	// subpage
	PageID string
}

// OptionLabel resolves the display label for a stored selection value,
// falling back to the raw value when no option matches.
func (it Item) OptionLabel(value string) string {
	for _, opt := range it.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Item finds an item by id anywhere in the config, root categories and
// subpages alike. Later occurrences win when ids collide, mirroring the
// last-found semantics of handler dispatch.
func (c *Config) Item(id string) (Item, bool) {
	var found Item
	var ok bool
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.ID == id {
				found, ok = it, true
			}
		}
	}
	for _, sub := range c.Subpages {
		for _, cat := range sub.Categories {
			for _, it := range cat.Items {
				if it.ID == id {
					found, ok = it, true
				}
			}
		}
	}
	return found, ok
}
