package schema

import (
	"encoding/json"
	"fmt"
)

// SchemaError reports a malformed settings document. Page load treats it
// as fatal: the document is rejected wholesale rather than partially
// rendered.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("settings schema: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("settings schema: %s", e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaErrf(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// rawItem mirrors the item wire shape. Pointers distinguish absent
// required fields from zero values.
type rawItem struct {
	Type     *string         `json:"type"`
	ID       *string         `json:"id"`
	Title    *string         `json:"title"`
	Subtitle string          `json:"subtitle"`
	Icon     string          `json:"icon"`
	Dynamic  bool            `json:"dynamic"`
	Key      *string         `json:"key"`
	Default  json.RawMessage `json:"default"`
	Options  []rawOption     `json:"options"`
	Page     *string         `json:"page"`
}

type rawOption struct {
	Value *string `json:"value"`
	Label *string `json:"label"`
}

type rawCategory struct {
	ID    *string   `json:"id"`
	Title *string   `json:"title"`
	Items []rawItem `json:"items"`
}

type rawSubpage struct {
	Title      *string       `json:"title"`
	Categories []rawCategory `json:"categories"`
}

type rawConfig struct {
	Categories []rawCategory         `json:"categories"`
	Subpages   map[string]rawSubpage `json:"subpages"`
}

// Parse deserializes a settings document into a Config. It is a pure
// transform: no I/O, no defaults injected beyond those the data model
// defines. Any structural problem yields a *SchemaError.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &SchemaError{Reason: "invalid JSON", Err: err}
	}
	if raw.Categories == nil {
		return nil, schemaErrf("missing categories")
	}

	cfg := &Config{Subpages: make(map[string]Subpage, len(raw.Subpages))}
	var err error
	if cfg.Categories, err = parseCategories(raw.Categories); err != nil {
		return nil, err
	}
	for id, rs := range raw.Subpages {
		sub, err := parseSubpage(id, rs)
		if err != nil {
			return nil, err
		}
		cfg.Subpages[id] = sub
	}
	return cfg, nil
}

func parseSubpage(id string, raw rawSubpage) (Subpage, error) {
	if raw.Title == nil {
		return Subpage{}, schemaErrf("subpage %q: missing title", id)
	}
	if raw.Categories == nil {
		return Subpage{}, schemaErrf("subpage %q: missing categories", id)
	}
	cats, err := parseCategories(raw.Categories)
	if err != nil {
		return Subpage{}, err
	}
	return Subpage{Title: *raw.Title, Categories: cats}, nil
}

func parseCategories(raw []rawCategory) ([]Category, error) {
	cats := make([]Category, 0, len(raw))
	for i, rc := range raw {
		if rc.ID == nil {
			return nil, schemaErrf("category %d: missing id", i)
		}
		if rc.Title == nil {
			return nil, schemaErrf("category %q: missing title", *rc.ID)
		}
		items := make([]Item, 0, len(rc.Items))
		for j, ri := range rc.Items {
			item, err := parseItem(*rc.ID, j, ri)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		cats = append(cats, Category{ID: *rc.ID, Title: *rc.Title, Items: items})
	}
	return cats, nil
}

func parseItem(category string, index int, raw rawItem) (Item, error) {
	if raw.Type == nil {
		return Item{}, schemaErrf("category %q item %d: missing type", category, index)
	}
	if raw.ID == nil {
		return Item{}, schemaErrf("category %q item %d: missing id", category, index)
	}
	if raw.Title == nil {
		return Item{}, schemaErrf("item %q: missing title", *raw.ID)
	}

	item := Item{
		ID:       *raw.ID,
		Title:    *raw.Title,
		Subtitle: raw.Subtitle,
		Icon:     raw.Icon,
	}

	switch Kind(*raw.Type) {
	case KindInfo:
		item.Kind = KindInfo
		item.Dynamic = raw.Dynamic
	case KindAction:
		item.Kind = KindAction
		item.Dynamic = raw.Dynamic
	case KindToggle:
		item.Kind = KindToggle
		if raw.Key == nil {
			return Item{}, schemaErrf("toggle %q: missing key", item.ID)
		}
		item.Key = *raw.Key
		if raw.Default == nil {
			return Item{}, schemaErrf("toggle %q: missing default", item.ID)
		}
		if err := json.Unmarshal(raw.Default, &item.DefaultBool); err != nil {
			return Item{}, &SchemaError{Reason: fmt.Sprintf("toggle %q: default is not a boolean", item.ID), Err: err}
		}
	case KindSelection:
		item.Kind = KindSelection
		if raw.Key == nil {
			return Item{}, schemaErrf("selection %q: missing key", item.ID)
		}
		item.Key = *raw.Key
		if raw.Options == nil {
			return Item{}, schemaErrf("selection %q: missing options", item.ID)
		}
		if raw.Default == nil {
			return Item{}, schemaErrf("selection %q: missing default", item.ID)
		}
		if err := json.Unmarshal(raw.Default, &item.DefaultValue); err != nil {
			return Item{}, &SchemaError{Reason: fmt.Sprintf("selection %q: default is not a string", item.ID), Err: err}
		}
		for i, ro := range raw.Options {
			if ro.Value == nil || ro.Label == nil {
				return Item{}, schemaErrf("selection %q: option %d missing value or label", item.ID, i)
			}
			item.Options = append(item.Options, Option{Value: *ro.Value, Label: *ro.Label})
		}
	case KindSubpage:
		item.Kind = KindSubpage
		if raw.Page == nil {
			return Item{}, schemaErrf("subpage item %q: missing page", item.ID)
		}
		item.PageID = *raw.Page
	default:
		return Item{}, schemaErrf("item %q: unknown type %q", item.ID, *raw.Type)
	}
	return item, nil
}
