// Package schema defines the typed model for declarative settings pages
// and the parser that builds it from a JSON document.
//
// # Document Shape
//
// A settings document is a single JSON object:
//
//	{
//	  "categories": [
//	    {"id": "general", "title": "General", "items": [...]}
//	  ],
//	  "subpages": {
//	    "advanced": {"title": "Advanced", "categories": [...]}
//	  }
//	}
//
// Each item carries a "type" discriminator selecting one of five
// variants, plus the shared fields id, title and the optional subtitle
// and icon:
//
//   - "info": non-interactive row; "dynamic": true marks rows whose
//     subtitle is refreshed at runtime by a handler.
//   - "action": interactive row with no intrinsic behavior.
//   - "toggle": boolean row; requires "key" and a boolean "default".
//   - "selection": single-choice row; requires "key", a string
//     "default" and an "options" array of {value, label} pairs.
//   - "subpage": navigation row; requires "page" naming an entry of the
//     document's subpages map.
//
// "subpages" is optional; its absence yields an empty map.
//
// # Ordering
//
// Category and item order in the parsed Config mirrors document order.
// Order is semantically meaningful: it is the rendering order.
//
// # Errors
//
// Parse fails with *SchemaError when the document is not valid JSON,
// when a required field is absent, or when an item type is unknown.
// A schema error is fatal to page load; there is no partial parse.
package schema
