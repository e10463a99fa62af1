package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/settings"
)

func TestEmbeddedDocumentParses(t *testing.T) {
	cfg, err := schema.Parse(defaultDocument)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	for _, id := range []string{settings.BuildNumberID, settings.CheckUpdatesID} {
		item, ok := cfg.Item(id)
		if !ok {
			t.Fatalf("embedded document missing %q", id)
		}
		if !item.Dynamic {
			t.Fatalf("%q must be dynamic for its handler to refresh it", id)
		}
	}

	if _, ok := cfg.Subpages["advanced"]; !ok {
		t.Fatal("embedded document missing advanced subpage")
	}
}

func TestLoadDocument_OverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	want := []byte(`{"categories": []}`)
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := loadDocument(path)
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("loadDocument = %q, want %q", got, want)
	}
}

func TestLoadDocument_MissingFile(t *testing.T) {
	if _, err := loadDocument(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing override file")
	}
}

func TestResolveStateDir_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got, err := resolveStateDir("~/.local/share/cordium")
	if err != nil {
		t.Fatalf("resolveStateDir: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "cordium")
	if got != want {
		t.Fatalf("resolveStateDir = %q, want %q", got, want)
	}
}
