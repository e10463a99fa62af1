package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heckerdev/cordium/internal/schema"
)

func testCategories() []schema.Category {
	return []schema.Category{
		{ID: "general", Title: "General", Items: []schema.Item{
			{Kind: schema.KindToggle, ID: "a", Title: "A", Key: "a", DefaultBool: true},
			{Kind: schema.KindInfo, ID: "b", Title: "B"},
		}},
		{ID: "about", Title: "About", Items: []schema.Item{
			{Kind: schema.KindAction, ID: "c", Title: "C"},
		}},
	}
}

func TestBuildRows_InterleavesHeadersAndItems(t *testing.T) {
	rows := buildRows(testCategories())

	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if !rows[0].isHeader || rows[0].header != "General" {
		t.Fatalf("rows[0] = %#v", rows[0])
	}
	if rows[1].item.ID != "a" || rows[2].item.ID != "b" {
		t.Fatalf("general items = %q, %q", rows[1].item.ID, rows[2].item.ID)
	}
	if !rows[3].isHeader || rows[4].item.ID != "c" {
		t.Fatalf("about rows = %#v, %#v", rows[3], rows[4])
	}
}

func TestSelectableNavigationSkipsHeaders(t *testing.T) {
	rows := buildRows(testCategories())

	if got := firstSelectable(rows); got != 1 {
		t.Fatalf("firstSelectable = %d, want 1", got)
	}
	if got := nextSelectable(rows, 2); got != 4 {
		t.Fatalf("nextSelectable(2) = %d, want 4 (skipping header)", got)
	}
	if got := nextSelectable(rows, 4); got != 4 {
		t.Fatalf("nextSelectable at end = %d, want 4", got)
	}
	if got := prevSelectable(rows, 4); got != 2 {
		t.Fatalf("prevSelectable(4) = %d, want 2", got)
	}
	if got := prevSelectable(rows, 1); got != 1 {
		t.Fatalf("prevSelectable at start = %d, want 1", got)
	}
}

func TestFirstSelectable_EmptyPage(t *testing.T) {
	if got := firstSelectable(nil); got != -1 {
		t.Fatalf("firstSelectable(nil) = %d, want -1", got)
	}
}

func TestModel_StaleRevisionsAreDropped(t *testing.T) {
	m := New(Options{})
	m.ready = true
	m.width, m.height = 80, 24

	apply := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(Model)
	}

	apply(subtitleMsg{itemID: "check_updates", subtitle: "newer", rev: 5})
	apply(subtitleMsg{itemID: "check_updates", subtitle: "stale", rev: 3})
	if got := m.subtitles["check_updates"]; got != "newer" {
		t.Fatalf("subtitle = %q, want the newer revision to win", got)
	}

	apply(noticeMsg{text: "second", rev: 10})
	apply(noticeMsg{text: "first", rev: 9})
	if m.notice != "second" {
		t.Fatalf("notice = %q, want second", m.notice)
	}

	apply(pageMsg{title: "Advanced", rev: 2})
	apply(pageMsg{title: "Settings", rev: 1})
	if m.pageTitle != "Advanced" {
		t.Fatalf("pageTitle = %q, want Advanced", m.pageTitle)
	}
}

func TestModel_SubtitleOverridesAuthoredText(t *testing.T) {
	m := New(Options{})
	item := schema.Item{Kind: schema.KindInfo, ID: "build_number", Subtitle: "unknown"}

	if got := m.rowSubtitle(item); got != "unknown" {
		t.Fatalf("subtitle = %q, want authored fallback", got)
	}
	m.subtitles["build_number"] = "0.0.2 (abc)"
	if got := m.rowSubtitle(item); got != "0.0.2 (abc)" {
		t.Fatalf("subtitle = %q, want dynamic override", got)
	}
}
