// Package ui provides the Bubble Tea front end: the tab shell and the
// settings page renderer.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/heckerdev/cordium/internal/schema"
	"github.com/heckerdev/cordium/internal/settings"
	"github.com/heckerdev/cordium/internal/store"
	"github.com/heckerdev/cordium/internal/update"
)

// Tab identifies a top-level destination.
type Tab int

const (
	TabHome Tab = iota
	TabProfile
	TabSettings
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabHome:
		return "Home"
	case TabProfile:
		return "Profile"
	case TabSettings:
		return "Settings"
	default:
		return "?"
	}
}

// row is one rendered line group of the settings list: a section header
// or a selectable item.
type row struct {
	isHeader bool
	header   string
	item     schema.Item
}

type selectionState struct {
	item  schema.Item
	index int
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	keys     keyMap
	theme    Theme
	styles   Styles
	ctrl     *settings.Controller
	kv       *store.Store
	workflow *update.Workflow
	build    string

	width  int
	height int
	ready  bool
	tab    Tab

	// Settings page state, driven by sink messages.
	pageTitle    string
	categories   []schema.Category
	backEnabled  bool
	rows         []row
	cursor       int
	pageRev      uint64
	subtitles    map[string]string
	subtitleRevs map[string]uint64
	list         viewport.Model

	// Status line.
	notice    string
	noticeRev uint64

	// Modals.
	sel        *selectionState
	askInstall bool

	spin spinner.Model
}

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := DefaultTheme()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:          ctx,
		keys:         DefaultKeyMap(),
		theme:        theme,
		styles:       theme.Styles(),
		ctrl:         opts.Controller,
		kv:           opts.Store,
		workflow:     opts.Workflow,
		build:        opts.Build,
		tab:          TabSettings,
		subtitles:    make(map[string]string),
		subtitleRevs: make(map[string]uint64),
		spin:         sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg {
			if ctrl != nil {
				_ = ctrl.LoadPage("")
			}
			return nil
		},
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.list = viewport.New(msg.Width, m.listHeight())
			m.ready = true
		} else {
			m.list.Width = msg.Width
			m.list.Height = m.listHeight()
		}
		m.syncList()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case pageMsg:
		if msg.rev <= m.pageRev {
			return m, nil
		}
		m.pageRev = msg.rev
		m.pageTitle = msg.title
		m.categories = msg.categories
		m.backEnabled = msg.backEnabled
		m.rows = buildRows(msg.categories)
		m.cursor = firstSelectable(m.rows)
		m.syncList()
		return m, nil

	case subtitleMsg:
		if msg.rev <= m.subtitleRevs[msg.itemID] {
			return m, nil
		}
		m.subtitleRevs[msg.itemID] = msg.rev
		m.subtitles[msg.itemID] = msg.subtitle
		m.syncList()
		return m, nil

	case noticeMsg:
		if msg.rev <= m.noticeRev {
			return m, nil
		}
		m.noticeRev = msg.rev
		m.notice = msg.text
		return m, nil

	case selectionMsg:
		index := 0
		for i, opt := range msg.item.Options {
			if opt.Value == msg.current {
				index = i
				break
			}
		}
		m.sel = &selectionState{item: msg.item, index: index}
		return m, nil

	case permissionMsg:
		m.askInstall = true
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.askInstall {
		return m.handlePermissionKey(msg)
	}
	if m.sel != nil {
		return m.handleSelectionKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.TabHome):
		m.tab = TabHome
	case key.Matches(msg, m.keys.TabProfile):
		m.tab = TabProfile
	case key.Matches(msg, m.keys.TabSettings):
		// Re-selecting the active settings destination returns a
		// subpage to the root page.
		if m.tab == TabSettings && m.ctrl != nil && m.ctrl.OnSubpage() {
			_ = m.ctrl.LoadPage("")
		}
		m.tab = TabSettings
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
	default:
		if m.tab == TabSettings {
			return m.handleSettingsKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = prevSelectable(m.rows, m.cursor)
		m.syncList()
	case key.Matches(msg, m.keys.Down):
		m.cursor = nextSelectable(m.rows, m.cursor)
		m.syncList()
	case key.Matches(msg, m.keys.Select):
		if m.cursor >= 0 && m.cursor < len(m.rows) && !m.rows[m.cursor].isHeader && m.ctrl != nil {
			m.ctrl.HandleClick(m.ctx, m.rows[m.cursor].item)
			m.syncList()
		}
	case key.Matches(msg, m.keys.Back):
		if m.ctrl != nil {
			m.ctrl.Back()
		}
	}
	return m, nil
}

func (m Model) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.sel
	switch {
	case key.Matches(msg, m.keys.Up):
		if sel.index > 0 {
			sel.index--
		}
	case key.Matches(msg, m.keys.Down):
		if sel.index < len(sel.item.Options)-1 {
			sel.index++
		}
	case key.Matches(msg, m.keys.Select):
		item := sel.item
		choice := item.Options[sel.index].Value
		m.sel = nil
		if m.ctrl != nil {
			m.ctrl.ApplySelection(item, choice)
			m.syncList()
		}
	case key.Matches(msg, m.keys.Back):
		m.sel = nil
	}
	return m, nil
}

func (m Model) handlePermissionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.askInstall = false
		if m.kv != nil {
			_ = m.kv.SetBool(settings.AllowInstallKey, true)
		}
		if m.workflow != nil {
			m.workflow.ResolvePermission(true)
		}
	case "n", "N", "esc":
		m.askInstall = false
		if m.workflow != nil {
			m.workflow.ResolvePermission(false)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.askInstall {
		return m.renderModal(
			"Install update?",
			"Cordium needs permission to launch the installer.\n\n[y] Allow   [n] Deny",
		)
	}
	if m.sel != nil {
		return m.renderSelectionModal()
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.tab {
	case TabHome:
		b.WriteString(m.renderHome())
	case TabProfile:
		b.WriteString(m.renderProfile())
	case TabSettings:
		b.WriteString(m.styles.Header.Render(m.pageTitle))
		if m.backEnabled {
			b.WriteString(m.styles.Muted.Render("  (esc to go back)"))
		}
		b.WriteString("\n")
		b.WriteString(m.list.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, 0, int(tabCount))
	for t := TabHome; t < tabCount; t++ {
		label := fmt.Sprintf(" %d %s ", int(t)+1, t)
		if t == m.tab {
			parts = append(parts, m.styles.TabActive.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Cordium"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Text.Render("Welcome back."))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Build " + m.build))
	return b.String()
}

func (m Model) renderProfile() string {
	presence := "online"
	if m.kv != nil {
		presence = m.kv.GetString("profile_presence", presence)
	}
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Profile"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Text.Render("Presence: " + presence))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Change your presence under Settings."))
	return b.String()
}

func (m Model) renderStatusBar() string {
	if m.notice == "" {
		return m.styles.Muted.Render("↑/↓ move · enter select · esc back · q quit")
	}
	status := m.notice
	if m.updateBusy() {
		status = m.spin.View() + " " + status
	}
	return m.styles.StatusBar.Render(status)
}

func (m Model) updateBusy() bool {
	if m.workflow == nil {
		return false
	}
	switch m.workflow.State() {
	case update.StateChecking, update.StateDownloading:
		return true
	}
	return false
}

func (m Model) renderModal(title, body string) string {
	content := m.styles.Header.Render(title) + "\n\n" + m.styles.Text.Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Modal.Render(content))
}

func (m Model) renderSelectionModal() string {
	sel := m.sel
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(sel.item.Title))
	b.WriteString("\n\n")
	for i, opt := range sel.item.Options {
		marker := "  "
		line := opt.Label
		if i == sel.index {
			marker = "> "
			line = m.styles.Selected.Render(line)
		} else {
			line = m.styles.Text.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter choose · esc cancel"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Modal.Render(b.String()))
}

// listHeight is the space left for the settings list after the chrome.
func (m Model) listHeight() int {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

// syncList repaints the settings list into the viewport and keeps the
// cursor row visible.
func (m *Model) syncList() {
	if !m.ready {
		return
	}
	var b strings.Builder
	cursorLine := 0
	line := 0
	for i, r := range m.rows {
		if i == m.cursor {
			cursorLine = line
		}
		rendered := m.renderRow(r, i == m.cursor)
		b.WriteString(rendered)
		b.WriteString("\n")
		line += strings.Count(rendered, "\n") + 1
	}
	m.list.SetContent(b.String())

	if cursorLine < m.list.YOffset {
		m.list.SetYOffset(cursorLine)
	} else if cursorLine >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(cursorLine - m.list.Height + 1)
	}
}

func (m *Model) renderRow(r row, selected bool) string {
	if r.isHeader {
		return m.styles.SectionHdr.Render(strings.ToUpper(r.header))
	}

	title := r.item.Title
	switch r.item.Kind {
	case schema.KindToggle:
		mark := "[ ]"
		if m.kv != nil && m.kv.GetBool(r.item.Key, r.item.DefaultBool) {
			mark = "[x]"
		}
		title = mark + " " + title
	case schema.KindSubpage:
		title = title + " ›"
	}

	marker := "  "
	style := m.styles.Text
	if selected {
		marker = "> "
		style = m.styles.Selected
	}
	out := marker + style.Render(title)

	if sub := m.rowSubtitle(r.item); sub != "" {
		out += "\n    " + m.styles.Muted.Render(sub)
	}
	return out
}

// rowSubtitle resolves an item's subtitle: dynamic updates win, then a
// selection's current label, then the authored subtitle.
func (m *Model) rowSubtitle(item schema.Item) string {
	if sub, ok := m.subtitles[item.ID]; ok {
		return sub
	}
	if item.Kind == schema.KindSelection && m.kv != nil {
		value := m.kv.GetString(item.Key, item.DefaultValue)
		return item.OptionLabel(value)
	}
	return item.Subtitle
}

// buildRows flattens categories into the rendered row list.
func buildRows(categories []schema.Category) []row {
	var rows []row
	for _, cat := range categories {
		rows = append(rows, row{isHeader: true, header: cat.Title})
		for _, it := range cat.Items {
			rows = append(rows, row{item: it})
		}
	}
	return rows
}

func firstSelectable(rows []row) int {
	for i, r := range rows {
		if !r.isHeader {
			return i
		}
	}
	return -1
}

func nextSelectable(rows []row, from int) int {
	for i := from + 1; i < len(rows); i++ {
		if !rows[i].isHeader {
			return i
		}
	}
	return from
}

func prevSelectable(rows []row, from int) int {
	for i := from - 1; i >= 0; i-- {
		if !rows[i].isHeader {
			return i
		}
	}
	return from
}
