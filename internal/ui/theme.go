package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used across the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string

	SelectionBg   string
	SelectionText string
	Border        string
}

// DefaultTheme is the shipped palette.
func DefaultTheme() Theme {
	return Theme{
		Name:          "Midnight",
		Text:          "#f8f8f2",
		Muted:         "#6272a4",
		Accent:        "#bd93f9",
		Success:       "#50fa7b",
		Warning:       "#f1fa8c",
		Danger:        "#ff5555",
		SelectionBg:   "#44475a",
		SelectionText: "#f8f8f2",
		Border:        "#6272a4",
	}
}

// Styles holds the Lipgloss styles derived from a Theme.
type Styles struct {
	Text       lipgloss.Style
	Muted      lipgloss.Style
	Accent     lipgloss.Style
	Success    lipgloss.Style
	Danger     lipgloss.Style
	Header     lipgloss.Style
	TabActive  lipgloss.Style
	Tab        lipgloss.Style
	Selected   lipgloss.Style
	SectionHdr lipgloss.Style
	StatusBar  lipgloss.Style
	Modal      lipgloss.Style
}

// Styles derives the lipgloss styles for the theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true).
			Underline(true),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		SectionHdr: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(1, 2),
	}
}
