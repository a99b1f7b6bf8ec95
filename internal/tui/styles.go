// internal/tui/styles.go
package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the storefront views.
type Styles struct {
	Header       lipgloss.Style
	Title        lipgloss.Style
	Muted        lipgloss.Style
	Selected     lipgloss.Style
	Price        lipgloss.Style
	Struck       lipgloss.Style
	Option       lipgloss.Style
	ActiveOption lipgloss.Style
	Tile         lipgloss.Style
	ActiveTile   lipgloss.Style
	Notification lipgloss.Style
	Footer       lipgloss.Style
}

func DefaultStyles() Styles {
	primary := lipgloss.Color("#2E7D32")
	accent := lipgloss.Color("#F9A825")
	muted := lipgloss.Color("#8A8A8A")
	danger := lipgloss.Color("#C62828")

	return Styles{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Selected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Price: lipgloss.NewStyle().
			Bold(true),

		Struck: lipgloss.NewStyle().
			Foreground(muted).
			Strikethrough(true),

		Option: lipgloss.NewStyle().
			Foreground(muted),

		ActiveOption: lipgloss.NewStyle().
			Foreground(accent).
			Underline(true),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),

		ActiveTile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Notification: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(muted),
	}
}
