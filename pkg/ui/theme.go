package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colors and styles of the grid.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Selected lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Invalid  lipgloss.Style
	Disabled lipgloss.Style
	Footer   lipgloss.Style
	Status   lipgloss.Style
}

// DefaultTheme builds the theme on renderer r. A nil r uses the default
// renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0F8B8D", Dark: "#3CC9C2"},
		Muted:     lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#B5850B", Dark: "#F2C94C"},
		Border:    lipgloss.AdaptiveColor{Light: "#D9D9D9", Dark: "#3A3A3A"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"},
		Error:     lipgloss.AdaptiveColor{Light: "#D0312D", Dark: "#FF6B6B"},
	}

	t.Selected = r.NewStyle().Reverse(true)
	t.Header = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.Label = r.NewStyle().Bold(true).Foreground(t.Secondary)
	t.Invalid = r.NewStyle().Foreground(t.Error).Underline(true)
	t.Disabled = r.NewStyle().Foreground(t.Muted).Faint(true)
	t.Footer = r.NewStyle().Bold(true).Foreground(t.Highlight)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	return t
}
