package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colours and pre-built styles shared by both screens.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Styles
	Base        lipgloss.Style
	Header      lipgloss.Style
	Name        lipgloss.Style // the person's name, bold and large-ish
	Caption     lipgloss.Style // "About me", counter
	Heading     lipgloss.Style // temperature sentence
	Temperature lipgloss.Style
	Button      lipgloss.Style
	ButtonFocus lipgloss.Style
	Status      lipgloss.Style
	Input       lipgloss.Style
	InputFocus  lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Muted:     lipgloss.AdaptiveColor{Light: "#767676", Dark: "#D3D3D3"}, // #d3d3d3 captions
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
	}

	text := lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"}

	t.Base = r.NewStyle().Foreground(text)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Name = r.NewStyle().Foreground(text).Bold(true)
	t.Caption = r.NewStyle().Foreground(t.Muted)
	t.Heading = r.NewStyle().Foreground(text).Bold(true)
	t.Temperature = r.NewStyle().Foreground(t.Primary).Bold(true)

	t.Button = r.NewStyle().
		Foreground(text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2)
	t.ButtonFocus = t.Button.
		BorderForeground(t.Primary).
		Bold(true)

	t.Status = r.NewStyle().Foreground(t.Subtext).Italic(true)

	t.Input = r.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Border)
	t.InputFocus = t.Input.BorderForeground(t.Primary)

	return t
}

// TestTheme returns a theme for tests: no colour, no terminal queries.
func TestTheme() Theme {
	r := lipgloss.NewRenderer(io.Discard)
	return DefaultTheme(r)
}
