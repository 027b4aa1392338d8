package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
)

const homeButtonLabel = "My profile"

// HomeView shows the name, the portrait and a button leading to the
// profile. It has no state of its own.
type HomeView struct {
	cfg      config.Config
	portrait *portrait.Portrait
	theme    Theme
	keys     homeKeyMap
	nav      Navigation

	width  int
	height int

	// Rendered tagline, cached per wrap width.
	tagline      string
	taglineWidth int
}

// NewHomeView creates the home screen.
func NewHomeView(cfg config.Config, pic *portrait.Portrait, theme Theme) *HomeView {
	return &HomeView{
		cfg:      cfg,
		portrait: pic,
		theme:    theme,
		keys:     defaultHomeKeys(),
		width:    80,
		height:   22,
	}
}

func (h *HomeView) Mount(ctx MountContext) tea.Cmd {
	h.nav = ctx.Nav
	return nil
}

func (h *HomeView) Unmount() {}

func (h *HomeView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, h.keys.Open) {
		return h.PressButton()
	}
	return nil
}

// PressButton requests navigation to the profile.
func (h *HomeView) PressButton() tea.Cmd {
	if h.nav == nil {
		return nil
	}
	return h.nav.Navigate(RouteProfile)
}

func (h *HomeView) Title() string { return "" }

func (h *HomeView) CapturingInput() bool { return false }

func (h *HomeView) Bindings() []key.Binding {
	return []key.Binding{h.keys.Open}
}

func (h *HomeView) SetSize(width, height int) {
	h.width, h.height = width, height
}

func (h *HomeView) View() string {
	t := h.theme
	w := h.width

	name := t.Name.Render(runewidth.Truncate(h.cfg.Profile.Name, maxInt(w-2, 1), "…"))

	// 2:3 portrait; each cell is one pixel wide and two tall.
	rows := clampInt(h.height/2, 4, 16)
	pic := h.portrait.View(rows*4/3, rows)

	tagline := h.renderTagline(minInt(w-4, 60))
	button := t.ButtonFocus.Render(homeButtonLabel)

	parts := []string{name, "", pic, ""}
	if tagline != "" {
		parts = append(parts, tagline, "")
	}
	parts = append(parts, button)

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.Place(w, h.height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeView) renderTagline(width int) string {
	src := strings.TrimSpace(h.cfg.Profile.Tagline)
	if src == "" || width < 10 {
		return ""
	}
	if h.tagline != "" && h.taglineWidth == width {
		return h.tagline
	}

	out := src
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		var rendered string
		rendered, err = r.Render(src)
		if err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if err != nil {
		debug.Log("tagline markdown: %v", err)
	}

	h.tagline = centerLines(width, strings.TrimRight(out, " "))
	h.taglineWidth = width
	return h.tagline
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ Screen = (*HomeView)(nil)
