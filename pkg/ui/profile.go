package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
	"github.com/vanderheijden86/ztprofile/pkg/weather"
)

// InputValueKey is the store key holding the "about me" text.
const InputValueKey = "@inputValue"

const (
	profileTitle       = "My profile"
	aboutCaption       = "About me"
	temperatureHeading = "I live in a City where current temperature is"
	temperatureLoading = "Loading..."
	linkButtonLabel    = "My GitHub profile"
)

// temperatureMsg carries a successful weather lookup.
type temperatureMsg struct {
	id   int
	temp float64
}

func (m temperatureMsg) mountID() int { return m.id }

// textLoadedMsg carries the stored "about me" text. ok is false when the
// store has no value yet.
type textLoadedMsg struct {
	id    int
	value string
	ok    bool
}

func (m textLoadedMsg) mountID() int { return m.id }

// linkOpenedMsg reports the outcome of the link button.
type linkOpenedMsg struct {
	id     int
	err    error
	copied bool
}

func (m linkOpenedMsg) mountID() int { return m.id }

// ProfileDeps are the collaborators of a ProfileView.
type ProfileDeps struct {
	Config   config.Config
	Weather  weather.Provider
	Store    kvstore.Store
	Keyboard *Keyboard
	Opener   URLOpener
	Portrait *portrait.Portrait
	Theme    Theme
	// Writes, when set, tracks saves that have not finished.
	Writes *WriteGroup
}

// WriteGroup tracks store writes started by screens so the store is not
// closed under them.
type WriteGroup struct {
	wg sync.WaitGroup
}

func (g *WriteGroup) add() {
	if g != nil {
		g.wg.Add(1)
	}
}

func (g *WriteGroup) done() {
	if g != nil {
		g.wg.Done()
	}
}

// Wait blocks until every tracked write finished or timeout passed. It
// reports whether the writes finished.
func (g *WriteGroup) Wait(timeout time.Duration) bool {
	if g == nil {
		return true
	}
	finished := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return true
	case <-time.After(timeout):
		return false
	}
}

// ProfileView shows the portrait, the editable "about me" text, the current
// temperature and the link button.
type ProfileView struct {
	cfg      config.Config
	weather  weather.Provider
	store    kvstore.Store
	keyboard *Keyboard
	opener   URLOpener
	portrait *portrait.Portrait
	theme    Theme
	keys     profileKeyMap
	writes   *WriteGroup

	mountID     int
	input       *AboutInput
	inputHandle InputHandle
	keyboardSub *Subscription

	inputValue     string
	textLength     int
	edited         bool
	temperature    float64
	hasTemperature bool
	linkStatus     string

	width  int
	height int
}

// NewProfileView creates an unmounted profile screen showing the default
// text.
func NewProfileView(deps ProfileDeps) *ProfileView {
	cfg := deps.Config
	def := TruncateRunes(cfg.About.DefaultText, cfg.About.MaxLength)

	p := &ProfileView{
		cfg:      cfg,
		weather:  deps.Weather,
		store:    deps.Store,
		keyboard: deps.Keyboard,
		opener:   deps.Opener,
		portrait: deps.Portrait,
		theme:    deps.Theme,
		keys:     defaultProfileKeys(),
		writes:   deps.Writes,
		width:    80,
		height:   22,
	}
	p.input = NewAboutInput(cfg.About.MaxLength, def, deps.Theme)
	p.inputHandle = p.input.Handle()
	p.inputValue = p.input.Value()
	p.textLength = p.input.Len()
	return p
}

// Mount starts the weather lookup and the stored text read, and registers
// the keyboard-dismiss listener.
func (p *ProfileView) Mount(ctx MountContext) tea.Cmd {
	p.mountID = ctx.ID
	if p.keyboard != nil {
		handle := p.inputHandle
		p.keyboardSub = p.keyboard.AddListener(KeyboardDidHide, func() {
			handle.Blur()
		})
	}
	return tea.Batch(p.fetchTemperatureCmd(), p.loadTextCmd())
}

// Unmount removes the keyboard listener. Safe to call more than once.
func (p *ProfileView) Unmount() {
	p.keyboardSub.Remove()
}

// SetText applies an edit: the text is truncated to the limit, the view
// state is updated at once, and the new value is written to the store in
// the background.
func (p *ProfileView) SetText(s string) tea.Cmd {
	p.input.SetValue(s)
	return p.applyEdit()
}

func (p *ProfileView) applyEdit() tea.Cmd {
	value := p.input.Value()
	p.inputValue = value
	p.textLength = p.input.Len()
	p.edited = true
	return p.saveTextCmd(value)
}

func (p *ProfileView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case temperatureMsg:
		p.temperature = msg.temp
		p.hasTemperature = true
		return nil

	case textLoadedMsg:
		if p.edited {
			// The user typed before the read finished; keep their text.
			return nil
		}
		if msg.ok {
			p.input.SetValue(msg.value)
			p.inputValue = p.input.Value()
		}
		p.textLength = p.input.Len()
		return nil

	case linkOpenedMsg:
		switch {
		case msg.err == nil:
			p.linkStatus = "Opened " + p.cfg.Profile.LinkURL
		case msg.copied:
			p.linkStatus = "Copied " + p.cfg.Profile.LinkURL + " to clipboard"
		default:
			p.linkStatus = "Could not open " + p.cfg.Profile.LinkURL
		}
		return nil

	case tea.KeyMsg:
		if p.inputHandle.Focused() {
			cmd := p.input.Update(msg)
			if p.input.Value() != p.inputValue {
				return tea.Batch(cmd, p.applyEdit())
			}
			return cmd
		}
		switch {
		case key.Matches(msg, p.keys.Edit):
			return p.inputHandle.Focus()
		case key.Matches(msg, p.keys.Link):
			return p.PressLink()
		}
		return nil

	case tea.MouseMsg:
		return nil
	}

	if p.inputHandle.Focused() {
		return p.input.Update(msg)
	}
	return nil
}

// PressLink opens the profile link with the system handler.
func (p *ProfileView) PressLink() tea.Cmd {
	id := p.mountID
	link := p.cfg.Profile.LinkURL
	opener := p.opener
	return func() tea.Msg {
		return openLink(id, opener, link)
	}
}

func (p *ProfileView) fetchTemperatureCmd() tea.Cmd {
	if p.weather == nil {
		return nil
	}
	id := p.mountID
	provider := p.weather
	city := p.cfg.Weather.LookupCity
	return func() tea.Msg {
		temp, err := provider.CurrentTemperature(context.Background(), city)
		if err != nil {
			debug.Warn("Error fetching weather for %s: %v", city, err)
			return nil
		}
		return temperatureMsg{id: id, temp: temp}
	}
}

func (p *ProfileView) loadTextCmd() tea.Cmd {
	if p.store == nil {
		return nil
	}
	id := p.mountID
	store := p.store
	return func() tea.Msg {
		value, ok, err := store.Get(context.Background(), InputValueKey)
		if err != nil {
			debug.Warn("Error retrieving data. %v", err)
			return textLoadedMsg{id: id}
		}
		return textLoadedMsg{id: id, value: value, ok: ok}
	}
}

func (p *ProfileView) saveTextCmd(value string) tea.Cmd {
	if p.store == nil {
		return nil
	}
	store := p.store
	writes := p.writes
	writes.add()
	return func() tea.Msg {
		defer writes.done()
		if err := store.Set(context.Background(), InputValueKey, value); err != nil {
			debug.Warn("Error saving data. %v", err)
		}
		return nil
	}
}

// InputValue returns the current "about me" text.
func (p *ProfileView) InputValue() string { return p.inputValue }

// TextLength returns the length of InputValue in characters.
func (p *ProfileView) TextLength() int { return p.textLength }

// Temperature returns the last fetched temperature and whether one has
// arrived yet.
func (p *ProfileView) Temperature() (float64, bool) {
	return p.temperature, p.hasTemperature
}

// TemperatureLabel returns the rounded temperature with a degree suffix, or
// the loading placeholder before the first successful fetch.
func (p *ProfileView) TemperatureLabel() string {
	if !p.hasTemperature {
		return temperatureLoading
	}
	return FormatTemperature(p.temperature)
}

// CounterLabel returns "N / max".
func (p *ProfileView) CounterLabel() string {
	return fmt.Sprintf("%d / %d", p.textLength, p.cfg.About.MaxLength)
}

// FormatTemperature rounds half up, so 15.5 shows as 16 and -2.5 as -2.
func FormatTemperature(t float64) string {
	return fmt.Sprintf("%d °C", int(math.Floor(t+0.5)))
}

func (p *ProfileView) Title() string { return profileTitle }

func (p *ProfileView) CapturingInput() bool { return p.inputHandle.Focused() }

func (p *ProfileView) Bindings() []key.Binding {
	if p.inputHandle.Focused() {
		return nil
	}
	return []key.Binding{p.keys.Edit, p.keys.Link}
}

func (p *ProfileView) SetSize(width, height int) {
	p.width, p.height = width, height
	p.input.SetWidth(width - 6)
}

func (p *ProfileView) View() string {
	t := p.theme
	// Inside the horizontal padding.
	w := maxInt(p.width-2, 1)

	// Portrait and name side by side; the portrait is square.
	side := clampInt(p.height/4, 3, 8)
	pic := p.portrait.View(side*2, side)
	nameWidth := w - lipgloss.Width(pic) - 4
	name := t.Name.Render(runewidth.Truncate(p.cfg.Profile.Name, maxInt(nameWidth, 1), "…"))
	top := lipgloss.JoinHorizontal(lipgloss.Center, pic, "  ", name)

	caption := t.Caption.Render(aboutCaption)
	counter := t.Caption.Width(lipgloss.Width(p.input.View())).Align(lipgloss.Right).Render(p.CounterLabel())
	about := lipgloss.JoinVertical(lipgloss.Left, caption, p.input.View(), counter)

	center := t.Renderer.NewStyle().Width(w).Align(lipgloss.Center)
	heading := center.Render(t.Heading.Render(runewidth.Wrap(temperatureHeading, maxInt(w-2, 10))))
	temp := center.Render(t.Temperature.Render(p.TemperatureLabel()))
	if p.cfg.Weather.LookupCity != p.cfg.Weather.DisplayCity {
		temp += "\n" + center.Render(t.Caption.Render("(weather for "+p.cfg.Weather.LookupCity+")"))
	}

	button := t.ButtonFocus.Render(linkButtonLabel)
	if p.inputHandle.Focused() {
		button = t.Button.Render(linkButtonLabel)
	}
	buttonRow := center.Render(button)

	sections := []string{top, "", about, "", heading, temp, "", buttonRow}
	if p.linkStatus != "" {
		sections = append(sections, center.Render(t.Status.Render(p.linkStatus)))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return t.Renderer.NewStyle().Padding(0, 1).Render(body)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ Screen = (*ProfileView)(nil)

// centerLines is used by both screens to center multi-line blocks.
func centerLines(width int, s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		pad := (width - lipgloss.Width(l)) / 2
		if pad > 0 {
			lines[i] = strings.Repeat(" ", pad) + l
		}
	}
	return strings.Join(lines, "\n")
}
