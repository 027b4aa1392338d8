package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
	"github.com/vanderheijden86/ztprofile/pkg/watcher"
	"github.com/vanderheijden86/ztprofile/pkg/weather"
)

// PortraitChangedMsg is sent when the watched portrait file changes.
type PortraitChangedMsg struct{}

// WatchPortraitCmd waits for the next portrait change.
func WatchPortraitCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return PortraitChangedMsg{}
	}
}

// Deps wires the app to its collaborators.
type Deps struct {
	Config   config.Config
	Weather  weather.Provider
	Store    kvstore.Store
	Opener   URLOpener
	Portrait *portrait.Portrait
	// Watcher, when set, reports changes to Config.Profile.PortraitPath.
	Watcher  *watcher.Watcher
	Renderer *lipgloss.Renderer
}

// App is the root Bubble Tea model. It owns the navigator and plays the
// part of the platform: it turns esc into a keyboard dismissal while a
// screen is capturing input and into back navigation otherwise.
type App struct {
	cfg      config.Config
	nav      *Navigator
	keyboard *Keyboard
	theme    Theme
	keys     appKeyMap
	help     help.Model
	portrait *portrait.Portrait
	watcher  *watcher.Watcher
	writes   *WriteGroup

	width  int
	height int
}

// NewApp builds the app with Home as the initial route.
func NewApp(deps Deps) (App, error) {
	if deps.Store == nil {
		return App{}, errors.New("app requires a store")
	}
	r := deps.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	theme := DefaultTheme(r)

	pic := deps.Portrait
	if pic == nil {
		pic = portrait.New(portrait.Default(96, 144, portrait.Initials(deps.Config.Profile.Name)))
	}

	keyboard := NewKeyboard()
	writes := &WriteGroup{}
	routes := map[Route]ScreenFactory{
		RouteHome: func() Screen {
			return NewHomeView(deps.Config, pic, theme)
		},
		RouteProfile: func() Screen {
			return NewProfileView(ProfileDeps{
				Config:   deps.Config,
				Weather:  deps.Weather,
				Store:    deps.Store,
				Keyboard: keyboard,
				Opener:   deps.Opener,
				Portrait: pic,
				Theme:    theme,
				Writes:   writes,
			})
		},
	}
	nav, err := NewNavigator(RouteHome, routes)
	if err != nil {
		return App{}, err
	}

	h := help.New()
	h.Styles.ShortKey = theme.Caption.Bold(true)
	h.Styles.ShortDesc = theme.Caption
	h.Styles.ShortSeparator = theme.Caption

	a := App{
		cfg:      deps.Config,
		nav:      nav,
		keyboard: keyboard,
		theme:    theme,
		keys:     defaultAppKeys(),
		help:     h,
		portrait: pic,
		watcher:  deps.Watcher,
		writes:   writes,
		width:    80,
		height:   24,
	}
	nav.SetSize(a.width, a.bodyHeight())
	return a, nil
}

// Navigator exposes the route stack.
func (a App) Navigator() *Navigator { return a.nav }

// Keyboard exposes the keyboard event hub.
func (a App) Keyboard() *Keyboard { return a.keyboard }

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.nav.Start()}
	if a.watcher != nil {
		cmds = append(cmds, WatchPortraitCmd(a.watcher))
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.nav.SetSize(a.width, a.bodyHeight())
		return a, nil

	case PortraitChangedMsg:
		a.reloadPortrait()
		if a.watcher != nil {
			return a, WatchPortraitCmd(a.watcher)
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}

		top := a.nav.Top()
		if top != nil && top.CapturingInput() {
			if key.Matches(msg, a.keys.Dismiss) {
				a.keyboard.Emit(KeyboardDidHide)
				return a, nil
			}
			return a, a.nav.Update(msg)
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Back):
			a.nav.Back()
			return a, nil
		}

		cmd := a.nav.Update(msg)
		if top := a.nav.Top(); top != nil && top.CapturingInput() {
			a.keyboard.Emit(KeyboardDidShow)
		}
		return a, cmd
	}

	return a, a.nav.Update(msg)
}

func (a App) View() string {
	var sections []string
	if top := a.nav.Top(); top != nil && top.Title() != "" {
		sections = append(sections, a.theme.Header.Width(a.width).Render(top.Title()))
	}
	sections = append(sections, a.nav.View(), a.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// writeDrainTimeout bounds how long Close waits for pending saves.
var writeDrainTimeout = 2 * time.Second

// Close unmounts every screen and waits for pending saves. main defers it
// ahead of closing the store so unmount hooks run however the program ends.
func (a App) Close() {
	a.nav.Close()
	if !a.writes.Wait(writeDrainTimeout) {
		debug.Warn("Error saving data. write still pending after %v", writeDrainTimeout)
	}
}

func (a App) bodyHeight() int {
	// header + footer
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (a App) renderFooter() string {
	var bindings []key.Binding
	top := a.nav.Top()
	if top != nil {
		bindings = append(bindings, top.Bindings()...)
	}
	switch {
	case top != nil && top.CapturingInput():
		bindings = append(bindings, a.keys.Dismiss)
	case a.nav.CanGoBack():
		bindings = append(bindings, a.keys.Back, a.keys.Quit)
	default:
		bindings = append(bindings, a.keys.Quit)
	}
	return a.help.ShortHelpView(bindings)
}

func (a App) reloadPortrait() {
	path := a.cfg.Profile.PortraitPath
	if path == "" {
		return
	}
	img, err := portrait.Load(path)
	if err != nil {
		debug.Warn("Error reloading portrait: %v", err)
		return
	}
	a.portrait.SetImage(img)
}
