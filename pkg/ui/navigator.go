package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/ztprofile/pkg/debug"
)

// Route names a screen hosted by the Navigator.
type Route string

const (
	RouteHome    Route = "Home"
	RouteProfile Route = "Profile"
)

// Navigation is what a hosted screen may ask of the navigator. Both
// operations return commands; the stack changes when the resulting message
// reaches Navigator.Update.
type Navigation interface {
	Navigate(route Route) tea.Cmd
	Back() tea.Cmd
}

// MountContext is handed to a screen when it is pushed.
type MountContext struct {
	// ID is unique per mount. Messages produced by a mount carry it so that
	// results arriving after the screen was popped can be dropped.
	ID  int
	Nav Navigation
}

// Screen is a view hosted by the Navigator.
type Screen interface {
	// Mount runs when the screen is pushed. Returned commands start its
	// asynchronous work.
	Mount(ctx MountContext) tea.Cmd
	// Unmount runs exactly once when the screen leaves the stack, including
	// on Navigator.Close.
	Unmount()
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	// Title is shown in the header bar; empty hides the header.
	Title() string
	// CapturingInput reports whether the screen wants every key, in which
	// case esc dismisses input instead of navigating back.
	CapturingInput() bool
	// Bindings lists the keys shown in the footer.
	Bindings() []key.Binding
}

// ScreenFactory builds a fresh screen each time its route is pushed.
type ScreenFactory func() Screen

// NavigateMsg asks the navigator to show a route.
type NavigateMsg struct {
	Route Route
}

// BackMsg asks the navigator to pop the current screen.
type BackMsg struct{}

// mountedMsg is implemented by messages that belong to one mount of a screen.
type mountedMsg interface {
	mountID() int
}

type navHandle struct{}

func (navHandle) Navigate(route Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: route} }
}

func (navHandle) Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

type stackEntry struct {
	route  Route
	screen Screen
	id     int
}

// Navigator is a stack of screens keyed by route name. The initial route is
// the bottom of the stack and is never popped.
type Navigator struct {
	routes  map[Route]ScreenFactory
	initial Route
	stack   []stackEntry
	nextID  int
	width   int
	height  int
	closed  bool
}

// NewNavigator creates a navigator. The initial route must be registered.
func NewNavigator(initial Route, routes map[Route]ScreenFactory) (*Navigator, error) {
	if _, ok := routes[initial]; !ok {
		return nil, fmt.Errorf("initial route %q is not registered", initial)
	}
	return &Navigator{
		routes:  routes,
		initial: initial,
	}, nil
}

// Start mounts the initial route. Calling it again does nothing.
func (n *Navigator) Start() tea.Cmd {
	if len(n.stack) > 0 || n.closed {
		return nil
	}
	return n.push(n.initial)
}

// Navigate shows route, pushing a new screen unless it is already current.
func (n *Navigator) Navigate(route Route) tea.Cmd {
	if n.closed {
		return nil
	}
	if _, ok := n.routes[route]; !ok {
		debug.Warn("navigate: unknown route %q", route)
		return nil
	}
	if len(n.stack) > 0 && n.Current() == route {
		return nil
	}
	return n.push(route)
}

// Back pops the current screen. It reports false when already at the
// initial screen.
func (n *Navigator) Back() bool {
	if n.closed || len(n.stack) <= 1 {
		return false
	}
	top := n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	debug.Log("unmount %s (#%d)", top.route, top.id)
	top.screen.Unmount()
	return true
}

// CanGoBack reports whether Back would pop a screen.
func (n *Navigator) CanGoBack() bool {
	return len(n.stack) > 1
}

// Current returns the route on top of the stack.
func (n *Navigator) Current() Route {
	if len(n.stack) == 0 {
		return ""
	}
	return n.stack[len(n.stack)-1].route
}

// Depth returns the number of mounted screens.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Top returns the visible screen, or nil before Start.
func (n *Navigator) Top() Screen {
	if len(n.stack) == 0 {
		return nil
	}
	return n.stack[len(n.stack)-1].screen
}

// SetSize resizes every mounted screen.
func (n *Navigator) SetSize(width, height int) {
	n.width, n.height = width, height
	for _, e := range n.stack {
		e.screen.SetSize(width, height)
	}
}

// Update handles navigation messages and routes everything else: messages
// tied to a mount go to that screen if it is still mounted, the rest go to
// the visible screen.
func (n *Navigator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NavigateMsg:
		return n.Navigate(msg.Route)
	case BackMsg:
		n.Back()
		return nil
	case mountedMsg:
		for _, e := range n.stack {
			if e.id == msg.mountID() {
				return e.screen.Update(msg)
			}
		}
		debug.Log("dropping %T for unmounted screen #%d", msg, msg.mountID())
		return nil
	}

	if top := n.Top(); top != nil {
		return top.Update(msg)
	}
	return nil
}

// View renders the visible screen.
func (n *Navigator) View() string {
	if top := n.Top(); top != nil {
		return top.View()
	}
	return ""
}

// Close unmounts every screen, top first. It is safe to call more than once.
func (n *Navigator) Close() {
	if n.closed {
		return
	}
	n.closed = true
	for i := len(n.stack) - 1; i >= 0; i-- {
		e := n.stack[i]
		debug.Log("unmount %s (#%d)", e.route, e.id)
		e.screen.Unmount()
	}
	n.stack = nil
}

func (n *Navigator) push(route Route) tea.Cmd {
	screen := n.routes[route]()
	n.nextID++
	entry := stackEntry{route: route, screen: screen, id: n.nextID}
	n.stack = append(n.stack, entry)

	debug.Log("mount %s (#%d)", route, entry.id)
	if n.width > 0 || n.height > 0 {
		screen.SetSize(n.width, n.height)
	}
	return screen.Mount(MountContext{ID: entry.id, Nav: navHandle{}})
}
