package ui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
)

type appHarness struct {
	app     App
	store   *kvstore.Memory
	weather *fakeWeather
	opener  *fakeOpener
}

func newAppHarness(t *testing.T) *appHarness {
	t.Helper()
	h := &appHarness{
		store:   kvstore.NewMemory(),
		weather: &fakeWeather{temp: 15.3},
		opener:  &fakeOpener{},
	}
	app, err := NewApp(Deps{
		Config:   config.DefaultConfig(),
		Weather:  h.weather,
		Store:    h.store,
		Opener:   h.opener,
		Portrait: portrait.New(portrait.Default(16, 24, "DK")),
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	h.app = app
	h.settle(app.Init())
	return h
}

func (h *appHarness) update(msg tea.Msg) tea.Cmd {
	m, cmd := h.app.Update(msg)
	h.app = m.(App)
	return cmd
}

func (h *appHarness) settle(cmd tea.Cmd) {
	settle(h.update, cmd)
}

// press sends msg and settles everything except quit.
func (h *appHarness) press(msg tea.KeyMsg) {
	h.settle(h.update(msg))
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewApp_RequiresStore(t *testing.T) {
	if _, err := NewApp(Deps{Config: config.DefaultConfig()}); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestApp_StartsOnHome(t *testing.T) {
	h := newAppHarness(t)
	if got := h.app.Navigator().Current(); got != RouteHome {
		t.Fatalf("expected Home, got %q", got)
	}
	out := h.app.View()
	if !strings.Contains(out, "Darius Kazinec") || !strings.Contains(out, "My profile") {
		t.Errorf("unexpected home view:\n%s", out)
	}
}

func TestApp_HomeToProfileAndBack(t *testing.T) {
	h := newAppHarness(t)

	h.press(keyEnter)
	if got := h.app.Navigator().Current(); got != RouteProfile {
		t.Fatalf("expected Profile after enter, got %q", got)
	}
	if n := h.app.Keyboard().ListenerCount(KeyboardDidHide); n != 1 {
		t.Errorf("expected dismiss listener registered, got %d", n)
	}
	out := h.app.View()
	for _, want := range []string{"My profile", "15 °C", "110 / 120", "My GitHub profile"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in profile view:\n%s", want, out)
		}
	}

	h.press(keyEsc)
	if got := h.app.Navigator().Current(); got != RouteHome {
		t.Errorf("expected Home after esc, got %q", got)
	}
	if n := h.app.Keyboard().ListenerCount(KeyboardDidHide); n != 0 {
		t.Errorf("expected dismiss listener removed on unmount, got %d", n)
	}
}

func TestApp_EditingFlow(t *testing.T) {
	h := newAppHarness(t)
	shown := 0
	h.app.Keyboard().AddListener(KeyboardDidShow, func() { shown++ })

	h.press(keyEnter)
	h.press(keyRunes("e"))
	profile := h.app.Navigator().Top().(*ProfileView)
	if !profile.CapturingInput() {
		t.Fatal("expected editing after 'e'")
	}
	if shown != 1 {
		t.Errorf("expected keyboardDidShow once, got %d", shown)
	}

	// q is text while editing.
	if cmd := h.update(keyRunes("q")); isQuit(cmd) {
		t.Fatal("q must not quit while editing")
	}
	if !strings.HasSuffix(profile.InputValue(), "q") {
		t.Errorf("expected q typed into the field, got %q", profile.InputValue())
	}
	v, ok, _ := h.store.Get(t.Context(), InputValueKey)
	if ok {
		t.Errorf("write should be pending until its command runs, got %q", v)
	}

	h.press(keyRunes("!"))
	v, ok, _ = h.store.Get(t.Context(), InputValueKey)
	if !ok || !strings.HasSuffix(v, "!") {
		t.Errorf("expected edit persisted, got %q ok=%v", v, ok)
	}

	h.press(keyEsc)
	if profile.CapturingInput() {
		t.Error("expected esc to dismiss the keyboard")
	}
	if got := h.app.Navigator().Current(); got != RouteProfile {
		t.Errorf("dismissing must not navigate, got %q", got)
	}
}

func TestApp_Quit(t *testing.T) {
	h := newAppHarness(t)
	if !isQuit(h.update(keyRunes("q"))) {
		t.Error("expected q to quit on Home")
	}

	h.press(keyEnter)
	h.press(keyRunes("e"))
	if !isQuit(h.update(keyCtrlC)) {
		t.Error("expected ctrl+c to quit while editing")
	}
}

func TestApp_CloseUnmountsScreens(t *testing.T) {
	h := newAppHarness(t)
	h.press(keyEnter)

	h.app.Close()
	if n := h.app.Keyboard().ListenerCount(KeyboardDidHide); n != 0 {
		t.Errorf("expected listener removed on close, got %d", n)
	}
	h.app.Close()
}

func TestApp_WindowSize(t *testing.T) {
	h := newAppHarness(t)
	h.update(tea.WindowSizeMsg{Width: 60, Height: 20})
	h.press(keyEnter)

	for _, line := range strings.Split(h.app.View(), "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line wider than terminal (%d): %q", w, line)
		}
	}
}

func TestApp_FooterHelp(t *testing.T) {
	h := newAppHarness(t)
	if !strings.Contains(h.app.View(), "quit") {
		t.Error("expected quit hint on Home")
	}
	h.press(keyEnter)
	if !strings.Contains(h.app.View(), "back") {
		t.Error("expected back hint on Profile")
	}
	h.press(keyRunes("e"))
	if !strings.Contains(h.app.View(), "done") {
		t.Error("expected done hint while editing")
	}
}

func TestApp_PortraitReloadWithoutPath(t *testing.T) {
	h := newAppHarness(t)
	if cmd := h.update(PortraitChangedMsg{}); cmd != nil {
		t.Error("expected no rewatch without a watcher")
	}
}

// gatedStore holds every Set until release is closed.
type gatedStore struct {
	*kvstore.Memory
	started chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Memory:  kvstore.NewMemory(),
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, key, value string) error {
	s.started <- struct{}{}
	<-s.release
	return s.Memory.Set(ctx, key, value)
}

func newGatedApp(t *testing.T, store kvstore.Store) *appHarness {
	t.Helper()
	app, err := NewApp(Deps{
		Config:   config.DefaultConfig(),
		Weather:  &fakeWeather{temp: 15.3},
		Store:    store,
		Opener:   &fakeOpener{},
		Portrait: portrait.New(portrait.Default(16, 24, "DK")),
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	h := &appHarness{app: app}
	h.settle(app.Init())
	h.press(keyEnter)
	h.press(keyRunes("e"))
	return h
}

func TestApp_CloseWaitsForPendingSave(t *testing.T) {
	store := newGatedStore()
	h := newGatedApp(t, store)

	save := h.update(keyRunes("x"))
	if save == nil {
		t.Fatal("expected a save command for the edit")
	}
	go runCmd(save)
	<-store.started

	closed := make(chan struct{})
	go func() {
		h.app.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a save was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the save finished")
	}

	v, ok, err := store.Get(context.Background(), InputValueKey)
	if err != nil || !ok {
		t.Fatalf("expected saved text, got ok=%v err=%v", ok, err)
	}
	if !strings.HasSuffix(v, "x") {
		t.Errorf("expected the typed character saved, got %q", v)
	}
}

func TestApp_CloseGivesUpOnStuckSave(t *testing.T) {
	old := writeDrainTimeout
	writeDrainTimeout = 20 * time.Millisecond
	t.Cleanup(func() { writeDrainTimeout = old })

	store := newGatedStore()
	t.Cleanup(func() { close(store.release) })
	h := newGatedApp(t, store)

	go runCmd(h.update(keyRunes("x")))
	<-store.started

	start := time.Now()
	h.app.Close()
	if d := time.Since(start); d > time.Second {
		t.Errorf("Close blocked for %v", d)
	}
}

func TestWriteGroup_NilWaitReturns(t *testing.T) {
	var g *WriteGroup
	g.add()
	g.done()
	if !g.Wait(time.Millisecond) {
		t.Error("nil group has nothing pending")
	}
}
