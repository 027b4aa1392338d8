package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/kvstore"
	"github.com/vanderheijden86/ztprofile/pkg/portrait"
)

type fakeWeather struct {
	temp   float64
	err    error
	calls  int
	cities []string
}

func (f *fakeWeather) CurrentTemperature(ctx context.Context, city string) (float64, error) {
	f.calls++
	f.cities = append(f.cities, city)
	return f.temp, f.err
}

// failingStore fails whichever operations have an error set and otherwise
// behaves like an empty memory store.
type failingStore struct {
	getErr error
	setErr error
	mem    *kvstore.Memory
}

func newFailingStore(getErr, setErr error) *failingStore {
	return &failingStore{getErr: getErr, setErr: setErr, mem: kvstore.NewMemory()}
}

func (s *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.mem.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.mem.Set(ctx, key, value)
}

func (s *failingStore) Close() error { return s.mem.Close() }

type fakeOpener struct {
	err    error
	opened []string
}

func (o *fakeOpener) OpenURL(rawURL string) error {
	o.opened = append(o.opened, rawURL)
	return o.err
}

var errNetwork = errors.New("dial tcp: connection refused")

// runCmd executes cmd and any batched commands it yields, returning the
// non-nil messages in order.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// settle runs cmd and feeds the resulting messages back through update
// until no more commands are produced.
func settle(update func(tea.Msg) tea.Cmd, cmd tea.Cmd) {
	pending := runCmd(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = append(pending[1:], runCmd(update(msg))...)
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

type profileFixture struct {
	view     *ProfileView
	weather  *fakeWeather
	store    kvstore.Store
	keyboard *Keyboard
	opener   *fakeOpener
}

func newProfileFixture(t *testing.T, store kvstore.Store) *profileFixture {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemory()
	}
	f := &profileFixture{
		weather:  &fakeWeather{temp: 15.3},
		store:    store,
		keyboard: NewKeyboard(),
		opener:   &fakeOpener{},
	}
	f.view = NewProfileView(ProfileDeps{
		Config:   config.DefaultConfig(),
		Weather:  f.weather,
		Store:    f.store,
		Keyboard: f.keyboard,
		Opener:   f.opener,
		Portrait: portrait.New(portrait.Default(16, 16, "")),
		Theme:    TestTheme(),
	})
	return f
}

// mount mounts the view and delivers the results of its mount commands.
func (f *profileFixture) mount() {
	settle(f.view.Update, f.view.Mount(MountContext{ID: 1, Nav: navHandle{}}))
}

func (f *profileFixture) stored(t *testing.T) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), InputValueKey)
	if err != nil {
		t.Fatalf("store.Get failed: %v", err)
	}
	return v, ok
}
