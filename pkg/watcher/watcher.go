// Package watcher reports changes to a single file, such as the configured
// portrait image. It listens for fsnotify events on the file's directory and
// falls back to polling when fsnotify is unavailable or ZTP_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/ztprofile/pkg/debug"
)

// DefaultPollInterval is how often the file is stat'ed in polling mode.
const DefaultPollInterval = 2 * time.Second

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// fileState is what polling compares between ticks.
type fileState struct {
	exists bool
	mtime  time.Time
	size   int64
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, nil
		}
		return fileState{}, err
	}
	return fileState{exists: true, mtime: info.ModTime(), size: info.Size()}, nil
}

func (s fileState) differs(o fileState) bool {
	return s.exists != o.exists || !s.mtime.Equal(o.mtime) || s.size != o.size
}

// Watcher signals on Changed after the watched file is written, created or
// replaced. Bursts of events are coalesced by a Debouncer.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool

	debouncer *Debouncer
	changed   chan struct{}

	mu      sync.Mutex
	running bool
	polling bool
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
	last    fileState
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		changed:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching until ctx is done or Stop is called. A file that
// does not exist yet is fine; its creation counts as a change.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrAlreadyStarted
	}

	state, err := statFile(w.path)
	if err != nil {
		return err
	}
	w.last = state

	ctx, w.cancel = context.WithCancel(ctx)
	w.polling = true
	if !w.forcePoll && !envBool("ZTP_FORCE_POLL") {
		if fsw, err := fsnotify.NewWatcher(); err != nil {
			debug.Log("watcher: fsnotify unavailable, polling %s: %v", w.path, err)
		} else if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			// Directory watches survive editors that save by rename.
			debug.Log("watcher: cannot watch %s, polling: %v", filepath.Dir(w.path), err)
			fsw.Close()
		} else {
			w.fsw = fsw
			w.polling = false
		}
	}

	w.running = true
	go w.loop(ctx, w.fsw, w.polling)
	return nil
}

// Stop ends watching. Changed is left open so a reader blocked on it stays
// blocked instead of seeing spurious changes.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.cancel()
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
	w.running = false
}

// Running reports whether Start has been called without a matching Stop.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Polling reports whether the watcher fell back to stat polling.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Changed receives once per debounced burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration {
	return w.pollInterval
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, polling bool) {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		tick   <-chan time.Time
	)
	if fsw != nil {
		events, errs = fsw.Events, fsw.Errors
	}
	if polling {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				debug.Warn("watched file %s was removed", w.path)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.notify)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			debug.Warn("watcher: %v", err)

		case <-tick:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	state, err := statFile(w.path)
	if err != nil {
		debug.Warn("watcher: %v", err)
		return
	}

	w.mu.Lock()
	prev := w.last
	w.last = state
	w.mu.Unlock()

	switch {
	case !state.differs(prev):
	case prev.exists && !state.exists:
		debug.Warn("watched file %s was removed", w.path)
	default:
		w.debouncer.Trigger(w.notify)
	}
}

func (w *Watcher) notify() {
	if !w.Running() {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
