package ui

// KeyboardEvent is a change in the on-screen input state.
type KeyboardEvent int

const (
	// KeyboardDidShow fires when a text input takes the key stream.
	KeyboardDidShow KeyboardEvent = iota
	// KeyboardDidHide fires when the user dismisses input (esc while editing).
	KeyboardDidHide
)

func (e KeyboardEvent) String() string {
	switch e {
	case KeyboardDidShow:
		return "keyboardDidShow"
	case KeyboardDidHide:
		return "keyboardDidHide"
	default:
		return "unknown"
	}
}

type keyboardListener struct {
	id    int
	event KeyboardEvent
	fn    func()
}

// Keyboard dispatches keyboard events to registered listeners in
// registration order. It is only touched from the Bubble Tea update loop and
// therefore has no locking.
type Keyboard struct {
	nextID    int
	listeners []keyboardListener
}

// NewKeyboard creates an empty event hub.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// AddListener registers fn for event. The returned subscription removes it.
func (k *Keyboard) AddListener(event KeyboardEvent, fn func()) *Subscription {
	k.nextID++
	id := k.nextID
	k.listeners = append(k.listeners, keyboardListener{id: id, event: event, fn: fn})
	return &Subscription{remove: func() { k.remove(id) }}
}

// Emit calls every listener registered for event.
func (k *Keyboard) Emit(event KeyboardEvent) {
	// Copy so a listener may unsubscribe while we iterate.
	ls := append([]keyboardListener(nil), k.listeners...)
	for _, l := range ls {
		if l.event == event {
			l.fn()
		}
	}
}

// ListenerCount returns the number of listeners registered for event.
func (k *Keyboard) ListenerCount(event KeyboardEvent) int {
	n := 0
	for _, l := range k.listeners {
		if l.event == event {
			n++
		}
	}
	return n
}

func (k *Keyboard) remove(id int) {
	for i, l := range k.listeners {
		if l.id == id {
			k.listeners = append(k.listeners[:i], k.listeners[i+1:]...)
			return
		}
	}
}

// Subscription is a registered keyboard listener.
type Subscription struct {
	remove  func()
	removed bool
}

// Remove unregisters the listener. Calling it again, or on a nil
// subscription, does nothing.
func (s *Subscription) Remove() {
	if s == nil || s.removed {
		return
	}
	s.removed = true
	s.remove()
}

// Active reports whether the listener is still registered.
func (s *Subscription) Active() bool {
	return s != nil && !s.removed
}
