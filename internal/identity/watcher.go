package identity

import "sync"

// Watcher is the auth-state notification channel. It fires once for the
// initial resolution and then once per real sign-in or sign-out; repeating the
// same user is not a transition. Subscribers that arrive after resolution are
// told the current state straight away.
type Watcher struct {
	mu        sync.Mutex
	current   *User
	resolved  bool
	nextId    int
	listeners map[int]Listener
}

func NewWatcher() *Watcher {
	return &Watcher{
		listeners: make(map[int]Listener),
	}
}

func (w *Watcher) Current() *User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyUser(w.current)
}

func (w *Watcher) Resolved() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resolved
}

func (w *Watcher) Subscribe(listener Listener) func() {
	w.mu.Lock()
	id := w.nextId
	w.nextId++
	w.listeners[id] = listener
	resolved := w.resolved
	current := copyUser(w.current)
	w.mu.Unlock()
	if resolved {
		listener(current)
	}
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// Publish records user as the current identity and notifies listeners when
// this is the first resolution or the user actually changed. It reports
// whether listeners were notified.
func (w *Watcher) Publish(user *User) bool {
	w.mu.Lock()
	if w.resolved && sameUser(w.current, user) {
		w.current = copyUser(user)
		w.mu.Unlock()
		return false
	}
	w.resolved = true
	w.current = copyUser(user)
	listeners := make([]Listener, 0, len(w.listeners))
	for _, listener := range w.listeners {
		listeners = append(listeners, listener)
	}
	w.mu.Unlock()
	for _, listener := range listeners {
		listener(copyUser(user))
	}
	return true
}
