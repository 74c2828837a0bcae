package hotkey

import "sync"

// Fake is an in-memory Registrar. Press simulates the OS delivering a key
// press to every live registration.
type Fake struct {
	mu      sync.Mutex
	Err     error
	handles []*fakeHandle
	combos  []Combo
}

func (f *Fake) Register(combo Combo) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.combos = append(f.combos, combo)
	if f.Err != nil {
		return nil, f.Err
	}
	h := &fakeHandle{ch: make(chan struct{}, 8)}
	f.handles = append(f.handles, h)
	return h, nil
}

// Press delivers one activation. It reports whether any handle received it.
func (f *Fake) Press() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	delivered := false
	for _, h := range f.handles {
		if h.deliver() {
			delivered = true
		}
	}
	return delivered
}

// Combos returns every combination Register was called with.
func (f *Fake) Combos() []Combo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Combo(nil), f.combos...)
}

// Live returns the number of registered, not yet unregistered, handles.
func (f *Fake) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.handles {
		if !h.isClosed() {
			n++
		}
	}
	return n
}

type fakeHandle struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func (h *fakeHandle) Activated() <-chan struct{} { return h.ch }

func (h *fakeHandle) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		close(h.ch)
	}
	return nil
}

func (h *fakeHandle) deliver() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	select {
	case h.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
