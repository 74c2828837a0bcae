//go:build oshotkey && !darwin

package hotkey

import (
	"fmt"
	"sync"

	hk "golang.design/x/hotkey"
)

// Default returns the OS-level registrar.
func Default() Registrar { return osRegistrar{} }

type osRegistrar struct{}

func (osRegistrar) Register(combo Combo) (Handle, error) {
	if combo != ToggleCombo {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCombo, combo)
	}
	key := hk.New([]hk.Modifier{hk.ModCtrl}, hk.KeySpace)
	if err := key.Register(); err != nil {
		return nil, err
	}
	h := &osHandle{
		key:  key,
		out:  make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go h.forward()
	return h, nil
}

type osHandle struct {
	key  *hk.Hotkey
	out  chan struct{}
	done chan struct{}
	once sync.Once
}

func (h *osHandle) Activated() <-chan struct{} { return h.out }

func (h *osHandle) forward() {
	defer close(h.out)
	for {
		select {
		case <-h.done:
			return
		case <-h.key.Keydown():
			select {
			case h.out <- struct{}{}:
			default:
			}
		}
	}
}

func (h *osHandle) Unregister() error {
	var err error
	h.once.Do(func() {
		close(h.done)
		err = h.key.Unregister()
	})
	return err
}
