// Package hotkey isolates the global toggle key behind a small capability
// interface so the overlay can be driven without an OS hook in tests.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/five82/vsmbar/internal/view"
)

// Combo names a key combination.
type Combo string

// ToggleCombo is the single, fixed combination that shows or hides the
// overlay.
const ToggleCombo Combo = "ctrl+space"

var (
	// ErrUnsupported is returned when this build has no OS hotkey hook.
	ErrUnsupported = errors.New("global hotkey not supported by this build")
	// ErrUnknownCombo is returned for combinations the hook cannot express.
	ErrUnknownCombo = errors.New("unknown key combination")
)

// Handle is a registered combination.
type Handle interface {
	// Activated delivers one value per key press.
	Activated() <-chan struct{}
	Unregister() error
}

// Registrar registers global key combinations.
type Registrar interface {
	Register(combo Combo) (Handle, error)
}

// Unsupported is the Registrar for builds without an OS hook.
type Unsupported struct{}

func (Unsupported) Register(Combo) (Handle, error) { return nil, ErrUnsupported }

// Bind registers combo and calls onActivate for every press until ctx is
// done or the returned stop function is called. A registration error is
// returned as-is; callers log it and keep running.
func Bind(ctx context.Context, reg Registrar, combo Combo, onActivate func()) (func(), error) {
	if reg == nil {
		return func() {}, ErrUnsupported
	}
	h, err := reg.Register(combo)
	if err != nil {
		return func() {}, fmt.Errorf("register %s: %w", combo, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-h.Activated():
				if !ok {
					return
				}
				onActivate()
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-done
			_ = h.Unregister()
		})
	}
	return stop, nil
}

// Field is the input that receives focus when the overlay is shown.
type Field int

const (
	FieldNone Field = iota
	FieldDirectory
	FieldQuery
)

func (f Field) String() string {
	switch f {
	case FieldDirectory:
		return "directory"
	case FieldQuery:
		return "query"
	default:
		return "none"
	}
}

// FocusFor maps the active base screen to the field that takes focus.
func FocusFor(base view.Screen) Field {
	switch base {
	case view.ScreenCorpus:
		return FieldDirectory
	case view.ScreenQuery:
		return FieldQuery
	default:
		return FieldNone
	}
}

// Toggle tracks overlay visibility. It reads the base screen but never
// changes view state. Safe for concurrent use.
type Toggle struct {
	mu      sync.Mutex
	visible bool
}

// NewToggle returns a Toggle with the given initial visibility.
func NewToggle(visible bool) *Toggle {
	return &Toggle{visible: visible}
}

// Activation is the outcome of one toggle.
type Activation struct {
	Visible bool
	Focus   Field
}

// Activate flips visibility. When the overlay becomes visible, Focus names
// the field of the active base screen.
func (t *Toggle) Activate(base view.Screen) Activation {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = !t.visible
	if !t.visible {
		return Activation{}
	}
	return Activation{Visible: true, Focus: FocusFor(base)}
}

// Visible reports the current visibility.
func (t *Toggle) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}
