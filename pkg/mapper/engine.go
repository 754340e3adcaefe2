package mapper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/synrais/PadMap-GO/pkg/config"
	"github.com/synrais/PadMap-GO/pkg/input"
)

// ErrDisconnected is returned by Run when the controller stops
// answering reads. The supervisor treats this as a normal session end.
var ErrDisconnected = errors.New("controller disconnected")

// maxReadFailures is how many consecutive sample failures are tolerated
// before the device is judged disconnected.
const maxReadFailures = 5

// Device is the controller side of the engine. *input.Joystick
// satisfies it; tests supply fakes.
type Device interface {
	Sample() (input.Snapshot, error)
	Name() string
	Close() error
}

// Keyboard is the output side of the engine. *input.VirtualKeyboard
// satisfies it.
type Keyboard interface {
	KeyDown(code int) error
	KeyUp(code int) error
	Close() error
}

// Engine translates controller state into key events at a fixed rate.
type Engine struct {
	dev       Device
	kb        Keyboard
	log       *log.Logger
	interval  time.Duration
	threshold float64

	codes map[input.Button]int // mapped buttons only
	held  map[input.Button]bool
	prev  map[input.Button]bool
}

// New resolves the configured mapping into uinput codes. The config
// must already be validated; an unresolvable key here is still treated
// as a configuration error.
func New(cfg *config.UserConfig, dev Device, kb Keyboard, logger *log.Logger) (*Engine, error) {
	codes := make(map[input.Button]int, len(cfg.Mapping))
	for name, key := range cfg.Mapping {
		button, ok := input.ButtonFromName(name)
		if !ok {
			continue
		}
		code, ok := input.KeyCode(key)
		if !ok {
			return nil, fmt.Errorf("unknown key %q mapped to button %s", key, name)
		}
		codes[button] = code
	}

	return &Engine{
		dev:       dev,
		kb:        kb,
		log:       logger,
		interval:  time.Second / time.Duration(cfg.PadMap.PollingRate),
		threshold: cfg.PadMap.TriggerThreshold,
		codes:     codes,
		held:      make(map[input.Button]bool),
		prev:      make(map[input.Button]bool, len(input.AllButtons)),
	}, nil
}

// pressed applies the trigger threshold to one logical button. A
// magnitude exactly at the threshold counts as pressed.
func (e *Engine) pressed(snap input.Snapshot, b input.Button) bool {
	if snap.Pressed[b] {
		return true
	}
	if mag, ok := snap.Triggers[b]; ok && mag >= e.threshold {
		return true
	}
	return false
}

// Run samples the controller until the context is cancelled or the
// device disconnects. Every key held down when Run returns has been
// released.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Printf("mapping %s at %d Hz", e.dev.Name(), int(time.Second/e.interval))

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	failures := 0

	for {
		select {
		case <-ctx.Done():
			e.releaseAll()
			e.log.Printf("stopped")
			return nil
		case <-ticker.C:
		}

		snap, err := e.dev.Sample()
		if err != nil {
			failures++
			if failures < maxReadFailures {
				continue
			}
			e.log.Printf("device gone after %d failed reads: %v", failures, err)
			e.releaseAll()
			return ErrDisconnected
		}
		failures = 0

		e.apply(snap)
	}
}

// apply runs edge detection for one sample over the whole vocabulary.
// Unmapped buttons are tracked too so a changed mapping picks up
// mid-session state correctly.
func (e *Engine) apply(snap input.Snapshot) {
	for _, b := range input.AllButtons {
		cur := e.pressed(snap, b)
		if cur == e.prev[b] {
			continue
		}
		e.prev[b] = cur

		code, mapped := e.codes[b]
		if !mapped {
			continue
		}
		if cur {
			if err := e.kb.KeyDown(code); err != nil {
				e.log.Printf("key down failed for %s: %v", b, err)
				continue
			}
			e.held[b] = true
		} else {
			if err := e.kb.KeyUp(code); err != nil {
				e.log.Printf("key up failed for %s: %v", b, err)
				continue
			}
			delete(e.held, b)
		}
	}
}

// releaseAll sends key-up for every key still logically held. Nothing
// stays pressed past engine exit.
func (e *Engine) releaseAll() {
	for b := range e.held {
		if err := e.kb.KeyUp(e.codes[b]); err != nil {
			e.log.Printf("release of %s failed: %v", b, err)
		}
		delete(e.held, b)
	}
}
