package mapper

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synrais/PadMap-GO/pkg/config"
	"github.com/synrais/PadMap-GO/pkg/input"
)

// ---- fakes ----

type fakeKeyboard struct {
	mu     sync.Mutex
	events []string // "down:<code>" / "up:<code>"
}

func (k *fakeKeyboard) KeyDown(code int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = append(k.events, fmt.Sprintf("down:%d", code))
	return nil
}

func (k *fakeKeyboard) KeyUp(code int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = append(k.events, fmt.Sprintf("up:%d", code))
	return nil
}

func (k *fakeKeyboard) Close() error { return nil }

func (k *fakeKeyboard) recorded() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.events))
	copy(out, k.events)
	return out
}

type sampleResult struct {
	snap input.Snapshot
	err  error
}

// fakeDevice replays a script of samples, repeating the last entry
// once the script runs out.
type fakeDevice struct {
	mu      sync.Mutex
	script  []sampleResult
	pos     int
	drained func() // called once the script is exhausted
}

func (d *fakeDevice) Sample() (input.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pos >= len(d.script) {
		if d.drained != nil {
			d.drained()
			d.drained = nil
		}
		last := d.script[len(d.script)-1]
		return last.snap, last.err
	}
	r := d.script[d.pos]
	d.pos++
	return r.snap, r.err
}

func (d *fakeDevice) Name() string { return "fake pad" }
func (d *fakeDevice) Close() error { return nil }

// ---- helpers ----

func testConfig(mapping map[string]string) *config.UserConfig {
	return &config.UserConfig{
		PadMap: config.PadMapConfig{
			TriggerThreshold: 0.5,
			PollingRate:      1000, // fast ticks for tests
			AutoRestart:      true,
		},
		Mapping: mapping,
	}
}

func pressedSnap(buttons ...input.Button) input.Snapshot {
	s := input.NewSnapshot()
	for _, b := range buttons {
		s.Pressed[b] = true
	}
	return s
}

func triggerSnap(b input.Button, mag float64) input.Snapshot {
	s := input.NewSnapshot()
	s.Triggers[b] = mag
	return s
}

func newTestEngine(t *testing.T, mapping map[string]string, dev Device, kb Keyboard) *Engine {
	t.Helper()
	eng, err := New(testConfig(mapping), dev, kb, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return eng
}

func mustCode(t *testing.T, key string) int {
	t.Helper()
	code, ok := input.KeyCode(key)
	require.True(t, ok)
	return code
}

// ---- tests ----

func TestEdgeOnlyEmission(t *testing.T) {
	kb := &fakeKeyboard{}
	eng := newTestEngine(t, map[string]string{"A": "space"}, &fakeDevice{}, kb)
	space := mustCode(t, "space")

	// Held for three samples: one key-down, nothing more.
	for i := 0; i < 3; i++ {
		eng.apply(pressedSnap(input.ButtonA))
	}
	assert.Equal(t, []string{fmt.Sprintf("down:%d", space)}, kb.recorded())

	// Release: exactly one key-up.
	eng.apply(pressedSnap())
	assert.Equal(t, []string{
		fmt.Sprintf("down:%d", space),
		fmt.Sprintf("up:%d", space),
	}, kb.recorded())
}

func TestTriggerThresholdIsInclusive(t *testing.T) {
	kb := &fakeKeyboard{}
	eng := newTestEngine(t, map[string]string{"LEFT_TRIGGER": "ctrl"}, &fakeDevice{}, kb)
	ctrl := mustCode(t, "ctrl")

	// One step below threshold: nothing.
	eng.apply(triggerSnap(input.ButtonLeftTrigger, 0.4999))
	assert.Empty(t, kb.recorded())

	// Exactly at threshold: pressed.
	eng.apply(triggerSnap(input.ButtonLeftTrigger, 0.5))
	assert.Equal(t, []string{fmt.Sprintf("down:%d", ctrl)}, kb.recorded())

	// Jitter above threshold: no repeats.
	eng.apply(triggerSnap(input.ButtonLeftTrigger, 0.7))
	eng.apply(triggerSnap(input.ButtonLeftTrigger, 0.55))
	assert.Len(t, kb.recorded(), 1)

	// Below again: released.
	eng.apply(triggerSnap(input.ButtonLeftTrigger, 0.2))
	assert.Equal(t, fmt.Sprintf("up:%d", ctrl), kb.recorded()[1])
}

func TestUnmappedButtonsAreSilent(t *testing.T) {
	kb := &fakeKeyboard{}
	eng := newTestEngine(t, map[string]string{"A": "space"}, &fakeDevice{}, kb)

	eng.apply(pressedSnap(input.ButtonB, input.ButtonDpadUp))
	eng.apply(pressedSnap())
	assert.Empty(t, kb.recorded())

	// State was still tracked: B shows as a clean press edge later if
	// it gets pressed again.
	assert.False(t, eng.prev[input.ButtonB])
}

func TestDisconnectReleasesHeldKeys(t *testing.T) {
	kb := &fakeKeyboard{}
	snap := pressedSnap(input.ButtonA)
	snap.Triggers[input.ButtonLeftTrigger] = 0.9

	dev := &fakeDevice{script: []sampleResult{
		{snap: snap},
		{err: fmt.Errorf("read failed")}, // repeated forever
	}}
	eng := newTestEngine(t, map[string]string{"A": "space", "LEFT_TRIGGER": "ctrl"}, dev, kb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := eng.Run(ctx)
	require.ErrorIs(t, err, ErrDisconnected)

	events := kb.recorded()
	require.Len(t, events, 4)
	space := mustCode(t, "space")
	ctrl := mustCode(t, "ctrl")
	assert.ElementsMatch(t, []string{
		fmt.Sprintf("down:%d", space),
		fmt.Sprintf("down:%d", ctrl),
	}, events[:2])
	assert.ElementsMatch(t, []string{
		fmt.Sprintf("up:%d", space),
		fmt.Sprintf("up:%d", ctrl),
	}, events[2:])
}

func TestTransientReadErrorsAreTolerated(t *testing.T) {
	kb := &fakeKeyboard{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := &fakeDevice{
		script: []sampleResult{
			{err: fmt.Errorf("transient")},
			{err: fmt.Errorf("transient")},
			{err: fmt.Errorf("transient")},
			{snap: pressedSnap(input.ButtonA)},
		},
		drained: cancel, // stop once the press sample has been seen
	}
	eng := newTestEngine(t, map[string]string{"A": "space"}, dev, kb)

	err := eng.Run(ctx)
	require.NoError(t, err)

	// Fewer consecutive failures than the limit: session survives and
	// the press lands; cancellation then releases it.
	space := mustCode(t, "space")
	assert.Equal(t, []string{
		fmt.Sprintf("down:%d", space),
		fmt.Sprintf("up:%d", space),
	}, kb.recorded())
}

func TestCancelReleasesHeldKeys(t *testing.T) {
	kb := &fakeKeyboard{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := &fakeDevice{
		script:  []sampleResult{{snap: pressedSnap(input.ButtonA)}},
		drained: cancel,
	}
	eng := newTestEngine(t, map[string]string{"A": "space"}, dev, kb)

	require.NoError(t, eng.Run(ctx))

	space := mustCode(t, "space")
	events := kb.recorded()
	require.NotEmpty(t, events)
	assert.Equal(t, fmt.Sprintf("down:%d", space), events[0])
	assert.Equal(t, fmt.Sprintf("up:%d", space), events[len(events)-1])
}

func TestUnknownKeyInMappingFails(t *testing.T) {
	_, err := New(testConfig(map[string]string{"A": "warpdrive"}), &fakeDevice{}, &fakeKeyboard{}, log.New(io.Discard, "", 0))
	require.Error(t, err)
}
