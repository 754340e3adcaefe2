package supervisor

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/synrais/PadMap-GO/pkg/input"
)

// PresenceProbe reports whether a controller is currently attached. It
// must be query-only and cheap enough to call every poll interval. A
// probe error is treated by the supervisor as "not present".
type PresenceProbe interface {
	Present() (bool, error)
}

// DeviceProbe checks for joystick device nodes, optionally filtered by
// device name substring.
type DeviceProbe struct {
	Filter []string
}

func (p *DeviceProbe) Present() (bool, error) {
	return len(input.ListDevices(p.Filter)) > 0, nil
}

// WatchHotplug signals on the returned channel whenever /dev/input
// changes, so the supervisor can react to connects and disconnects
// ahead of its next poll tick. Best effort: callers fall back to plain
// polling when the watcher cannot be set up.
func WatchHotplug(ctx context.Context, dir string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case out <- struct{}{}:
				default: // a nudge is already pending
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
