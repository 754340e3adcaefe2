package input

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	jsEventSize = 8

	// js_event types, init flag masked off.
	jsEventButton = 0x01
	jsEventAxis   = 0x02

	// Half axis range. Dpad-on-axis trips at half deflection, same as
	// the usual SDL behaviour.
	axisMax       = 32767
	dpadDeadpoint = axisMax / 2
)

// DeviceGlob matches Linux joystick device nodes.
const DeviceGlob = "/dev/input/js*"

// Joystick owns one open controller device node for the lifetime of a
// mapping session.
type Joystick struct {
	path     string
	name     string
	guid     string
	fd       int
	buttons  map[int]int16
	axes     map[int]int16
	btnmap   map[int]Button
	axmap    map[int]Button
	fallback bool
	// dpadAxes derives the dpad from signed deflection of the first
	// two axes. Set when there is no DB match at all and when the
	// matched entry binds the dpad to a hat or axis, neither of which
	// survives into btnmap.
	dpadAxes bool
}

func getJSMetadata(path string) (string, int, int, int) {
	base := filepath.Base(path)
	sysdir := filepath.Join("/sys/class/input", base, "device")
	readHex := func(fname string) int {
		b, err := os.ReadFile(filepath.Join(sysdir, fname))
		if err != nil {
			return 0
		}
		v, _ := strconv.ParseInt(strings.TrimSpace(string(b)), 16, 32)
		return int(v)
	}
	name := stringMust(os.ReadFile(filepath.Join(sysdir, "name")))

	vid := readHex("id/vendor")
	pid := readHex("id/product")
	ver := readHex("id/version")
	return name, vid, pid, ver
}

func stringMust(b []byte, _ error) string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// ListDevices returns the joystick device paths currently present,
// filtered by name substrings when filter is non-empty.
func ListDevices(filter []string) []string {
	paths, _ := filepath.Glob(DeviceGlob)
	sort.Strings(paths)
	if len(filter) == 0 {
		return paths
	}
	var out []string
	for _, path := range paths {
		name, _, _, _ := getJSMetadata(path)
		lower := strings.ToLower(name)
		for _, f := range filter {
			if strings.Contains(lower, strings.ToLower(strings.TrimSpace(f))) {
				out = append(out, path)
				break
			}
		}
	}
	return out
}

// OpenFirst opens the first available joystick device. filter narrows
// candidates by device name substring.
func OpenFirst(filter []string) (*Joystick, error) {
	paths := ListDevices(filter)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no controller device found under %s", DeviceGlob)
	}
	return Open(paths[0])
}

// Open opens one joystick device node and resolves its logical layout
// from the embedded SDL DB, falling back to positional numbering.
func Open(path string) (*Joystick, error) {
	name, vid, pid, ver := getJSMetadata(path)
	guid := makeGUID(vid, pid, ver)

	var (
		btnmap   map[int]Button
		axmap    map[int]Button
		fallback bool
	)
	if guid != "" {
		if mapping, _ := chooseMapping(loadSDLDB(), guid); mapping != nil {
			btnmap, axmap = invertMapping(mapping)
		}
	}
	if btnmap == nil {
		btnmap, axmap = fallbackButtons, fallbackAxes
		fallback = true
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Joystick{
		path:     path,
		name:     name,
		guid:     guid,
		fd:       fd,
		buttons:  make(map[int]int16),
		axes:     make(map[int]int16),
		btnmap:   btnmap,
		axmap:    axmap,
		fallback: fallback,
		dpadAxes: fallback || !hasDpadButtons(btnmap),
	}, nil
}

// Name returns the device name from sysfs, or the node path when the
// name is unavailable.
func (j *Joystick) Name() string {
	if j.name != "" {
		return j.name
	}
	return j.path
}

// Close releases the device node.
func (j *Joystick) Close() error {
	if j.fd < 0 {
		return nil
	}
	err := unix.Close(j.fd)
	j.fd = -1
	return err
}

// drain consumes every queued js_event into the raw state maps. The
// kernel emits synthetic init events on open, so the first drain after
// Open yields the pad's full current state.
func (j *Joystick) drain() error {
	if j.fd < 0 {
		return fmt.Errorf("device %s is closed", j.path)
	}
	buf := make([]byte, jsEventSize)
	for {
		n, err := unix.Read(j.fd, buf)
		if err == unix.EAGAIN {
			return nil // queue empty
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", j.path, err)
		}
		if n < jsEventSize {
			return nil
		}
		val := int16(uint16(buf[4]) | uint16(buf[5])<<8)
		etype := buf[6] & 0x7F
		num := int(buf[7])

		switch etype {
		case jsEventButton:
			j.buttons[num] = val
		case jsEventAxis:
			j.axes[num] = val
		}
	}
}

// triggerMagnitude converts a raw trigger axis value to 0.0 - 1.0.
// DB-mapped trigger axes rest at -32767 and saturate at +32767.
func triggerMagnitude(v int16) float64 {
	m := (float64(v) + axisMax) / (2 * axisMax)
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// absMagnitude is the fallback normalization. Without a DB entry the
// resting point is unknown, so only deflection from center counts.
func absMagnitude(v int16) float64 {
	m := float64(v) / axisMax
	if m < 0 {
		m = -m
	}
	if m > 1 {
		return 1
	}
	return m
}

// Sample drains pending events and returns the logical state of every
// vocabulary button. A read failure (device unplugged, node gone) is
// returned to the caller, which decides when failures mean disconnect.
func (j *Joystick) Sample() (Snapshot, error) {
	if err := j.drain(); err != nil {
		return Snapshot{}, err
	}
	if _, err := os.Stat(j.path); os.IsNotExist(err) {
		return Snapshot{}, fmt.Errorf("device %s vanished", j.path)
	}
	return j.snapshot(), nil
}

// snapshot derives the logical state from the raw button and axis
// maps.
func (j *Joystick) snapshot() Snapshot {
	snap := NewSnapshot()
	for num, logical := range j.btnmap {
		if v, ok := j.buttons[num]; ok && v != 0 {
			snap.Pressed[logical] = true
		}
	}
	for num, logical := range j.axmap {
		v, ok := j.axes[num]
		if !ok {
			continue // no init event seen for this axis yet
		}
		var mag float64
		if j.fallback {
			mag = absMagnitude(v)
		} else {
			mag = triggerMagnitude(v)
		}
		if mag > snap.Triggers[logical] {
			snap.Triggers[logical] = mag
		}
	}
	if j.dpadAxes {
		// Dpad rides signed deflection of the first two axes.
		if v := j.axes[0]; v > dpadDeadpoint {
			snap.Pressed[ButtonDpadRight] = true
		} else if v < -dpadDeadpoint {
			snap.Pressed[ButtonDpadLeft] = true
		}
		if v := j.axes[1]; v > dpadDeadpoint {
			snap.Pressed[ButtonDpadDown] = true
		} else if v < -dpadDeadpoint {
			snap.Pressed[ButtonDpadUp] = true
		}
	}
	return snap
}
