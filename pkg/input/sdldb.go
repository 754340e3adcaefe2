package input

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/synrais/PadMap-GO/pkg/assets"
)

// -------- SDL DB parsing ----------

func le16(x int) int {
	return ((x & 0xFF) << 8) | ((x >> 8) & 0xFF)
}

func makeGUID(vid, pid, version int) string {
	if vid == 0 || pid == 0 {
		return ""
	}
	return fmt.Sprintf("03000000%04x0000%04x0000%04x0000",
		le16(vid), le16(pid), le16(version))
}

type mappingEntry struct {
	guid     string
	name     string
	platform string
	mapping  map[string]string
}

func parseMappingLine(line string) *mappingEntry {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return nil
	}
	guid := strings.ToLower(parts[0])
	name := parts[1]
	items := parts[2:]
	mapping := map[string]string{}
	var platform string
	for _, item := range items {
		if !strings.Contains(item, ":") {
			continue
		}
		kv := strings.SplitN(item, ":", 2)
		k, v := kv[0], kv[1]
		if k == "platform" {
			platform = v
		} else {
			mapping[k] = v
		}
	}
	return &mappingEntry{guid: guid, name: name, platform: platform, mapping: mapping}
}

// loadSDLDB parses the embedded game controller DB.
func loadSDLDB() []*mappingEntry {
	var entries []*mappingEntry
	scanner := bufio.NewScanner(strings.NewReader(assets.GameControllerDB))
	for scanner.Scan() {
		if e := parseMappingLine(scanner.Text()); e != nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func chooseMapping(entries []*mappingEntry, guid string) (map[string]string, string) {
	for _, e := range entries {
		if e.guid == strings.ToLower(guid) && e.platform == "Linux" {
			return e.mapping, e.name
		}
	}
	return nil, ""
}

// invertMapping turns SDL element bindings into raw-number lookups for
// the logical vocabulary. btnmap holds bN (button) bindings; axmap
// holds aN (axis) bindings for the analog triggers only. Dpad axis and
// hat bindings are not representable here: a dpad axis is signed (one
// axis carries two directions) and hats do not appear in the js button
// or axis numbering, so any pad without dpad button bindings gets the
// signed dpad-on-axes treatment in Sample instead.
func invertMapping(mapping map[string]string) (map[int]Button, map[int]Button) {
	btnmap := map[int]Button{}
	axmap := map[int]Button{}
	for element, raw := range mapping {
		logical, ok := sdlToButton[element]
		if !ok {
			continue
		}
		if strings.HasPrefix(raw, "b") {
			if n, err := strconv.Atoi(raw[1:]); err == nil {
				btnmap[n] = logical
			}
			continue
		}
		if logical != ButtonLeftTrigger && logical != ButtonRightTrigger {
			continue
		}
		if strings.HasPrefix(raw, "a") || strings.HasPrefix(raw, "+a") || strings.HasPrefix(raw, "-a") {
			nstr := strings.TrimLeft(raw, "+a-")
			if n, err := strconv.Atoi(nstr); err == nil {
				axmap[n] = logical
			}
		}
	}
	return btnmap, axmap
}

// hasDpadButtons reports whether any dpad direction resolved to a real
// button binding.
func hasDpadButtons(btnmap map[int]Button) bool {
	for _, b := range btnmap {
		switch b {
		case ButtonDpadUp, ButtonDpadDown, ButtonDpadLeft, ButtonDpadRight:
			return true
		}
	}
	return false
}

// Positional fallback for pads without a DB entry. Matches the most
// common Linux joystick numbering.
var fallbackButtons = map[int]Button{
	0: ButtonA,
	1: ButtonB,
	2: ButtonX,
	3: ButtonY,
	4: ButtonLeftTrigger,
	5: ButtonRightTrigger,
	6: ButtonSelect,
	7: ButtonStart,
	8: ButtonLeftStick,
	9: ButtonRightStick,
}

var fallbackAxes = map[int]Button{
	2: ButtonLeftTrigger,
	3: ButtonRightTrigger,
}
