package input

import (
	"github.com/bendahl/uinput"
)

// keyMap is the key identifier vocabulary accepted in [mappings].
var keyMap = map[string]int{
	// Letters
	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,

	// Digits
	"0": uinput.Key0, "1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3,
	"4": uinput.Key4, "5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7,
	"8": uinput.Key8, "9": uinput.Key9,

	// Function keys
	"f1": uinput.KeyF1, "f2": uinput.KeyF2, "f3": uinput.KeyF3,
	"f4": uinput.KeyF4, "f5": uinput.KeyF5, "f6": uinput.KeyF6,
	"f7": uinput.KeyF7, "f8": uinput.KeyF8, "f9": uinput.KeyF9,
	"f10": uinput.KeyF10, "f11": uinput.KeyF11, "f12": uinput.KeyF12,

	// Whitespace and editing
	"space":     uinput.KeySpace,
	"enter":     uinput.KeyEnter,
	"return":    uinput.KeyEnter,
	"escape":    uinput.KeyEsc,
	"tab":       uinput.KeyTab,
	"backspace": uinput.KeyBackspace,
	"delete":    uinput.KeyDelete,
	"insert":    uinput.KeyInsert,

	// Navigation
	"home":      uinput.KeyHome,
	"end":       uinput.KeyEnd,
	"page_up":   uinput.KeyPageup,
	"page_down": uinput.KeyPagedown,
	"up":        uinput.KeyUp,
	"down":      uinput.KeyDown,
	"left":      uinput.KeyLeft,
	"right":     uinput.KeyRight,

	// Modifiers
	"ctrl":  uinput.KeyLeftctrl,
	"shift": uinput.KeyLeftshift,
	"alt":   uinput.KeyLeftalt,
	"meta":  uinput.KeyLeftmeta,
}

// KeyCode resolves a key identifier from the config file to its uinput
// code.
func KeyCode(name string) (int, bool) {
	code, ok := keyMap[name]
	return code, ok
}
