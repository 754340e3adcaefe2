package input

// Button is a logical controller input, independent of any particular
// pad's physical numbering.
type Button string

const (
	ButtonA            Button = "A"
	ButtonB            Button = "B"
	ButtonX            Button = "X"
	ButtonY            Button = "Y"
	ButtonStart        Button = "START"
	ButtonSelect       Button = "SELECT"
	ButtonDpadUp       Button = "DPAD_UP"
	ButtonDpadDown     Button = "DPAD_DOWN"
	ButtonDpadLeft     Button = "DPAD_LEFT"
	ButtonDpadRight    Button = "DPAD_RIGHT"
	ButtonLeftTrigger  Button = "LEFT_TRIGGER"
	ButtonRightTrigger Button = "RIGHT_TRIGGER"
	ButtonLeftStick    Button = "LEFT_STICK"
	ButtonRightStick   Button = "RIGHT_STICK"
)

// AllButtons lists the full logical vocabulary in a stable order.
var AllButtons = []Button{
	ButtonA, ButtonB, ButtonX, ButtonY,
	ButtonStart, ButtonSelect,
	ButtonDpadUp, ButtonDpadDown, ButtonDpadLeft, ButtonDpadRight,
	ButtonLeftTrigger, ButtonRightTrigger,
	ButtonLeftStick, ButtonRightStick,
}

// ButtonFromName returns the Button for a config-file name.
func ButtonFromName(name string) (Button, bool) {
	for _, b := range AllButtons {
		if string(b) == name {
			return b, true
		}
	}
	return "", false
}

// sdlToButton translates SDL gamecontrollerdb element names to the
// logical vocabulary.
var sdlToButton = map[string]Button{
	"a":            ButtonA,
	"b":            ButtonB,
	"x":            ButtonX,
	"y":            ButtonY,
	"start":        ButtonStart,
	"back":         ButtonSelect,
	"dpup":         ButtonDpadUp,
	"dpdown":       ButtonDpadDown,
	"dpleft":       ButtonDpadLeft,
	"dpright":      ButtonDpadRight,
	"lefttrigger":  ButtonLeftTrigger,
	"righttrigger": ButtonRightTrigger,
	"leftstick":    ButtonLeftStick,
	"rightstick":   ButtonRightStick,
}

// Snapshot is one logical reading of a controller. Pressed carries the
// digital state of every resolved button; Triggers carries the analog
// magnitude (0.0 - 1.0) of axis-backed triggers, which only become
// pressed once the caller applies its threshold.
type Snapshot struct {
	Pressed  map[Button]bool
	Triggers map[Button]float64
}

// NewSnapshot returns an empty snapshot with all vocabulary buttons
// released.
func NewSnapshot() Snapshot {
	s := Snapshot{
		Pressed:  make(map[Button]bool, len(AllButtons)),
		Triggers: make(map[Button]float64, 2),
	}
	for _, b := range AllButtons {
		s.Pressed[b] = false
	}
	return s
}
