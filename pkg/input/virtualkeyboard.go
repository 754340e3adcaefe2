package input

import (
	"fmt"

	"github.com/bendahl/uinput"
)

const uinputDev = "/dev/uinput"

// VirtualKeyboard is the synthetic keyboard device key events are
// written to.
type VirtualKeyboard struct {
	Device uinput.Keyboard
}

// NewVirtualKeyboard creates the uinput keyboard device. It must be
// closed when the session ends.
func NewVirtualKeyboard() (*VirtualKeyboard, error) {
	vk, err := uinput.CreateKeyboard(uinputDev, []byte("padmap"))
	if err != nil {
		return nil, fmt.Errorf("failed to create keyboard device: %w", err)
	}
	return &VirtualKeyboard{Device: vk}, nil
}

// Close removes the virtual keyboard device.
func (k *VirtualKeyboard) Close() error {
	return k.Device.Close()
}

// KeyDown holds a key down until the matching KeyUp.
func (k *VirtualKeyboard) KeyDown(code int) error {
	return k.Device.KeyDown(code)
}

// KeyUp releases a key.
func (k *VirtualKeyboard) KeyUp(code int) error {
	return k.Device.KeyUp(code)
}
