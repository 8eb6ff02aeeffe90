// Package input implements the NES controller serial protocol.
package input

// Button represents one pad button. The bit order matches the order the
// hardware shifts them out: A, B, Select, Start, Up, Down, Left, Right.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one controller port: a strobe latch and an 8-bit
// shift register read out one bit at a time.
type Controller struct {
	buttons uint8

	shiftRegister uint8
	strobe        bool

	// Button state captured when the strobe dropped.
	buttonSnapshot uint8

	// Which bit the next read returns. Reads past bit 7 return 0.
	bitPosition uint8
}

// New creates a controller.
func New() *Controller {
	return &Controller{}
}

// SetButton presses or releases a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetMask replaces the full button state with a bitmask in Button order.
func (c *Controller) SetMask(mask uint8) {
	c.buttons = mask
}

// Mask returns the current button bitmask.
func (c *Controller) Mask() uint8 {
	return c.buttons
}

// IsPressed reports whether a button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles $4016 writes. Bit 0 is the strobe: while high the shift
// register continuously reloads; dropping it latches the buttons for the
// following read sequence.
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	if c.strobe {
		c.buttonSnapshot = c.buttons
		c.shiftRegister = c.buttons
		c.bitPosition = 0
	} else if wasStrobe {
		c.buttonSnapshot = c.buttons
		c.shiftRegister = c.buttonSnapshot
		c.bitPosition = 0
	}
}

// Read shifts out the next button bit on data line D0.
func (c *Controller) Read() uint8 {
	if c.strobe {
		// While strobed, every read returns the live A button.
		c.bitPosition = 0
		return c.buttonSnapshot & 1
	}

	if c.bitPosition >= 8 {
		// Standard pads hold D0 high once all eight bits are consumed.
		c.bitPosition++
		return 1
	}

	bit := c.shiftRegister & 1
	c.shiftRegister >>= 1
	c.bitPosition++
	return bit
}

// Reset clears all port state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
	c.buttonSnapshot = 0
	c.bitPosition = 0
}

// ControllerStateSize is one port's contribution to a snapshot.
const ControllerStateSize = 5

// SaveState serializes the port state.
func (c *Controller) SaveState(data []byte) {
	data[0] = c.buttons
	data[1] = c.shiftRegister
	if c.strobe {
		data[2] = 1
	} else {
		data[2] = 0
	}
	data[3] = c.buttonSnapshot
	data[4] = c.bitPosition
}

// LoadState restores the port state.
func (c *Controller) LoadState(data []byte) {
	c.buttons = data[0]
	c.shiftRegister = data[1]
	c.strobe = data[2] != 0
	c.buttonSnapshot = data[3]
	c.bitPosition = data[4]
}

// InputState is the pair of controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates both ports.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset clears both ports.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// Read reads from the controller port registers.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		// Bit 6 reads back set on the second port, an open bus artifact.
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write writes to the controller port registers. The strobe line is
// shared by both ports.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}

// StateSize is both ports' contribution to a snapshot.
const StateSize = 2 * ControllerStateSize

// SaveState serializes both ports.
func (is *InputState) SaveState(data []byte) {
	is.Controller1.SaveState(data[:ControllerStateSize])
	is.Controller2.SaveState(data[ControllerStateSize:])
}

// LoadState restores both ports.
func (is *InputState) LoadState(data []byte) {
	is.Controller1.LoadState(data[:ControllerStateSize])
	is.Controller2.LoadState(data[ControllerStateSize:])
}
