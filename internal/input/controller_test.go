package input

import "testing"

// readAll strobes the controller and shifts out all eight button bits.
func readAll(c *Controller) uint8 {
	c.Write(1)
	c.Write(0)
	var mask uint8
	for i := 0; i < 8; i++ {
		mask |= c.Read() << i
	}
	return mask
}

func TestSerialReadout(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.SetButton(ButtonRight, true)

	want := uint8(ButtonA | ButtonStart | ButtonRight)
	if got := readAll(c); got != want {
		t.Errorf("readout = %08b, want %08b", got, want)
	}
}

func TestSetMask(t *testing.T) {
	c := New()
	c.SetMask(0xA5)
	if got := readAll(c); got != 0xA5 {
		t.Errorf("readout = %02X, want A5", got)
	}
	if !c.IsPressed(ButtonA) || c.IsPressed(ButtonB) {
		t.Error("IsPressed disagrees with mask")
	}
}

func TestReadsPastEightBitsReturnOne(t *testing.T) {
	// After the shift register drains a stock pad holds D0 high, and
	// some titles detect the end of the readout by that level.
	c := New()
	c.SetMask(0x00)
	c.Write(1)
	c.Write(0)
	for i := 0; i < 8; i++ {
		if got := c.Read(); got != 0 {
			t.Fatalf("bit %d = %d, want 0", i, got)
		}
	}
	for i := 0; i < 4; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("read %d past end = %d, want 1", i, got)
		}
	}
}

func TestStrobeHighReturnsLiveA(t *testing.T) {
	c := New()
	c.Write(1)
	c.SetButton(ButtonA, true)
	c.Write(1)
	if got := c.Read(); got != 1 {
		t.Errorf("strobed read = %d, want 1", got)
	}
}

func TestStrobeDropLatchesButtons(t *testing.T) {
	c := New()
	c.SetButton(ButtonB, true)
	c.Write(1)
	c.Write(0)
	// Changing buttons mid-readout must not affect the latched sequence.
	c.SetButton(ButtonB, false)
	c.Read() // A
	if got := c.Read(); got != 1 {
		t.Errorf("latched B bit = %d, want 1", got)
	}
}

func TestPortRegisters(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonA, true)

	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	if got := is.Read(0x4016); got != 1 {
		t.Errorf("$4016 = %02X, want 01", got)
	}
	// Port 2 carries the open bus bit.
	if got := is.Read(0x4017); got != 0x41 {
		t.Errorf("$4017 = %02X, want 41", got)
	}
}

func TestControllerStateRoundTrip(t *testing.T) {
	c := New()
	c.SetMask(0x0F)
	c.Write(1)
	c.Write(0)
	c.Read()
	c.Read()

	state := make([]byte, ControllerStateSize)
	c.SaveState(state)

	c.Reset()
	c.LoadState(state)

	// The next six reads must continue exactly where the save left off.
	want := []uint8{1, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Errorf("read %d after restore = %d, want %d", i, got, w)
		}
	}
}
