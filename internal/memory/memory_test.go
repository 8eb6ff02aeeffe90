package memory

import (
	"testing"

	"github.com/Virtual-Viking/NesCaster/internal/cartridge"
)

// register-window stubs

type stubPPU struct {
	regs   [8]uint8
	reads  []uint16
	writes []uint16
}

func (p *stubPPU) ReadRegister(address uint16) uint8 {
	p.reads = append(p.reads, address)
	return p.regs[address&7]
}

func (p *stubPPU) WriteRegister(address uint16, value uint8) {
	p.writes = append(p.writes, address)
	p.regs[address&7] = value
}

type stubAPU struct {
	regs   map[uint16]uint8
	status uint8
}

func newStubAPU() *stubAPU { return &stubAPU{regs: map[uint16]uint8{}} }

func (a *stubAPU) WriteRegister(address uint16, value uint8) { a.regs[address] = value }

func (a *stubAPU) ReadStatus() uint8 { return a.status }

// stubCart lets tests flip mirroring without a real mapper.
type stubCart struct {
	mirror cartridge.MirrorMode
	chr    [0x2000]uint8
}

func (c *stubCart) ReadPRG(address uint16) uint8         { return uint8(address) }
func (c *stubCart) WritePRG(address uint16, value uint8) {}
func (c *stubCart) ReadCHR(address uint16) uint8         { return c.chr[address&0x1FFF] }
func (c *stubCart) WriteCHR(address uint16, value uint8) { c.chr[address&0x1FFF] = value }
func (c *stubCart) MirrorMode() cartridge.MirrorMode     { return c.mirror }

func newTestMemory() (*Memory, *stubPPU, *stubAPU) {
	ppu := &stubPPU{}
	apu := newStubAPU()
	return New(ppu, apu, cartridge.NewTestCartridge()), ppu, apu
}

func TestRAMMirroring(t *testing.T) {
	m, _, _ := newTestMemory()
	m.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := m.Read(mirror); got != 0x42 {
			t.Errorf("mirror $%04X = %02X, want 42", mirror, got)
		}
	}
	m.Write(0x1FFF, 0x24)
	if got := m.Read(0x07FF); got != 0x24 {
		t.Errorf("$07FF = %02X, want 24", got)
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	m, ppu, _ := newTestMemory()
	m.Write(0x2000, 0x80)
	m.Write(0x3FF8, 0x55) // mirrors $2000
	if ppu.regs[0] != 0x55 {
		t.Errorf("PPUCTRL through mirror = %02X, want 55", ppu.regs[0])
	}
	if len(ppu.writes) != 2 {
		t.Errorf("write count = %d, want 2", len(ppu.writes))
	}
	if ppu.writes[1] != 0x2000 {
		t.Errorf("mirrored write routed to $%04X, want $2000", ppu.writes[1])
	}
}

func TestAPURegisterRouting(t *testing.T) {
	m, _, apu := newTestMemory()
	m.Write(0x4000, 0x3F)
	m.Write(0x4015, 0x1F)
	m.Write(0x4017, 0x40)
	for _, addr := range []uint16{0x4000, 0x4015, 0x4017} {
		if _, ok := apu.regs[addr]; !ok {
			t.Errorf("write to $%04X not routed to APU", addr)
		}
	}

	apu.status = 0x15
	if got := m.Read(0x4015); got != 0x15 {
		t.Errorf("$4015 = %02X, want 15", got)
	}
}

func TestOpenBusRetainsLastRead(t *testing.T) {
	m, _, _ := newTestMemory()
	m.Write(0x0000, 0xAB)
	m.Read(0x0000)
	// $4020-$5FFF is unmapped, so it returns the lingering bus value.
	if got := m.Read(0x5000); got != 0xAB {
		t.Errorf("open bus = %02X, want AB", got)
	}
}

func TestDMACallback(t *testing.T) {
	m, _, _ := newTestMemory()
	var page uint8 = 0xFF
	m.SetDMACallback(func(p uint8) { page = p })
	m.Write(0x4014, 0x02)
	if page != 0x02 {
		t.Errorf("DMA page = %02X, want 02", page)
	}
}

func TestMemoryStateRoundTrip(t *testing.T) {
	m, _, _ := newTestMemory()
	m.Write(0x0123, 0x99)
	m.Read(0x0123)

	state := make([]byte, RAMStateSize)
	m.SaveState(state)

	m.Write(0x0123, 0x00)
	m.LoadState(state)
	if got := m.Read(0x0123); got != 0x99 {
		t.Errorf("RAM after restore = %02X, want 99", got)
	}
}

func TestNametableMirroringModes(t *testing.T) {
	tests := []struct {
		name   string
		mode   cartridge.MirrorMode
		write  uint16
		mirror uint16
	}{
		{"horizontal left pair", cartridge.MirrorHorizontal, 0x2000, 0x2400},
		{"horizontal right pair", cartridge.MirrorHorizontal, 0x2800, 0x2C00},
		{"vertical top pair", cartridge.MirrorVertical, 0x2000, 0x2800},
		{"vertical bottom pair", cartridge.MirrorVertical, 0x2400, 0x2C00},
		{"single screen 0", cartridge.MirrorSingleScreen0, 0x2000, 0x2C00},
		{"single screen 1", cartridge.MirrorSingleScreen1, 0x2400, 0x2800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := NewPPUMemory(&stubCart{mirror: tt.mode})
			pm.Write(tt.write, 0x66)
			if got := pm.Read(tt.mirror); got != 0x66 {
				t.Errorf("$%04X = %02X, want 66 (mirror of $%04X)", tt.mirror, got, tt.write)
			}
		})
	}
}

func TestFourScreenHasNoMirroring(t *testing.T) {
	pm := NewPPUMemory(&stubCart{mirror: cartridge.MirrorFourScreen})
	pm.Write(0x2000, 1)
	pm.Write(0x2400, 2)
	pm.Write(0x2800, 3)
	pm.Write(0x2C00, 4)
	for i, addr := range []uint16{0x2000, 0x2400, 0x2800, 0x2C00} {
		if got := pm.Read(addr); got != uint8(i+1) {
			t.Errorf("$%04X = %d, want %d", addr, got, i+1)
		}
	}
}

func TestNametableMirrorRange3000(t *testing.T) {
	pm := NewPPUMemory(&stubCart{mirror: cartridge.MirrorVertical})
	pm.Write(0x2005, 0x77)
	if got := pm.Read(0x3005); got != 0x77 {
		t.Errorf("$3005 = %02X, want 77", got)
	}
}

func TestPaletteBackdropMirrors(t *testing.T) {
	pm := NewPPUMemory(&stubCart{})
	pm.Write(0x3F10, 0x2A)
	if got := pm.Read(0x3F00); got != 0x2A {
		t.Errorf("$3F00 = %02X, want 2A ($3F10 mirrors it)", got)
	}
	pm.Write(0x3F04, 0x15)
	if got := pm.Read(0x3F14); got != 0x15 {
		t.Errorf("$3F14 = %02X, want 15", got)
	}
	// Whole palette repeats every 32 bytes up to $3FFF.
	pm.Write(0x3F01, 0x0C)
	if got := pm.Read(0x3F21); got != 0x0C {
		t.Errorf("$3F21 = %02X, want 0C", got)
	}
}

func TestPatternTableRoutedToCartridge(t *testing.T) {
	cart := &stubCart{}
	pm := NewPPUMemory(cart)
	pm.Write(0x1234, 0x5A)
	if cart.chr[0x1234] != 0x5A {
		t.Error("pattern table write not routed to CHR")
	}
	if got := pm.Read(0x1234); got != 0x5A {
		t.Errorf("pattern table read = %02X, want 5A", got)
	}
}
