package ppu

import (
	"testing"

	"github.com/Virtual-Viking/NesCaster/internal/cartridge"
	"github.com/Virtual-Viking/NesCaster/internal/memory"
)

func newTestPPU() *PPU {
	cart := cartridge.NewTestCartridge()
	p := New()
	p.SetMemory(memory.NewPPUMemory(cart))
	return p
}

func stepDots(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

// stepToDot runs the PPU until it sits at the given scanline and cycle.
func stepToDot(p *PPU, scanline, cycle int) {
	for p.scanline != scanline || p.cycle != cycle {
		p.Step()
	}
}

func TestVBlankFlagTiming(t *testing.T) {
	p := newTestPPU()

	stepToDot(p, vblankScanline, 0)
	if p.VBlank() {
		t.Fatal("vblank set before scanline 241 dot 1")
	}
	p.Step()
	if !p.VBlank() {
		t.Fatal("vblank not set at scanline 241 dot 1")
	}
	if p.FrameCount() != 1 {
		t.Errorf("frame count = %d, want 1", p.FrameCount())
	}

	stepToDot(p, preRenderScanline, 1)
	if p.VBlank() {
		t.Error("vblank not cleared on the pre-render line")
	}
}

func TestNMIOnVBlankStart(t *testing.T) {
	p := newTestPPU()
	nmis := 0
	p.SetNMICallback(func() { nmis++ })

	p.WriteRegister(0x2000, 0x80)
	stepToDot(p, vblankScanline, 1)
	if nmis != 1 {
		t.Errorf("NMIs = %d, want 1", nmis)
	}
}

func TestNMIDisabledProducesNone(t *testing.T) {
	p := newTestPPU()
	nmis := 0
	p.SetNMICallback(func() { nmis++ })

	stepToDot(p, vblankScanline, 1)
	if nmis != 0 {
		t.Errorf("NMIs = %d, want 0", nmis)
	}
}

func TestEnablingNMIDuringVBlank(t *testing.T) {
	p := newTestPPU()
	nmis := 0
	p.SetNMICallback(func() { nmis++ })

	stepToDot(p, vblankScanline, 10)
	p.WriteRegister(0x2000, 0x80)
	if nmis != 1 {
		t.Errorf("NMIs = %d, want 1 on enable during vblank", nmis)
	}
}

func TestStatusReadClearsVBlankAndLatch(t *testing.T) {
	p := newTestPPU()
	stepToDot(p, vblankScanline, 1)

	p.WriteRegister(0x2005, 0x12) // first write sets the latch
	status := p.ReadRegister(0x2002)
	if status&statusVBlank == 0 {
		t.Error("status read should report vblank")
	}
	if p.VBlank() {
		t.Error("status read should clear vblank")
	}
	if p.w {
		t.Error("status read should reset the write latch")
	}
}

func TestScrollRegisterWrites(t *testing.T) {
	p := newTestPPU()

	p.WriteRegister(0x2005, 0x7D) // X = coarse 15, fine 5
	if p.t&0x001F != 15 || p.x != 5 {
		t.Errorf("after X write: t=$%04X x=%d", p.t, p.x)
	}
	p.WriteRegister(0x2005, 0x5E) // Y = coarse 11, fine 6
	if (p.t>>5)&0x1F != 11 || (p.t>>12)&0x07 != 6 {
		t.Errorf("after Y write: t=$%04X", p.t)
	}

	// Nametable select comes from PPUCTRL bits 0-1.
	p.WriteRegister(0x2000, 0x03)
	if (p.t>>10)&0x03 != 3 {
		t.Errorf("nametable bits = %d, want 3", (p.t>>10)&0x03)
	}
}

func TestAddressRegisterWrites(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Errorf("v = $%04X, want $2108", p.v)
	}
}

func TestDataReadBuffering(t *testing.T) {
	p := newTestPPU()

	// Write two bytes at $2100.
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0xAB)
	p.WriteRegister(0x2007, 0xCD)

	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x00)
	p.ReadRegister(0x2007) // priming read returns the stale buffer
	if got := p.ReadRegister(0x2007); got != 0xAB {
		t.Errorf("buffered read = $%02X, want $AB", got)
	}
	if got := p.ReadRegister(0x2007); got != 0xCD {
		t.Errorf("buffered read = $%02X, want $CD", got)
	}
}

func TestPaletteReadIsUnbuffered(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x01)
	p.WriteRegister(0x2007, 0x21)

	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x01)
	if got := p.ReadRegister(0x2007); got != 0x21 {
		t.Errorf("palette read = $%02X, want $21 without priming", got)
	}
}

func TestAddressIncrementMode(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x00)
	if p.v != 0x2001 {
		t.Errorf("v = $%04X, want $2001", p.v)
	}

	p.WriteRegister(0x2000, 0x04) // increment by 32
	p.WriteRegister(0x2007, 0x00)
	if p.v != 0x2021 {
		t.Errorf("v = $%04X, want $2021", p.v)
	}
}

func TestOAMAccess(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAA)
	p.WriteRegister(0x2004, 0xBB)

	p.WriteRegister(0x2003, 0x10)
	if got := p.ReadRegister(0x2004); got != 0xAA {
		t.Errorf("OAM[$10] = $%02X, want $AA", got)
	}
	if p.oam[0x11] != 0xBB {
		t.Errorf("OAM[$11] = $%02X, want $BB", p.oam[0x11])
	}

	p.WriteOAM(0x20, 0xCC)
	if p.oam[0x20] != 0xCC {
		t.Error("WriteOAM did not store")
	}
}

func TestSpriteEvaluation(t *testing.T) {
	p := newTestPPU()
	// Sprite 0 at y=10, x=20. Secondary set is built for the scanline
	// matching the sprite's top row.
	p.oam[0] = 10
	p.oam[1] = 0x01
	p.oam[2] = 0x00
	p.oam[3] = 20

	p.scanline = 10
	p.evaluateSprites()
	if p.spriteCount != 1 {
		t.Fatalf("sprite count = %d, want 1", p.spriteCount)
	}
	if p.spritePositions[0] != 20 || p.spriteIndexes[0] != 0 {
		t.Errorf("position=%d index=%d", p.spritePositions[0], p.spriteIndexes[0])
	}

	p.scanline = 18
	p.evaluateSprites()
	if p.spriteCount != 0 {
		t.Errorf("sprite count past height = %d, want 0", p.spriteCount)
	}
}

func TestSpriteOverflowFlag(t *testing.T) {
	p := newTestPPU()
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 50
		p.oam[i*4+3] = uint8(i * 8)
	}
	p.scanline = 50
	p.evaluateSprites()
	if p.spriteCount != 8 {
		t.Errorf("sprite count = %d, want 8", p.spriteCount)
	}
	if p.ppuStatus&statusSpriteOverflow == 0 {
		t.Error("overflow flag not set for 9 sprites on a line")
	}
}

func TestScanlineCallbackCount(t *testing.T) {
	p := newTestPPU()
	calls := 0
	p.SetScanlineCallback(func() { calls++ })

	p.WriteRegister(0x2001, 0x18)
	stepDots(p, cyclesPerScanline*scanlinesPerFrame)

	// 240 visible lines plus the pre-render line.
	if calls != 241 {
		t.Errorf("scanline callbacks = %d, want 241", calls)
	}
}

func TestOddFrameSkipsDot(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2001, 0x18)

	frameLength := func() int {
		start := p.FrameCount()
		dots := 0
		for p.FrameCount() == start {
			p.Step()
			dots++
		}
		return dots
	}

	frameLength() // align to a vblank boundary
	first := frameLength()
	second := frameLength()

	want := cyclesPerScanline * scanlinesPerFrame
	if first != want-1 {
		t.Errorf("odd frame = %d dots, want %d", first, want-1)
	}
	if second != want {
		t.Errorf("even frame = %d dots, want %d", second, want)
	}
}

func TestFrameCallbackFires(t *testing.T) {
	p := newTestPPU()
	frames := 0
	p.SetFrameCallback(func() { frames++ })
	stepDots(p, cyclesPerScanline*scanlinesPerFrame)
	if frames != 1 {
		t.Errorf("frame callbacks = %d, want 1", frames)
	}
}

func TestBackdropFillsFrameBuffer(t *testing.T) {
	p := newTestPPU()
	// Backdrop color $21, background enabled. The test cartridge CHR is
	// blank so every pixel resolves to the backdrop.
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x21)
	p.WriteRegister(0x2001, 0x0A) // background on, no left clip

	stepDots(p, cyclesPerScanline*scanlinesPerFrame)

	rgb := Palette[0x21]
	fb := p.FrameBuffer()
	offset := (120*FrameWidth + 100) * 4
	if fb[offset] != uint8(rgb>>16) || fb[offset+1] != uint8(rgb>>8) || fb[offset+2] != uint8(rgb) {
		t.Errorf("pixel = %02X%02X%02X, want %06X", fb[offset], fb[offset+1], fb[offset+2], rgb)
	}
	if fb[offset+3] != 0xFF {
		t.Error("alpha must be opaque")
	}
}

func TestStateRoundTrip(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2000, 0x90)
	p.WriteRegister(0x2001, 0x1E)
	p.WriteRegister(0x2005, 0x34)
	p.oam[5] = 0x77
	stepDots(p, 12345)

	state := make([]byte, StateSize)
	p.SaveState(state)

	q := newTestPPU()
	q.LoadState(state)

	if q.ppuCtrl != p.ppuCtrl || q.ppuMask != p.ppuMask || q.ppuStatus != p.ppuStatus {
		t.Error("registers differ after restore")
	}
	if q.v != p.v || q.t != p.t || q.x != p.x || q.w != p.w {
		t.Error("scroll state differs after restore")
	}
	if q.scanline != p.scanline || q.cycle != p.cycle || q.frameCount != p.frameCount {
		t.Error("timing differs after restore")
	}
	if q.oam[5] != 0x77 {
		t.Error("OAM differs after restore")
	}
}
