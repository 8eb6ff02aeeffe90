// Package ppu implements the 2C02 picture processor.
package ppu

import (
	"encoding/binary"

	"github.com/Virtual-Viking/NesCaster/internal/memory"
)

const (
	// FrameWidth and FrameHeight are the full rendered frame dimensions.
	FrameWidth  = 256
	FrameHeight = 240

	cyclesPerScanline = 341
	scanlinesPerFrame = 262

	preRenderScanline = 261
	vblankScanline    = 241

	statusVBlank         = 0x80
	statusSprite0Hit     = 0x40
	statusSpriteOverflow = 0x20
)

// PPU runs one dot per Step. Scanlines 0-239 are visible, 240 is idle,
// 241-260 are vertical blank and 261 is the pre-render line.
type PPU struct {
	// CPU-visible registers
	ppuCtrl   uint8 // $2000
	ppuMask   uint8 // $2001
	ppuStatus uint8 // $2002
	oamAddr   uint8 // $2003

	// Internal scroll state: current address, temporary address, fine X
	// and the shared first/second write latch.
	v uint16
	t uint16
	x uint8
	w bool

	readBuffer uint8
	openBus    uint8

	mem *memory.PPUMemory

	scanline   int
	cycle      int
	frameCount uint64
	oddFrame   bool

	// Background fetch pipeline. tileData holds two tiles of 4-bit
	// pixels, the upper 32 bits being the tile currently shifting out.
	nametableByte uint8
	attributeByte uint8
	lowTileByte   uint8
	highTileByte  uint8
	tileData      uint64

	oam [256]uint8

	// Sprites fetched for the current scanline. Patterns are 8 pixels
	// of 4 bits each, palette bits included.
	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]uint8
	spritePriorities [8]uint8
	spriteIndexes    [8]uint8

	frameBuffer []byte // RGBA, FrameWidth*FrameHeight*4

	nmiCallback      func()
	frameCallback    func()
	scanlineCallback func()
}

// New creates a powered-off PPU. Attach memory with SetMemory before
// stepping.
func New() *PPU {
	p := &PPU{
		frameBuffer: make([]byte, FrameWidth*FrameHeight*4),
	}
	p.Reset()
	return p
}

// Reset returns the PPU to its power-up state. The frame buffer is
// cleared to opaque black.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.openBus = 0

	p.scanline = preRenderScanline
	p.cycle = 0
	p.frameCount = 0
	p.oddFrame = false

	p.nametableByte = 0
	p.attributeByte = 0
	p.lowTileByte = 0
	p.highTileByte = 0
	p.tileData = 0
	p.spriteCount = 0

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := 0; i < len(p.frameBuffer); i += 4 {
		p.frameBuffer[i] = 0
		p.frameBuffer[i+1] = 0
		p.frameBuffer[i+2] = 0
		p.frameBuffer[i+3] = 0xFF
	}
}

// SetMemory attaches the PPU address space.
func (p *PPU) SetMemory(mem *memory.PPUMemory) {
	p.mem = mem
}

// SetNMICallback registers the function invoked when an NMI should be
// raised on the CPU.
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetFrameCallback registers the function invoked once per frame when
// the visible picture is complete, at the start of vertical blank.
func (p *PPU) SetFrameCallback(callback func()) {
	p.frameCallback = callback
}

// SetScanlineCallback registers the function invoked at dot 260 of each
// rendered scanline while rendering is enabled. Mappers counting
// scanlines for IRQs hook this.
func (p *PPU) SetScanlineCallback(callback func()) {
	p.scanlineCallback = callback
}

// FrameBuffer returns the RGBA frame buffer. The slice is reused across
// frames.
func (p *PPU) FrameBuffer() []byte {
	return p.frameBuffer
}

// FrameCount returns the number of completed frames.
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Scanline returns the current scanline for test inspection.
func (p *PPU) Scanline() int {
	return p.scanline
}

// Cycle returns the current dot within the scanline.
func (p *PPU) Cycle() int {
	return p.cycle
}

// VBlank reports whether the vertical blank flag is set.
func (p *PPU) VBlank() bool {
	return p.ppuStatus&statusVBlank != 0
}

func (p *PPU) renderingEnabled() bool {
	return p.ppuMask&0x18 != 0
}

// ReadRegister handles CPU reads of $2000-$2007. Write-only registers
// return the open bus value.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0x2002:
		// Reading status clears the vblank flag and the write latch.
		status := (p.ppuStatus & 0xE0) | (p.openBus & 0x1F)
		p.ppuStatus &^= statusVBlank
		p.w = false
		p.openBus = status
		return status
	case 0x2004:
		value := p.oam[p.oamAddr]
		p.openBus = value
		return value
	case 0x2007:
		value := p.readData()
		p.openBus = value
		return value
	default:
		return p.openBus
	}
}

// WriteRegister handles CPU writes to $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value
	switch address {
	case 0x2000:
		wasEnabled := p.ppuCtrl&0x80 != 0
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value)&0x03)<<10
		// Enabling NMI while the vblank flag is already set raises one
		// immediately.
		if !wasEnabled && value&0x80 != 0 && p.ppuStatus&statusVBlank != 0 {
			if p.nmiCallback != nil {
				p.nmiCallback()
			}
		}
	case 0x2001:
		p.ppuMask = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		if !p.w {
			p.t = (p.t & 0xFFE0) | uint16(value)>>3
			p.x = value & 0x07
			p.w = true
		} else {
			p.t = (p.t & 0x8FFF) | (uint16(value)&0x07)<<12
			p.t = (p.t & 0xFC1F) | (uint16(value)&0xF8)<<2
			p.w = false
		}
	case 0x2006:
		if !p.w {
			p.t = (p.t & 0x80FF) | (uint16(value)&0x3F)<<8
			p.w = true
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
			p.w = false
		}
	case 0x2007:
		p.writeData(value)
	}
}

// WriteOAM stores one byte of sprite memory. OAM DMA goes through here.
func (p *PPU) WriteOAM(address, value uint8) {
	p.oam[address] = value
}

func (p *PPU) addressIncrement() uint16 {
	if p.ppuCtrl&0x04 != 0 {
		return 32
	}
	return 1
}

// readData implements the buffered $2007 read. Palette reads bypass the
// buffer but still refresh it from the nametable underneath.
func (p *PPU) readData() uint8 {
	address := p.v & 0x3FFF
	var value uint8
	if address >= 0x3F00 {
		value = p.mem.Read(address)
		p.readBuffer = p.mem.Read(address & 0x2FFF)
	} else {
		value = p.readBuffer
		p.readBuffer = p.mem.Read(address)
	}
	p.v = (p.v + p.addressIncrement()) & 0x7FFF
	return value
}

func (p *PPU) writeData(value uint8) {
	p.mem.Write(p.v&0x3FFF, value)
	p.v = (p.v + p.addressIncrement()) & 0x7FFF
}

// tick advances the dot counter, handling the odd-frame shortened
// pre-render line.
func (p *PPU) tick() {
	if p.renderingEnabled() && p.oddFrame &&
		p.scanline == preRenderScanline && p.cycle == 339 {
		p.cycle = 0
		p.scanline = 0
		p.oddFrame = !p.oddFrame
		return
	}

	p.cycle++
	if p.cycle >= cyclesPerScanline {
		p.cycle = 0
		p.scanline++
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
		}
	}
}

// Step advances the PPU one dot.
func (p *PPU) Step() {
	p.tick()

	rendering := p.renderingEnabled()
	preLine := p.scanline == preRenderScanline
	visibleLine := p.scanline < FrameHeight
	renderLine := preLine || visibleLine
	prefetchCycle := p.cycle >= 321 && p.cycle <= 336
	visibleCycle := p.cycle >= 1 && p.cycle <= 256
	fetchCycle := prefetchCycle || visibleCycle

	if rendering {
		if visibleLine && visibleCycle {
			p.renderPixel()
		}
		if renderLine && fetchCycle {
			p.tileData <<= 4
			switch p.cycle % 8 {
			case 1:
				p.fetchNametableByte()
			case 3:
				p.fetchAttributeByte()
			case 5:
				p.fetchLowTileByte()
			case 7:
				p.fetchHighTileByte()
			case 0:
				p.storeTileData()
			}
		}
		if preLine && p.cycle >= 280 && p.cycle <= 304 {
			p.copyY()
		}
		if renderLine {
			if fetchCycle && p.cycle%8 == 0 {
				p.incrementX()
			}
			if p.cycle == 256 {
				p.incrementY()
			}
			if p.cycle == 257 {
				p.copyX()
			}
		}
		if p.cycle == 257 {
			if visibleLine {
				p.evaluateSprites()
			} else {
				p.spriteCount = 0
			}
		}
		if renderLine && p.cycle == 260 && p.scanlineCallback != nil {
			p.scanlineCallback()
		}
	}

	if p.scanline == vblankScanline && p.cycle == 1 {
		p.ppuStatus |= statusVBlank
		p.frameCount++
		if p.frameCallback != nil {
			p.frameCallback()
		}
		if p.ppuCtrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if preLine && p.cycle == 1 {
		p.ppuStatus &^= statusVBlank | statusSprite0Hit | statusSpriteOverflow
	}
}

func (p *PPU) fetchNametableByte() {
	p.nametableByte = p.mem.Read(0x2000 | (p.v & 0x0FFF))
}

func (p *PPU) fetchAttributeByte() {
	v := p.v
	address := 0x23C0 | (v & 0x0C00) | ((v >> 4) & 0x38) | ((v >> 2) & 0x07)
	shift := ((v >> 4) & 4) | (v & 2)
	p.attributeByte = ((p.mem.Read(address) >> shift) & 3) << 2
}

func (p *PPU) backgroundPatternAddress() uint16 {
	fineY := (p.v >> 12) & 7
	table := uint16(p.ppuCtrl&0x10) << 8
	return table + uint16(p.nametableByte)*16 + fineY
}

func (p *PPU) fetchLowTileByte() {
	p.lowTileByte = p.mem.Read(p.backgroundPatternAddress())
}

func (p *PPU) fetchHighTileByte() {
	p.highTileByte = p.mem.Read(p.backgroundPatternAddress() + 8)
}

// storeTileData expands the fetched tile row into eight 4-bit pixels
// and appends them to the shift pipeline.
func (p *PPU) storeTileData() {
	var data uint32
	for i := 0; i < 8; i++ {
		a := p.attributeByte
		p1 := (p.lowTileByte & 0x80) >> 7
		p2 := (p.highTileByte & 0x80) >> 6
		p.lowTileByte <<= 1
		p.highTileByte <<= 1
		data = data<<4 | uint32(a|p1|p2)
	}
	p.tileData |= uint64(data)
}

func (p *PPU) backgroundPixel() uint8 {
	if p.ppuMask&0x08 == 0 {
		return 0
	}
	data := uint32(p.tileData>>32) >> ((7 - p.x) * 4)
	return uint8(data & 0x0F)
}

// spritePixel returns the first opaque sprite pixel at the current dot
// along with its index into the per-scanline sprite arrays.
func (p *PPU) spritePixel() (int, uint8) {
	if p.ppuMask&0x10 == 0 {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := (p.cycle - 1) - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		offset = 7 - offset
		color := uint8((p.spritePatterns[i] >> uint(offset*4)) & 0x0F)
		if color%4 == 0 {
			continue
		}
		return i, color
	}
	return 0, 0
}

func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline

	background := p.backgroundPixel()
	i, sprite := p.spritePixel()

	// Left-edge clipping per PPUMASK bits 1 and 2.
	if x < 8 && p.ppuMask&0x02 == 0 {
		background = 0
	}
	if x < 8 && p.ppuMask&0x04 == 0 {
		sprite = 0
	}

	b := background%4 != 0
	s := sprite%4 != 0

	var color uint8
	switch {
	case !b && !s:
		color = 0
	case !b && s:
		color = sprite | 0x10
	case b && !s:
		color = background
	default:
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.ppuStatus |= statusSprite0Hit
		}
		if p.spritePriorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = background
		}
	}

	index := p.mem.Read(0x3F00 + uint16(color))
	if p.ppuMask&0x01 != 0 {
		index &= 0x30
	}
	rgb := Palette[index&0x3F]

	offset := (y*FrameWidth + x) * 4
	p.frameBuffer[offset] = uint8(rgb >> 16)
	p.frameBuffer[offset+1] = uint8(rgb >> 8)
	p.frameBuffer[offset+2] = uint8(rgb)
	p.frameBuffer[offset+3] = 0xFF
}

func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&0x20 != 0 {
		return 16
	}
	return 8
}

// evaluateSprites scans OAM for sprites landing on the next scanline
// and precomputes their pattern rows. Hardware caps the line at eight
// sprites and flags the overflow.
func (p *PPU) evaluateSprites() {
	h := p.spriteHeight()
	count := 0
	for i := 0; i < 64; i++ {
		y := p.oam[i*4]
		a := p.oam[i*4+2]
		x := p.oam[i*4+3]
		row := p.scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if count < 8 {
			p.spritePatterns[count] = p.fetchSpritePattern(i, row)
			p.spritePositions[count] = x
			p.spritePriorities[count] = (a >> 5) & 1
			p.spriteIndexes[count] = uint8(i)
		}
		count++
	}
	if count > 8 {
		count = 8
		p.ppuStatus |= statusSpriteOverflow
	}
	p.spriteCount = count
}

// fetchSpritePattern reads one row of a sprite's tile, applying flips
// and 8x16 addressing, and packs it into 4-bit pixels with the palette
// bits folded in.
func (p *PPU) fetchSpritePattern(i, row int) uint32 {
	tile := p.oam[i*4+1]
	attributes := p.oam[i*4+2]

	var address uint16
	if p.ppuCtrl&0x20 == 0 {
		if attributes&0x80 != 0 {
			row = 7 - row
		}
		table := uint16(p.ppuCtrl&0x08) << 9
		address = table + uint16(tile)*16 + uint16(row)
	} else {
		if attributes&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile & 1)
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		address = table*0x1000 + uint16(tile)*16 + uint16(row)
	}

	a := (attributes & 3) << 2
	lowTileByte := p.mem.Read(address)
	highTileByte := p.mem.Read(address + 8)

	var data uint32
	for j := 0; j < 8; j++ {
		var p1, p2 uint8
		if attributes&0x40 != 0 {
			p1 = lowTileByte & 1
			p2 = (highTileByte & 1) << 1
			lowTileByte >>= 1
			highTileByte >>= 1
		} else {
			p1 = (lowTileByte & 0x80) >> 7
			p2 = (highTileByte & 0x80) >> 6
			lowTileByte <<= 1
			highTileByte <<= 1
		}
		data = data<<4 | uint32(a|p1|p2)
	}
	return data
}

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := (p.v & 0x03E0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v &^ 0x03E0) | (y << 5)
	}
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// StateSize is the PPU's contribution to a snapshot. The frame buffer
// is presentation output and is not serialized.
const StateSize = 37 + 256 + 57

// SaveState serializes registers, scroll state, timing, the fetch
// pipeline, OAM and the current scanline's sprite set.
func (p *PPU) SaveState(data []byte) {
	data[0] = p.ppuCtrl
	data[1] = p.ppuMask
	data[2] = p.ppuStatus
	data[3] = p.oamAddr
	data[4] = p.readBuffer
	data[5] = p.openBus
	binary.LittleEndian.PutUint16(data[6:], p.v)
	binary.LittleEndian.PutUint16(data[8:], p.t)
	data[10] = p.x
	data[11] = boolByte(p.w)
	binary.LittleEndian.PutUint16(data[12:], uint16(p.scanline))
	binary.LittleEndian.PutUint16(data[14:], uint16(p.cycle))
	binary.LittleEndian.PutUint64(data[16:], p.frameCount)
	data[24] = boolByte(p.oddFrame)
	data[25] = p.nametableByte
	data[26] = p.attributeByte
	data[27] = p.lowTileByte
	data[28] = p.highTileByte
	binary.LittleEndian.PutUint64(data[29:], p.tileData)
	copy(data[37:], p.oam[:])

	offset := 37 + 256
	data[offset] = uint8(p.spriteCount)
	offset++
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(data[offset:], p.spritePatterns[i])
		offset += 4
	}
	copy(data[offset:], p.spritePositions[:])
	offset += 8
	copy(data[offset:], p.spritePriorities[:])
	offset += 8
	copy(data[offset:], p.spriteIndexes[:])
}

// LoadState restores state previously produced by SaveState.
func (p *PPU) LoadState(data []byte) {
	p.ppuCtrl = data[0]
	p.ppuMask = data[1]
	p.ppuStatus = data[2]
	p.oamAddr = data[3]
	p.readBuffer = data[4]
	p.openBus = data[5]
	p.v = binary.LittleEndian.Uint16(data[6:])
	p.t = binary.LittleEndian.Uint16(data[8:])
	p.x = data[10]
	p.w = data[11] != 0
	p.scanline = int(int16(binary.LittleEndian.Uint16(data[12:])))
	p.cycle = int(int16(binary.LittleEndian.Uint16(data[14:])))
	p.frameCount = binary.LittleEndian.Uint64(data[16:])
	p.oddFrame = data[24] != 0
	p.nametableByte = data[25]
	p.attributeByte = data[26]
	p.lowTileByte = data[27]
	p.highTileByte = data[28]
	p.tileData = binary.LittleEndian.Uint64(data[29:])
	copy(p.oam[:], data[37:37+256])

	offset := 37 + 256
	p.spriteCount = int(data[offset])
	offset++
	for i := 0; i < 8; i++ {
		p.spritePatterns[i] = binary.LittleEndian.Uint32(data[offset:])
		offset += 4
	}
	copy(p.spritePositions[:], data[offset:offset+8])
	offset += 8
	copy(p.spritePriorities[:], data[offset:offset+8])
	offset += 8
	copy(p.spriteIndexes[:], data[offset:offset+8])
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
