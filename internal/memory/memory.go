// Package memory implements the CPU and PPU address spaces.
package memory

import (
	"github.com/Virtual-Viking/NesCaster/internal/cartridge"
)

// PPUInterface is the register window the PPU exposes at $2000-$2007.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the register window the APU exposes at $4000-$4017.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the controller port window at $4016/$4017.
type InputInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the cartridge side of both buses. MirrorMode is
// queried per nametable access because several mappers switch it at
// runtime.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	MirrorMode() cartridge.MirrorMode
}

// Memory is the CPU-visible address space: 2KB work RAM with mirrors,
// the PPU and APU register windows, controller ports and cartridge space.
type Memory struct {
	ram [0x800]uint8

	ppu   PPUInterface
	apu   APUInterface
	input InputInterface
	cart  CartridgeInterface

	// $4014 writes suspend the CPU for a DMA transfer, which the bus
	// coordinates.
	dmaCallback func(uint8)

	// Last value driven on the bus, returned for unmapped reads.
	openBus uint8
}

// New creates the CPU address space.
func New(ppu PPUInterface, apu APUInterface, cart CartridgeInterface) *Memory {
	m := &Memory{
		ppu:  ppu,
		apu:  apu,
		cart: cart,
	}
	m.InitPowerUpRAM()
	return m
}

// SetInputSystem attaches the controller ports.
func (m *Memory) SetInputSystem(input InputInterface) {
	m.input = input
}

// SetDMACallback registers the bus hook for $4014 writes.
func (m *Memory) SetDMACallback(callback func(uint8)) {
	m.dmaCallback = callback
}

// InitPowerUpRAM fills work RAM with the fixed power-on pattern.
// Real hardware comes up with semi-random contents; a deterministic
// pattern keeps runs reproducible while still exercising code that
// assumes RAM is not all zeros.
func (m *Memory) InitPowerUpRAM() {
	for i := range m.ram {
		if i&4 == 0 {
			m.ram[i] = 0x00
		} else {
			m.ram[i] = 0xFF
		}
	}
	m.openBus = 0
}

// Read reads a byte from the CPU address space.
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		// PPU registers, mirrored every 8 bytes.
		value = m.ppu.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch {
		case address == 0x4015:
			value = m.apu.ReadStatus()
		case address == 0x4016 || address == 0x4017:
			if m.input != nil {
				value = m.input.Read(address)
			}
		default:
			// Write-only registers read back as open bus.
			value = m.openBus
		}

	case address < 0x6000:
		// Expansion area, unmapped on the boards we support.
		value = m.openBus

	default:
		if m.cart != nil {
			value = m.cart.ReadPRG(address)
		} else {
			value = m.openBus
		}
	}

	m.openBus = value
	return value
}

// Write writes a byte to the CPU address space.
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4014:
			if m.dmaCallback != nil {
				m.dmaCallback(value)
			}
		case address == 0x4016:
			if m.input != nil {
				m.input.Write(address, value)
			}
		case address <= 0x4013 || address == 0x4015 || address == 0x4017:
			m.apu.WriteRegister(address, value)
		}
		// Test mode registers $4018-$401F are ignored.

	case address < 0x6000:
		// Unmapped expansion area.

	default:
		if m.cart != nil {
			m.cart.WritePRG(address, value)
		}
	}
}

// RAMStateSize is the work RAM contribution to a snapshot plus the open
// bus latch.
const RAMStateSize = 0x800 + 1

// SaveState serializes work RAM and the open bus latch.
func (m *Memory) SaveState(data []byte) {
	copy(data, m.ram[:])
	data[0x800] = m.openBus
}

// LoadState restores work RAM and the open bus latch.
func (m *Memory) LoadState(data []byte) {
	copy(m.ram[:], data[:0x800])
	m.openBus = data[0x800]
}

// PPUMemory is the PPU address space: pattern tables from the cartridge,
// nametable VRAM with mirroring, and palette RAM.
type PPUMemory struct {
	vram       [0x1000]uint8 // 4KB, four-screen boards use all of it
	paletteRAM [32]uint8
	cart       CartridgeInterface
}

// NewPPUMemory creates the PPU address space.
func NewPPUMemory(cart CartridgeInterface) *PPUMemory {
	pm := &PPUMemory{cart: cart}
	pm.InitPowerUp()
	return pm
}

// InitPowerUp resets VRAM and sets the backdrop entries to black.
func (pm *PPUMemory) InitPowerUp() {
	pm.vram = [0x1000]uint8{}
	pm.paletteRAM = [32]uint8{}
	for i := 0; i < 32; i += 4 {
		pm.paletteRAM[i] = 0x0F
	}
}

// Read reads from PPU memory space ($0000-$3FFF).
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cart.ReadCHR(address)
	case address < 0x3000:
		return pm.vram[pm.nametableIndex(address)]
	case address < 0x3F00:
		return pm.vram[pm.nametableIndex(address-0x1000)]
	default:
		return pm.readPalette(address)
	}
}

// Write writes to PPU memory space ($0000-$3FFF).
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cart.WriteCHR(address, value)
	case address < 0x3000:
		pm.vram[pm.nametableIndex(address)] = value
	case address < 0x3F00:
		pm.vram[pm.nametableIndex(address-0x1000)] = value
	default:
		pm.writePalette(address, value)
	}
}

// nametableIndex resolves a nametable address to a VRAM offset under the
// cartridge's current mirroring.
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nametable := (address >> 10) & 3
	offset := address & 0x3FF

	switch pm.cart.MirrorMode() {
	case cartridge.MirrorHorizontal:
		if nametable >= 2 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorVertical:
		if nametable == 1 || nametable == 3 {
			return 0x400 + offset
		}
		return offset
	case cartridge.MirrorSingleScreen0:
		return offset
	case cartridge.MirrorSingleScreen1:
		return 0x400 + offset
	case cartridge.MirrorFourScreen:
		return nametable*0x400 + offset
	default:
		return offset
	}
}

// paletteIndex folds the $3F10/$3F14/$3F18/$3F1C backdrop mirrors onto
// their background entries.
func paletteIndex(address uint16) uint16 {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return index
}

func (pm *PPUMemory) readPalette(address uint16) uint8 {
	return pm.paletteRAM[paletteIndex(address)]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	pm.paletteRAM[paletteIndex(address)] = value
}

// PPUMemoryStateSize is the VRAM plus palette contribution to a snapshot.
const PPUMemoryStateSize = 0x1000 + 32

// SaveState serializes VRAM and palette RAM.
func (pm *PPUMemory) SaveState(data []byte) {
	copy(data, pm.vram[:])
	copy(data[0x1000:], pm.paletteRAM[:])
}

// LoadState restores VRAM and palette RAM.
func (pm *PPUMemory) LoadState(data []byte) {
	copy(pm.vram[:], data[:0x1000])
	copy(pm.paletteRAM[:], data[0x1000:0x1000+32])
}
