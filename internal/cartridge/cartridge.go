// Package cartridge implements iNES ROM parsing and the mapper variants
// supported by the core.
package cartridge

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Typed load failures. Callers distinguish a malformed image from a ROM
// that is well formed but uses a mapper the core does not implement.
var (
	ErrInvalidROM        = errors.New("cartridge: not a valid iNES image")
	ErrUnsupportedMapper = errors.New("cartridge: unsupported mapper")
)

// MirrorMode represents nametable mirroring mode.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Mapper is the address-translation contract every cartridge variant
// implements. Bank-switch writes take effect immediately, before the
// next bus access. Mapper bank registers are part of machine state and
// travel with snapshots via StateSize/SaveState/LoadState.
type Mapper interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	Reset()
	StateSize() int
	SaveState(data []byte)
	LoadState(data []byte)
}

// scanlineMapper is implemented by mappers with a scanline-clocked IRQ
// counter (MMC3). The PPU ticks it once per rendered scanline.
type scanlineMapper interface {
	TickScanline()
	IRQPending() bool
	ClearIRQ()
}

// iNES header structure
type inesHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// Cartridge represents a parsed NES cartridge.
type Cartridge struct {
	prgROM []uint8
	chr    []uint8

	mapperID uint8
	mapper   Mapper
	scanline scanlineMapper // nil unless the mapper has a scanline IRQ

	mirror MirrorMode

	hasBattery bool
	sram       [0x2000]uint8

	hasCHRRAM bool

	name string
	crc  uint32
}

// Load parses a complete iNES image from memory.
func Load(data []byte, name string) (*Cartridge, error) {
	r := bytes.NewReader(data)

	var header inesHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, ErrInvalidROM
	}
	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrInvalidROM
	}
	if header.PRGROMSize == 0 {
		return nil, ErrInvalidROM
	}

	cart := &Cartridge{
		mapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		hasBattery: (header.Flags6 & 0x02) != 0,
		name:       name,
		crc:        crc32.ChecksumIEEE(data),
	}

	if (header.Flags6 & 0x08) != 0 {
		cart.mirror = MirrorFourScreen
	} else if (header.Flags6 & 0x01) != 0 {
		cart.mirror = MirrorVertical
	} else {
		cart.mirror = MirrorHorizontal
	}

	// Skip trainer if present
	if (header.Flags6 & 0x04) != 0 {
		if _, err := r.Seek(512, io.SeekCurrent); err != nil {
			return nil, ErrInvalidROM
		}
	}

	prgSize := int(header.PRGROMSize) * 16384
	cart.prgROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, ErrInvalidROM
	}

	chrSize := int(header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.chr = make([]uint8, chrSize)
		if _, err := io.ReadFull(r, cart.chr); err != nil {
			return nil, ErrInvalidROM
		}
	} else {
		// No CHR ROM declared: the board carries 8KB of CHR RAM.
		cart.chr = make([]uint8, 8192)
		cart.hasCHRRAM = true
	}

	mapper, err := createMapper(cart.mapperID, cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper
	if sm, ok := mapper.(scanlineMapper); ok {
		cart.scanline = sm
	}

	return cart, nil
}

// LoadFromFile loads a cartridge from an iNES file on disk.
func LoadFromFile(filename string) (*Cartridge, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Load(data, filename)
}

// createMapper selects the mapper variant once at load time. Unknown ids
// are rejected here so execution never discovers an unmapped bank lazily.
func createMapper(id uint8, cart *Cartridge) (Mapper, error) {
	switch id {
	case 0:
		return NewMapper000(cart), nil
	case 1:
		return NewMapper001(cart), nil
	case 2:
		return NewMapper002(cart), nil
	case 3:
		return NewMapper003(cart), nil
	case 4:
		return NewMapper004(cart), nil
	case 7:
		return NewMapper007(cart), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, id)
	}
}

// ReadPRG reads from the CPU-visible cartridge space ($6000-$FFFF).
func (c *Cartridge) ReadPRG(address uint16) uint8 {
	return c.mapper.ReadPRG(address)
}

// WritePRG writes to the CPU-visible cartridge space. Writes into ROM
// ranges are mapper register writes.
func (c *Cartridge) WritePRG(address uint16, value uint8) {
	c.mapper.WritePRG(address, value)
}

// ReadCHR reads from the PPU pattern-table space ($0000-$1FFF).
func (c *Cartridge) ReadCHR(address uint16) uint8 {
	return c.mapper.ReadCHR(address)
}

// WriteCHR writes to the PPU pattern-table space.
func (c *Cartridge) WriteCHR(address uint16, value uint8) {
	c.mapper.WriteCHR(address, value)
}

// MirrorMode returns the current nametable mirroring. MMC1, MMC3 and
// AxROM change this at runtime, so it must be queried per access rather
// than latched at load.
func (c *Cartridge) MirrorMode() MirrorMode {
	return c.mirror
}

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 {
	return c.mapperID
}

// Name returns the name the cartridge was loaded under.
func (c *Cartridge) Name() string {
	return c.name
}

// CRC32 returns the checksum of the full ROM image, used as the snapshot
// compatibility tag.
func (c *Cartridge) CRC32() uint32 {
	return c.crc
}

// HasBattery reports whether PRG RAM is battery backed.
func (c *Cartridge) HasBattery() bool {
	return c.hasBattery
}

// TickScanline clocks the mapper's scanline counter, if it has one.
func (c *Cartridge) TickScanline() {
	if c.scanline != nil {
		c.scanline.TickScanline()
	}
}

// IRQPending reports whether the mapper is asserting its IRQ line.
func (c *Cartridge) IRQPending() bool {
	return c.scanline != nil && c.scanline.IRQPending()
}

// Reset puts the mapper back in its power-on banking configuration.
// PRG RAM is preserved, matching a console reset.
func (c *Cartridge) Reset() {
	c.mapper.Reset()
	if c.scanline != nil {
		c.scanline.ClearIRQ()
	}
}

// PowerCycle clears all volatile cartridge state. Battery-backed PRG RAM
// survives, everything else returns to power-on values.
func (c *Cartridge) PowerCycle() {
	c.mapper.Reset()
	if c.scanline != nil {
		c.scanline.ClearIRQ()
	}
	if !c.hasBattery {
		for i := range c.sram {
			c.sram[i] = 0
		}
	}
	if c.hasCHRRAM {
		for i := range c.chr {
			c.chr[i] = 0
		}
	}
}

// BatteryRAM returns the PRG RAM contents for battery persistence.
func (c *Cartridge) BatteryRAM() []uint8 {
	return c.sram[:]
}

// SetBatteryRAM restores previously persisted PRG RAM contents.
func (c *Cartridge) SetBatteryRAM(data []uint8) {
	copy(c.sram[:], data)
}
