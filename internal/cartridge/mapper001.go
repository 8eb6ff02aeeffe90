package cartridge

// Mapper001 implements MMC1. Registers are written one bit at a time
// through a serial shift register; the fifth write commits to the
// register selected by address bits 13-14.
type Mapper001 struct {
	cart *Cartridge

	shift      uint8
	shiftCount uint8

	control  uint8 // mirroring, PRG mode, CHR mode
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

// NewMapper001 creates an MMC1 mapper in its power-on configuration.
func NewMapper001(cart *Cartridge) *Mapper001 {
	m := &Mapper001{cart: cart}
	m.Reset()
	return m
}

func (m *Mapper001) Reset() {
	m.shift = 0
	m.shiftCount = 0
	// PRG mode 3: fix the last 16KB bank at $C000.
	m.control = 0x0C
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
	m.applyMirroring()
}

func (m *Mapper001) prgBankCount() int { return len(m.cart.prgROM) / 0x4000 }

func (m *Mapper001) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		bank := m.prgOffset(address)
		return m.cart.prgROM[bank]
	case address >= 0x6000:
		return m.cart.sram[address-0x6000]
	default:
		return 0
	}
}

// prgOffset resolves a CPU address to a PRG ROM offset under the current
// banking mode.
func (m *Mapper001) prgOffset(address uint16) int {
	mode := (m.control >> 2) & 0x03
	bank := int(m.prgBank & 0x0F)
	offset := int(address - 0x8000)

	switch mode {
	case 0, 1:
		// 32KB switching, low bit of the bank number ignored.
		return ((bank &^ 1) * 0x4000) + offset
	case 2:
		// First bank fixed at $8000, switchable bank at $C000.
		if offset < 0x4000 {
			return offset
		}
		return bank*0x4000 + (offset - 0x4000)
	default:
		// Switchable bank at $8000, last bank fixed at $C000.
		if offset < 0x4000 {
			return bank*0x4000 + offset
		}
		return (m.prgBankCount()-1)*0x4000 + (offset - 0x4000)
	}
}

func (m *Mapper001) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.sram[address-0x6000] = value
		return
	}
	if address < 0x8000 {
		return
	}

	if value&0x80 != 0 {
		// Reset bit: clear the shift register and re-fix the last bank.
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		m.applyMirroring()
		return
	}

	m.shift = (m.shift >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	switch {
	case address < 0xA000:
		m.control = m.shift
		m.applyMirroring()
	case address < 0xC000:
		m.chrBank0 = m.shift
	case address < 0xE000:
		m.chrBank1 = m.shift
	default:
		m.prgBank = m.shift
	}
	m.shift = 0
	m.shiftCount = 0
}

func (m *Mapper001) applyMirroring() {
	switch m.control & 0x03 {
	case 0:
		m.cart.mirror = MirrorSingleScreen0
	case 1:
		m.cart.mirror = MirrorSingleScreen1
	case 2:
		m.cart.mirror = MirrorVertical
	case 3:
		m.cart.mirror = MirrorHorizontal
	}
}

func (m *Mapper001) chrOffset(address uint16) int {
	if m.control&0x10 == 0 {
		// 8KB mode, low bit of bank 0 ignored.
		bank := int(m.chrBank0 &^ 1)
		return bank*0x1000 + int(address)
	}
	// Two independent 4KB banks.
	if address < 0x1000 {
		return int(m.chrBank0)*0x1000 + int(address)
	}
	return int(m.chrBank1)*0x1000 + int(address-0x1000)
}

func (m *Mapper001) ReadCHR(address uint16) uint8 {
	offset := m.chrOffset(address) % len(m.cart.chr)
	return m.cart.chr[offset]
}

func (m *Mapper001) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM {
		offset := m.chrOffset(address) % len(m.cart.chr)
		m.cart.chr[offset] = value
	}
}

func (m *Mapper001) StateSize() int { return 6 }

func (m *Mapper001) SaveState(data []byte) {
	data[0] = m.shift
	data[1] = m.shiftCount
	data[2] = m.control
	data[3] = m.chrBank0
	data[4] = m.chrBank1
	data[5] = m.prgBank
}

func (m *Mapper001) LoadState(data []byte) {
	m.shift = data[0]
	m.shiftCount = data[1]
	m.control = data[2]
	m.chrBank0 = data[3]
	m.chrBank1 = data[4]
	m.prgBank = data[5]
	m.applyMirroring()
}
