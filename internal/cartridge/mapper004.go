package cartridge

// Mapper004 implements MMC3: eight bank registers selected through
// $8000, PRG/CHR banking modes, mapper-controlled mirroring and a
// scanline-clocked IRQ counter.
type Mapper004 struct {
	cart *Cartridge

	bankSelect uint8
	banks      [8]uint8

	irqLatch   uint8
	irqCounter uint8
	irqEnabled bool
	irqReload  bool
	irqAssert  bool

	prgRAMProtect uint8
}

// NewMapper004 creates an MMC3 mapper in its power-on configuration.
func NewMapper004(cart *Cartridge) *Mapper004 {
	m := &Mapper004{cart: cart}
	m.Reset()
	return m
}

func (m *Mapper004) Reset() {
	m.bankSelect = 0
	m.banks = [8]uint8{}
	m.irqLatch = 0
	m.irqCounter = 0
	m.irqEnabled = false
	m.irqReload = false
	m.irqAssert = false
	m.prgRAMProtect = 0
}

func (m *Mapper004) prgBankCount() int { return len(m.cart.prgROM) / 0x2000 }

// prgOffset resolves a CPU address to a PRG ROM offset. Banks are 8KB.
// Mode bit 6 of the bank select swaps which of $8000/$C000 is switchable
// and which is fixed to the second-to-last bank.
func (m *Mapper004) prgOffset(address uint16) int {
	count := m.prgBankCount()
	slot := int(address-0x8000) / 0x2000
	offset := int(address-0x8000) % 0x2000

	swap := m.bankSelect&0x40 != 0
	var bank int
	switch slot {
	case 0:
		if swap {
			bank = count - 2
		} else {
			bank = int(m.banks[6])
		}
	case 1:
		bank = int(m.banks[7])
	case 2:
		if swap {
			bank = int(m.banks[6])
		} else {
			bank = count - 2
		}
	default:
		bank = count - 1
	}
	return (bank%count)*0x2000 + offset
}

// chrOffset resolves a PPU address to a CHR offset. R0/R1 are 2KB banks,
// R2-R5 are 1KB banks; mode bit 7 swaps the two halves of the table.
func (m *Mapper004) chrOffset(address uint16) int {
	a := int(address)
	if m.bankSelect&0x80 != 0 {
		a ^= 0x1000
	}
	var bank, offset int
	switch {
	case a < 0x0800:
		bank = int(m.banks[0] &^ 1)
		offset = a
	case a < 0x1000:
		bank = int(m.banks[1] &^ 1)
		offset = a - 0x0800
	case a < 0x1400:
		bank = int(m.banks[2])
		offset = a - 0x1000
	case a < 0x1800:
		bank = int(m.banks[3])
		offset = a - 0x1400
	case a < 0x1C00:
		bank = int(m.banks[4])
		offset = a - 0x1800
	default:
		bank = int(m.banks[5])
		offset = a - 0x1C00
	}
	return (bank*0x0400 + offset) % len(m.cart.chr)
}

func (m *Mapper004) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		return m.cart.prgROM[m.prgOffset(address)]
	case address >= 0x6000:
		return m.cart.sram[address-0x6000]
	default:
		return 0
	}
}

func (m *Mapper004) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.sram[address-0x6000] = value
		return
	}
	if address < 0x8000 {
		return
	}

	even := address&1 == 0
	switch {
	case address < 0xA000:
		if even {
			m.bankSelect = value
		} else {
			m.banks[m.bankSelect&0x07] = value
		}
	case address < 0xC000:
		if even {
			if value&0x01 != 0 {
				m.cart.mirror = MirrorHorizontal
			} else {
				m.cart.mirror = MirrorVertical
			}
		} else {
			m.prgRAMProtect = value
		}
	case address < 0xE000:
		if even {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReload = true
		}
	default:
		if even {
			m.irqEnabled = false
			m.irqAssert = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *Mapper004) ReadCHR(address uint16) uint8 {
	return m.cart.chr[m.chrOffset(address)]
}

func (m *Mapper004) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM {
		m.cart.chr[m.chrOffset(address)] = value
	}
}

// TickScanline clocks the IRQ counter. The PPU calls this once per
// scanline while rendering is enabled.
func (m *Mapper004) TickScanline() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
		return
	}
	m.irqCounter--
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqAssert = true
	}
}

func (m *Mapper004) IRQPending() bool { return m.irqAssert }

func (m *Mapper004) ClearIRQ() { m.irqAssert = false }

func (m *Mapper004) StateSize() int { return 15 }

func (m *Mapper004) SaveState(data []byte) {
	data[0] = m.bankSelect
	copy(data[1:9], m.banks[:])
	data[9] = m.irqLatch
	data[10] = m.irqCounter
	data[11] = boolByte(m.irqEnabled)
	data[12] = boolByte(m.irqReload)
	data[13] = boolByte(m.irqAssert)
	data[14] = m.prgRAMProtect
}

func (m *Mapper004) LoadState(data []byte) {
	m.bankSelect = data[0]
	copy(m.banks[:], data[1:9])
	m.irqLatch = data[9]
	m.irqCounter = data[10]
	m.irqEnabled = data[11] != 0
	m.irqReload = data[12] != 0
	m.irqAssert = data[13] != 0
	m.prgRAMProtect = data[14]
}
