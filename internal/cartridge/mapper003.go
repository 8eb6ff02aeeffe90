package cartridge

// Mapper003 implements CNROM: fixed PRG, switchable 8KB CHR bank.
type Mapper003 struct {
	cart    *Cartridge
	chrBank uint8
}

// NewMapper003 creates a CNROM mapper.
func NewMapper003(cart *Cartridge) *Mapper003 {
	return &Mapper003{cart: cart}
}

func (m *Mapper003) Reset() {
	m.chrBank = 0
}

func (m *Mapper003) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		offset := int(address-0x8000) % len(m.cart.prgROM)
		return m.cart.prgROM[offset]
	case address >= 0x6000:
		return m.cart.sram[address-0x6000]
	default:
		return 0
	}
}

func (m *Mapper003) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x8000:
		m.chrBank = value & 0x03
	case address >= 0x6000:
		m.cart.sram[address-0x6000] = value
	}
}

func (m *Mapper003) chrOffset(address uint16) int {
	return (int(m.chrBank)*0x2000 + int(address)) % len(m.cart.chr)
}

func (m *Mapper003) ReadCHR(address uint16) uint8 {
	return m.cart.chr[m.chrOffset(address)]
}

func (m *Mapper003) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM {
		m.cart.chr[m.chrOffset(address)] = value
	}
}

func (m *Mapper003) StateSize() int { return 1 }

func (m *Mapper003) SaveState(data []byte) { data[0] = m.chrBank }

func (m *Mapper003) LoadState(data []byte) { m.chrBank = data[0] }
