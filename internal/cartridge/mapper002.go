package cartridge

// Mapper002 implements UNROM: a switchable 16KB PRG bank at $8000 and
// the last bank fixed at $C000. CHR is almost always RAM on these boards.
type Mapper002 struct {
	cart    *Cartridge
	prgBank uint8
}

// NewMapper002 creates a UNROM mapper.
func NewMapper002(cart *Cartridge) *Mapper002 {
	return &Mapper002{cart: cart}
}

func (m *Mapper002) Reset() {
	m.prgBank = 0
}

func (m *Mapper002) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0xC000:
		last := len(m.cart.prgROM) - 0x4000
		return m.cart.prgROM[last+int(address-0xC000)]
	case address >= 0x8000:
		bank := int(m.prgBank) % (len(m.cart.prgROM) / 0x4000)
		return m.cart.prgROM[bank*0x4000+int(address-0x8000)]
	case address >= 0x6000:
		return m.cart.sram[address-0x6000]
	default:
		return 0
	}
}

func (m *Mapper002) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x8000:
		m.prgBank = value
	case address >= 0x6000:
		m.cart.sram[address-0x6000] = value
	}
}

func (m *Mapper002) ReadCHR(address uint16) uint8 {
	if int(address) < len(m.cart.chr) {
		return m.cart.chr[address]
	}
	return 0
}

func (m *Mapper002) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM && int(address) < len(m.cart.chr) {
		m.cart.chr[address] = value
	}
}

func (m *Mapper002) StateSize() int { return 1 }

func (m *Mapper002) SaveState(data []byte) { data[0] = m.prgBank }

func (m *Mapper002) LoadState(data []byte) { m.prgBank = data[0] }
