package cartridge

// Mapper007 implements AxROM: 32KB PRG banking with single-screen
// mirroring selected by bit 4 of the bank register.
type Mapper007 struct {
	cart *Cartridge
	bank uint8
}

// NewMapper007 creates an AxROM mapper.
func NewMapper007(cart *Cartridge) *Mapper007 {
	m := &Mapper007{cart: cart}
	m.Reset()
	return m
}

func (m *Mapper007) Reset() {
	m.bank = 0
	m.cart.mirror = MirrorSingleScreen0
}

func (m *Mapper007) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x8000:
		count := len(m.cart.prgROM) / 0x8000
		bank := int(m.bank&0x07) % count
		return m.cart.prgROM[bank*0x8000+int(address-0x8000)]
	case address >= 0x6000:
		return m.cart.sram[address-0x6000]
	default:
		return 0
	}
}

func (m *Mapper007) WritePRG(address uint16, value uint8) {
	switch {
	case address >= 0x8000:
		m.bank = value
		if value&0x10 != 0 {
			m.cart.mirror = MirrorSingleScreen1
		} else {
			m.cart.mirror = MirrorSingleScreen0
		}
	case address >= 0x6000:
		m.cart.sram[address-0x6000] = value
	}
}

func (m *Mapper007) ReadCHR(address uint16) uint8 {
	if int(address) < len(m.cart.chr) {
		return m.cart.chr[address]
	}
	return 0
}

func (m *Mapper007) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM && int(address) < len(m.cart.chr) {
		m.cart.chr[address] = value
	}
}

func (m *Mapper007) StateSize() int { return 1 }

func (m *Mapper007) SaveState(data []byte) { data[0] = m.bank }

func (m *Mapper007) LoadState(data []byte) {
	m.bank = data[0]
	if m.bank&0x10 != 0 {
		m.cart.mirror = MirrorSingleScreen1
	} else {
		m.cart.mirror = MirrorSingleScreen0
	}
}
