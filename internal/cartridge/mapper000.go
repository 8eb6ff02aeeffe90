package cartridge

// Mapper000 implements NROM: no bank switching. 16KB PRG images are
// mirrored across the full $8000-$FFFF window.
type Mapper000 struct {
	cart *Cartridge
}

// NewMapper000 creates an NROM mapper.
func NewMapper000(cart *Cartridge) *Mapper000 {
	return &Mapper000{cart: cart}
}

func (m *Mapper000) ReadPRG(address uint16) uint8 {
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

func (m *Mapper000) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.sram[address-0x6000] = value
	}
	// Writes to ROM space have no effect on NROM.
}

func (m *Mapper000) ReadCHR(address uint16) uint8 {
	if int(address) < len(m.cart.chr) {
		return m.cart.chr[address]
	}
	return 0
}

func (m *Mapper000) WriteCHR(address uint16, value uint8) {
	if m.cart.hasCHRRAM && int(address) < len(m.cart.chr) {
		m.cart.chr[address] = value
	}
}

func (m *Mapper000) Reset() {}

func (m *Mapper000) StateSize() int { return 0 }

func (m *Mapper000) SaveState(data []byte) {}

func (m *Mapper000) LoadState(data []byte) {}
