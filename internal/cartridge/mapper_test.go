package cartridge

import "testing"

// mmc1Write pushes a 5-bit value through the MMC1 serial port.
func mmc1Write(cart *Cartridge, address uint16, value uint8) {
	for i := 0; i < 5; i++ {
		cart.WritePRG(address, (value>>i)&1)
	}
}

func loadMapperROM(t *testing.T, cfg TestROMConfig) *Cartridge {
	t.Helper()
	cart, err := Load(BuildTestROM(cfg), "mapper")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cart
}

func TestNROM16KMirroring(t *testing.T) {
	prg := make([]uint8, 16384)
	prg[0x0123] = 0xAA
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 1, CHRBanks: 1, PRG: prg})
	if got := cart.ReadPRG(0x8123); got != 0xAA {
		t.Errorf("$8123 = %02X, want AA", got)
	}
	if got := cart.ReadPRG(0xC123); got != 0xAA {
		t.Errorf("$C123 mirror = %02X, want AA", got)
	}
}

func TestMMC1PRGBankSwitch(t *testing.T) {
	// Four 16KB banks, each tagged by its first byte.
	prg := make([]uint8, 4*16384)
	for bank := 0; bank < 4; bank++ {
		prg[bank*16384] = uint8(0xB0 + bank)
	}
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 4, CHRBanks: 1, MapperID: 1, PRG: prg})

	// Power-on mode fixes the last bank at $C000.
	if got := cart.ReadPRG(0xC000); got != 0xB3 {
		t.Fatalf("fixed bank at $C000 = %02X, want B3", got)
	}

	mmc1Write(cart, 0xE000, 2)
	if got := cart.ReadPRG(0x8000); got != 0xB2 {
		t.Errorf("switched bank at $8000 = %02X, want B2", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xB3 {
		t.Errorf("fixed bank disturbed: $C000 = %02X, want B3", got)
	}
}

func TestMMC1MirroringControl(t *testing.T) {
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 2, CHRBanks: 1, MapperID: 1})
	mmc1Write(cart, 0x8000, 0x02|0x0C) // vertical, keep PRG mode 3
	if cart.MirrorMode() != MirrorVertical {
		t.Errorf("mirror = %d, want vertical", cart.MirrorMode())
	}
	mmc1Write(cart, 0x8000, 0x03|0x0C)
	if cart.MirrorMode() != MirrorHorizontal {
		t.Errorf("mirror = %d, want horizontal", cart.MirrorMode())
	}
}

func TestMMC1ResetBitFixesLastBank(t *testing.T) {
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 2, CHRBanks: 1, MapperID: 1})
	// Start a serial write, then abort it with bit 7.
	cart.WritePRG(0x8000, 1)
	cart.WritePRG(0x8000, 0x80)
	m := cart.mapper.(*Mapper001)
	if m.shiftCount != 0 {
		t.Errorf("shift register not cleared by reset bit")
	}
	if m.control&0x0C != 0x0C {
		t.Errorf("control = %02X, want PRG mode 3 after reset bit", m.control)
	}
}

func TestUNROMBankSwitch(t *testing.T) {
	prg := make([]uint8, 8*16384)
	for bank := 0; bank < 8; bank++ {
		prg[bank*16384] = uint8(bank)
	}
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 8, MapperID: 2, PRG: prg})

	if got := cart.ReadPRG(0xC000); got != 7 {
		t.Fatalf("fixed last bank = %d, want 7", got)
	}
	for bank := uint8(0); bank < 8; bank++ {
		cart.WritePRG(0x8000, bank)
		if got := cart.ReadPRG(0x8000); got != bank {
			t.Errorf("bank %d: $8000 = %d", bank, got)
		}
	}
}

func TestCNROMCHRBankSwitch(t *testing.T) {
	chr := make([]uint8, 4*8192)
	for bank := 0; bank < 4; bank++ {
		chr[bank*8192] = uint8(0xC0 + bank)
	}
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 2, CHRBanks: 4, MapperID: 3, CHR: chr})

	for bank := uint8(0); bank < 4; bank++ {
		cart.WritePRG(0x8000, bank)
		if got := cart.ReadCHR(0x0000); got != 0xC0+bank {
			t.Errorf("bank %d: CHR[0] = %02X", bank, got)
		}
	}
}

func TestMMC3PRGBanking(t *testing.T) {
	prg := make([]uint8, 4*16384) // eight 8KB banks
	for bank := 0; bank < 8; bank++ {
		prg[bank*8192] = uint8(0xA0 + bank)
	}
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 4, CHRBanks: 1, MapperID: 4, PRG: prg})

	// Last bank always fixed at $E000, second-to-last at $C000 in mode 0.
	if got := cart.ReadPRG(0xE000); got != 0xA7 {
		t.Fatalf("$E000 = %02X, want A7", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xA6 {
		t.Fatalf("$C000 = %02X, want A6", got)
	}

	// R6 selects the $8000 bank in mode 0.
	cart.WritePRG(0x8000, 6)
	cart.WritePRG(0x8001, 3)
	if got := cart.ReadPRG(0x8000); got != 0xA3 {
		t.Errorf("$8000 = %02X, want A3", got)
	}

	// Mode bit 6 swaps $8000 and $C000.
	cart.WritePRG(0x8000, 6|0x40)
	if got := cart.ReadPRG(0xC000); got != 0xA3 {
		t.Errorf("swapped $C000 = %02X, want A3", got)
	}
	if got := cart.ReadPRG(0x8000); got != 0xA6 {
		t.Errorf("swapped $8000 = %02X, want A6", got)
	}
}

func TestMMC3ScanlineIRQ(t *testing.T) {
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 2, CHRBanks: 1, MapperID: 4})

	cart.WritePRG(0xC000, 3) // latch
	cart.WritePRG(0xC001, 0) // reload
	cart.WritePRG(0xE001, 0) // enable

	// Reload tick, then count 3, 2, 1 -> IRQ on reaching zero.
	for i := 0; i < 3; i++ {
		cart.TickScanline()
		if cart.IRQPending() {
			t.Fatalf("IRQ asserted early at tick %d", i)
		}
	}
	cart.TickScanline()
	if !cart.IRQPending() {
		t.Fatal("IRQ not asserted when counter reached zero")
	}

	// Disabling acknowledges the line.
	cart.WritePRG(0xE000, 0)
	if cart.IRQPending() {
		t.Error("IRQ still pending after disable")
	}
}

func TestMMC3MirroringControl(t *testing.T) {
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 2, CHRBanks: 1, MapperID: 4, Vertical: true})
	cart.WritePRG(0xA000, 1)
	if cart.MirrorMode() != MirrorHorizontal {
		t.Errorf("mirror = %d, want horizontal", cart.MirrorMode())
	}
	cart.WritePRG(0xA000, 0)
	if cart.MirrorMode() != MirrorVertical {
		t.Errorf("mirror = %d, want vertical", cart.MirrorMode())
	}
}

func TestAxROMBankAndMirroring(t *testing.T) {
	prg := make([]uint8, 4*32768)
	for bank := 0; bank < 4; bank++ {
		prg[bank*32768] = uint8(0xD0 + bank)
	}
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 8, MapperID: 7, PRG: prg})

	for bank := uint8(0); bank < 4; bank++ {
		cart.WritePRG(0x8000, bank)
		if got := cart.ReadPRG(0x8000); got != 0xD0+bank {
			t.Errorf("bank %d: $8000 = %02X", bank, got)
		}
	}

	cart.WritePRG(0x8000, 0x10)
	if cart.MirrorMode() != MirrorSingleScreen1 {
		t.Errorf("mirror = %d, want single screen 1", cart.MirrorMode())
	}
	cart.WritePRG(0x8000, 0x00)
	if cart.MirrorMode() != MirrorSingleScreen0 {
		t.Errorf("mirror = %d, want single screen 0", cart.MirrorMode())
	}
}

func TestMapperStateRoundTrip(t *testing.T) {
	cart := loadMapperROM(t, TestROMConfig{PRGBanks: 4, CHRBanks: 1, MapperID: 4})
	cart.WritePRG(0x8000, 6)
	cart.WritePRG(0x8001, 2)
	cart.WritePRG(0x6000, 0x77)

	state := make([]byte, cart.StateSize())
	cart.SaveState(state)

	cart.WritePRG(0x8001, 5)
	cart.WritePRG(0x6000, 0x00)

	cart.LoadState(state)
	if got := cart.ReadPRG(0x6000); got != 0x77 {
		t.Errorf("sram after restore = %02X, want 77", got)
	}
	m := cart.mapper.(*Mapper004)
	if m.banks[6] != 2 {
		t.Errorf("bank register after restore = %d, want 2", m.banks[6])
	}
}
