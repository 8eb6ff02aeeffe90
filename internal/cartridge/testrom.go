package cartridge

// Synthetic iNES image construction used by tests across the module.

// TestROMConfig describes a synthetic iNES image.
type TestROMConfig struct {
	PRGBanks    uint8 // 16KB units
	CHRBanks    uint8 // 8KB units, 0 means CHR RAM
	MapperID    uint8
	Vertical    bool
	HasBattery  bool
	ResetVector uint16
	PRG         []uint8 // copied to the start of PRG ROM
	CHR         []uint8 // copied to the start of CHR ROM
}

// BuildTestROM assembles a complete iNES image from the config. The
// reset, NMI and IRQ vectors all point at ResetVector (default $8000),
// which holds an infinite JMP loop unless PRG data overrides it.
func BuildTestROM(cfg TestROMConfig) []uint8 {
	if cfg.PRGBanks == 0 {
		cfg.PRGBanks = 1
	}
	if cfg.ResetVector == 0 {
		cfg.ResetVector = 0x8000
	}

	header := make([]uint8, 16)
	copy(header, "NES\x1A")
	header[4] = cfg.PRGBanks
	header[5] = cfg.CHRBanks
	header[6] = (cfg.MapperID & 0x0F) << 4
	if cfg.Vertical {
		header[6] |= 0x01
	}
	if cfg.HasBattery {
		header[6] |= 0x02
	}
	header[7] = cfg.MapperID & 0xF0

	prg := make([]uint8, int(cfg.PRGBanks)*16384)
	// JMP $8000 at the default entry point.
	prg[0] = 0x4C
	prg[1] = 0x00
	prg[2] = 0x80
	copy(prg, cfg.PRG)

	// Vectors live in the last bank, which mappers fix at $E000/$C000.
	last := len(prg) - 16384
	setVector := func(offset int, target uint16) {
		prg[last+offset] = uint8(target)
		prg[last+offset+1] = uint8(target >> 8)
	}
	setVector(0x3FFA, cfg.ResetVector) // NMI
	setVector(0x3FFC, cfg.ResetVector) // Reset
	setVector(0x3FFE, cfg.ResetVector) // IRQ/BRK

	image := append(header, prg...)
	if cfg.CHRBanks > 0 {
		chr := make([]uint8, int(cfg.CHRBanks)*8192)
		copy(chr, cfg.CHR)
		image = append(image, chr...)
	}
	return image
}

// NewTestCartridge loads a minimal NROM cartridge for tests in other
// packages that need a working cartridge behind the bus.
func NewTestCartridge() *Cartridge {
	cart, err := Load(BuildTestROM(TestROMConfig{PRGBanks: 2, CHRBanks: 1}), "test")
	if err != nil {
		panic(err)
	}
	return cart
}
