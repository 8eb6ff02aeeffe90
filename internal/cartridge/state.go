package cartridge

// boolByte encodes a flag for the serialized state layout.
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// StateSize returns the number of bytes the cartridge contributes to a
// snapshot. It is fixed for the lifetime of a loaded ROM: the mirroring
// byte, the mapper's bank registers, PRG RAM, and CHR RAM when the board
// has it (CHR ROM is immutable and is not serialized).
func (c *Cartridge) StateSize() int {
	size := 1 + c.mapper.StateSize() + len(c.sram)
	if c.hasCHRRAM {
		size += len(c.chr)
	}
	return size
}

// SaveState serializes mutable cartridge state into data, which must be
// at least StateSize bytes.
func (c *Cartridge) SaveState(data []byte) {
	data[0] = uint8(c.mirror)
	offset := 1
	c.mapper.SaveState(data[offset : offset+c.mapper.StateSize()])
	offset += c.mapper.StateSize()
	copy(data[offset:], c.sram[:])
	offset += len(c.sram)
	if c.hasCHRRAM {
		copy(data[offset:], c.chr)
	}
}

// LoadState restores mutable cartridge state from data previously
// produced by SaveState for the same ROM.
func (c *Cartridge) LoadState(data []byte) {
	c.mirror = MirrorMode(data[0])
	offset := 1
	c.mapper.LoadState(data[offset : offset+c.mapper.StateSize()])
	offset += c.mapper.StateSize()
	copy(c.sram[:], data[offset:offset+len(c.sram)])
	offset += len(c.sram)
	if c.hasCHRRAM {
		copy(c.chr, data[offset:offset+len(c.chr)])
	}
}
