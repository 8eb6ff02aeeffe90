package cpu

// Instruction implementations. Each returns any extra cycles beyond the
// table's base count (only branches report them).

func (cpu *CPU) lda(address uint16) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ldx(address uint16) uint8 {
	cpu.X = cpu.memory.Read(address)
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) ldy(address uint16) uint8 {
	cpu.Y = cpu.memory.Read(address)
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) sta(address uint16) uint8 {
	cpu.memory.Write(address, cpu.A)
	return 0
}

func (cpu *CPU) stx(address uint16) uint8 {
	cpu.memory.Write(address, cpu.X)
	return 0
}

func (cpu *CPU) sty(address uint16) uint8 {
	cpu.memory.Write(address, cpu.Y)
	return 0
}

func (cpu *CPU) adc(address uint16) uint8 {
	value := cpu.memory.Read(address)
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}

	result := uint16(cpu.A) + uint16(value) + uint16(carry)

	// Overflow when both operands share a sign the result does not.
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0

	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sbc(address uint16) uint8 {
	// Subtraction is addition of the one's complement.
	value := cpu.memory.Read(address) ^ 0xFF
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}

	result := uint16(cpu.A) + uint16(value) + uint16(carry)

	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0

	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) and(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ora(address uint16) uint8 {
	cpu.A |= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) eor(address uint16) uint8 {
	cpu.A ^= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) asl(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x80 != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) lsr(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x01 != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) rol(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x80 != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) ror(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x01 != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) compare(register uint8, address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = register >= value
	cpu.setZN(register - value)
	return 0
}

func (cpu *CPU) inc(address uint16) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) branch(taken bool, address uint16, pageCrossed bool) uint8 {
	if !taken {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) bit(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.N = value&nFlagMask != 0
	cpu.V = value&vFlagMask != 0
	cpu.Z = cpu.A&value == 0
	return 0
}

func (cpu *CPU) brk() uint8 {
	// BRK pushes PC+2: the byte after the opcode is padding.
	cpu.PC++
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.GetStatusByte() | bFlagMask)
	cpu.I = true
	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = high<<8 | low
	return 0
}

// Unofficial opcodes. Only the stable ones games actually rely on.

func (cpu *CPU) lax(address uint16) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sax(address uint16) uint8 {
	cpu.memory.Write(address, cpu.A&cpu.X)
	return 0
}

func (cpu *CPU) dcp(address uint16) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.C = cpu.A >= value
	cpu.setZN(cpu.A - value)
	return 0
}

func (cpu *CPU) isb(address uint16) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	return cpu.sbc(address)
}

func (cpu *CPU) slo(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x80 != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.A |= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rla(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x80 != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.A &= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sre(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x01 != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.A ^= value
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rra(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x01 != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	return cpu.adc(address)
}

// executeInstruction dispatches one decoded opcode. Returns extra cycles
// beyond the base count.
func (cpu *CPU) executeInstruction(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1: // LDA
		return cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE: // LDX
		return cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC: // LDY
		return cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91: // STA
		return cpu.sta(address)
	case 0x86, 0x96, 0x8E: // STX
		return cpu.stx(address)
	case 0x84, 0x94, 0x8C: // STY
		return cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71: // ADC
		return cpu.adc(address)
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1: // SBC
		return cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31: // AND
		return cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11: // ORA
		return cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51: // EOR
		return cpu.eor(address)

	case 0x0A: // ASL A
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x06, 0x16, 0x0E, 0x1E: // ASL
		return cpu.asl(address)
	case 0x4A: // LSR A
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x46, 0x56, 0x4E, 0x5E: // LSR
		return cpu.lsr(address)
	case 0x2A: // ROL A
		oldCarry := cpu.C
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		if oldCarry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x26, 0x36, 0x2E, 0x3E: // ROL
		return cpu.rol(address)
	case 0x6A: // ROR A
		oldCarry := cpu.C
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		if oldCarry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x66, 0x76, 0x6E, 0x7E: // ROR
		return cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1: // CMP
		return cpu.compare(cpu.A, address)
	case 0xE0, 0xE4, 0xEC: // CPX
		return cpu.compare(cpu.X, address)
	case 0xC0, 0xC4, 0xCC: // CPY
		return cpu.compare(cpu.Y, address)

	case 0xE6, 0xF6, 0xEE, 0xFE: // INC
		return cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE: // DEC
		return cpu.dec(address)
	case 0xE8: // INX
		cpu.X++
		cpu.setZN(cpu.X)
		return 0
	case 0xCA: // DEX
		cpu.X--
		cpu.setZN(cpu.X)
		return 0
	case 0xC8: // INY
		cpu.Y++
		cpu.setZN(cpu.Y)
		return 0
	case 0x88: // DEY
		cpu.Y--
		cpu.setZN(cpu.Y)
		return 0

	case 0xAA: // TAX
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
		return 0
	case 0x8A: // TXA
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
		return 0
	case 0xA8: // TAY
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
		return 0
	case 0x98: // TYA
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
		return 0
	case 0xBA: // TSX
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
		return 0
	case 0x9A: // TXS
		cpu.SP = cpu.X
		return 0

	case 0x48: // PHA
		cpu.push(cpu.A)
		return 0
	case 0x68: // PLA
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
		return 0
	case 0x08: // PHP pushes with B set
		cpu.push(cpu.GetStatusByte() | bFlagMask)
		return 0
	case 0x28: // PLP
		cpu.SetStatusByte(cpu.pop())
		return 0

	case 0x18: // CLC
		cpu.C = false
		return 0
	case 0x38: // SEC
		cpu.C = true
		return 0
	case 0x58: // CLI
		cpu.I = false
		return 0
	case 0x78: // SEI
		cpu.I = true
		return 0
	case 0xB8: // CLV
		cpu.V = false
		return 0
	case 0xD8: // CLD
		cpu.D = false
		return 0
	case 0xF8: // SED
		cpu.D = true
		return 0

	case 0x4C, 0x6C: // JMP
		cpu.PC = address
		return 0
	case 0x20: // JSR pushes the address of its last byte
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
		return 0
	case 0x60: // RTS
		cpu.PC = cpu.popWord() + 1
		return 0
	case 0x40: // RTI
		cpu.SetStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()
		return 0

	case 0x90: // BCC
		return cpu.branch(!cpu.C, address, pageCrossed)
	case 0xB0: // BCS
		return cpu.branch(cpu.C, address, pageCrossed)
	case 0xD0: // BNE
		return cpu.branch(!cpu.Z, address, pageCrossed)
	case 0xF0: // BEQ
		return cpu.branch(cpu.Z, address, pageCrossed)
	case 0x10: // BPL
		return cpu.branch(!cpu.N, address, pageCrossed)
	case 0x30: // BMI
		return cpu.branch(cpu.N, address, pageCrossed)
	case 0x50: // BVC
		return cpu.branch(!cpu.V, address, pageCrossed)
	case 0x70: // BVS
		return cpu.branch(cpu.V, address, pageCrossed)

	case 0x24, 0x2C: // BIT
		return cpu.bit(address)
	case 0x00: // BRK
		return cpu.brk()

	// Official and unofficial NOPs. The multi-byte forms already consumed
	// their operand fetch through the addressing mode.
	case 0xEA, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA,
		0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		return 0

	case 0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF: // LAX
		return cpu.lax(address)
	case 0x83, 0x87, 0x8F, 0x97: // SAX
		return cpu.sax(address)
	case 0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDF, 0xDB: // DCP
		return cpu.dcp(address)
	case 0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFF, 0xFB: // ISB
		return cpu.isb(address)
	case 0x03, 0x07, 0x0F, 0x13, 0x17, 0x1F, 0x1B: // SLO
		return cpu.slo(address)
	case 0x23, 0x27, 0x2F, 0x33, 0x37, 0x3F, 0x3B: // RLA
		return cpu.rla(address)
	case 0x43, 0x47, 0x4F, 0x53, 0x57, 0x5F, 0x5B: // SRE
		return cpu.sre(address)
	case 0x63, 0x67, 0x6F, 0x73, 0x77, 0x7F, 0x7B: // RRA
		return cpu.rra(address)

	default:
		return 0
	}
}

// ins is shorthand for building the lookup table.
func ins(name string, opcode, bytes, cycles uint8, mode AddressingMode) *Instruction {
	return &Instruction{Name: name, Opcode: opcode, Bytes: bytes, Cycles: cycles, Mode: mode}
}

// initInstructions fills the opcode lookup table.
func (cpu *CPU) initInstructions() {
	t := &cpu.instructions

	// LDA/LDX/LDY
	t[0xA9] = ins("LDA", 0xA9, 2, 2, Immediate)
	t[0xA5] = ins("LDA", 0xA5, 2, 3, ZeroPage)
	t[0xB5] = ins("LDA", 0xB5, 2, 4, ZeroPageX)
	t[0xAD] = ins("LDA", 0xAD, 3, 4, Absolute)
	t[0xBD] = ins("LDA", 0xBD, 3, 4, AbsoluteX)
	t[0xB9] = ins("LDA", 0xB9, 3, 4, AbsoluteY)
	t[0xA1] = ins("LDA", 0xA1, 2, 6, IndexedIndirect)
	t[0xB1] = ins("LDA", 0xB1, 2, 5, IndirectIndexed)

	t[0xA2] = ins("LDX", 0xA2, 2, 2, Immediate)
	t[0xA6] = ins("LDX", 0xA6, 2, 3, ZeroPage)
	t[0xB6] = ins("LDX", 0xB6, 2, 4, ZeroPageY)
	t[0xAE] = ins("LDX", 0xAE, 3, 4, Absolute)
	t[0xBE] = ins("LDX", 0xBE, 3, 4, AbsoluteY)

	t[0xA0] = ins("LDY", 0xA0, 2, 2, Immediate)
	t[0xA4] = ins("LDY", 0xA4, 2, 3, ZeroPage)
	t[0xB4] = ins("LDY", 0xB4, 2, 4, ZeroPageX)
	t[0xAC] = ins("LDY", 0xAC, 3, 4, Absolute)
	t[0xBC] = ins("LDY", 0xBC, 3, 4, AbsoluteX)

	// STA/STX/STY
	t[0x85] = ins("STA", 0x85, 2, 3, ZeroPage)
	t[0x95] = ins("STA", 0x95, 2, 4, ZeroPageX)
	t[0x8D] = ins("STA", 0x8D, 3, 4, Absolute)
	t[0x9D] = ins("STA", 0x9D, 3, 5, AbsoluteX)
	t[0x99] = ins("STA", 0x99, 3, 5, AbsoluteY)
	t[0x81] = ins("STA", 0x81, 2, 6, IndexedIndirect)
	t[0x91] = ins("STA", 0x91, 2, 6, IndirectIndexed)

	t[0x86] = ins("STX", 0x86, 2, 3, ZeroPage)
	t[0x96] = ins("STX", 0x96, 2, 4, ZeroPageY)
	t[0x8E] = ins("STX", 0x8E, 3, 4, Absolute)

	t[0x84] = ins("STY", 0x84, 2, 3, ZeroPage)
	t[0x94] = ins("STY", 0x94, 2, 4, ZeroPageX)
	t[0x8C] = ins("STY", 0x8C, 3, 4, Absolute)

	// ADC/SBC
	t[0x69] = ins("ADC", 0x69, 2, 2, Immediate)
	t[0x65] = ins("ADC", 0x65, 2, 3, ZeroPage)
	t[0x75] = ins("ADC", 0x75, 2, 4, ZeroPageX)
	t[0x6D] = ins("ADC", 0x6D, 3, 4, Absolute)
	t[0x7D] = ins("ADC", 0x7D, 3, 4, AbsoluteX)
	t[0x79] = ins("ADC", 0x79, 3, 4, AbsoluteY)
	t[0x61] = ins("ADC", 0x61, 2, 6, IndexedIndirect)
	t[0x71] = ins("ADC", 0x71, 2, 5, IndirectIndexed)

	t[0xE9] = ins("SBC", 0xE9, 2, 2, Immediate)
	t[0xE5] = ins("SBC", 0xE5, 2, 3, ZeroPage)
	t[0xF5] = ins("SBC", 0xF5, 2, 4, ZeroPageX)
	t[0xED] = ins("SBC", 0xED, 3, 4, Absolute)
	t[0xFD] = ins("SBC", 0xFD, 3, 4, AbsoluteX)
	t[0xF9] = ins("SBC", 0xF9, 3, 4, AbsoluteY)
	t[0xE1] = ins("SBC", 0xE1, 2, 6, IndexedIndirect)
	t[0xF1] = ins("SBC", 0xF1, 2, 5, IndirectIndexed)

	// AND/ORA/EOR
	t[0x29] = ins("AND", 0x29, 2, 2, Immediate)
	t[0x25] = ins("AND", 0x25, 2, 3, ZeroPage)
	t[0x35] = ins("AND", 0x35, 2, 4, ZeroPageX)
	t[0x2D] = ins("AND", 0x2D, 3, 4, Absolute)
	t[0x3D] = ins("AND", 0x3D, 3, 4, AbsoluteX)
	t[0x39] = ins("AND", 0x39, 3, 4, AbsoluteY)
	t[0x21] = ins("AND", 0x21, 2, 6, IndexedIndirect)
	t[0x31] = ins("AND", 0x31, 2, 5, IndirectIndexed)

	t[0x09] = ins("ORA", 0x09, 2, 2, Immediate)
	t[0x05] = ins("ORA", 0x05, 2, 3, ZeroPage)
	t[0x15] = ins("ORA", 0x15, 2, 4, ZeroPageX)
	t[0x0D] = ins("ORA", 0x0D, 3, 4, Absolute)
	t[0x1D] = ins("ORA", 0x1D, 3, 4, AbsoluteX)
	t[0x19] = ins("ORA", 0x19, 3, 4, AbsoluteY)
	t[0x01] = ins("ORA", 0x01, 2, 6, IndexedIndirect)
	t[0x11] = ins("ORA", 0x11, 2, 5, IndirectIndexed)

	t[0x49] = ins("EOR", 0x49, 2, 2, Immediate)
	t[0x45] = ins("EOR", 0x45, 2, 3, ZeroPage)
	t[0x55] = ins("EOR", 0x55, 2, 4, ZeroPageX)
	t[0x4D] = ins("EOR", 0x4D, 3, 4, Absolute)
	t[0x5D] = ins("EOR", 0x5D, 3, 4, AbsoluteX)
	t[0x59] = ins("EOR", 0x59, 3, 4, AbsoluteY)
	t[0x41] = ins("EOR", 0x41, 2, 6, IndexedIndirect)
	t[0x51] = ins("EOR", 0x51, 2, 5, IndirectIndexed)

	// Shifts and rotates
	t[0x0A] = ins("ASL", 0x0A, 1, 2, Accumulator)
	t[0x06] = ins("ASL", 0x06, 2, 5, ZeroPage)
	t[0x16] = ins("ASL", 0x16, 2, 6, ZeroPageX)
	t[0x0E] = ins("ASL", 0x0E, 3, 6, Absolute)
	t[0x1E] = ins("ASL", 0x1E, 3, 7, AbsoluteX)

	t[0x4A] = ins("LSR", 0x4A, 1, 2, Accumulator)
	t[0x46] = ins("LSR", 0x46, 2, 5, ZeroPage)
	t[0x56] = ins("LSR", 0x56, 2, 6, ZeroPageX)
	t[0x4E] = ins("LSR", 0x4E, 3, 6, Absolute)
	t[0x5E] = ins("LSR", 0x5E, 3, 7, AbsoluteX)

	t[0x2A] = ins("ROL", 0x2A, 1, 2, Accumulator)
	t[0x26] = ins("ROL", 0x26, 2, 5, ZeroPage)
	t[0x36] = ins("ROL", 0x36, 2, 6, ZeroPageX)
	t[0x2E] = ins("ROL", 0x2E, 3, 6, Absolute)
	t[0x3E] = ins("ROL", 0x3E, 3, 7, AbsoluteX)

	t[0x6A] = ins("ROR", 0x6A, 1, 2, Accumulator)
	t[0x66] = ins("ROR", 0x66, 2, 5, ZeroPage)
	t[0x76] = ins("ROR", 0x76, 2, 6, ZeroPageX)
	t[0x6E] = ins("ROR", 0x6E, 3, 6, Absolute)
	t[0x7E] = ins("ROR", 0x7E, 3, 7, AbsoluteX)

	// Compares
	t[0xC9] = ins("CMP", 0xC9, 2, 2, Immediate)
	t[0xC5] = ins("CMP", 0xC5, 2, 3, ZeroPage)
	t[0xD5] = ins("CMP", 0xD5, 2, 4, ZeroPageX)
	t[0xCD] = ins("CMP", 0xCD, 3, 4, Absolute)
	t[0xDD] = ins("CMP", 0xDD, 3, 4, AbsoluteX)
	t[0xD9] = ins("CMP", 0xD9, 3, 4, AbsoluteY)
	t[0xC1] = ins("CMP", 0xC1, 2, 6, IndexedIndirect)
	t[0xD1] = ins("CMP", 0xD1, 2, 5, IndirectIndexed)

	t[0xE0] = ins("CPX", 0xE0, 2, 2, Immediate)
	t[0xE4] = ins("CPX", 0xE4, 2, 3, ZeroPage)
	t[0xEC] = ins("CPX", 0xEC, 3, 4, Absolute)

	t[0xC0] = ins("CPY", 0xC0, 2, 2, Immediate)
	t[0xC4] = ins("CPY", 0xC4, 2, 3, ZeroPage)
	t[0xCC] = ins("CPY", 0xCC, 3, 4, Absolute)

	// Increments and decrements
	t[0xE6] = ins("INC", 0xE6, 2, 5, ZeroPage)
	t[0xF6] = ins("INC", 0xF6, 2, 6, ZeroPageX)
	t[0xEE] = ins("INC", 0xEE, 3, 6, Absolute)
	t[0xFE] = ins("INC", 0xFE, 3, 7, AbsoluteX)

	t[0xC6] = ins("DEC", 0xC6, 2, 5, ZeroPage)
	t[0xD6] = ins("DEC", 0xD6, 2, 6, ZeroPageX)
	t[0xCE] = ins("DEC", 0xCE, 3, 6, Absolute)
	t[0xDE] = ins("DEC", 0xDE, 3, 7, AbsoluteX)

	t[0xE8] = ins("INX", 0xE8, 1, 2, Implied)
	t[0xCA] = ins("DEX", 0xCA, 1, 2, Implied)
	t[0xC8] = ins("INY", 0xC8, 1, 2, Implied)
	t[0x88] = ins("DEY", 0x88, 1, 2, Implied)

	// Transfers
	t[0xAA] = ins("TAX", 0xAA, 1, 2, Implied)
	t[0x8A] = ins("TXA", 0x8A, 1, 2, Implied)
	t[0xA8] = ins("TAY", 0xA8, 1, 2, Implied)
	t[0x98] = ins("TYA", 0x98, 1, 2, Implied)
	t[0xBA] = ins("TSX", 0xBA, 1, 2, Implied)
	t[0x9A] = ins("TXS", 0x9A, 1, 2, Implied)

	// Stack
	t[0x48] = ins("PHA", 0x48, 1, 3, Implied)
	t[0x68] = ins("PLA", 0x68, 1, 4, Implied)
	t[0x08] = ins("PHP", 0x08, 1, 3, Implied)
	t[0x28] = ins("PLP", 0x28, 1, 4, Implied)

	// Flags
	t[0x18] = ins("CLC", 0x18, 1, 2, Implied)
	t[0x38] = ins("SEC", 0x38, 1, 2, Implied)
	t[0x58] = ins("CLI", 0x58, 1, 2, Implied)
	t[0x78] = ins("SEI", 0x78, 1, 2, Implied)
	t[0xB8] = ins("CLV", 0xB8, 1, 2, Implied)
	t[0xD8] = ins("CLD", 0xD8, 1, 2, Implied)
	t[0xF8] = ins("SED", 0xF8, 1, 2, Implied)

	// Control flow
	t[0x4C] = ins("JMP", 0x4C, 3, 3, Absolute)
	t[0x6C] = ins("JMP", 0x6C, 3, 5, Indirect)
	t[0x20] = ins("JSR", 0x20, 3, 6, Absolute)
	t[0x60] = ins("RTS", 0x60, 1, 6, Implied)
	t[0x40] = ins("RTI", 0x40, 1, 6, Implied)

	// Branches
	t[0x90] = ins("BCC", 0x90, 2, 2, Relative)
	t[0xB0] = ins("BCS", 0xB0, 2, 2, Relative)
	t[0xD0] = ins("BNE", 0xD0, 2, 2, Relative)
	t[0xF0] = ins("BEQ", 0xF0, 2, 2, Relative)
	t[0x10] = ins("BPL", 0x10, 2, 2, Relative)
	t[0x30] = ins("BMI", 0x30, 2, 2, Relative)
	t[0x50] = ins("BVC", 0x50, 2, 2, Relative)
	t[0x70] = ins("BVS", 0x70, 2, 2, Relative)

	// Misc
	t[0x24] = ins("BIT", 0x24, 2, 3, ZeroPage)
	t[0x2C] = ins("BIT", 0x2C, 3, 4, Absolute)
	t[0xEA] = ins("NOP", 0xEA, 1, 2, Implied)
	t[0x00] = ins("BRK", 0x00, 1, 7, Implied)

	// Unofficial NOPs
	t[0x1A] = ins("NOP", 0x1A, 1, 2, Implied)
	t[0x3A] = ins("NOP", 0x3A, 1, 2, Implied)
	t[0x5A] = ins("NOP", 0x5A, 1, 2, Implied)
	t[0x7A] = ins("NOP", 0x7A, 1, 2, Implied)
	t[0xDA] = ins("NOP", 0xDA, 1, 2, Implied)
	t[0xFA] = ins("NOP", 0xFA, 1, 2, Implied)
	t[0x80] = ins("NOP", 0x80, 2, 2, Immediate)
	t[0x82] = ins("NOP", 0x82, 2, 2, Immediate)
	t[0x89] = ins("NOP", 0x89, 2, 2, Immediate)
	t[0xC2] = ins("NOP", 0xC2, 2, 2, Immediate)
	t[0xE2] = ins("NOP", 0xE2, 2, 2, Immediate)
	t[0x04] = ins("NOP", 0x04, 2, 3, ZeroPage)
	t[0x44] = ins("NOP", 0x44, 2, 3, ZeroPage)
	t[0x64] = ins("NOP", 0x64, 2, 3, ZeroPage)
	t[0x14] = ins("NOP", 0x14, 2, 4, ZeroPageX)
	t[0x34] = ins("NOP", 0x34, 2, 4, ZeroPageX)
	t[0x54] = ins("NOP", 0x54, 2, 4, ZeroPageX)
	t[0x74] = ins("NOP", 0x74, 2, 4, ZeroPageX)
	t[0xD4] = ins("NOP", 0xD4, 2, 4, ZeroPageX)
	t[0xF4] = ins("NOP", 0xF4, 2, 4, ZeroPageX)
	t[0x0C] = ins("NOP", 0x0C, 3, 4, Absolute)
	t[0x1C] = ins("NOP", 0x1C, 3, 4, AbsoluteX)
	t[0x3C] = ins("NOP", 0x3C, 3, 4, AbsoluteX)
	t[0x5C] = ins("NOP", 0x5C, 3, 4, AbsoluteX)
	t[0x7C] = ins("NOP", 0x7C, 3, 4, AbsoluteX)
	t[0xDC] = ins("NOP", 0xDC, 3, 4, AbsoluteX)
	t[0xFC] = ins("NOP", 0xFC, 3, 4, AbsoluteX)

	// Stable unofficial opcodes
	t[0xA7] = ins("LAX", 0xA7, 2, 3, ZeroPage)
	t[0xB7] = ins("LAX", 0xB7, 2, 4, ZeroPageY)
	t[0xAF] = ins("LAX", 0xAF, 3, 4, Absolute)
	t[0xBF] = ins("LAX", 0xBF, 3, 4, AbsoluteY)
	t[0xA3] = ins("LAX", 0xA3, 2, 6, IndexedIndirect)
	t[0xB3] = ins("LAX", 0xB3, 2, 5, IndirectIndexed)

	t[0x87] = ins("SAX", 0x87, 2, 3, ZeroPage)
	t[0x97] = ins("SAX", 0x97, 2, 4, ZeroPageY)
	t[0x8F] = ins("SAX", 0x8F, 3, 4, Absolute)
	t[0x83] = ins("SAX", 0x83, 2, 6, IndexedIndirect)

	t[0xEB] = ins("SBC", 0xEB, 2, 2, Immediate)

	t[0xC7] = ins("DCP", 0xC7, 2, 5, ZeroPage)
	t[0xD7] = ins("DCP", 0xD7, 2, 6, ZeroPageX)
	t[0xCF] = ins("DCP", 0xCF, 3, 6, Absolute)
	t[0xDF] = ins("DCP", 0xDF, 3, 7, AbsoluteX)
	t[0xDB] = ins("DCP", 0xDB, 3, 7, AbsoluteY)
	t[0xC3] = ins("DCP", 0xC3, 2, 8, IndexedIndirect)
	t[0xD3] = ins("DCP", 0xD3, 2, 8, IndirectIndexed)

	t[0xE7] = ins("ISB", 0xE7, 2, 5, ZeroPage)
	t[0xF7] = ins("ISB", 0xF7, 2, 6, ZeroPageX)
	t[0xEF] = ins("ISB", 0xEF, 3, 6, Absolute)
	t[0xFF] = ins("ISB", 0xFF, 3, 7, AbsoluteX)
	t[0xFB] = ins("ISB", 0xFB, 3, 7, AbsoluteY)
	t[0xE3] = ins("ISB", 0xE3, 2, 8, IndexedIndirect)
	t[0xF3] = ins("ISB", 0xF3, 2, 8, IndirectIndexed)

	t[0x07] = ins("SLO", 0x07, 2, 5, ZeroPage)
	t[0x17] = ins("SLO", 0x17, 2, 6, ZeroPageX)
	t[0x0F] = ins("SLO", 0x0F, 3, 6, Absolute)
	t[0x1F] = ins("SLO", 0x1F, 3, 7, AbsoluteX)
	t[0x1B] = ins("SLO", 0x1B, 3, 7, AbsoluteY)
	t[0x03] = ins("SLO", 0x03, 2, 8, IndexedIndirect)
	t[0x13] = ins("SLO", 0x13, 2, 8, IndirectIndexed)

	t[0x27] = ins("RLA", 0x27, 2, 5, ZeroPage)
	t[0x37] = ins("RLA", 0x37, 2, 6, ZeroPageX)
	t[0x2F] = ins("RLA", 0x2F, 3, 6, Absolute)
	t[0x3F] = ins("RLA", 0x3F, 3, 7, AbsoluteX)
	t[0x3B] = ins("RLA", 0x3B, 3, 7, AbsoluteY)
	t[0x23] = ins("RLA", 0x23, 2, 8, IndexedIndirect)
	t[0x33] = ins("RLA", 0x33, 2, 8, IndirectIndexed)

	t[0x47] = ins("SRE", 0x47, 2, 5, ZeroPage)
	t[0x57] = ins("SRE", 0x57, 2, 6, ZeroPageX)
	t[0x4F] = ins("SRE", 0x4F, 3, 6, Absolute)
	t[0x5F] = ins("SRE", 0x5F, 3, 7, AbsoluteX)
	t[0x5B] = ins("SRE", 0x5B, 3, 7, AbsoluteY)
	t[0x43] = ins("SRE", 0x43, 2, 8, IndexedIndirect)
	t[0x53] = ins("SRE", 0x53, 2, 8, IndirectIndexed)

	t[0x67] = ins("RRA", 0x67, 2, 5, ZeroPage)
	t[0x77] = ins("RRA", 0x77, 2, 6, ZeroPageX)
	t[0x6F] = ins("RRA", 0x6F, 3, 6, Absolute)
	t[0x7F] = ins("RRA", 0x7F, 3, 7, AbsoluteX)
	t[0x7B] = ins("RRA", 0x7B, 3, 7, AbsoluteY)
	t[0x63] = ins("RRA", 0x63, 2, 8, IndexedIndirect)
	t[0x73] = ins("RRA", 0x73, 2, 8, IndirectIndexed)
}
