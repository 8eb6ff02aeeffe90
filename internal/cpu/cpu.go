// Package cpu implements the 6502 core used in the NES.
package cpu

import "encoding/binary"

// AddressingMode selects how an instruction resolves its operand.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction describes one opcode: mnemonic, size, base cycle count and
// addressing mode.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// MemoryInterface is the CPU's view of the bus.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is a cycle-counted 6502 (2A03 variant: decimal mode wired but
// unused by NES code).
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	// Status flags kept unpacked; GetStatusByte assembles the register.
	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	memory MemoryInterface

	cycles uint64

	instructions [256]*Instruction

	// Interrupt lines. NMI is edge triggered, IRQ is level sensed, both
	// serviced between instructions.
	nmiPending  bool
	irqPending  bool
	nmiPrevious bool
}

// New creates a CPU attached to the given bus. PC is set by Reset.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{
		memory: memory,
		SP:     0xFD,
	}
	cpu.initInstructions()
	return cpu
}

// Reset runs the 7-cycle reset sequence: registers to power-up values,
// status to $34, then PC from the reset vector.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0xFD

	cpu.C = false
	cpu.Z = false
	cpu.I = true
	cpu.D = false
	cpu.B = true
	cpu.V = false
	cpu.N = false

	cpu.nmiPending = false
	cpu.irqPending = false
	cpu.nmiPrevious = false

	// Dummy bus activity during the internal reset cycles.
	for i := 0; i < 5; i++ {
		cpu.memory.Read(cpu.PC)
		cpu.cycles++
	}

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = high<<8 | low
	cpu.cycles += 2
}

// Step executes one instruction and returns the cycles it consumed,
// including page-cross penalties and any interrupt serviced afterwards.
func (cpu *CPU) Step() uint64 {
	start := cpu.cycles

	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]

	if instruction == nil {
		// Every opcode, official or not, is in the table. This is a
		// fallback so a corrupted fetch cannot wedge the machine.
		cpu.PC++
		cpu.cycles += 2
		return 2
	}

	address, pageCrossed := cpu.getOperandAddress(instruction.Mode)

	extraCycles := cpu.executeInstruction(opcode, address, pageCrossed)

	if pageCrossed {
		extraCycles += pageCrossPenalty(opcode)
	}

	cpu.cycles += uint64(instruction.Cycles + extraCycles)

	// Interrupts are recognized at instruction boundaries.
	cpu.ProcessPendingInterrupts()

	return cpu.cycles - start
}

// pageCrossPenalty returns the extra cycle charged when an indexed
// read crossed a page. Indexed stores and read-modify-write ops do not
// appear here: their fixup cycle is unconditional and already counted
// in the opcode table.
func pageCrossPenalty(opcode uint8) uint8 {
	switch opcode {
	// Read instructions
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC,
		0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
		0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51,
		0xDD, 0xD9, 0xD1,
		0xFD, 0xF9, 0xF1:
		return 1
	// Unofficial NOP abs,X
	case 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		return 1
	// Unofficial LAX variants
	case 0xBF, 0xB3:
		return 1
	}
	return 0
}

// getOperandAddress resolves the operand for the given mode, advancing
// PC past the instruction. The bool reports a page-boundary cross for
// cycle accounting.
func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.X) & zeroPageMask), false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.Y) & zeroPageMask), false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		next := cpu.PC + 2
		target := uint16(int32(next) + int32(offset))
		cpu.PC = next
		return target, next&pageMask != target&pageMask

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return high<<8 | low, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := high<<8 | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		return address, base&pageMask != address&pageMask

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := high<<8 | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		return address, base&pageMask != address&pageMask

	case Indirect:
		// Only JMP uses this. The 6502 cannot increment the pointer
		// across a page: ($xxFF) fetches its high byte from $xx00.
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := highPtr<<8 | lowPtr

		var address uint16
		if ptr&zeroPageMask == zeroPageMask {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr & pageMask))
			address = high<<8 | low
		} else {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr + 1))
			address = high<<8 | low
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect:
		base := cpu.memory.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask)))
		cpu.PC += 2
		return high<<8 | low, false

	case IndirectIndexed:
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		base := high<<8 | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		return address, base&pageMask != address&pageMask

	default:
		return 0, false
	}
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return high<<8 | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

// interrupt runs the common 7-cycle hardware interrupt sequence. The B
// flag is pushed clear, the unused bit set.
func (cpu *CPU) interrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	status := cpu.GetStatusByte() &^ uint8(bFlagMask)
	status |= unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = high<<8 | low
	cpu.cycles += 7
}

// SetNMI drives the NMI line. The interrupt latches on the falling edge.
func (cpu *CPU) SetNMI(state bool) {
	if cpu.nmiPrevious && !state {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = state
}

// SetIRQ drives the level-sensed IRQ line.
func (cpu *CPU) SetIRQ(state bool) {
	cpu.irqPending = state
}

// TriggerNMI latches an NMI directly, bypassing edge detection.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// ProcessPendingInterrupts services a latched NMI, or an IRQ when the I
// flag allows it. NMI wins when both are pending.
func (cpu *CPU) ProcessPendingInterrupts() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.interrupt(nmiVector)
		return
	}
	if cpu.irqPending && !cpu.I {
		cpu.interrupt(irqVector)
	}
}

// Cycles returns the total cycles executed since power-on.
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// GetStatusByte assembles the P register. Bit 5 always reads set.
func (cpu *CPU) GetStatusByte() uint8 {
	status := uint8(unusedMask)
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// SetStatusByte unpacks the P register into the flag fields.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.B = status&bFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}

// StateSize is the CPU's contribution to a snapshot.
const StateSize = 18

// SaveState serializes registers, flags, the cycle counter and the
// interrupt lines.
func (cpu *CPU) SaveState(data []byte) {
	binary.LittleEndian.PutUint16(data[0:], cpu.PC)
	data[2] = cpu.A
	data[3] = cpu.X
	data[4] = cpu.Y
	data[5] = cpu.SP
	data[6] = cpu.GetStatusByte()
	binary.LittleEndian.PutUint64(data[7:], cpu.cycles)
	data[15] = boolByte(cpu.nmiPending)
	data[16] = boolByte(cpu.irqPending)
	data[17] = boolByte(cpu.nmiPrevious)
}

// LoadState restores state previously produced by SaveState.
func (cpu *CPU) LoadState(data []byte) {
	cpu.PC = binary.LittleEndian.Uint16(data[0:])
	cpu.A = data[2]
	cpu.X = data[3]
	cpu.Y = data[4]
	cpu.SP = data[5]
	cpu.SetStatusByte(data[6])
	cpu.cycles = binary.LittleEndian.Uint64(data[7:])
	cpu.nmiPending = data[15] != 0
	cpu.irqPending = data[16] != 0
	cpu.nmiPrevious = data[17] != 0
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
