// Package bus wires the CPU, PPU, APU, memory, input and cartridge into
// one clocked machine.
package bus

import (
	"encoding/binary"

	"github.com/Virtual-Viking/NesCaster/internal/apu"
	"github.com/Virtual-Viking/NesCaster/internal/cartridge"
	"github.com/Virtual-Viking/NesCaster/internal/cpu"
	"github.com/Virtual-Viking/NesCaster/internal/input"
	"github.com/Virtual-Viking/NesCaster/internal/memory"
	"github.com/Virtual-Viking/NesCaster/internal/ppu"
)

// CPUFrequency is the NTSC 2A03 clock in Hz.
const CPUFrequency = 1789773

// Bus owns every component of one machine instance. Stepping the bus
// runs the CPU one instruction and keeps the PPU at three dots per CPU
// cycle and the APU at one.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cart   *cartridge.Cartridge
	ppuMem *memory.PPUMemory

	cpuCycles        uint64
	dmaSuspendCycles uint64

	frameReady bool
}

// New assembles a machine around the given cartridge. The CPU comes up
// reset with PC at the cartridge's reset vector.
func New(cart *cartridge.Cartridge, sampleRate int) *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(sampleRate),
		Input: input.NewInputState(),
		cart:  cart,
	}

	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)
	b.Memory.InitPowerUpRAM()
	b.Memory.SetDMACallback(b.triggerOAMDMA)

	b.ppuMem = memory.NewPPUMemory(cart)
	b.ppuMem.InitPowerUp()
	b.PPU.SetMemory(b.ppuMem)

	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.CPU.TriggerNMI)
	b.PPU.SetFrameCallback(func() { b.frameReady = true })
	b.PPU.SetScanlineCallback(cart.TickScanline)
	b.APU.SetDMCReadCallback(b.Memory.Read)

	b.CPU.Reset()
	return b
}

// Cartridge returns the loaded cartridge.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// Reset performs a soft reset: CPU, PPU, APU and mapper restart but RAM
// contents survive, as with the console's reset button.
func (b *Bus) Reset() {
	b.cart.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()
	b.cpuCycles = 0
	b.dmaSuspendCycles = 0
	b.frameReady = false
}

// PowerCycle performs a hard reset: RAM and video memory return to
// power-up patterns and non-battery cartridge RAM is cleared.
func (b *Bus) PowerCycle() {
	b.cart.PowerCycle()
	b.Memory.InitPowerUpRAM()
	b.ppuMem.InitPowerUp()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.CPU.Reset()
	b.cpuCycles = 0
	b.dmaSuspendCycles = 0
	b.frameReady = false
}

// Step runs one CPU instruction (or drains a pending DMA stall) and
// advances the PPU and APU to match. Returns the CPU cycles consumed.
func (b *Bus) Step() uint64 {
	var cycles uint64
	if b.dmaSuspendCycles > 0 {
		cycles = b.dmaSuspendCycles
		b.dmaSuspendCycles = 0
	} else {
		cycles = b.CPU.Step()
	}

	for i := uint64(0); i < cycles*3; i++ {
		b.PPU.Step()
	}
	for i := uint64(0); i < cycles; i++ {
		b.APU.Step()
	}

	b.cpuCycles += cycles

	// The IRQ line is level sensed: the APU frame counter, the delta
	// channel and the mapper all share it.
	b.CPU.SetIRQ(b.APU.IRQPending() || b.cart.IRQPending())

	return cycles
}

// RunFrame steps the machine until the PPU completes the current frame.
func (b *Bus) RunFrame() {
	b.frameReady = false
	for !b.frameReady {
		b.Step()
	}
}

// RunCycles steps the machine until at least the given number of CPU
// cycles have elapsed.
func (b *Bus) RunCycles(cycles uint64) {
	target := b.cpuCycles + cycles
	for b.cpuCycles < target {
		b.Step()
	}
}

// CPUCycles returns total CPU cycles executed since power-on.
func (b *Bus) CPUCycles() uint64 {
	return b.cpuCycles
}

// FrameCount returns the number of completed frames.
func (b *Bus) FrameCount() uint64 {
	return b.PPU.FrameCount()
}

// triggerOAMDMA copies one page of CPU memory into sprite memory
// through $2004 and stalls the CPU for 513 or 514 cycles depending on
// cycle parity.
func (b *Bus) triggerOAMDMA(page uint8) {
	source := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteRegister(0x2004, b.Memory.Read(source+uint16(i)))
	}

	b.dmaSuspendCycles = 513
	if b.cpuCycles%2 == 1 {
		b.dmaSuspendCycles = 514
	}
}

// busStateSize covers the bus's own counters.
const busStateSize = 16

// StateSize returns the full machine snapshot payload size. It varies
// with the cartridge (CHR RAM size, mapper registers).
func (b *Bus) StateSize() int {
	return cpu.StateSize + ppu.StateSize + apu.StateSize +
		memory.RAMStateSize + memory.PPUMemoryStateSize +
		input.StateSize + b.cart.StateSize() + busStateSize
}

// SaveState serializes the whole machine into data, which must be at
// least StateSize bytes.
func (b *Bus) SaveState(data []byte) {
	offset := 0
	b.CPU.SaveState(data[offset:])
	offset += cpu.StateSize
	b.PPU.SaveState(data[offset:])
	offset += ppu.StateSize
	b.APU.SaveState(data[offset:])
	offset += apu.StateSize
	b.Memory.SaveState(data[offset:])
	offset += memory.RAMStateSize
	b.ppuMem.SaveState(data[offset:])
	offset += memory.PPUMemoryStateSize
	b.Input.SaveState(data[offset:])
	offset += input.StateSize
	b.cart.SaveState(data[offset:])
	offset += b.cart.StateSize()
	binary.LittleEndian.PutUint64(data[offset:], b.cpuCycles)
	binary.LittleEndian.PutUint64(data[offset+8:], b.dmaSuspendCycles)
}

// LoadState restores a snapshot previously produced by SaveState
// against the same cartridge.
func (b *Bus) LoadState(data []byte) {
	offset := 0
	b.CPU.LoadState(data[offset:])
	offset += cpu.StateSize
	b.PPU.LoadState(data[offset:])
	offset += ppu.StateSize
	b.APU.LoadState(data[offset:])
	offset += apu.StateSize
	b.Memory.LoadState(data[offset:])
	offset += memory.RAMStateSize
	b.ppuMem.LoadState(data[offset:])
	offset += memory.PPUMemoryStateSize
	b.Input.LoadState(data[offset:])
	offset += input.StateSize
	b.cart.LoadState(data[offset:])
	offset += b.cart.StateSize()
	b.cpuCycles = binary.LittleEndian.Uint64(data[offset:])
	b.dmaSuspendCycles = binary.LittleEndian.Uint64(data[offset+8:])
	b.frameReady = false
}
