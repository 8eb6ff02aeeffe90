// Package apu implements the 2A03 audio unit: two pulse channels,
// triangle, noise and the delta modulation channel.
package apu

import (
	"encoding/binary"
	"math"
)

const (
	cpuFrequency = 1789773.0

	// DefaultSampleRate is the output rate the resampler targets.
	DefaultSampleRate = 44100

	// ringCapacity is sized for about a third of a second of stereo
	// output, enough to ride out host scheduling hiccups.
	ringCapacity = 32768
)

// Frame counter event points in CPU cycles.
const (
	frameQuarter1 = 7457
	frameQuarter2 = 14913
	frameQuarter3 = 22371
	frameStep4End = 29829
	frameStep4IRQ = 29830
	frameStep5End = 37281
)

// APU mixes the five channels into interleaved stereo int16 samples.
// Step is called once per CPU cycle.
type APU struct {
	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	frameCounter   uint16
	frameMode      bool // false = 4-step, true = 5-step
	frameIRQEnable bool
	frameIRQFlag   bool

	cycles uint64

	// Host-side channel mutes. These gate the mixer only; every
	// channel's timers and counters keep running so enabling a channel
	// again resumes mid-phrase. Not part of saved state.
	hostMute [5]bool

	sampleRate       int
	cycleAccumulator float64

	// Stereo int16 ring buffer. Oldest samples are dropped on overflow,
	// surplus is retained across reads.
	ring      [ringCapacity]int16
	ringRead  int
	ringWrite int
	ringCount int

	dmcRead func(address uint16) uint8
}

type pulseChannel struct {
	enabled bool

	dutyCycle       uint8
	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	sweepEnable  bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepCounter uint8

	timer        uint16
	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	sequencerPos uint8
}

type triangleChannel struct {
	enabled bool

	lengthCounterHalt bool
	linearCounterLoad uint8

	timer        uint16
	timerCounter uint16

	lengthCounter uint8

	linearCounter       uint8
	linearCounterReload bool

	sequencerPos uint8
}

type noiseChannel struct {
	enabled bool

	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	mode        bool
	periodIndex uint8

	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	shiftRegister uint16
}

type dmcChannel struct {
	enabled bool

	irqEnable bool
	loop      bool
	rateIndex uint8

	outputLevel uint8

	sampleAddress uint16
	sampleLength  uint16

	timerCounter      uint16
	sampleBuffer      uint8
	sampleBufferBits  uint8
	sampleBufferEmpty bool
	bytesRemaining    uint16
	currentAddress    uint16

	irqFlag bool
}

// New creates an APU producing samples at the given rate. A rate of 0
// selects DefaultSampleRate.
func New(sampleRate int) *APU {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	apu := &APU{sampleRate: sampleRate}
	apu.Reset()
	return apu
}

// Reset returns the APU to power-up state. The host mute mask and the
// sample ring survive so the frontend keeps its configuration.
func (apu *APU) Reset() {
	apu.pulse1 = pulseChannel{}
	apu.pulse2 = pulseChannel{}
	apu.triangle = triangleChannel{}
	apu.noise = noiseChannel{shiftRegister: 1}
	apu.dmc = dmcChannel{sampleBufferEmpty: true}

	apu.frameCounter = 0
	apu.frameMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false

	apu.cycles = 0
	apu.cycleAccumulator = 0
}

// SetDMCReadCallback registers the function the delta channel uses to
// fetch sample bytes from CPU memory.
func (apu *APU) SetDMCReadCallback(read func(address uint16) uint8) {
	apu.dmcRead = read
}

// SetChannelMask sets host-side audibility, one bit per channel in
// $4015 order (bit 0 pulse 1 .. bit 4 DMC). A cleared bit silences the
// channel in the mix without touching its counters, unlike a $4015
// disable which clears the length counter.
func (apu *APU) SetChannelMask(mask uint8) {
	for i := 0; i < 5; i++ {
		apu.hostMute[i] = mask&(1<<i) == 0
	}
}

// SampleRate returns the configured output rate.
func (apu *APU) SampleRate() int {
	return apu.sampleRate
}

// IRQPending reports whether the frame counter or the delta channel is
// asserting an interrupt.
func (apu *APU) IRQPending() bool {
	return apu.frameIRQFlag || apu.dmc.irqFlag
}

// Step advances the APU one CPU cycle. Pulse, noise and DMC timers run
// at half CPU rate, the triangle at full rate.
func (apu *APU) Step() {
	apu.cycles++

	apu.stepFrameCounter()

	if apu.cycles%2 == 0 {
		apu.stepPulseTimer(&apu.pulse1)
		apu.stepPulseTimer(&apu.pulse2)
		apu.stepNoiseTimer()
		apu.stepDMCTimer()
	}
	apu.stepTriangleTimer()

	apu.generateSample()
}

func (apu *APU) stepFrameCounter() {
	apu.frameCounter++

	if apu.frameMode {
		switch apu.frameCounter {
		case frameQuarter1, frameQuarter3:
			apu.clockEnvelopeAndLinear()
		case frameQuarter2:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case frameStep5End:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
			apu.frameCounter = 0
		}
	} else {
		switch apu.frameCounter {
		case frameQuarter1, frameQuarter3:
			apu.clockEnvelopeAndLinear()
		case frameQuarter2:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case frameStep4End:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case frameStep4IRQ:
			if apu.frameIRQEnable {
				apu.frameIRQFlag = true
			}
			apu.frameCounter = 0
		}
	}
}

func (apu *APU) clockEnvelopeAndLinear() {
	clockEnvelope(&apu.pulse1.envelopeStart, &apu.pulse1.envelopeCounter,
		&apu.pulse1.envelopeDivider, apu.pulse1.volume, apu.pulse1.envelopeLoop)
	clockEnvelope(&apu.pulse2.envelopeStart, &apu.pulse2.envelopeCounter,
		&apu.pulse2.envelopeDivider, apu.pulse2.volume, apu.pulse2.envelopeLoop)
	clockEnvelope(&apu.noise.envelopeStart, &apu.noise.envelopeCounter,
		&apu.noise.envelopeDivider, apu.noise.volume, apu.noise.envelopeLoop)
	apu.clockTriangleLinear()
}

func (apu *APU) clockLengthAndSweep() {
	clockLength(&apu.pulse1.lengthCounter, apu.pulse1.lengthHalt)
	clockLength(&apu.pulse2.lengthCounter, apu.pulse2.lengthHalt)
	clockLength(&apu.triangle.lengthCounter, apu.triangle.lengthCounterHalt)
	clockLength(&apu.noise.lengthCounter, apu.noise.lengthHalt)
	apu.clockPulseSweep(&apu.pulse1, true)
	apu.clockPulseSweep(&apu.pulse2, false)
}

func clockEnvelope(start *bool, counter, divider *uint8, volume uint8, loop bool) {
	if *start {
		*start = false
		*counter = 15
		*divider = volume
	} else if *divider == 0 {
		*divider = volume
		if *counter > 0 {
			*counter--
		} else if loop {
			*counter = 15
		}
	} else {
		*divider--
	}
}

func clockLength(counter *uint8, halt bool) {
	if !halt && *counter > 0 {
		*counter--
	}
}

func (apu *APU) clockPulseSweep(pulse *pulseChannel, onesComplement bool) {
	if pulse.sweepCounter == 0 && pulse.sweepEnable && pulse.sweepShift > 0 {
		change := pulse.timer >> pulse.sweepShift
		if pulse.sweepNegate {
			pulse.timer -= change
			if onesComplement {
				pulse.timer--
			}
		} else {
			pulse.timer += change
		}
	}

	if pulse.sweepCounter == 0 || pulse.sweepReload {
		pulse.sweepCounter = pulse.sweepPeriod
		pulse.sweepReload = false
	} else {
		pulse.sweepCounter--
	}
}

func (apu *APU) clockTriangleLinear() {
	tri := &apu.triangle
	if tri.linearCounterReload {
		tri.linearCounter = tri.linearCounterLoad
	} else if tri.linearCounter > 0 {
		tri.linearCounter--
	}
	if !tri.lengthCounterHalt {
		tri.linearCounterReload = false
	}
}

func (apu *APU) stepPulseTimer(pulse *pulseChannel) {
	if pulse.timerCounter == 0 {
		pulse.timerCounter = pulse.timer
		pulse.sequencerPos = (pulse.sequencerPos + 1) & 0x07
	} else {
		pulse.timerCounter--
	}
}

func (apu *APU) stepTriangleTimer() {
	tri := &apu.triangle
	if tri.timerCounter == 0 {
		tri.timerCounter = tri.timer
		if tri.lengthCounter > 0 && tri.linearCounter > 0 {
			tri.sequencerPos = (tri.sequencerPos + 1) & 0x1F
		}
	} else {
		tri.timerCounter--
	}
}

func (apu *APU) stepNoiseTimer() {
	noise := &apu.noise
	if noise.timerCounter == 0 {
		noise.timerCounter = noisePeriodTable[noise.periodIndex]
		feedback := noise.shiftRegister & 0x01
		if noise.mode {
			feedback ^= (noise.shiftRegister >> 6) & 0x01
		} else {
			feedback ^= (noise.shiftRegister >> 1) & 0x01
		}
		noise.shiftRegister = (noise.shiftRegister >> 1) | (feedback << 14)
	} else {
		noise.timerCounter--
	}
}

func (apu *APU) stepDMCTimer() {
	dmc := &apu.dmc

	// Refill the sample buffer whenever it is empty and bytes remain.
	if dmc.sampleBufferEmpty && dmc.bytesRemaining > 0 {
		if apu.dmcRead != nil {
			dmc.sampleBuffer = apu.dmcRead(dmc.currentAddress)
		}
		if dmc.currentAddress == 0xFFFF {
			dmc.currentAddress = 0x8000
		} else {
			dmc.currentAddress++
		}
		dmc.sampleBufferBits = 8
		dmc.sampleBufferEmpty = false
		dmc.bytesRemaining--
		if dmc.bytesRemaining == 0 {
			if dmc.loop {
				dmc.currentAddress = dmc.sampleAddress
				dmc.bytesRemaining = dmc.sampleLength
			} else if dmc.irqEnable {
				dmc.irqFlag = true
			}
		}
	}

	if dmc.timerCounter == 0 {
		dmc.timerCounter = dmcRateTable[dmc.rateIndex]
		if !dmc.sampleBufferEmpty {
			if dmc.sampleBuffer&0x01 != 0 {
				if dmc.outputLevel <= 125 {
					dmc.outputLevel += 2
				}
			} else {
				if dmc.outputLevel >= 2 {
					dmc.outputLevel -= 2
				}
			}
			dmc.sampleBuffer >>= 1
			dmc.sampleBufferBits--
			if dmc.sampleBufferBits == 0 {
				dmc.sampleBufferEmpty = true
			}
		}
	} else {
		dmc.timerCounter--
	}
}

// WriteRegister handles CPU writes to $4000-$4017.
func (apu *APU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x4000:
		apu.writePulseControl(&apu.pulse1, value)
	case 0x4001:
		apu.writePulseSweep(&apu.pulse1, value)
	case 0x4002:
		apu.pulse1.timer = (apu.pulse1.timer & 0xFF00) | uint16(value)
	case 0x4003:
		apu.writePulseTimerHigh(&apu.pulse1, value)

	case 0x4004:
		apu.writePulseControl(&apu.pulse2, value)
	case 0x4005:
		apu.writePulseSweep(&apu.pulse2, value)
	case 0x4006:
		apu.pulse2.timer = (apu.pulse2.timer & 0xFF00) | uint16(value)
	case 0x4007:
		apu.writePulseTimerHigh(&apu.pulse2, value)

	case 0x4008:
		apu.triangle.lengthCounterHalt = value&0x80 != 0
		apu.triangle.linearCounterLoad = value & 0x7F
	case 0x400A:
		apu.triangle.timer = (apu.triangle.timer & 0xFF00) | uint16(value)
	case 0x400B:
		apu.triangle.timer = (apu.triangle.timer & 0x00FF) | uint16(value&0x07)<<8
		if apu.triangle.enabled {
			apu.triangle.lengthCounter = lengthTable[value>>3]
		}
		apu.triangle.linearCounterReload = true

	case 0x400C:
		apu.noise.envelopeLoop = value&0x20 != 0
		apu.noise.lengthHalt = apu.noise.envelopeLoop
		apu.noise.envelopeDisable = value&0x10 != 0
		apu.noise.volume = value & 0x0F
		apu.noise.envelopeStart = true
	case 0x400E:
		apu.noise.mode = value&0x80 != 0
		apu.noise.periodIndex = value & 0x0F
	case 0x400F:
		if apu.noise.enabled {
			apu.noise.lengthCounter = lengthTable[value>>3]
		}
		apu.noise.envelopeStart = true

	case 0x4010:
		apu.dmc.irqEnable = value&0x80 != 0
		apu.dmc.loop = value&0x40 != 0
		apu.dmc.rateIndex = value & 0x0F
		if !apu.dmc.irqEnable {
			apu.dmc.irqFlag = false
		}
	case 0x4011:
		apu.dmc.outputLevel = value & 0x7F
	case 0x4012:
		apu.dmc.sampleAddress = 0xC000 + uint16(value)<<6
	case 0x4013:
		apu.dmc.sampleLength = uint16(value)<<4 + 1

	case 0x4015:
		apu.writeStatus(value)
	case 0x4017:
		apu.writeFrameCounter(value)
	}
}

func (apu *APU) writePulseControl(pulse *pulseChannel, value uint8) {
	pulse.dutyCycle = value >> 6
	pulse.envelopeLoop = value&0x20 != 0
	pulse.lengthHalt = pulse.envelopeLoop
	pulse.envelopeDisable = value&0x10 != 0
	pulse.volume = value & 0x0F
	pulse.envelopeStart = true
}

func (apu *APU) writePulseSweep(pulse *pulseChannel, value uint8) {
	pulse.sweepEnable = value&0x80 != 0
	pulse.sweepPeriod = (value >> 4) & 0x07
	pulse.sweepNegate = value&0x08 != 0
	pulse.sweepShift = value & 0x07
	pulse.sweepReload = true
}

func (apu *APU) writePulseTimerHigh(pulse *pulseChannel, value uint8) {
	pulse.timer = (pulse.timer & 0x00FF) | uint16(value&0x07)<<8
	if pulse.enabled {
		pulse.lengthCounter = lengthTable[value>>3]
	}
	pulse.envelopeStart = true
	pulse.sequencerPos = 0
}

// writeStatus handles $4015: enabling and disabling channels. A
// disabled channel has its length counter cleared immediately, which is
// the hardware behavior host mutes deliberately avoid.
func (apu *APU) writeStatus(value uint8) {
	apu.pulse1.enabled = value&0x01 != 0
	apu.pulse2.enabled = value&0x02 != 0
	apu.triangle.enabled = value&0x04 != 0
	apu.noise.enabled = value&0x08 != 0
	apu.dmc.enabled = value&0x10 != 0

	if !apu.pulse1.enabled {
		apu.pulse1.lengthCounter = 0
	}
	if !apu.pulse2.enabled {
		apu.pulse2.lengthCounter = 0
	}
	if !apu.triangle.enabled {
		apu.triangle.lengthCounter = 0
	}
	if !apu.noise.enabled {
		apu.noise.lengthCounter = 0
	}
	if !apu.dmc.enabled {
		apu.dmc.bytesRemaining = 0
	} else if apu.dmc.bytesRemaining == 0 {
		apu.dmc.currentAddress = apu.dmc.sampleAddress
		apu.dmc.bytesRemaining = apu.dmc.sampleLength
	}
	apu.dmc.irqFlag = false
}

func (apu *APU) writeFrameCounter(value uint8) {
	apu.frameMode = value&0x80 != 0
	apu.frameIRQEnable = value&0x40 == 0
	if !apu.frameIRQEnable {
		apu.frameIRQFlag = false
	}
	apu.frameCounter = 0
	if apu.frameMode {
		apu.clockEnvelopeAndLinear()
		apu.clockLengthAndSweep()
	}
}

// ReadStatus handles $4015 reads: channel activity plus the IRQ flags.
// Reading clears the frame IRQ flag.
func (apu *APU) ReadStatus() uint8 {
	var status uint8
	if apu.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if apu.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if apu.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if apu.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if apu.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if apu.frameIRQFlag {
		status |= 0x40
	}
	if apu.dmc.irqFlag {
		status |= 0x80
	}
	apu.frameIRQFlag = false
	return status
}

func (apu *APU) pulseOutput(pulse *pulseChannel) uint8 {
	if pulse.lengthCounter == 0 || pulse.timer < 8 || pulse.timer > 0x7FF {
		return 0
	}
	if dutyTable[pulse.dutyCycle][pulse.sequencerPos] == 0 {
		return 0
	}
	if pulse.envelopeDisable {
		return pulse.volume
	}
	return pulse.envelopeCounter
}

func (apu *APU) triangleOutput() uint8 {
	tri := &apu.triangle
	if tri.lengthCounter == 0 || tri.linearCounter == 0 || tri.timer < 2 {
		return 0
	}
	return triangleTable[tri.sequencerPos]
}

func (apu *APU) noiseOutput() uint8 {
	noise := &apu.noise
	if noise.lengthCounter == 0 || noise.shiftRegister&0x01 != 0 {
		return 0
	}
	if noise.envelopeDisable {
		return noise.volume
	}
	return noise.envelopeCounter
}

// generateSample resamples the CPU-rate output down to the target rate
// with a fractional accumulator, pushing one stereo pair per output
// sample.
func (apu *APU) generateSample() {
	apu.cycleAccumulator += float64(apu.sampleRate) / cpuFrequency
	if apu.cycleAccumulator < 1.0 {
		return
	}
	apu.cycleAccumulator -= 1.0

	var p1, p2, tri, noi, dmc uint8
	if !apu.hostMute[0] {
		p1 = apu.pulseOutput(&apu.pulse1)
	}
	if !apu.hostMute[1] {
		p2 = apu.pulseOutput(&apu.pulse2)
	}
	if !apu.hostMute[2] {
		tri = apu.triangleOutput()
	}
	if !apu.hostMute[3] {
		noi = apu.noiseOutput()
	}
	if !apu.hostMute[4] {
		dmc = apu.dmc.outputLevel
	}

	sample := mix(p1, p2, tri, noi, dmc)
	apu.pushSample(sample, sample)
}

// mix applies the nonlinear hardware mixer formulas and converts to a
// signed 16-bit sample.
func mix(pulse1, pulse2, triangle, noise, dmc uint8) int16 {
	var pulseOut float64
	if pulseSum := float64(pulse1) + float64(pulse2); pulseSum > 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	var tndOut float64
	tndSum := float64(triangle)/8227.0 + float64(noise)/12241.0 + float64(dmc)/22638.0
	if tndSum > 0 {
		tndOut = 159.79 / (1.0/tndSum + 100.0)
	}

	// The mixer output lands in [0, 1).
	level := (pulseOut + tndOut) * 32767.0
	if level > 32767 {
		level = 32767
	}
	return int16(level)
}

func (apu *APU) pushSample(left, right int16) {
	if apu.ringCount+2 > ringCapacity {
		// Drop the oldest stereo pair.
		apu.ringRead = (apu.ringRead + 2) % ringCapacity
		apu.ringCount -= 2
	}
	apu.ring[apu.ringWrite] = left
	apu.ring[(apu.ringWrite+1)%ringCapacity] = right
	apu.ringWrite = (apu.ringWrite + 2) % ringCapacity
	apu.ringCount += 2
}

// SamplesAvailable returns the number of buffered int16 values.
func (apu *APU) SamplesAvailable() int {
	return apu.ringCount
}

// ReadSamples copies up to len(dst) buffered samples into dst and
// returns the count. Samples beyond the destination's capacity stay
// buffered for the next read.
func (apu *APU) ReadSamples(dst []int16) int {
	n := len(dst)
	if n > apu.ringCount {
		n = apu.ringCount
	}
	for i := 0; i < n; i++ {
		dst[i] = apu.ring[apu.ringRead]
		apu.ringRead = (apu.ringRead + 1) % ringCapacity
	}
	apu.ringCount -= n
	return n
}

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// Serialized sizes of each unit. The host mute mask and the sample ring
// are frontend state and stay out of snapshots.
const (
	pulseStateSize    = 21
	triangleStateSize = 11
	noiseStateSize    = 15
	dmcStateSize      = 19
	frameStateSize    = 21

	// StateSize is the APU's contribution to a snapshot.
	StateSize = 2*pulseStateSize + triangleStateSize + noiseStateSize +
		dmcStateSize + frameStateSize
)

// SaveState serializes every channel, the frame counter and the
// resampler position.
func (apu *APU) SaveState(data []byte) {
	offset := 0
	offset += savePulse(&apu.pulse1, data[offset:])
	offset += savePulse(&apu.pulse2, data[offset:])
	offset += apu.saveTriangle(data[offset:])
	offset += apu.saveNoise(data[offset:])
	offset += apu.saveDMC(data[offset:])

	binary.LittleEndian.PutUint16(data[offset:], apu.frameCounter)
	data[offset+2] = boolByte(apu.frameMode)
	data[offset+3] = boolByte(apu.frameIRQEnable)
	data[offset+4] = boolByte(apu.frameIRQFlag)
	binary.LittleEndian.PutUint64(data[offset+5:], apu.cycles)
	binary.LittleEndian.PutUint64(data[offset+13:], math.Float64bits(apu.cycleAccumulator))
}

// LoadState restores state previously produced by SaveState.
func (apu *APU) LoadState(data []byte) {
	offset := 0
	offset += loadPulse(&apu.pulse1, data[offset:])
	offset += loadPulse(&apu.pulse2, data[offset:])
	offset += apu.loadTriangle(data[offset:])
	offset += apu.loadNoise(data[offset:])
	offset += apu.loadDMC(data[offset:])

	apu.frameCounter = binary.LittleEndian.Uint16(data[offset:])
	apu.frameMode = data[offset+2] != 0
	apu.frameIRQEnable = data[offset+3] != 0
	apu.frameIRQFlag = data[offset+4] != 0
	apu.cycles = binary.LittleEndian.Uint64(data[offset+5:])
	apu.cycleAccumulator = math.Float64frombits(binary.LittleEndian.Uint64(data[offset+13:]))
}

func savePulse(p *pulseChannel, data []byte) int {
	data[0] = boolByte(p.enabled)
	data[1] = p.dutyCycle
	data[2] = boolByte(p.envelopeLoop)
	data[3] = boolByte(p.envelopeDisable)
	data[4] = p.volume
	data[5] = boolByte(p.sweepEnable)
	data[6] = p.sweepPeriod
	data[7] = boolByte(p.sweepNegate)
	data[8] = p.sweepShift
	data[9] = boolByte(p.sweepReload)
	data[10] = p.sweepCounter
	binary.LittleEndian.PutUint16(data[11:], p.timer)
	binary.LittleEndian.PutUint16(data[13:], p.timerCounter)
	data[15] = p.lengthCounter
	data[16] = boolByte(p.lengthHalt)
	data[17] = boolByte(p.envelopeStart)
	data[18] = p.envelopeCounter
	data[19] = p.envelopeDivider
	data[20] = p.sequencerPos
	return pulseStateSize
}

func loadPulse(p *pulseChannel, data []byte) int {
	p.enabled = data[0] != 0
	p.dutyCycle = data[1]
	p.envelopeLoop = data[2] != 0
	p.envelopeDisable = data[3] != 0
	p.volume = data[4]
	p.sweepEnable = data[5] != 0
	p.sweepPeriod = data[6]
	p.sweepNegate = data[7] != 0
	p.sweepShift = data[8]
	p.sweepReload = data[9] != 0
	p.sweepCounter = data[10]
	p.timer = binary.LittleEndian.Uint16(data[11:])
	p.timerCounter = binary.LittleEndian.Uint16(data[13:])
	p.lengthCounter = data[15]
	p.lengthHalt = data[16] != 0
	p.envelopeStart = data[17] != 0
	p.envelopeCounter = data[18]
	p.envelopeDivider = data[19]
	p.sequencerPos = data[20]
	return pulseStateSize
}

func (apu *APU) saveTriangle(data []byte) int {
	tri := &apu.triangle
	data[0] = boolByte(tri.enabled)
	data[1] = boolByte(tri.lengthCounterHalt)
	data[2] = tri.linearCounterLoad
	binary.LittleEndian.PutUint16(data[3:], tri.timer)
	binary.LittleEndian.PutUint16(data[5:], tri.timerCounter)
	data[7] = tri.lengthCounter
	data[8] = tri.linearCounter
	data[9] = boolByte(tri.linearCounterReload)
	data[10] = tri.sequencerPos
	return triangleStateSize
}

func (apu *APU) loadTriangle(data []byte) int {
	tri := &apu.triangle
	tri.enabled = data[0] != 0
	tri.lengthCounterHalt = data[1] != 0
	tri.linearCounterLoad = data[2]
	tri.timer = binary.LittleEndian.Uint16(data[3:])
	tri.timerCounter = binary.LittleEndian.Uint16(data[5:])
	tri.lengthCounter = data[7]
	tri.linearCounter = data[8]
	tri.linearCounterReload = data[9] != 0
	tri.sequencerPos = data[10]
	return triangleStateSize
}

func (apu *APU) saveNoise(data []byte) int {
	noise := &apu.noise
	data[0] = boolByte(noise.enabled)
	data[1] = boolByte(noise.envelopeLoop)
	data[2] = boolByte(noise.envelopeDisable)
	data[3] = noise.volume
	data[4] = boolByte(noise.mode)
	data[5] = noise.periodIndex
	binary.LittleEndian.PutUint16(data[6:], noise.timerCounter)
	data[8] = noise.lengthCounter
	data[9] = boolByte(noise.lengthHalt)
	data[10] = boolByte(noise.envelopeStart)
	data[11] = noise.envelopeCounter
	data[12] = noise.envelopeDivider
	binary.LittleEndian.PutUint16(data[13:], noise.shiftRegister)
	return noiseStateSize
}

func (apu *APU) loadNoise(data []byte) int {
	noise := &apu.noise
	noise.enabled = data[0] != 0
	noise.envelopeLoop = data[1] != 0
	noise.envelopeDisable = data[2] != 0
	noise.volume = data[3]
	noise.mode = data[4] != 0
	noise.periodIndex = data[5]
	noise.timerCounter = binary.LittleEndian.Uint16(data[6:])
	noise.lengthCounter = data[8]
	noise.lengthHalt = data[9] != 0
	noise.envelopeStart = data[10] != 0
	noise.envelopeCounter = data[11]
	noise.envelopeDivider = data[12]
	noise.shiftRegister = binary.LittleEndian.Uint16(data[13:])
	return noiseStateSize
}

func (apu *APU) saveDMC(data []byte) int {
	dmc := &apu.dmc
	data[0] = boolByte(dmc.enabled)
	data[1] = boolByte(dmc.irqEnable)
	data[2] = boolByte(dmc.loop)
	data[3] = dmc.rateIndex
	data[4] = dmc.outputLevel
	binary.LittleEndian.PutUint16(data[5:], dmc.sampleAddress)
	binary.LittleEndian.PutUint16(data[7:], dmc.sampleLength)
	binary.LittleEndian.PutUint16(data[9:], dmc.timerCounter)
	data[11] = dmc.sampleBuffer
	data[12] = dmc.sampleBufferBits
	data[13] = boolByte(dmc.sampleBufferEmpty)
	binary.LittleEndian.PutUint16(data[14:], dmc.bytesRemaining)
	binary.LittleEndian.PutUint16(data[16:], dmc.currentAddress)
	data[18] = boolByte(dmc.irqFlag)
	return dmcStateSize
}

func (apu *APU) loadDMC(data []byte) int {
	dmc := &apu.dmc
	dmc.enabled = data[0] != 0
	dmc.irqEnable = data[1] != 0
	dmc.loop = data[2] != 0
	dmc.rateIndex = data[3]
	dmc.outputLevel = data[4]
	dmc.sampleAddress = binary.LittleEndian.Uint16(data[5:])
	dmc.sampleLength = binary.LittleEndian.Uint16(data[7:])
	dmc.timerCounter = binary.LittleEndian.Uint16(data[9:])
	dmc.sampleBuffer = data[11]
	dmc.sampleBufferBits = data[12]
	dmc.sampleBufferEmpty = data[13] != 0
	dmc.bytesRemaining = binary.LittleEndian.Uint16(data[14:])
	dmc.currentAddress = binary.LittleEndian.Uint16(data[16:])
	dmc.irqFlag = data[18] != 0
	return dmcStateSize
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
