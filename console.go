// Package nescaster is an NTSC NES emulation core. A Console owns one
// emulated machine and exposes frame-stepped execution, controller
// input, audio pull, and binary save states to a host application.
//
// A Console is not safe for concurrent use. The host drives it from a
// single goroutine, typically one RunFrame per display vsync.
package nescaster

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/Virtual-Viking/NesCaster/internal/bus"
	"github.com/Virtual-Viking/NesCaster/internal/cartridge"
	"github.com/Virtual-Viking/NesCaster/internal/input"
	"github.com/Virtual-Viking/NesCaster/internal/ppu"
	"github.com/Virtual-Viking/NesCaster/internal/romloader"
)

// Frame dimensions of the PPU output.
const (
	FrameWidth  = ppu.FrameWidth
	FrameHeight = ppu.FrameHeight
)

// Button identifies one controller button, in hardware shift order.
type Button = input.Button

// Controller button values.
const (
	ButtonA      = input.ButtonA
	ButtonB      = input.ButtonB
	ButtonSelect = input.ButtonSelect
	ButtonStart  = input.ButtonStart
	ButtonUp     = input.ButtonUp
	ButtonDown   = input.ButtonDown
	ButtonLeft   = input.ButtonLeft
	ButtonRight  = input.ButtonRight
)

// State is the console lifecycle state.
type State int

const (
	// StateIdle means no ROM is loaded.
	StateIdle State = iota
	// StateReady means a ROM is loaded but execution has not started.
	StateReady
	// StateRunning means RunFrame advances emulation.
	StateRunning
	// StatePaused means execution is suspended; machine state is intact.
	StatePaused
	// StateError is reserved for unrecoverable internal faults. Every
	// current failure path validates before mutating and reports a
	// typed result instead, so the core never enters it on its own;
	// only UnloadROM or Shutdown leave this state.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// LoadResult reports the outcome of a ROM load.
type LoadResult int

const (
	// LoadSuccess means the ROM is loaded and the console is Ready.
	LoadSuccess LoadResult = iota
	// LoadFileNotFound means the path did not resolve to a file.
	LoadFileNotFound
	// LoadInvalidROM means the data is not a valid iNES image.
	LoadInvalidROM
	// LoadUnsupportedMapper means the image names a mapper the core
	// does not implement.
	LoadUnsupportedMapper
	// LoadError covers all other failures (I/O, bad archive).
	LoadError
)

func (r LoadResult) String() string {
	switch r {
	case LoadSuccess:
		return "success"
	case LoadFileNotFound:
		return "file not found"
	case LoadInvalidROM:
		return "invalid ROM"
	case LoadUnsupportedMapper:
		return "unsupported mapper"
	case LoadError:
		return "load error"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Options configures a Console. The zero value is usable.
type Options struct {
	// SampleRate is the audio output rate in Hz. 0 means 44100.
	SampleRate int

	// StateDir is where save-state slots and battery saves are
	// written. Empty means the current directory.
	StateDir string

	// RewindDepth is how many rewind snapshots to retain. 0 disables
	// rewind.
	RewindDepth int

	// RewindInterval is the frame spacing between rewind captures.
	// 0 means every 10 frames.
	RewindInterval int
}

// Console is one emulated NES. Create with New, load a ROM, Start, and
// call RunFrame once per host frame.
type Console struct {
	opts  Options
	state State

	bus     *bus.Bus
	cart    *cartridge.Cartridge
	romName string
	romPath string

	// Set around LoadROMFromBytes when the load came from a file, so
	// battery saves land next to the ROM.
	pendingROMPath string

	// Host input is latched into the controller ports at frame start.
	padMasks [2]uint8

	frameCallback func([]byte)
	audioCallback func([]int16)
	audioScratch  []int16

	overscan overscanMargins

	quickBuf   []byte
	quickValid bool

	rewind   *rewindBuffer
	recorder *wavRecorder

	fps           float64
	lastFrameTime time.Time
}

type overscanMargins struct {
	top, bottom, left, right int
}

// New creates a Console with no ROM loaded.
func New(opts Options) *Console {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.RewindInterval <= 0 {
		opts.RewindInterval = 10
	}
	return &Console{
		opts:         opts,
		state:        StateIdle,
		audioScratch: make([]int16, 4096),
	}
}

// Shutdown stops recording, persists battery RAM, and releases the
// loaded ROM. The Console returns to Idle and may be reused.
func (c *Console) Shutdown() {
	c.UnloadROM()
}

// State returns the current lifecycle state.
func (c *Console) State() State {
	return c.state
}

// LoadROMFromPath loads a ROM file. Archives (zip, 7z, rar, gzip/tar)
// are searched for their first .nes entry. On any failure the
// previously loaded ROM and its machine state are untouched.
func (c *Console) LoadROMFromPath(path string) LoadResult {
	data, name, err := romloader.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadFileNotFound
		}
		return LoadError
	}

	c.pendingROMPath = path
	result := c.LoadROMFromBytes(data, name)
	c.pendingROMPath = ""
	return result
}

// LoadROMFromBytes loads a raw iNES image. On any failure the
// previously loaded ROM and its machine state are untouched.
func (c *Console) LoadROMFromBytes(data []byte, name string) LoadResult {
	cart, err := cartridge.Load(data, name)
	if err != nil {
		switch {
		case errors.Is(err, cartridge.ErrUnsupportedMapper):
			return LoadUnsupportedMapper
		case errors.Is(err, cartridge.ErrInvalidROM):
			return LoadInvalidROM
		default:
			return LoadError
		}
	}

	// The new machine replaces the old one only after the cartridge
	// parsed cleanly.
	c.UnloadROM()
	c.cart = cart
	c.romName = name
	c.romPath = c.pendingROMPath
	c.bus = bus.New(cart, c.opts.SampleRate)
	c.restoreBatteryRAM()

	size := c.SnapshotSize()
	c.quickBuf = make([]byte, size)
	c.quickValid = false
	if c.opts.RewindDepth > 0 {
		c.rewind = newRewindBuffer(c.opts.RewindDepth, size)
	}

	c.state = StateReady
	return LoadSuccess
}

// UnloadROM persists battery RAM, discards the machine, and returns
// the console to Idle. A no-op when nothing is loaded.
func (c *Console) UnloadROM() {
	if c.bus == nil {
		c.state = StateIdle
		return
	}
	c.StopAudioRecording()
	c.persistBatteryRAM()
	c.bus = nil
	c.cart = nil
	c.romName = ""
	c.romPath = ""
	c.quickBuf = nil
	c.quickValid = false
	c.rewind = nil
	c.fps = 0
	c.lastFrameTime = time.Time{}
	c.state = StateIdle
}

// IsROMLoaded reports whether a ROM is loaded.
func (c *Console) IsROMLoaded() bool {
	return c.bus != nil
}

// ROMName returns the display name of the loaded ROM, or "".
func (c *Console) ROMName() string {
	return c.romName
}

// Start begins execution. Valid from Ready or Paused; a no-op
// otherwise.
func (c *Console) Start() {
	if c.state == StateReady || c.state == StatePaused {
		c.state = StateRunning
		c.lastFrameTime = time.Time{}
	}
}

// Pause suspends execution, preserving all machine state.
func (c *Console) Pause() {
	if c.state == StateRunning {
		c.state = StatePaused
	}
}

// Resume continues from Paused.
func (c *Console) Resume() {
	if c.state == StatePaused {
		c.state = StateRunning
		c.lastFrameTime = time.Time{}
	}
}

// Stop halts execution and returns to Ready. Machine state is kept
// until Reset, PowerCycle, or a new load.
func (c *Console) Stop() {
	if c.state == StateRunning || c.state == StatePaused {
		c.state = StateReady
	}
}

// Reset performs a soft reset: CPU reset sequence, PPU/APU register
// reset, work RAM preserved. The console keeps its current run state.
func (c *Console) Reset() {
	if c.bus == nil {
		return
	}
	c.bus.Reset()
}

// PowerCycle performs a full power cycle: every component returns to
// its power-up state, work RAM is rewritten with the power-up pattern.
func (c *Console) PowerCycle() {
	if c.bus == nil {
		return
	}
	c.bus.PowerCycle()
	c.quickValid = false
	if c.rewind != nil {
		c.rewind.clear()
	}
}

// RunFrame advances emulation by exactly one video frame. Host input
// is latched at frame start; frame and audio callbacks fire at frame
// end, on the caller's goroutine. A no-op unless Running.
func (c *Console) RunFrame() {
	if c.state != StateRunning {
		return
	}

	c.bus.Input.Controller1.SetMask(c.padMasks[0])
	c.bus.Input.Controller2.SetMask(c.padMasks[1])

	c.bus.RunFrame()
	c.updateFPS()

	if c.rewind != nil && c.bus.FrameCount()%uint64(c.opts.RewindInterval) == 0 {
		if c.SaveStateBuffer(c.rewind.scratch) > 0 {
			c.rewind.push()
		}
	}

	if c.frameCallback != nil {
		c.frameCallback(c.bus.PPU.FrameBuffer())
	}
	if c.audioCallback != nil {
		c.drainAudioToCallback()
	}
}

func (c *Console) updateFPS() {
	now := time.Now()
	if !c.lastFrameTime.IsZero() {
		dt := now.Sub(c.lastFrameTime).Seconds()
		if dt > 0 {
			instant := 1.0 / dt
			if c.fps == 0 {
				c.fps = instant
			} else {
				c.fps = c.fps*0.9 + instant*0.1
			}
		}
	}
	c.lastFrameTime = now
}

func (c *Console) drainAudioToCallback() {
	for {
		n := c.bus.APU.ReadSamples(c.audioScratch)
		if n == 0 {
			return
		}
		if c.recorder != nil {
			c.recorder.write(c.audioScratch[:n])
		}
		c.audioCallback(c.audioScratch[:n])
		if n < len(c.audioScratch) {
			return
		}
	}
}

// FrameBuffer returns the 256x240 RGBA framebuffer. The slice is
// reused across frames; it is valid until the next RunFrame.
func (c *Console) FrameBuffer() []byte {
	if c.bus == nil {
		return nil
	}
	return c.bus.PPU.FrameBuffer()
}

// SetFrameCallback registers a function called at the end of every
// RunFrame with the completed framebuffer. Pass nil to clear.
func (c *Console) SetFrameCallback(fn func(frame []byte)) {
	c.frameCallback = fn
}

// SetInput replaces the full button state of one pad (0 or 1) with a
// bitmask in Button order. Takes effect at the next frame start.
func (c *Console) SetInput(pad int, mask uint8) {
	if pad < 0 || pad > 1 {
		return
	}
	c.padMasks[pad] = mask
}

// SetButton presses or releases a single button on one pad (0 or 1).
// Takes effect at the next frame start.
func (c *Console) SetButton(pad int, button Button, pressed bool) {
	if pad < 0 || pad > 1 {
		return
	}
	if pressed {
		c.padMasks[pad] |= uint8(button)
	} else {
		c.padMasks[pad] &^= uint8(button)
	}
}

// ReadAudioSamples copies up to len(out) mixed stereo int16 samples
// into out and returns the count written. Samples not consumed remain
// queued for the next call, so a slow host never tears the waveform.
func (c *Console) ReadAudioSamples(out []int16) int {
	if c.bus == nil {
		return 0
	}
	n := c.bus.APU.ReadSamples(out)
	if n > 0 && c.recorder != nil {
		c.recorder.write(out[:n])
	}
	return n
}

// SamplesAvailable returns the number of queued int16 samples.
func (c *Console) SamplesAvailable() int {
	if c.bus == nil {
		return 0
	}
	return c.bus.APU.SamplesAvailable()
}

// SetAudioCallback registers a function called at frame end with all
// samples produced during the frame. While set, it consumes the
// sample queue; mixing it with ReadAudioSamples pulls is undefined.
// Pass nil to clear.
func (c *Console) SetAudioCallback(fn func(samples []int16)) {
	c.audioCallback = fn
}

// SampleRate returns the audio output rate in Hz.
func (c *Console) SampleRate() int {
	return c.opts.SampleRate
}

// SetAudioChannels mutes or unmutes individual channels in the mixer.
// Muted channels keep clocking, so unmuting is phase-continuous. This
// is a host control, independent of the $4015 enable bits.
func (c *Console) SetAudioChannels(pulse1, pulse2, triangle, noise, dmc bool) {
	if c.bus == nil {
		return
	}
	var mask uint8
	if pulse1 {
		mask |= 0x01
	}
	if pulse2 {
		mask |= 0x02
	}
	if triangle {
		mask |= 0x04
	}
	if noise {
		mask |= 0x08
	}
	if dmc {
		mask |= 0x10
	}
	c.bus.APU.SetChannelMask(mask)
}

// SetOverscan sets the presentation crop in pixels per edge. Purely
// advisory: the full framebuffer is still produced and timing is
// unchanged. Negative or oversized margins are clamped.
func (c *Console) SetOverscan(top, bottom, left, right int) {
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}
	c.overscan = overscanMargins{
		top:    clamp(top, FrameHeight/2),
		bottom: clamp(bottom, FrameHeight/2),
		left:   clamp(left, FrameWidth/2),
		right:  clamp(right, FrameWidth/2),
	}
}

// VisibleRect returns the framebuffer region inside the overscan crop.
func (c *Console) VisibleRect() image.Rectangle {
	return image.Rect(
		c.overscan.left,
		c.overscan.top,
		FrameWidth-c.overscan.right,
		FrameHeight-c.overscan.bottom,
	)
}

// FPS returns a smoothed frames-per-second estimate from wall-clock
// RunFrame intervals.
func (c *Console) FPS() float64 {
	return c.fps
}

// FrameCount returns the number of frames emulated since power-up.
func (c *Console) FrameCount() uint64 {
	if c.bus == nil {
		return 0
	}
	return c.bus.FrameCount()
}

// stateDir returns the configured state directory, created on demand.
func (c *Console) stateDir() (string, error) {
	dir := c.opts.StateDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// batterySavePath returns where this cartridge's battery RAM lives.
func (c *Console) batterySavePath() string {
	if c.romPath != "" {
		ext := filepath.Ext(c.romPath)
		return c.romPath[:len(c.romPath)-len(ext)] + ".sav"
	}
	dir := c.opts.StateDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.romName+".sav")
}

func (c *Console) restoreBatteryRAM() {
	if c.cart == nil || !c.cart.HasBattery() {
		return
	}
	data, err := os.ReadFile(c.batterySavePath())
	if err != nil {
		return
	}
	c.cart.SetBatteryRAM(data)
}

func (c *Console) persistBatteryRAM() {
	if c.cart == nil || !c.cart.HasBattery() {
		return
	}
	data := c.cart.BatteryRAM()
	if data == nil {
		return
	}
	path := c.batterySavePath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "nescaster: battery save failed: %v\n", err)
	}
}
