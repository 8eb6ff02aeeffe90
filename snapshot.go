package nescaster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
)

// Snapshot format: a fixed 22-byte header followed by the machine
// payload. The payload is a flat little-endian image of every
// component's state; its size is fixed per loaded cartridge (CHR RAM
// and mapper registers vary). Host settings such as overscan, channel
// mutes, and callbacks are not machine state and are not captured.
var snapshotMagic = []byte("NESCASTER-ST")

const (
	snapshotVersion    = 1
	snapshotHeaderSize = 22
)

// SnapshotSize returns the byte size of a snapshot for the loaded
// cartridge, or 0 when no ROM is loaded.
func (c *Console) SnapshotSize() int {
	if c.bus == nil {
		return 0
	}
	return snapshotHeaderSize + c.bus.StateSize()
}

// SaveStateBuffer serializes the machine into buf and returns the
// number of bytes written. Returns 0 when no ROM is loaded or buf is
// too small. Does not allocate.
func (c *Console) SaveStateBuffer(buf []byte) int {
	size := c.SnapshotSize()
	if size == 0 || len(buf) < size {
		return 0
	}

	payload := buf[snapshotHeaderSize:size]
	c.bus.SaveState(payload)

	copy(buf[0:12], snapshotMagic)
	binary.LittleEndian.PutUint16(buf[12:14], snapshotVersion)
	binary.LittleEndian.PutUint32(buf[14:18], c.cart.CRC32())
	binary.LittleEndian.PutUint32(buf[18:22], crc32.ChecksumIEEE(payload))
	return size
}

// LoadStateBuffer restores the machine from a snapshot produced by
// SaveStateBuffer. The size, magic, version, ROM identity, and payload
// checksum are all validated before any machine state is touched;
// on mismatch the running machine is unchanged and false is returned.
func (c *Console) LoadStateBuffer(data []byte) bool {
	size := c.SnapshotSize()
	if size == 0 || len(data) != size {
		return false
	}
	if !bytes.Equal(data[0:12], snapshotMagic) {
		return false
	}
	if binary.LittleEndian.Uint16(data[12:14]) != snapshotVersion {
		return false
	}
	if binary.LittleEndian.Uint32(data[14:18]) != c.cart.CRC32() {
		return false
	}
	payload := data[snapshotHeaderSize:]
	if binary.LittleEndian.Uint32(data[18:22]) != crc32.ChecksumIEEE(payload) {
		return false
	}

	c.bus.LoadState(payload)
	return true
}

// QuickSave captures the machine into a preallocated scratch buffer.
// No allocation per call, suitable for per-frame use.
func (c *Console) QuickSave() bool {
	if c.SaveStateBuffer(c.quickBuf) == 0 {
		return false
	}
	c.quickValid = true
	return true
}

// QuickLoad restores the last QuickSave. Returns false when no quick
// save exists for the loaded ROM.
func (c *Console) QuickLoad() bool {
	if !c.quickValid {
		return false
	}
	return c.LoadStateBuffer(c.quickBuf)
}

// slotPath returns the save file for one numbered slot.
func (c *Console) slotPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("%s.state%d", c.romName, slot))
}

// SaveState writes the machine state to numbered slot 0-9 in the
// state directory.
func (c *Console) SaveState(slot int) bool {
	if c.bus == nil || slot < 0 || slot > 9 {
		return false
	}
	dir, err := c.stateDir()
	if err != nil {
		return false
	}
	buf := make([]byte, c.SnapshotSize())
	if c.SaveStateBuffer(buf) == 0 {
		return false
	}
	return os.WriteFile(c.slotPath(dir, slot), buf, 0o644) == nil
}

// LoadState restores the machine state from numbered slot 0-9.
// Returns false when the slot is empty or holds a snapshot for a
// different ROM.
func (c *Console) LoadState(slot int) bool {
	if c.bus == nil || slot < 0 || slot > 9 {
		return false
	}
	dir, err := c.stateDir()
	if err != nil {
		return false
	}
	data, err := os.ReadFile(c.slotPath(dir, slot))
	if err != nil {
		return false
	}
	return c.LoadStateBuffer(data)
}
