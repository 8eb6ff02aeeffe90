// Package romloader resolves a path or byte blob into raw iNES data,
// looking inside ZIP, 7z, RAR and gzip/tar archives when needed.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	magicINES   = []byte("NES\x1A")
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte("Rar!")
)

// maxROMSize caps extraction at 8MB, well above the largest licensed
// cartridge.
const maxROMSize = 8 * 1024 * 1024

var (
	// ErrNoROMInArchive means the archive held no .nes entry.
	ErrNoROMInArchive = errors.New("no .nes file found in archive")
	// ErrUnsupportedFormat means neither an iNES image nor a known
	// archive format was detected.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge means the extracted content exceeded maxROMSize.
	ErrFileTooLarge = errors.New("file exceeds maximum ROM size")
)

type containerFormat int

const (
	containerUnknown containerFormat = iota
	containerNone
	containerZIP
	container7z
	containerGzip
	containerRAR
)

// LoadFile reads ROM data from path. Archives are detected by magic
// bytes with the extension as a fallback, and the first .nes entry is
// extracted. Returns the data and the display name of the ROM.
func LoadFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("read header: %w", err)
	}

	switch detectContainer(header[:n], path) {
	case containerNone:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", err
		}
		data, err := readCapped(f)
		if err != nil {
			return nil, "", err
		}
		return data, romDisplayName(path), nil
	case containerZIP:
		return extractZIP(path)
	case container7z:
		return extract7z(path)
	case containerGzip:
		return extractGzip(path)
	case containerRAR:
		return extractRAR(path)
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func detectContainer(header []byte, path string) containerFormat {
	if bytes.HasPrefix(header, magicINES) {
		return containerNone
	}
	if bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd) {
		return containerZIP
	}
	if bytes.HasPrefix(header, magic7z) {
		return container7z
	}
	if bytes.HasPrefix(header, magicRAR) {
		return containerRAR
	}
	if bytes.HasPrefix(header, magicGzip) {
		return containerGzip
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".nes":
		return containerNone
	case ".zip":
		return containerZIP
	case ".7z":
		return container7z
	case ".gz", ".tgz":
		return containerGzip
	case ".rar":
		return containerRAR
	}
	return containerUnknown
}

// isNESFile reports whether an archive entry name looks like a ROM.
func isNESFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".nes")
}

// romDisplayName strips the directory and extension from a ROM path.
func romDisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// readCapped reads r in full, failing if it exceeds maxROMSize.
func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxROMSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
