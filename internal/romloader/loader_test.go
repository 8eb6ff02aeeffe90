package romloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeROM builds a minimal iNES image with one PRG bank.
func fakeROM() []byte {
	rom := make([]byte, 16+16384)
	copy(rom, magicINES)
	rom[4] = 1
	return rom
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRawROM(t *testing.T) {
	rom := fakeROM()
	path := writeFile(t, "game.nes", rom)

	data, name, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(data, rom) {
		t.Error("loaded data differs from original ROM")
	}
	if name != "game" {
		t.Errorf("display name = %q, want %q", name, "game")
	}
}

func TestLoadRawROMWithOddExtension(t *testing.T) {
	// Magic detection should win over a misleading extension.
	path := writeFile(t, "game.bin", fakeROM())

	if _, _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
}

func TestLoadZIP(t *testing.T) {
	rom := fakeROM()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"readme.txt", []byte("not a rom")},
		{"roms/game.nes", rom},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(entry.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "game.zip", buf.Bytes())

	data, name, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(data, rom) {
		t.Error("extracted data differs from original ROM")
	}
	if name != "game" {
		t.Errorf("display name = %q, want %q", name, "game")
	}
}

func TestLoadZIPWithoutROM(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("empty")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "empty.zip", buf.Bytes())

	_, _, err = LoadFile(path)
	if !errors.Is(err, ErrNoROMInArchive) {
		t.Errorf("err = %v, want ErrNoROMInArchive", err)
	}
}

func TestLoadGzip(t *testing.T) {
	rom := fakeROM()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(rom); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "game.nes.gz", buf.Bytes())

	data, name, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(data, rom) {
		t.Error("decompressed data differs from original ROM")
	}
	if name != "game" {
		t.Errorf("display name = %q, want %q", name, "game")
	}
}

func TestLoadTarGz(t *testing.T) {
	rom := fakeROM()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	entries := []struct {
		name string
		data []byte
	}{
		{"info.txt", []byte("archive info")},
		{"game.nes", rom},
	}
	for _, entry := range entries {
		if err := tw.WriteHeader(&tar.Header{
			Name: entry.name,
			Mode: 0o644,
			Size: int64(len(entry.data)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(entry.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(tarBuf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "game.tar.gz", buf.Bytes())

	data, name, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !bytes.Equal(data, rom) {
		t.Error("extracted data differs from original ROM")
	}
	if name != "game" {
		t.Errorf("display name = %q, want %q", name, "game")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "garbage.dat", []byte("this is not a rom at all"))

	_, _, err := LoadFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.nes"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCorrupt7zReportsError(t *testing.T) {
	// Valid magic, truncated body.
	path := writeFile(t, "bad.7z", magic7z)

	if _, _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for corrupt 7z archive")
	}
}

func TestCorruptRARReportsError(t *testing.T) {
	path := writeFile(t, "bad.rar", []byte("Rar!\x1A\x07\x00"))

	if _, _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for corrupt rar archive")
	}
}

func TestDetectContainer(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		path   string
		want   containerFormat
	}{
		{"ines magic", fakeROM()[:8], "whatever.bin", containerNone},
		{"zip magic", magicZIP, "x.dat", containerZIP},
		{"7z magic", magic7z, "x.dat", container7z},
		{"gzip magic", magicGzip, "x.dat", containerGzip},
		{"rar magic", magicRAR, "x.dat", containerRAR},
		{"nes extension", []byte{0, 0, 0, 0}, "game.nes", containerNone},
		{"tgz extension", []byte{0, 0, 0, 0}, "game.tgz", containerGzip},
		{"unknown", []byte{0, 0, 0, 0}, "game.dat", containerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectContainer(tt.header, tt.path); got != tt.want {
				t.Errorf("detectContainer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadCappedRejectsOversize(t *testing.T) {
	big := bytes.NewReader(make([]byte, maxROMSize+1))
	if _, err := readCapped(big); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}
