package xdvdfs_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/autobrr/xvfs/internal/xdvdfs"
)

func TestStream_ReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.bin")
	content := bytes.Repeat([]byte("ABCD"), 1024)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	buf := make([]byte, 4)
	n, err := s.ReadAt(0, buf)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != 4 || string(buf) != "ABCD" {
		t.Fatalf("ReadAt(0)=%q want ABCD", buf[:n])
	}
}

func TestStream_ReadAtWithOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.bin")
	content := append(bytes.Repeat([]byte{0}, 8), []byte("XYZ1")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	s.SetOffset(8)
	buf := make([]byte, 4)
	if _, err := s.ReadAt(0, buf); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "XYZ1" {
		t.Fatalf("ReadAt with offset=%q want XYZ1", buf)
	}
}

func TestStream_ReadAtShortReadAtEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.bin")
	if err := os.WriteFile(path, []byte("AB"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	buf := make([]byte, 10)
	n, err := s.ReadAt(0, buf)
	if n != 2 {
		t.Fatalf("n=%d want 2", n)
	}
	if err != io.EOF {
		t.Fatalf("err=%v want io.EOF", err)
	}
}

func TestStream_ReadSector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.bin")
	content := make([]byte, xdvdfs.SectorSize*2)
	copy(content[xdvdfs.SectorSize:], []byte("second-sector"))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	buf, err := s.ReadSector(1)
	if err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if !bytes.HasPrefix(buf, []byte("second-sector")) {
		t.Fatalf("unexpected sector contents: %q", buf[:20])
	}
}
