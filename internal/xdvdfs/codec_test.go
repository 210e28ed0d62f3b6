package xdvdfs_test

import (
	"testing"

	"github.com/autobrr/xvfs/internal/imagetest"
	"github.com/autobrr/xvfs/internal/xdvdfs"
)

func TestParseVolumeDescriptor_Valid(t *testing.T) {
	img := imagetest.New()
	img.WriteVolumeDescriptor(33, 2048, 132000000000000000)
	path := imagetest.Build(t, img)

	stream, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	vd, err := xdvdfs.ReadVolumeDescriptor(stream)
	if err != nil {
		t.Fatalf("ReadVolumeDescriptor: %v", err)
	}
	if !vd.Valid() {
		t.Fatalf("expected valid volume descriptor")
	}
	if vd.RootDirSector != 33 || vd.RootDirSize != 2048 {
		t.Fatalf("unexpected root dir fields: %+v", vd)
	}
	if vd.FileTime != 132000000000000000 {
		t.Fatalf("FileTime=%d want 132000000000000000", vd.FileTime)
	}
}

func TestParseVolumeDescriptor_BadMagic(t *testing.T) {
	img := imagetest.New()
	img.PutSector(xdvdfs.VolumeDescriptorSector, make([]byte, xdvdfs.SectorSize))
	path := imagetest.Build(t, img)

	stream, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	vd, err := xdvdfs.ReadVolumeDescriptor(stream)
	if err != nil {
		t.Fatalf("ReadVolumeDescriptor: %v", err)
	}
	if vd.Valid() {
		t.Fatalf("expected invalid volume descriptor")
	}
}

func TestParseVolumeDescriptor_ZeroRootDir(t *testing.T) {
	img := imagetest.New()
	img.WriteVolumeDescriptor(0, 0, 0)
	path := imagetest.Build(t, img)

	stream, err := xdvdfs.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	vd, err := xdvdfs.ReadVolumeDescriptor(stream)
	if err != nil {
		t.Fatalf("ReadVolumeDescriptor: %v", err)
	}
	if vd.Valid() {
		t.Fatalf("zeroed root dir sector/size must be invalid")
	}
}

func TestParseFileEntry_RoundTrip(t *testing.T) {
	node := &imagetest.Node{Name: "default.xbe", StartSector: 34, Size: 4}
	sector := imagetest.DirectorySector(node)

	e, err := xdvdfs.ParseFileEntry(sector, 33)
	if err != nil {
		t.Fatalf("ParseFileEntry: %v", err)
	}
	if e.Filename != "default.xbe" {
		t.Fatalf("Filename=%q want default.xbe", e.Filename)
	}
	if e.StartSector != 34 || e.FileSize != 4 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.IsDirectory() {
		t.Fatalf("expected a file entry, got a directory")
	}
}

func TestParseFileEntry_TruncatedFilename(t *testing.T) {
	buf := make([]byte, 0x0E+3)
	buf[0x0D] = 200 // filenameLen far exceeds remaining bytes
	if _, err := xdvdfs.ParseFileEntry(buf, 0); err == nil {
		t.Fatalf("expected error for truncated filename")
	}
}

func TestFileEntry_EmptySentinel(t *testing.T) {
	buf := make([]byte, 0x0E)
	e, err := xdvdfs.ParseFileEntry(buf, 0)
	if err != nil {
		t.Fatalf("ParseFileEntry: %v", err)
	}
	if !e.Empty() {
		t.Fatalf("zeroed record should be the empty sentinel")
	}
}
