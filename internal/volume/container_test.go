package volume_test

import (
	"testing"

	"github.com/autobrr/xvfs/internal/imagetest"
	"github.com/autobrr/xvfs/internal/index"
	"github.com/autobrr/xvfs/internal/volume"
	"github.com/autobrr/xvfs/internal/xdvdfs"
	"github.com/autobrr/xvfs/internal/xvfserr"
)

func buildMinimal(t *testing.T) *volume.Container {
	t.Helper()
	img := imagetest.New()
	fileSector := img.AllocSector()
	img.PutFile(fileSector, []byte("ABCD"))

	rootDirSector := img.AllocSector()
	img.PutSector(rootDirSector, imagetest.DirectorySector(&imagetest.Node{
		Name: "default.xbe", StartSector: fileSector, Size: 4,
	}))
	img.WriteVolumeDescriptor(rootDirSector, xdvdfs.SectorSize, 0)
	path := imagetest.Build(t, img)

	c, err := volume.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestContainer_EntryByPathAndRead(t *testing.T) {
	c := buildMinimal(t)

	_, e, err := c.EntryByPath("/default.xbe")
	if err != nil {
		t.Fatalf("EntryByPath: %v", err)
	}
	if e.FileSize != 4 {
		t.Fatalf("FileSize=%d want 4", e.FileSize)
	}

	buf := make([]byte, 4)
	n, err := c.ReadFile(e, 0, buf)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n != 4 || string(buf) != "ABCD" {
		t.Fatalf("ReadFile(0,4)=%q want ABCD", buf[:n])
	}

	buf2 := make([]byte, 10)
	n2, err := c.ReadFile(e, 2, buf2)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n2 != 2 || string(buf2[:n2]) != "CD" {
		t.Fatalf("ReadFile(2,10)=%q want CD", buf2[:n2])
	}
}

func TestContainer_EntryByPathNotFound(t *testing.T) {
	c := buildMinimal(t)
	if _, _, err := c.EntryByPath("/missing.xbe"); !xvfserr.Is(err, xvfserr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestContainer_ReadFile_BoundaryCases(t *testing.T) {
	c := buildMinimal(t)
	_, e, err := c.EntryByPath("/default.xbe")
	if err != nil {
		t.Fatalf("EntryByPath: %v", err)
	}

	cases := []struct {
		name   string
		offset int64
		buf    int
		want   int
	}{
		{"negative offset", -1, 4, 0},
		{"offset at size", 4, 4, 0},
		{"offset past size", 100, 4, 0},
		{"zero length", 0, 0, 0},
		{"partial tail", 2, 10, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, tc.buf)
			n, err := c.ReadFile(e, tc.offset, buf)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if n != tc.want {
				t.Fatalf("n=%d want %d", n, tc.want)
			}
		})
	}
}

func TestContainer_ReadDirectoryYieldsZero(t *testing.T) {
	img := imagetest.New()
	videoSector := img.AllocSector()
	img.PutFile(videoSector, []byte("x"))
	mediaDirSector := img.AllocSector()
	img.PutSector(mediaDirSector, imagetest.DirectorySector(&imagetest.Node{
		Name: "v", StartSector: videoSector, Size: 1,
	}))
	rootDirSector := img.AllocSector()
	img.PutSector(rootDirSector, imagetest.DirectorySector(&imagetest.Node{
		Name: "media", IsDir: true, StartSector: mediaDirSector,
	}))
	img.WriteVolumeDescriptor(rootDirSector, xdvdfs.SectorSize, 0)
	path := imagetest.Build(t, img)

	c, err := volume.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, e, err := c.EntryByPath("/media")
	if err != nil {
		t.Fatalf("EntryByPath: %v", err)
	}

	buf := make([]byte, 16)
	n, err := c.ReadFile(e, 0, buf)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n != 0 {
		t.Fatalf("reading a directory should yield 0 bytes, got %d", n)
	}
}

func TestContainer_ListDirectory(t *testing.T) {
	c := buildMinimal(t)
	entries, err := c.ListDirectory(index.RootHandle)
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != 1 || entries[0].Entry.Filename != "default.xbe" {
		t.Fatalf("unexpected root listing: %+v", entries)
	}
}

func TestContainer_LabelDerivedFromFilename(t *testing.T) {
	c := buildMinimal(t)
	if c.Label() != "image" {
		t.Fatalf("Label()=%q want image", c.Label())
	}
}

func TestContainer_BadMagicFails(t *testing.T) {
	img := imagetest.New()
	img.PutSector(xdvdfs.VolumeDescriptorSector, make([]byte, xdvdfs.SectorSize))
	path := imagetest.Build(t, img)

	if _, err := volume.Open(path); !xvfserr.Is(err, xvfserr.KindFormat) {
		t.Fatalf("expected KindFormat, got %v", err)
	}
}
