// Package imagetest builds small synthetic XDVDFS images for tests, in the
// style of the corpus's own synthetic test fixtures (files written with
// WriteAt under t.TempDir()) rather than checked-in binary ISOs.
package imagetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/autobrr/xvfs/internal/xdvdfs"
)

// Node is one directory-tree record to be laid out in a directory sector.
type Node struct {
	Name        string
	IsDir       bool
	StartSector uint32
	Size        uint32
	Left        *Node
	Right       *Node
}

// DirectorySector lays out root (and its Left/Right siblings, pre-order) as
// a single XDVDFS directory sector, computing quad-word child offsets.
func DirectorySector(root *Node) []byte {
	buf := make([]byte, xdvdfs.SectorSize)
	if root == nil {
		return buf
	}

	offsets := make(map[*Node]int)
	next := 0
	var assign func(n *Node)
	assign = func(n *Node) {
		if n == nil {
			return
		}
		offsets[n] = next
		recLen := 0x0E + len(n.Name)
		next += recLen
		if rem := next % 4; rem != 0 {
			next += 4 - rem
		}
		assign(n.Left)
		assign(n.Right)
	}
	assign(root)

	var write func(n *Node)
	write = func(n *Node) {
		if n == nil {
			return
		}
		off := offsets[n]
		var leftQ, rightQ uint16
		if n.Left != nil {
			leftQ = uint16(offsets[n.Left] / 4)
		}
		if n.Right != nil {
			rightQ = uint16(offsets[n.Right] / 4)
		}

		attrs := byte(xdvdfs.AttrReadOnly)
		if n.IsDir {
			attrs = xdvdfs.AttrDirectory
		}

		putU16(buf[off:], leftQ)
		putU16(buf[off+2:], rightQ)
		putU32(buf[off+4:], n.StartSector)
		putU32(buf[off+8:], n.Size)
		buf[off+0x0C] = attrs
		buf[off+0x0D] = byte(len(n.Name))
		copy(buf[off+0x0E:], n.Name)

		write(n.Left)
		write(n.Right)
	}
	write(root)

	return buf
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putU64(b []byte, v uint64) {
	putU32(b, uint32(v))
	putU32(b[4:], uint32(v>>32))
}

// Image accumulates sector contents and file payloads before being
// flattened into a single backing file.
type Image struct {
	sectors    map[uint32][]byte
	nextSector uint32
}

// New returns an empty image. Sector 32 is reserved for the volume
// descriptor; sector allocation for everything else starts at 33.
func New() *Image {
	return &Image{sectors: make(map[uint32][]byte), nextSector: 33}
}

// AllocSector reserves and returns the next free sector number.
func (img *Image) AllocSector() uint32 {
	s := img.nextSector
	img.nextSector++
	return s
}

// PutSector stores data (padded or truncated to one sector) at sector.
func (img *Image) PutSector(sector uint32, data []byte) {
	buf := make([]byte, xdvdfs.SectorSize)
	copy(buf, data)
	img.sectors[sector] = buf
}

// PutFile writes data starting at sector, spanning as many sectors as
// needed; the final sector is zero-padded.
func (img *Image) PutFile(sector uint32, data []byte) {
	for off := 0; off < len(data) || off == 0; off += xdvdfs.SectorSize {
		end := off + xdvdfs.SectorSize
		if end > len(data) {
			end = len(data)
		}
		img.PutSector(sector+uint32(off/xdvdfs.SectorSize), data[off:end])
		if end == len(data) {
			break
		}
	}
}

// WriteVolumeDescriptor writes a valid volume descriptor at sector 32.
func (img *Image) WriteVolumeDescriptor(rootDirSector, rootDirSize uint32, fileTime uint64) {
	buf := make([]byte, xdvdfs.SectorSize)
	copy(buf[0x00:0x14], xdvdfs.Magic)
	putU32(buf[0x14:], rootDirSector)
	putU32(buf[0x18:], rootDirSize)
	putU64(buf[0x1C:], fileTime)
	copy(buf[0x7EC:0x7EC+20], xdvdfs.Magic)
	img.PutSector(xdvdfs.VolumeDescriptorSector, buf)
}

// Build flattens the image to a temp file under t.TempDir() and returns its
// path. Unallocated sectors below the highest used sector are zero-filled.
func Build(t *testing.T, img *Image) string {
	t.Helper()

	maxSector := uint32(0)
	for s := range img.sectors {
		if s > maxSector {
			maxSector = s
		}
	}

	path := filepath.Join(t.TempDir(), "image.iso")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	defer f.Close()

	for s := uint32(0); s <= maxSector; s++ {
		data, ok := img.sectors[s]
		if !ok {
			data = make([]byte, xdvdfs.SectorSize)
		}
		if _, err := f.WriteAt(data, int64(s)*xdvdfs.SectorSize); err != nil {
			t.Fatalf("write sector %d: %v", s, err)
		}
	}

	return path
}
