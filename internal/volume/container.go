// Package volume ties together a backing Stream and its built Index into
// the read-only view of a mounted XDVDFS image: path/handle lookups,
// directory listing, and the clamped file-read contract. The shape
// mirrors the teacher's ISOFileSystem (Mount/GetFileInfo/GetDirectoryInfo)
// generalized from UDF directory caching to the XDVDFS handle/key-map
// model.
package volume

import (
	"path"
	"strings"
	"time"

	"github.com/autobrr/xvfs/internal/index"
	"github.com/autobrr/xvfs/internal/xdvdfs"
	"github.com/autobrr/xvfs/internal/xvfserr"
)

// xboxEpoch is 1601-01-01 UTC, the base of the 100ns FILETIME ticks stored
// in the volume descriptor's creation time field.
var xboxEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// Container is the immutable, read-only view of one mounted XDVDFS image.
type Container struct {
	stream *xdvdfs.Stream
	index  *index.Index
	label  string
}

// Open builds the directory index for path and returns a ready Container.
// label is derived from the image filename with its extension stripped,
// matching the original's std::filesystem::path(filename).replace_extension("").
func Open(imagePath string) (*Container, error) {
	stream, err := xdvdfs.Open(imagePath)
	if err != nil {
		return nil, xvfserr.New(xvfserr.KindFileOpen, err)
	}

	idx, err := index.Build(stream)
	if err != nil {
		stream.Close()
		return nil, err
	}

	return &Container{
		stream: stream,
		index:  idx,
		label:  deriveLabel(imagePath),
	}, nil
}

func deriveLabel(imagePath string) string {
	base := path.Base(filepathToSlash(imagePath))
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext)
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Close releases the backing stream.
func (c *Container) Close() error {
	return c.stream.Close()
}

// EntryByPath resolves an absolute, slash-separated path (case-insensitive)
// to its handle and entry. It reports xvfserr.KindNotFound if no such path
// exists.
func (c *Container) EntryByPath(p string) (index.Handle, *xdvdfs.FileEntry, error) {
	h := c.index.Handle(index.LookupKey(p))
	if h == index.Invalid {
		return index.Invalid, nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}
	e, ok := c.index.Entry(h)
	if !ok {
		return index.Invalid, nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}
	return h, e, nil
}

// ChildByName resolves the child of the directory at parent whose name
// matches name case-insensitively. Used by host bridges that walk the
// tree by parent handle + component name rather than full path strings.
func (c *Container) ChildByName(parent index.Handle, name string) (index.Handle, *xdvdfs.FileEntry, error) {
	h := c.index.ChildNamed(parent, name)
	if h == index.Invalid {
		return index.Invalid, nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}
	e, ok := c.index.Entry(h)
	if !ok {
		return index.Invalid, nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}
	return h, e, nil
}

// EntryByHandle resolves a handle directly.
func (c *Container) EntryByHandle(h index.Handle) (*xdvdfs.FileEntry, error) {
	e, ok := c.index.Entry(h)
	if !ok {
		return nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}
	return e, nil
}

// DirEntry is one child returned by ListDirectory.
type DirEntry struct {
	Handle index.Handle
	Entry  xdvdfs.FileEntry
}

// ListDirectory returns the children of the directory at h, in the order
// they were registered by the indexer.
func (c *Container) ListDirectory(h index.Handle) ([]DirEntry, error) {
	e, err := c.EntryByHandle(h)
	if err != nil {
		return nil, err
	}
	if !e.IsDirectory() && h != index.RootHandle {
		return nil, xvfserr.New(xvfserr.KindNotFound, nil)
	}

	children := c.index.Children(h)
	out := make([]DirEntry, 0, len(children))
	for _, ch := range children {
		ce, ok := c.index.Entry(ch)
		if !ok {
			continue
		}
		out = append(out, DirEntry{Handle: ch, Entry: *ce})
	}
	return out, nil
}

// ReadFile implements the exact clamped-read contract: offset < 0 or
// offset >= size yields 0 bytes; length == 0 yields 0 bytes; otherwise
// min(len(buf), size-offset) bytes are read from the entry's backing
// sectors into buf and the number of bytes actually read is returned. Reading a
// directory always yields 0 bytes.
func (c *Container) ReadFile(e *xdvdfs.FileEntry, offset int64, buf []byte) (int, error) {
	if e.IsDirectory() {
		return 0, nil
	}

	size := int64(e.FileSize)
	if offset < 0 || offset >= size || len(buf) == 0 {
		return 0, nil
	}

	want := int64(len(buf))
	if remaining := size - offset; want > remaining {
		want = remaining
	}

	abs := int64(e.StartSector)*xdvdfs.SectorSize + offset
	n, err := c.stream.ReadAt(abs, buf[:want])
	if err != nil {
		return n, xvfserr.New(xvfserr.KindIO, err)
	}
	return n, nil
}

// Modified returns the volume's creation time converted to a time.Time.
func (c *Container) Modified() time.Time {
	ticks := c.index.CreationTime()
	return xboxEpoch.Add(time.Duration(ticks) * 100 * time.Nanosecond)
}

// Size returns the backing image's byte length.
func (c *Container) Size() int64 {
	return c.index.VolumeSize()
}

// Label returns the volume label derived from the image filename.
func (c *Container) Label() string {
	return c.label
}

// EntryCount returns the total number of indexed directory entries,
// including the synthetic root.
func (c *Container) EntryCount() int {
	return c.index.EntryCount()
}
