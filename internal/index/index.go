// Package index builds and holds the in-memory directory index for an
// XDVDFS volume: a flat handle table with parent back-pointers and a
// case-insensitive path-key map, built once by walking the on-disc
// directory tree.
package index

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/autobrr/xvfs/internal/xdvdfs"
	"github.com/autobrr/xvfs/internal/xvfserr"
)

// Handle is a dense integer index into the flat entry table.
type Handle = uint32

// Invalid is the reserved sentinel denoting "no such entry".
const Invalid Handle = xdvdfs.InvalidHandle

// RootHandle is the stable handle of the synthetic root directory.
const RootHandle Handle = 0

// rootName is the single-character name used for the synthetic root, and
// the path separator used when composing path keys.
const rootName = "/"

// Index is the immutable, built-once directory index for one volume.
type Index struct {
	entries  []xdvdfs.FileEntry
	parent   []Handle
	children map[Handle][]Handle
	keyMap   map[string]Handle

	creationTime uint64
	volumeSize   int64
}

type visitKey struct {
	sector uint32
	offset int
}

// Build walks the on-disc directory tree reachable from stream's volume
// descriptor and returns the resulting Index. It probes the normal
// offset first and, on an invalid descriptor, retries at the dual-layer
// game-partition offset before giving up with a FormatError.
func Build(stream *xdvdfs.Stream) (*Index, error) {
	vd, err := xdvdfs.ReadVolumeDescriptor(stream)
	if err != nil {
		return nil, xvfserr.New(xvfserr.KindFormat, err)
	}

	if !vd.Valid() {
		stream.SetOffset(xdvdfs.GamePartitionOffset)
		vd, err = xdvdfs.ReadVolumeDescriptor(stream)
		if err != nil || !vd.Valid() {
			return nil, xvfserr.New(xvfserr.KindFormat, fmt.Errorf("no valid XDVDFS volume descriptor at sector 32 or game-partition offset"))
		}
	}

	size, err := stream.Size()
	if err != nil {
		return nil, xvfserr.New(xvfserr.KindFormat, err)
	}

	idx := &Index{
		children:     make(map[Handle][]Handle),
		keyMap:       make(map[string]Handle),
		creationTime: vd.FileTime,
		volumeSize:   size,
	}

	root := xdvdfs.FileEntry{Attributes: xdvdfs.AttrDirectory, Filename: rootName}
	idx.register(root, Invalid)

	visited := make(map[visitKey]bool)
	if err := idx.visitAt(stream, vd.RootDirSector, 0, RootHandle, visited); err != nil {
		return nil, xvfserr.New(xvfserr.KindFormat, err)
	}

	return idx, nil
}

// visitAt parses the entry record at (sector, byteOffset), and if it is
// not the subtree-absent sentinel, registers it under parentHandle and
// recurses into its first child (if a directory) and its left/right
// siblings.
func (idx *Index) visitAt(stream *xdvdfs.Stream, sector uint32, byteOffset int, parentHandle Handle, visited map[visitKey]bool) error {
	key := visitKey{sector, byteOffset}
	if visited[key] {
		return nil
	}
	visited[key] = true

	entry, err := xdvdfs.ReadEntry(stream, sector, byteOffset)
	if err != nil {
		if parentHandle == RootHandle && byteOffset == 0 {
			// Failure parsing the root directory's first entry is fatal.
			return err
		}
		slog.Warn("xdvdfs: skipping malformed directory entry", "sector", sector, "offset", byteOffset, "error", err)
		return nil
	}

	if entry.Empty() {
		return nil
	}

	h := idx.register(*entry, parentHandle)

	if entry.IsDirectory() {
		if err := idx.visitAt(stream, entry.StartSector, 0, h, visited); err != nil {
			return err
		}
	}
	if entry.HasLeftChild() {
		if err := idx.visitAt(stream, entry.Sector, int(entry.LeftSubtree)*4, parentHandle, visited); err != nil {
			return err
		}
	}
	if entry.HasRightChild() {
		if err := idx.visitAt(stream, entry.Sector, int(entry.RightSubtree)*4, parentHandle, visited); err != nil {
			return err
		}
	}

	return nil
}

// register allocates a handle for entry, records its parent, and inserts
// its lowercased path key into the key map. Duplicate keys (case-folded
// collisions within the same directory) keep the first-seen entry and are
// logged, per the unspecified-duplicate-name design note.
func (idx *Index) register(entry xdvdfs.FileEntry, parent Handle) Handle {
	h := Handle(len(idx.entries))
	idx.entries = append(idx.entries, entry)
	idx.parent = append(idx.parent, parent)
	if parent != Invalid {
		idx.children[parent] = append(idx.children[parent], h)
	}

	key := idx.pathKey(h)
	if _, exists := idx.keyMap[key]; exists {
		slog.Warn("xdvdfs: duplicate case-insensitive name in directory, keeping first-seen entry", "key", key)
		return h
	}
	idx.keyMap[key] = h

	return h
}

// pathKey computes the lowercased, fully-qualified path key for handle by
// walking parent back-pointers from h to the root.
func (idx *Index) pathKey(h Handle) string {
	if h == RootHandle {
		return rootName
	}

	var names []string
	for cur := h; cur != RootHandle && cur != Invalid; cur = idx.parent[cur] {
		names = append(names, idx.entries[cur].Filename)
	}

	// names is leaf-to-root; reverse to root-to-leaf.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return lowercase(rootName + strings.Join(names, rootName))
}

// lowercase applies simple ASCII case folding: A-Z -> a-z, everything else
// unchanged.
func lowercase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// LookupKey computes the canonical case-folded key for an arbitrary path,
// for use by callers resolving a path against the index.
func LookupKey(path string) string {
	return lowercase(path)
}

// Handle returns the handle for the given already-lowercased key, or
// Invalid if no entry maps to it.
func (idx *Index) Handle(key string) Handle {
	if h, ok := idx.keyMap[key]; ok {
		return h
	}
	return Invalid
}

// Entry returns the parsed file entry at handle, and whether it exists.
func (idx *Index) Entry(h Handle) (*xdvdfs.FileEntry, bool) {
	if h == Invalid || int(h) >= len(idx.entries) {
		return nil, false
	}
	e := idx.entries[h]
	return &e, true
}

// Children returns the handles whose parent is h, in insertion order.
func (idx *Index) Children(h Handle) []Handle {
	return idx.children[h]
}

// ChildNamed returns the handle of parent's child whose name matches name
// case-insensitively, or Invalid if there is none.
func (idx *Index) ChildNamed(parent Handle, name string) Handle {
	key := lowercase(name)
	for _, h := range idx.children[parent] {
		if lowercase(idx.entries[h].Filename) == key {
			return h
		}
	}
	return Invalid
}

// CreationTime returns the volume's recorded creation time (100-ns ticks).
func (idx *Index) CreationTime() uint64 { return idx.creationTime }

// VolumeSize returns the image's byte length recorded at build time.
func (idx *Index) VolumeSize() int64 { return idx.volumeSize }

// EntryCount returns the number of indexed entries, including the
// synthetic root.
func (idx *Index) EntryCount() int { return len(idx.entries) }
