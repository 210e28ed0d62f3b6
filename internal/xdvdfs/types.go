package xdvdfs

// VolumeDescriptor is the fixed record at sector 32 (post partition-shift)
// locating the root directory table and carrying the volume creation time.
type VolumeDescriptor struct {
	ID1            [20]byte
	RootDirSector  uint32
	RootDirSize    uint32
	FileTime       uint64 // 100-ns ticks since the host's epoch
	ID2            [20]byte
}

// Valid reports whether both magic blocks match and the root directory
// table is non-empty. It does not itself re-read anything from disc.
func (vd *VolumeDescriptor) Valid() bool {
	if string(vd.ID1[:]) != Magic {
		return false
	}
	if string(vd.ID2[:]) != Magic {
		return false
	}
	return vd.RootDirSector != 0 && vd.RootDirSize != 0
}

// FileEntry is one directory-tree node: a file or directory record parsed
// from an arbitrary (sector, intra-sector offset).
type FileEntry struct {
	LeftSubtree  uint16 // quad-word offset to left sibling within Sector, or 0
	RightSubtree uint16 // quad-word offset to right sibling within Sector, or 0
	StartSector  uint32 // first sector of payload (file bytes or child table)
	FileSize     uint32
	Attributes   uint8
	Filename     string

	// Sector is the sector this entry's own record was parsed from; left
	// and right children are resolved relative to it, not to StartSector.
	Sector uint32
}

// IsDirectory reports whether the directory attribute bit is set.
func (e *FileEntry) IsDirectory() bool {
	return e.Attributes&AttrDirectory != 0
}

// Empty reports whether e is the subtree-absent sentinel: a zeroed record
// with no start sector, no size, and no name.
func (e *FileEntry) Empty() bool {
	return e.StartSector == 0 && e.FileSize == 0 && e.Filename == ""
}

// HasLeftChild reports whether a left sibling offset is present.
func (e *FileEntry) HasLeftChild() bool { return e.LeftSubtree != 0 }

// HasRightChild reports whether a right sibling offset is present.
func (e *FileEntry) HasRightChild() bool { return e.RightSubtree != 0 }
