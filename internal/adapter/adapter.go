// Package adapter implements the host-agnostic filesystem-operations
// surface invoked by the host FS bridge: open/create, read, stat,
// directory listing, and volume information. It translates Container
// lookups into a small Status enum that is the Go-native analogue of the
// NTSTATUS codes the original Dokan callbacks (vfs_operations.cc) return.
package adapter

import (
	"time"

	"github.com/autobrr/xvfs/internal/index"
	"github.com/autobrr/xvfs/internal/volume"
	"github.com/autobrr/xvfs/internal/xdvdfs"
)

// Status is the result of an adapter operation, independent of any
// particular host bridge's error type.
type Status int

const (
	OK Status = iota
	NotFound
	AccessDenied
	IsADirectory
	Unsupported
	NameCollision
	IOError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotFound:
		return "not-found"
	case AccessDenied:
		return "access-denied"
	case IsADirectory:
		return "is-a-directory"
	case Unsupported:
		return "unsupported"
	case NameCollision:
		return "name-collision"
	case IOError:
		return "io-error"
	default:
		return "unknown"
	}
}

// VolumeSerial is the fixed serial number reported for every mount.
const VolumeSerial uint32 = 0x11115555

// MaxComponentLength is the maximum directory-entry name length reported
// to the host bridge.
const MaxComponentLength = 255

// FilesystemName is the identifier reported by GetVolumeInformation.
const FilesystemName = "Dokan XISO"

// Disposition mirrors the host bridge's CreateFile-style disposition
// values the original adapter switches on.
type Disposition int

const (
	DispositionCreateNew Disposition = iota
	DispositionCreateAlways
	DispositionOpenExisting
	DispositionOpenAlways
	DispositionTruncateExisting
)

// DesiredAccess is a bitmask of the access rights requested by Create.
type DesiredAccess uint32

const DesiredAccessWriteData DesiredAccess = 1 << 0

// Handle is the adapter-level analogue of an open file handle: the
// resolved Container handle plus whether the bridge opened it as a
// directory.
type Handle struct {
	Entry       index.Handle
	IsDirectory bool
}

// Adapter implements the fixed callback set against one mounted Container.
type Adapter struct {
	vol *volume.Container
}

// New returns an Adapter backed by vol.
func New(vol *volume.Container) *Adapter {
	return &Adapter{vol: vol}
}

// Create resolves path and applies the disposition × existing-entry ×
// directory-ness contract, returning the resolved Handle on OK.
// nonDirectoryFile mirrors the host bridge's FILE_NON_DIRECTORY_FILE
// create-option: the caller requires the target not be a directory.
func (a *Adapter) Create(path string, access DesiredAccess, disp Disposition, nonDirectoryFile bool) (Handle, Status) {
	h, entry, err := a.vol.EntryByPath(path)
	exists := err == nil
	isDir := exists && entry.IsDirectory()

	if isDir && nonDirectoryFile {
		return Handle{}, IsADirectory
	}

	if exists && access&DesiredAccessWriteData != 0 {
		return Handle{}, AccessDenied
	}

	if isDir {
		if disp == DispositionCreateNew || disp == DispositionOpenAlways {
			return Handle{}, Unsupported
		}
	} else {
		switch disp {
		case DispositionOpenAlways:
			if !exists {
				return Handle{}, Unsupported
			}
		case DispositionOpenExisting:
			if !exists {
				return Handle{}, NotFound
			}
		case DispositionCreateAlways, DispositionCreateNew, DispositionTruncateExisting:
			return Handle{}, AccessDenied
		}
	}

	if exists && (disp == DispositionCreateNew || disp == DispositionOpenAlways) {
		return Handle{}, NameCollision
	}

	return Handle{Entry: h, IsDirectory: isDir}, OK
}

// Read resolves path and delegates to the Container's clamped read
// contract; reading a directory yields 0 bytes with OK.
func (a *Adapter) Read(path string, offset int64, buf []byte) (int, Status) {
	_, entry, err := a.vol.EntryByPath(path)
	if err != nil {
		return 0, NotFound
	}
	if entry.IsDirectory() {
		return 0, OK
	}

	n, err := a.vol.ReadFile(entry, offset, buf)
	if err != nil {
		return n, IOError
	}
	return n, OK
}

// FileInformation is the stat-like record returned by GetFileInformation
// and as one element of FindFiles.
type FileInformation struct {
	Name           string
	Attributes     uint32
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
	FileSize       int64
	FileIndex      uint64
	NumberOfLinks  uint32
	VolumeSerial   uint32
}

func attributesFor(e *xdvdfs.FileEntry) uint32 {
	attrs := uint32(xdvdfs.AttrReadOnly)
	if e.IsDirectory() {
		attrs |= xdvdfs.AttrDirectory
	}
	return attrs
}

// GetFileInformation resolves path and fills a FileInformation record.
func (a *Adapter) GetFileInformation(path string) (FileInformation, Status) {
	_, entry, err := a.vol.EntryByPath(path)
	if err != nil {
		return FileInformation{}, NotFound
	}
	return a.infoFor(entry), OK
}

// InfoByHandle fills a FileInformation record for an already-resolved
// handle, for host bridges (such as a FUSE inode tree) that address
// entries by handle rather than by path.
func (a *Adapter) InfoByHandle(h index.Handle) (FileInformation, Status) {
	entry, err := a.vol.EntryByHandle(h)
	if err != nil {
		return FileInformation{}, NotFound
	}
	return a.infoFor(entry), OK
}

// ChildByName resolves name within the directory at parent, for host
// bridges that walk the tree by parent handle + component name.
func (a *Adapter) ChildByName(parent index.Handle, name string) (Handle, Status) {
	h, entry, err := a.vol.ChildByName(parent, name)
	if err != nil {
		return Handle{}, NotFound
	}
	return Handle{Entry: h, IsDirectory: entry.IsDirectory()}, OK
}

// ReadByHandle serves the clamped read contract for an already-resolved
// handle.
func (a *Adapter) ReadByHandle(h index.Handle, offset int64, buf []byte) (int, Status) {
	entry, err := a.vol.EntryByHandle(h)
	if err != nil {
		return 0, NotFound
	}
	if entry.IsDirectory() {
		return 0, OK
	}
	n, err := a.vol.ReadFile(entry, offset, buf)
	if err != nil {
		return n, IOError
	}
	return n, OK
}

// ListChildren lists the children of the directory at h, for host bridges
// that address directories by handle.
func (a *Adapter) ListChildren(h index.Handle) ([]FileInformation, Status) {
	children, err := a.vol.ListDirectory(h)
	if err != nil {
		return nil, NotFound
	}
	out := make([]FileInformation, 0, len(children))
	for _, c := range children {
		e := c.Entry
		if len(e.Filename) > MaxComponentLength {
			e.Filename = e.Filename[:MaxComponentLength]
		}
		out = append(out, a.infoFor(&e))
	}
	return out, OK
}

func (a *Adapter) infoFor(entry *xdvdfs.FileEntry) FileInformation {
	mtime := a.vol.Modified()
	return FileInformation{
		Name:           entry.Filename,
		Attributes:     attributesFor(entry),
		CreationTime:   mtime,
		LastAccessTime: mtime,
		LastWriteTime:  mtime,
		FileSize:       int64(entry.FileSize),
		FileIndex:      0,
		NumberOfLinks:  1,
		VolumeSerial:   VolumeSerial,
	}
}

// FindFiles lists the children of path, truncating (never multiplying)
// names that exceed MaxComponentLength.
func (a *Adapter) FindFiles(path string) ([]FileInformation, Status) {
	h, _, err := a.vol.EntryByPath(path)
	if err != nil {
		return nil, NotFound
	}

	children, err := a.vol.ListDirectory(h)
	if err != nil {
		return nil, NotFound
	}

	out := make([]FileInformation, 0, len(children))
	for _, c := range children {
		e := c.Entry
		if len(e.Filename) > MaxComponentLength {
			e.Filename = e.Filename[:MaxComponentLength]
		}
		out = append(out, a.infoFor(&e))
	}
	return out, OK
}

// DiskFreeSpace is the fixed free/total triple reported for a read-only
// volume.
type DiskFreeSpace struct {
	FreeBytesAvailable int64
	TotalBytes         int64
	TotalFreeBytes     int64
}

// GetDiskFreeSpace reports the volume as entirely full.
func (a *Adapter) GetDiskFreeSpace() DiskFreeSpace {
	return DiskFreeSpace{
		FreeBytesAvailable: 0,
		TotalBytes:         a.vol.Size(),
		TotalFreeBytes:     0,
	}
}

// VolumeInformationFlags mirrors the host bridge's volume-flags bitmask.
type VolumeInformationFlags uint32

const (
	FlagCaseSensitiveSearch VolumeInformationFlags = 1 << iota
	FlagCasePreservedNames
	FlagUnicodeOnDisk
	FlagReadOnlyVolume
)

// VolumeInformation is the record returned by GetVolumeInformation.
type VolumeInformation struct {
	Name               string
	SerialNumber       uint32
	MaxComponentLength uint32
	Flags              VolumeInformationFlags
	FilesystemName     string
}

// GetVolumeInformation reports the mounted volume's identity.
func (a *Adapter) GetVolumeInformation() VolumeInformation {
	return VolumeInformation{
		Name:               a.vol.Label(),
		SerialNumber:       VolumeSerial,
		MaxComponentLength: MaxComponentLength,
		Flags:              FlagCaseSensitiveSearch | FlagCasePreservedNames | FlagUnicodeOnDisk | FlagReadOnlyVolume,
		FilesystemName:     FilesystemName,
	}
}
