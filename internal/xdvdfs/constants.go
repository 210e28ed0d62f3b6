// Package xdvdfs implements stateless parsing of the XDVDFS on-disc
// structures used by Xbox DVD images, and the mutex-guarded positioned
// reader ("Stream") that backs that parsing.
package xdvdfs

// SectorSize is the fixed addressable unit on an XDVDFS disc; every file
// and directory body starts at a sector boundary.
const SectorSize = 2048

// VolumeDescriptorSector is the fixed sector holding the volume descriptor.
const VolumeDescriptorSector = 32

// GamePartitionOffset is the byte offset of the secondary "game partition"
// on a dual-layer video+game Xbox disc image.
const GamePartitionOffset = SectorSize * 32 * 6192

// Magic is the 20-byte identifier that must appear at both id1 and id2 in
// a valid volume descriptor.
const Magic = "MICROSOFT*XBOX*MEDIA"

// File entry attribute bits (offset 0x0C in a directory-entry record).
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrNormal    = 0x80
)

// InvalidHandle is the reserved sentinel denoting "no such entry".
const InvalidHandle = ^uint32(0)
