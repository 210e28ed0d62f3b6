package xdvdfs

import "fmt"

// readU16 reads a little-endian uint16 at *pos and advances pos by 2.
func readU16(data []byte, pos *int) uint16 {
	v := uint16(data[*pos]) | uint16(data[*pos+1])<<8
	*pos += 2
	return v
}

// readU32 reads a little-endian uint32 at *pos and advances pos by 4.
func readU32(data []byte, pos *int) uint32 {
	v := uint32(data[*pos]) | uint32(data[*pos+1])<<8 | uint32(data[*pos+2])<<16 | uint32(data[*pos+3])<<24
	*pos += 4
	return v
}

// readU64 reads a little-endian uint64 at *pos and advances pos by 8.
func readU64(data []byte, pos *int) uint64 {
	lo := uint64(readU32(data, pos))
	hi := uint64(readU32(data, pos))
	return lo | hi<<32
}

// ParseVolumeDescriptor parses one sector-sized buffer as a volume
// descriptor. It does not validate the magic or root-directory fields;
// use Valid for that.
func ParseVolumeDescriptor(sector []byte) (*VolumeDescriptor, error) {
	if len(sector) < SectorSize {
		return nil, fmt.Errorf("xdvdfs: volume descriptor sector too short: %d bytes", len(sector))
	}

	vd := &VolumeDescriptor{}
	copy(vd.ID1[:], sector[0x00:0x14])

	pos := 0x14
	vd.RootDirSector = readU32(sector, &pos)
	vd.RootDirSize = readU32(sector, &pos)
	vd.FileTime = readU64(sector, &pos)

	copy(vd.ID2[:], sector[0x7EC:0x7EC+20])

	return vd, nil
}

// ParseFileEntry parses a directory-tree node from bytes starting at the
// entry's record (i.e. bytes must already be positioned at the record's
// first byte). baseSector is recorded on the returned entry so its
// children can later be located within the same sector.
func ParseFileEntry(bytes []byte, baseSector uint32) (*FileEntry, error) {
	const headerLen = 0x0E
	if len(bytes) < headerLen {
		return nil, fmt.Errorf("xdvdfs: file entry record too short: %d bytes", len(bytes))
	}

	e := &FileEntry{Sector: baseSector}

	pos := 0
	e.LeftSubtree = readU16(bytes, &pos)
	e.RightSubtree = readU16(bytes, &pos)
	e.StartSector = readU32(bytes, &pos)
	e.FileSize = readU32(bytes, &pos)
	e.Attributes = bytes[pos]
	pos++
	filenameLen := int(bytes[pos])
	pos++

	if pos+filenameLen > len(bytes) {
		return nil, fmt.Errorf("xdvdfs: file entry filename length %d exceeds available %d bytes", filenameLen, len(bytes)-pos)
	}
	e.Filename = string(bytes[pos : pos+filenameLen])

	return e, nil
}

// entryAt parses the file entry whose record begins at byte offset
// byteOffset within sector (already read into sectorBuf), recording
// sector as the entry's own Sector for later child resolution.
func entryAt(sectorBuf []byte, sector uint32, byteOffset int) (*FileEntry, error) {
	if byteOffset < 0 || byteOffset >= len(sectorBuf) {
		return nil, fmt.Errorf("xdvdfs: entry offset %d out of sector bounds", byteOffset)
	}
	return ParseFileEntry(sectorBuf[byteOffset:], sector)
}

// ReadEntry reads the sector containing (sector, byteOffset) from stream
// and parses the file entry record located there.
func ReadEntry(stream *Stream, sector uint32, byteOffset int) (*FileEntry, error) {
	buf, err := stream.ReadSector(sector)
	if err != nil {
		return nil, err
	}
	return entryAt(buf, sector, byteOffset)
}

// ReadVolumeDescriptor reads sector 32 (post partition-shift) from stream
// and parses it as a volume descriptor.
func ReadVolumeDescriptor(stream *Stream) (*VolumeDescriptor, error) {
	buf, err := stream.ReadSector(VolumeDescriptorSector)
	if err != nil {
		return nil, err
	}
	return ParseVolumeDescriptor(buf)
}
