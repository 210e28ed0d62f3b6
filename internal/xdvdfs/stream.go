package xdvdfs

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Stream is the backing byte source shared by every concurrent filesystem
// callback: an open image file, a partition-shift offset added to every
// read, and a mutex serializing access to the underlying file handle.
//
// offset is set at most once, by SetOffset, before the stream is shared
// with readers — never concurrently with a ReadAt call.
type Stream struct {
	file *os.File
	mu   sync.Mutex
	off  int64
}

// Open opens path for reading and returns a Stream with a zero partition
// offset.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return &Stream{file: f}, nil
}

// SetOffset sets the partition-shift offset added to every subsequent
// ReadAt. Callers must not invoke this concurrently with ReadAt; it is
// intended for use during setup, before the stream is handed to readers.
func (s *Stream) SetOffset(offset int64) {
	s.off = offset
}

// Offset returns the partition-shift offset currently in effect.
func (s *Stream) Offset() int64 {
	return s.off
}

// Size returns the byte length of the backing image file.
func (s *Stream) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat image: %w", err)
	}
	return info.Size(), nil
}

// ReadAt performs a mutex-guarded positioned read of len(buf) bytes at
// absoluteOffset + the stream's partition offset. Short reads at EOF are
// returned to the caller (n < len(buf), err possibly io.EOF or nil); they
// are never silently padded.
func (s *Stream) ReadAt(absoluteOffset int64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.file.ReadAt(buf, absoluteOffset+s.off)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read at %d: %w", absoluteOffset, err)
	}
	return n, err
}

// ReadSector reads exactly one SectorSize-byte sector at the given sector
// number, composed with the stream's partition offset.
func (s *Stream) ReadSector(sector uint32) ([]byte, error) {
	buf := make([]byte, SectorSize)
	n, err := s.ReadAt(int64(sector)*SectorSize, buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n < SectorSize {
		return nil, fmt.Errorf("short sector read at sector %d: got %d of %d bytes", sector, n, SectorSize)
	}
	return buf, nil
}

// Close releases the underlying file handle.
func (s *Stream) Close() error {
	return s.file.Close()
}
