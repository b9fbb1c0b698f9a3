package rifftree

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Source supplies random-access bytes to the reconstruction pass and
// the stream layer. Implementations must be safe for repeated reads at
// arbitrary offsets; the tree builder never consumes the source
// sequentially.
type Source interface {
	io.ReaderAt
	Size() int64
}

// BufferSource is an in-memory Source.
type BufferSource struct {
	*bytes.Reader
}

// NewBufferSource wraps b without copying it.
func NewBufferSource(b []byte) *BufferSource {
	return &BufferSource{Reader: bytes.NewReader(b)}
}

// FileSource is a file-backed Source.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFileSource opens path for random-access reading.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	return &FileSource{f: f, size: info.Size()}, nil
}

func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// Size is the byte length captured when the source was opened.
func (s *FileSource) Size() int64 {
	return s.size
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.f.Close()
}

// readFull fetches exactly len(p) bytes at off.
func readFull(src Source, p []byte, off int64) error {
	n, err := src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}

	if err == nil {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("short read at offset %d: %w", off, err)
}
