// Package pdfio abstracts the random-access byte source a PDF document
// is read from, so the rest of the module doesn't care whether the
// bytes come from an *os.File or an in-memory buffer.
package pdfio

import (
	"fmt"
	"io"
	"os"
)

// Reader is a random-access byte source sized in advance, the shape the
// cross-reference and object-registry code needs: seek to an offset,
// read a known number of bytes, or read to EOF for corrupt-length
// fallback parsing.
type Reader interface {
	io.ReaderAt
	// Size returns the total length of the underlying data.
	Size() int64
	// ReadRange returns size bytes starting at offset. If fewer than
	// size bytes remain, it returns as many as are available and a nil
	// error.
	ReadRange(offset int64, size int) ([]byte, error)
	// ReadFrom returns every remaining byte starting at offset.
	ReadFrom(offset int64) ([]byte, error)
}

// FileReader reads a PDF document straight from disk, without loading
// the whole file into memory; ReadRange/ReadFrom each issue their own
// ReadAt.
type FileReader struct {
	f    *os.File
	size int64
}

// OpenFile opens path for reading as a FileReader.
func OpenFile(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileReader{f: f, size: info.Size()}, nil
}

// NewFileReader wraps an already-open file.
func NewFileReader(f *os.File) (*FileReader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileReader{f: f, size: info.Size()}, nil
}

func (r *FileReader) Size() int64 { return r.size }

func (r *FileReader) ReadAt(p []byte, off int64) (int, error) { return r.f.ReadAt(p, off) }

func (r *FileReader) ReadRange(offset int64, size int) ([]byte, error) {
	return readRange(r, offset, size, r.size)
}

func (r *FileReader) ReadFrom(offset int64) ([]byte, error) {
	if offset < 0 || offset > r.size {
		return nil, fmt.Errorf("pdfio: offset %d out of range (size %d)", offset, r.size)
	}
	return r.ReadRange(offset, int(r.size-offset))
}

// Close releases the underlying file handle.
func (r *FileReader) Close() error { return r.f.Close() }

// BufferReader reads a PDF document already resident in memory.
type BufferReader struct {
	data []byte
}

// NewBufferReader wraps data as a Reader. data is not copied; callers
// must not mutate it afterwards.
func NewBufferReader(data []byte) *BufferReader {
	return &BufferReader{data: data}
}

func (r *BufferReader) Size() int64 { return int64(len(r.data)) }

func (r *BufferReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *BufferReader) ReadRange(offset int64, size int) ([]byte, error) {
	return readRange(r, offset, size, int64(len(r.data)))
}

func (r *BufferReader) ReadFrom(offset int64) ([]byte, error) {
	if offset < 0 || offset > int64(len(r.data)) {
		return nil, fmt.Errorf("pdfio: offset %d out of range (size %d)", offset, len(r.data))
	}
	return append([]byte(nil), r.data[offset:]...), nil
}

func readRange(r io.ReaderAt, offset int64, size int, total int64) ([]byte, error) {
	if offset < 0 || offset > total {
		return nil, fmt.Errorf("pdfio: offset %d out of range (size %d)", offset, total)
	}
	if int64(size) > total-offset {
		size = int(total - offset)
	}
	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return buf[:n], err
	}
	return buf[:n], nil
}
