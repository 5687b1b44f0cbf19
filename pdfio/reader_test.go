package pdfio

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferReaderReadRangeWithinBounds(t *testing.T) {
	r := NewBufferReader([]byte("0123456789"))
	require.Equal(t, int64(10), r.Size())

	got, err := r.ReadRange(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("2345"), got)
}

func TestBufferReaderReadRangeClampsAtEOF(t *testing.T) {
	r := NewBufferReader([]byte("0123456789"))
	got, err := r.ReadRange(8, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), got)
}

func TestBufferReaderReadRangeOffsetOutOfRange(t *testing.T) {
	r := NewBufferReader([]byte("0123456789"))
	_, err := r.ReadRange(11, 1)
	require.Error(t, err)
}

func TestBufferReaderReadFrom(t *testing.T) {
	r := NewBufferReader([]byte("0123456789"))
	got, err := r.ReadFrom(7)
	require.NoError(t, err)
	require.Equal(t, []byte("789"), got)
}

func TestBufferReaderReadFromEndOfDataReturnsEmpty(t *testing.T) {
	r := NewBufferReader([]byte("0123456789"))
	got, err := r.ReadFrom(10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBufferReaderReadAtImplementsReaderAt(t *testing.T) {
	r := NewBufferReader([]byte("abcdef"))
	buf := make([]byte, 3)
	n, err := r.ReadAt(buf, 2)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("cde"), buf)
}

func TestFileReaderReadsFromDisk(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "pdfio-*.pdf")
	require.NoError(t, err)
	_, err = f.WriteString("%PDF-1.4\nhello world")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fr, err := OpenFile(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { fr.Close() })

	require.Equal(t, int64(len("%PDF-1.4\nhello world")), fr.Size())

	got, err := fr.ReadRange(9, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	all, err := fr.ReadFrom(9)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), all)
}
