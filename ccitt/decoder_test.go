package ccitt

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// packBits turns a string of '0'/'1' characters into MSB-first bytes,
// padding the final byte with 1 bits (CCITT streams tolerate trailing
// fill, and 1-fill never looks like a spurious EOL/makeup code).
func packBits(t *testing.T, bits string) []byte {
	t.Helper()
	for len(bits)%8 != 0 {
		bits += "1"
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if bits[i*8+j] == '1' {
				b |= 1
			}
		}
		out[i] = b
	}
	return out
}

func TestDecode1DRowAllWhite(t *testing.T) {
	// White run-length-8 terminating code, for an 8-column, single-row,
	// pure 1D (Group 3 K=0) scan line that is entirely white.
	data := packBits(t, "10011")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: 0, Columns: 8, Rows: 1})
	require.NoError(t, err)

	b, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), b)

	_, err = d.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecode1DRowBlackIs1Inverts(t *testing.T) {
	data := packBits(t, "10011")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: 0, Columns: 8, Rows: 1, BlackIs1: true})
	require.NoError(t, err)

	b, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x00), b)
}

func TestDecode1DRowWhiteThenBlack(t *testing.T) {
	// White run 4 ("1011"), black run 4 ("011"), filling an 8-column row.
	data := packBits(t, "1011011")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: 0, Columns: 8, Rows: 1})
	require.NoError(t, err)

	b, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0b1111_0000), b)
}

func TestBitReaderLookAndEatBits(t *testing.T) {
	r := newBitReader(bytes.NewReader([]byte{0b10110010}))
	v, err := r.lookBits(4)
	require.NoError(t, err)
	require.Equal(t, int32(0b1011), v)

	r.eatBits(4)
	v, err = r.lookBits(4)
	require.NoError(t, err)
	require.Equal(t, int32(0b0010), v)
}

func TestBitReaderEOFZeroPads(t *testing.T) {
	r := newBitReader(bytes.NewReader([]byte{0b11110000}))
	_, err := r.lookBits(8) // loads the single byte into the accumulator
	require.NoError(t, err)
	r.eatBits(4) // consume the high nibble; 4 bits of the low nibble remain

	// Asking for 8 bits with only 4 left and no more input zero-pads the
	// missing low bits rather than erroring.
	v, err := r.lookBits(8)
	require.NoError(t, err)
	require.Equal(t, int32(0b00000000), v)
}
