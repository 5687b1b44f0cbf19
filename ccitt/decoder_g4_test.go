package ccitt

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// These exercise Group 4 (pure 2D, K<0) decoding, where every row is
// coded relative to the one above it via Pass/Horizontal/Vertical mode
// codes rather than as an independent run-length sequence.

func TestDecode2DRowAllWhiteViaVerticalV0(t *testing.T) {
	// A single V0 ("1") mode code copies the (implicit, all-white)
	// reference line's sole changing element straight across: one mode
	// code decodes an entire all-white row.
	data := packBits(t, "1")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: -1, Columns: 8, Rows: 1})
	require.NoError(t, err)

	b, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), b)

	_, err = d.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecode2DRowHorizontalMode(t *testing.T) {
	// Horizontal mode ("001") followed by a white run-4 ("1011") and a
	// black run-4 ("011"), splitting the 8-column row evenly.
	data := packBits(t, "001"+"1011"+"011")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: -1, Columns: 8, Rows: 1})
	require.NoError(t, err)

	b, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0b1111_0000), b)
}

func TestDecode2DRowVerticalVR1ShiftsChangeRight(t *testing.T) {
	// First row: Horizontal mode splitting white-4/black-4, establishing
	// a changing element at column 4. Second row: VR1 ("011") shifts
	// that element one column right (to 5), then V0 ("1") carries the
	// row-ending element straight across, giving white-5/black-3.
	data := packBits(t, "001"+"1011"+"011"+"011"+"1")

	d, err := NewDecoder(bytes.NewReader(data), Params{K: -1, Columns: 8, Rows: 2, EndOfBlock: false})
	require.NoError(t, err)

	first, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0b1111_0000), first)

	second, err := d.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0b1111_1000), second)

	_, err = d.ReadByte()
	require.ErrorIs(t, err, io.EOF)
}
