package ccitt

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	// A 10x3 grid of 0/255 pixels, wide enough to need byte-padding
	// (ceil(10/8) = 2 bytes per row).
	lines := [][]byte{
		{255, 255, 255, 0, 0, 0, 255, 255, 255, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{255, 255, 255, 255, 255, 255, 255, 255, 255, 255},
	}

	packed := pack(lines, 10)
	require.Equal(t, int32(2*3), int32(len(packed)))

	roundTripped := unpack(packed, 10, 3)
	require.Equal(t, lines, roundTripped)

	// unpack ∘ pack is also identity, starting from the packed form.
	require.Equal(t, packed, pack(roundTripped, 10))
}

func TestToUncompressedFlattensRowMajor(t *testing.T) {
	lines := [][]byte{{255, 0}, {0, 255}}
	require.Equal(t, []byte{255, 0, 0, 255}, toUncompressed(lines))
}

func TestDecodeLinesMatchesStreamedReadByte(t *testing.T) {
	// Same Group 4 fixture as TestDecode2DRowVerticalVR1ShiftsChangeRight:
	// a horizontal-mode row followed by a VR1-coded row, 8 columns wide.
	data := packBits(t, "001"+"1011"+"011"+"011"+"1")
	params := Params{K: -1, Columns: 8, Rows: 2, EndOfBlock: false}

	streamed, err := NewDecoder(bytes.NewReader(data), params)
	require.NoError(t, err)
	streamedBytes, err := io.ReadAll(streamed)
	require.NoError(t, err)
	require.Len(t, streamedBytes, 2)

	lines, err := DecodeLines(bytes.NewReader(data), params)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Len(t, lines[0], 8)

	require.Equal(t, streamedBytes, pack(lines, 8))
}
