package filters

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeASCIIHex(t *testing.T) {
	out, err := Decode(ASCIIHex, DefaultParams(), []byte("48656C6C6F>"))
	require.NoError(t, err)
	require.Equal(t, []byte("Hello"), out)
}

func TestDecodeASCIIHexIgnoresWhitespace(t *testing.T) {
	out, err := Decode(ASCIIHex, DefaultParams(), []byte("48 65 6C 6C 6F>"))
	require.NoError(t, err)
	require.Equal(t, []byte("Hello"), out)
}

func TestDecodeASCIIHexOddDigitPadsWithZero(t *testing.T) {
	out, err := Decode(ASCIIHex, DefaultParams(), []byte("4>"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x40}, out)
}

func TestDecodeASCII85(t *testing.T) {
	var encoded bytes.Buffer
	w := ascii85.NewEncoder(&encoded)
	_, err := w.Write([]byte("Hello, world!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	encoded.WriteString("~>")

	out, err := Decode(ASCII85, DefaultParams(), encoded.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte("Hello, world!"), out)
}

func TestDecodeRunLengthLiteralAndRepeat(t *testing.T) {
	// Literal run: copy 3 bytes ("abc"); repeat run: byte 'x' 5 times
	// (length byte 257-5=252); end-of-data marker 128.
	encoded := []byte{2, 'a', 'b', 'c', 252, 'x', 128}
	out, err := Decode(RunLength, DefaultParams(), encoded)
	require.NoError(t, err)
	require.Equal(t, []byte("abcxxxxx"), out)
}

func TestDecodeRunLengthMissingEODErrors(t *testing.T) {
	_, err := Decode(RunLength, DefaultParams(), []byte{1, 'a', 'b'})
	require.Error(t, err)
}

func TestDecodeFlateAppliesPNGPredictor(t *testing.T) {
	var raw bytes.Buffer
	// PNG "None" filter tag (0) in front of each one-byte row.
	raw.Write([]byte{0, 10, 0, 20, 0, 30})

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	params := Params{Predictor: 12, Colors: 1, BPC: 8, Columns: 1}
	out, err := Decode(Flate, params, compressed.Bytes())
	require.NoError(t, err)
	require.Equal(t, []byte{10, 20, 30}, out)
}

func TestDecodeUnsupportedFilterErrors(t *testing.T) {
	_, err := Decode("BogusDecode", DefaultParams(), nil)
	require.Error(t, err)
}

func TestDecodeEmptyFilterNameIsPassthrough(t *testing.T) {
	out, err := Decode("", DefaultParams(), []byte("raw bytes"))
	require.NoError(t, err)
	require.Equal(t, []byte("raw bytes"), out)
}

func TestDecodeDCTPassesThroughUndecoded(t *testing.T) {
	out, err := Decode(DCT, DefaultParams(), []byte{0xFF, 0xD8, 0xFF, 0xD9})
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xD9}, out)
}
