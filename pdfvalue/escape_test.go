package pdfvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeLiteralString(t *testing.T) {
	require.Equal(t, `(a\(b\)c)`, EscapeLiteralString([]byte("a(b)c")))
	require.Equal(t, `(back\\slash)`, EscapeLiteralString([]byte(`back\slash`)))
}

func TestEscapeName(t *testing.T) {
	require.Equal(t, "Name#20With#20Space", EscapeName("Name With Space"))
	require.Equal(t, "Plain", EscapeName("Plain"))
}

func TestTextStringPDFDocEncoding(t *testing.T) {
	s, err := TextString([]byte("Acrobat"))
	require.NoError(t, err)
	require.Equal(t, "Acrobat", s)
}

func TestTextStringUTF16BOM(t *testing.T) {
	raw := append([]byte{0xFE, 0xFF}, 0x00, 'h', 0x00, 'i')
	s, err := TextString(raw)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestEncodeTextStringRoundTripsASCII(t *testing.T) {
	raw := EncodeTextString("Hello, World")
	s, err := TextString(raw)
	require.NoError(t, err)
	require.Equal(t, "Hello, World", s)
}

func TestEncodeTextStringFallsBackToUTF16(t *testing.T) {
	raw := EncodeTextString("日本語")
	require.Equal(t, byte(0xFE), raw[0])
	require.Equal(t, byte(0xFF), raw[1])

	s, err := TextString(raw)
	require.NoError(t, err)
	require.Equal(t, "日本語", s)
}

func TestPDFDocEncodingSpecialGlyphs(t *testing.T) {
	// 0x93/0x94 are "fi"/"fl" ligatures in PDFDocEncoding, not their
	// Latin-1 control-code positions.
	s, err := TextString([]byte{0x93, 0x94})
	require.NoError(t, err)
	require.Equal(t, "ﬁﬂ", s)
}
