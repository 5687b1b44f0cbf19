package pdfvalue

import (
	"encoding/hex"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

var literalReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"(", "\\(",
	")", "\\)",
	"\r", "\\r",
)

// EscapeLiteralString returns the PDF "(...)" representation of raw
// bytes, escaping the characters that are otherwise significant to the
// literal-string grammar.
func EscapeLiteralString(raw []byte) string {
	return "(" + literalReplacer.Replace(string(raw)) + ")"
}

// EscapeHexString returns the PDF "<...>" representation of raw bytes.
func EscapeHexString(raw []byte) string {
	return "<" + hex.EncodeToString(raw) + ">"
}

// EscapeName returns the unescaped name value with any byte that must be
// hex-escaped ("#xx") per 7.3.5 of ISO 32000-1 rewritten.
func EscapeName(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("()<>[]{}/%#", c) >= 0 {
			b.WriteByte('#')
			b.WriteString(hex.EncodeToString([]byte{c}))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// bomUTF16BE is the byte-order mark PDF text strings use to flag
// UTF-16BE content (7.9.2.2 of ISO 32000-1).
var bomUTF16BE = []byte{0xFE, 0xFF}

// TextString decodes a PDF "text string" (the content of a literal or
// hex string used for human-readable text, e.g. /Info entries): PDFDoc
// encoding if there's no UTF-16BE byte-order mark, UTF-16BE otherwise.
func TextString(raw []byte) (string, error) {
	if len(raw) >= 2 && raw[0] == bomUTF16BE[0] && raw[1] == bomUTF16BE[1] {
		out, err := utf16BE.NewDecoder().Bytes(raw[2:])
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return decodePDFDocEncoding(raw), nil
}

// EncodeTextString encodes s as a PDF text string: PDFDoc encoding if s
// is representable that way (the common case for ASCII-ish metadata),
// UTF-16BE with a leading byte-order mark otherwise.
func EncodeTextString(s string) []byte {
	if raw, ok := encodePDFDocEncoding(s); ok {
		return raw
	}
	u16 := utf16.Encode([]rune(s))
	out := append([]byte(nil), bomUTF16BE...)
	for _, u := range u16 {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}
