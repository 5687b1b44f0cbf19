package document

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// buildObjStmFixture assembles a PDF 1.5 document whose cross-reference
// section is a stream (not a classic table), with object 3 packed inside
// object 2's object stream rather than given its own "3 0 obj" body.
func buildObjStmFixture(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	offsets := make(map[int]int)

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	prolog := "3 0"
	first := len(prolog) + 1
	objBody := "<< /Type /Test /Value 42 >>"
	decoded := prolog + "\n" + objBody

	offsets[2] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /ObjStm /N 1 /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		first, len(decoded), decoded)

	// Object 3 lives only inside the object stream above: no "3 0 obj" is
	// ever written to the file directly.

	entry := func(typ byte, f2 uint32, f3 uint16) []byte {
		b := make([]byte, 7)
		b[0] = typ
		binary.BigEndian.PutUint32(b[1:5], f2)
		binary.BigEndian.PutUint16(b[5:7], f3)
		return b
	}
	var entries bytes.Buffer
	entries.Write(entry(0, 0, 0))                          // obj 0: free
	entries.Write(entry(1, uint32(offsets[1]), 0))          // obj 1: in use
	entries.Write(entry(1, uint32(offsets[2]), 0))          // obj 2: in use (the ObjStm)
	entries.Write(entry(2, 2, 0))                           // obj 3: compressed, in stream 2 at index 0
	xrefStreamOffset := buf.Len()
	entries.Write(entry(1, uint32(xrefStreamOffset), 0)) // obj 4: the xref stream itself

	fmt.Fprintf(&buf, "4 0 obj\n<< /Type /XRef /Size 5 /W [1 4 2] /Root 1 0 R /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		entries.Len(), entries.String())

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefStreamOffset)
	return buf.Bytes()
}

func TestResolveCompressedObjectFromObjectStream(t *testing.T) {
	data := buildObjStmFixture(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)
	require.Equal(t, "1.5", doc.Version)

	v, err := doc.Reg.Resolve(pdfvalue.Ref{Obj: 3})
	require.NoError(t, err)
	dict, ok := v.(pdfvalue.Dict)
	require.True(t, ok)

	typ, ok := dict.Get("Type")
	require.True(t, ok)
	require.Equal(t, pdfvalue.Name("Test"), typ)

	val, ok := dict.Get("Value")
	require.True(t, ok)
	require.Equal(t, pdfvalue.Int(42), val)
}

func TestObjectStreamContentsAreCachedAcrossResolves(t *testing.T) {
	data := buildObjStmFixture(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	first, err := doc.Reg.Resolve(pdfvalue.Ref{Obj: 3})
	require.NoError(t, err)
	doc.Reg.SetCacheSize(1)
	// Evict object 3 from the object cache by resolving two other
	// objects; the decoded object-stream contents cache (keyed
	// separately, by stream object number) must still make this cheap
	// and correct rather than re-reading the stream from disk.
	_, err = doc.Reg.Resolve(pdfvalue.Ref{Obj: 1})
	require.NoError(t, err)
	_, err = doc.Reg.Resolve(pdfvalue.Ref{Obj: 2})
	require.NoError(t, err)

	second, err := doc.Reg.Resolve(pdfvalue.Ref{Obj: 3})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Contains(t, doc.Reg.objStms, 2)
}
