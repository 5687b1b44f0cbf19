package pdfparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

func TestParseObjectScalars(t *testing.T) {
	v, err := ParseObject([]byte(`42`))
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Int(42), v)

	v, err = ParseObject([]byte(`true`))
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Bool(true), v)

	v, err = ParseObject([]byte(`null`))
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Null{}, v)
}

func TestParseObjectIndirectReference(t *testing.T) {
	v, err := ParseObject([]byte(`12 0 R`))
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Ref{Obj: 12, Gen: 0}, v)
}

func TestParseObjectTwoBareIntegersAreNotARef(t *testing.T) {
	p := New([]byte(`12 0 13 0 R`))
	v, err := p.ParseObject()
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Int(12), v)
}

func TestParseObjectArray(t *testing.T) {
	v, err := ParseObject([]byte(`[1 2 3 0 R]`))
	require.NoError(t, err)
	require.Equal(t, pdfvalue.Array{pdfvalue.Int(1), pdfvalue.Int(2), pdfvalue.Ref{Obj: 3, Gen: 0}}, v)
}

func TestParseObjectDictDropsNullValues(t *testing.T) {
	v, err := ParseObject([]byte(`<< /A 1 /B null /C (x) >>`))
	require.NoError(t, err)
	dict, ok := v.(pdfvalue.Dict)
	require.True(t, ok)

	_, hasB := dict.Get("B")
	require.False(t, hasB)
	require.Equal(t, []pdfvalue.Name{"A", "C"}, dict.Keys())
}

func TestParseIndirectObject(t *testing.T) {
	hdr, obj, err := ParseIndirectObject([]byte(`7 0 obj << /Type /Page >> endobj`))
	require.NoError(t, err)
	require.Equal(t, ObjectHeader{Number: 7, Generation: 0}, hdr)

	dict, ok := obj.(pdfvalue.Dict)
	require.True(t, ok)
	typ, ok := dict.Get("Type")
	require.True(t, ok)
	require.Equal(t, pdfvalue.Name("Page"), typ)
}

func TestParseObjectHeaderLeavesCursorAfterObjKeyword(t *testing.T) {
	p := New([]byte("5 0 obj (body) endobj"))
	hdr, err := p.ParseObjectHeader()
	require.NoError(t, err)
	require.Equal(t, uint32(5), hdr.Number)

	obj, err := p.ParseObject()
	require.NoError(t, err)
	require.Equal(t, pdfvalue.LiteralString("body"), obj)
}
