// Package pdfvalue implements the PDF object model: the small set of
// value types (null, boolean, number, name, string, array, dictionary,
// indirect reference, stream) that every PDF object is built from.
//
// Dict preserves key insertion order, unlike a plain Go map, so that
// round-tripping a parsed document back to bytes doesn't scramble
// dictionary entry order for no reason.
package pdfvalue

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a node of the PDF object graph. It is a closed sum type: the
// concrete types below (Null, Bool, Int, Float, Name, LiteralString,
// HexString, Array, Dict, Ref, Stream) are its only implementations.
type Value interface {
	// Write returns the PDF text representation of the value, as it would
	// appear inside an indirect object body.
	Write() string
	// Clone returns a deep copy, preserving the concrete type.
	Clone() Value
}

// Null is the PDF null object. The zero Value of this package is never
// nil; absent/undefined values are represented by Null.
type Null struct{}

func (Null) Write() string { return "null" }
func (Null) Clone() Value  { return Null{} }

// Bool is a PDF boolean object.
type Bool bool

func (b Bool) Write() string { return strconv.FormatBool(bool(b)) }
func (b Bool) Clone() Value  { return b }

// Int is a PDF integer object.
type Int int64

func (i Int) Write() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Clone() Value  { return i }

// Float is a PDF real number object.
type Float float64

func (f Float) Write() string {
	// Trim to the shortest representation that round-trips, matching
	// how real-world PDF writers avoid runaway decimal expansion.
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	return s
}
func (f Float) Clone() Value { return f }

// Name is a PDF name object, stored without its leading "/" and with
// "#xx" escapes already decoded.
type Name string

func (n Name) Write() string { return "/" + EscapeName(string(n)) }
func (n Name) Clone() Value  { return n }

// LiteralString is a PDF string object written as "(...)".  The content
// is the decoded bytes (escapes already resolved), not the raw source
// text.
type LiteralString []byte

func (s LiteralString) Write() string { return EscapeLiteralString(s) }
func (s LiteralString) Clone() Value  { return append(LiteralString(nil), s...) }

// HexString is a PDF string object written as "<...>". The content is
// the decoded bytes.
type HexString []byte

func (s HexString) Write() string { return EscapeHexString(s) }
func (s HexString) Clone() Value  { return append(HexString(nil), s...) }

// Array is a PDF array object.
type Array []Value

func (a Array) Write() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.Write()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a Array) Clone() Value {
	out := make(Array, len(a))
	for i, v := range a {
		out[i] = v.Clone()
	}
	return out
}

// Ref is an indirect reference, "obj gen R".
type Ref struct {
	Obj uint32
	Gen uint16
}

func (r Ref) Write() string { return fmt.Sprintf("%d %d R", r.Obj, r.Gen) }
func (r Ref) Clone() Value  { return r }

// Stream pairs a dictionary with opaque (still-encoded) stream bytes.
// Filters lists the dictionary's /Filter names, resolved and normalized
// to a slice for convenient inspection (empty if /Filter is absent).
type Stream struct {
	Dict    Dict
	Bytes   []byte
	Filters []Name
}

func (s Stream) Write() string {
	var b strings.Builder
	b.WriteString(s.Dict.Write())
	b.WriteString("\nstream\n")
	b.Write(s.Bytes)
	b.WriteString("\nendstream")
	return b.String()
}

func (s Stream) Clone() Value {
	out := Stream{
		Dict:    s.Dict.Clone().(Dict),
		Bytes:   append([]byte(nil), s.Bytes...),
		Filters: append([]Name(nil), s.Filters...),
	}
	return out
}
