package document

import (
	"bytes"
	"fmt"

	"github.com/inkwell-labs/pdfkit/pdfparse"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// resolveCompressed returns the objIndex'th object stored inside the
// object stream numbered streamObj (7.5.7, ISO 32000-1), decoding and
// caching the whole stream's contents on first access.
func (reg *Registry) resolveCompressed(streamObj, objIndex int) (pdfvalue.Value, error) {
	objs, err := reg.objectStreamContents(streamObj)
	if err != nil {
		return nil, err
	}
	if objIndex < 0 || objIndex >= len(objs) {
		return pdfvalue.Null{}, nil
	}
	return objs[objIndex], nil
}

// objectStreamContents decodes and parses every object packed into the
// object stream numbered streamObj, in stream order, caching the result.
func (reg *Registry) objectStreamContents(streamObj int) ([]pdfvalue.Value, error) {
	reg.mu.Lock()
	if cached, ok := reg.objStms[streamObj]; ok {
		reg.mu.Unlock()
		return cached, nil
	}
	reg.mu.Unlock()

	v, err := reg.resolveNumber(streamObj)
	if err != nil {
		return nil, fmt.Errorf("document: object stream %d: %w", streamObj, err)
	}
	stm, ok := v.(pdfvalue.Stream)
	if !ok {
		return nil, fmt.Errorf("document: object %d is not a stream", streamObj)
	}

	typ, _ := stm.Dict.Get("Type")
	if n, ok := typ.(pdfvalue.Name); ok && n != "ObjStm" {
		return nil, fmt.Errorf("document: object %d has /Type /%s, expected /ObjStm", streamObj, n)
	}
	if _, hasExtents := stm.Dict.Get("Extents"); hasExtents {
		return nil, fmt.Errorf("document: object stream %d: /Extents arrays are not supported", streamObj)
	}

	n, ok := intEntry(stm.Dict, "N")
	if !ok {
		return nil, fmt.Errorf("document: object stream %d: missing /N", streamObj)
	}
	first, ok := intEntry(stm.Dict, "First")
	if !ok {
		return nil, fmt.Errorf("document: object stream %d: missing /First", streamObj)
	}

	decoded, err := reg.DecodedStream(stm)
	if err != nil {
		return nil, fmt.Errorf("document: object stream %d: %w", streamObj, err)
	}
	if first < 0 || first > len(decoded) {
		return nil, fmt.Errorf("document: object stream %d: /First out of range", streamObj)
	}

	prolog := decoded[:first]
	// Real-world generators sometimes separate the "objnum offset" pairs
	// with NUL bytes instead of whitespace.
	prolog = bytes.ReplaceAll(prolog, []byte{0x00}, []byte{0x20})
	fields := bytes.Fields(prolog)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("document: object stream %d: corrupt prolog", streamObj)
	}

	count := n
	if count > len(fields)/2 {
		count = len(fields) / 2
	}

	offsets := make([]int, count)
	for i := 0; i < count; i++ {
		off, err := parseUint(fields[2*i+1])
		if err != nil {
			return nil, fmt.Errorf("document: object stream %d: corrupt prolog offset: %w", streamObj, err)
		}
		offsets[i] = off + first
		if offsets[i] < 0 || offsets[i] > len(decoded) {
			return nil, fmt.Errorf("document: object stream %d: offset out of range", streamObj)
		}
	}

	objs := make([]pdfvalue.Value, count)
	for i := 0; i < count; i++ {
		start := offsets[i]
		end := len(decoded)
		if i+1 < count {
			end = offsets[i+1]
		}
		if end < start {
			end = start
		}
		obj, err := pdfparse.ParseObject(decoded[start:end])
		if err != nil {
			return nil, fmt.Errorf("document: object stream %d: object %d: %w", streamObj, i, err)
		}
		objs[i] = obj
	}

	reg.mu.Lock()
	reg.objStms[streamObj] = objs
	reg.mu.Unlock()

	return objs, nil
}

func intEntry(d pdfvalue.Dict, key pdfvalue.Name) (int, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.(pdfvalue.Int)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func parseUint(b []byte) (int, error) {
	n := 0
	if len(b) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q", c)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
