// Package document ties together package xref, package pdfparse and
// package filters into a lazily-resolving PDF object graph: objects are
// parsed from disk only when first requested, and a bounded cache lets
// a large document be walked without holding every object in memory at
// once.
package document

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/inkwell-labs/pdfkit/filters"
	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfparse"
	"github.com/inkwell-labs/pdfkit/pdftoken"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
	"github.com/inkwell-labs/pdfkit/xref"
)

// DefaultCacheSize is the number of resolved objects a Registry keeps
// before evicting the least recently used one.
const DefaultCacheSize = 4096

// Registry resolves PDF object references to values, parsing from the
// underlying reader on demand and caching the result. It is safe for
// concurrent use: prefetching (see Registry.Prefetch) resolves several
// objects from different goroutines at once.
type Registry struct {
	r     pdfio.Reader
	table *xref.Table

	cacheSize int

	mu       sync.Mutex
	cache    map[int]*list.Element // objNumber -> lru node
	lru      *list.List
	objStms  map[int][]pdfvalue.Value // decoded object-stream contents, keyed by stream object number
}

type cacheNode struct {
	objNumber int
	value     pdfvalue.Value
}

// NewRegistry creates a Registry over an already-built cross-reference
// table.
func NewRegistry(r pdfio.Reader, table *xref.Table) *Registry {
	return &Registry{
		r:         r,
		table:     table,
		cacheSize: DefaultCacheSize,
		cache:     make(map[int]*list.Element),
		lru:       list.New(),
		objStms:   make(map[int][]pdfvalue.Value),
	}
}

// SetCacheSize overrides DefaultCacheSize. A size <= 0 disables
// eviction (the cache grows without bound).
func (reg *Registry) SetCacheSize(n int) { reg.cacheSize = n }

// Resolve returns the object identified by ref, following indirect
// references exactly once (PDF forbids a reference to a reference).
func (reg *Registry) Resolve(ref pdfvalue.Ref) (pdfvalue.Value, error) {
	return reg.resolveNumber(int(ref.Obj))
}

// Deref returns v itself, unless v is a Ref, in which case it resolves
// and returns the referenced object. This is the usual way callers walk
// the object graph without caring whether a given dictionary entry was
// direct or indirect.
func (reg *Registry) Deref(v pdfvalue.Value) (pdfvalue.Value, error) {
	ref, ok := v.(pdfvalue.Ref)
	if !ok {
		return v, nil
	}
	return reg.Resolve(ref)
}

func (reg *Registry) resolveNumber(objNumber int) (pdfvalue.Value, error) {
	if v, ok := reg.cacheGet(objNumber); ok {
		return v, nil
	}

	entry, ok := reg.table.Lookup(objNumber)
	if !ok || entry.Kind == xref.Free {
		return pdfvalue.Null{}, nil
	}

	var value pdfvalue.Value
	var err error
	switch entry.Kind {
	case xref.InUse:
		value, err = reg.parseAt(objNumber, entry.Offset)
	case xref.Compressed:
		value, err = reg.resolveCompressed(entry.StreamObject, entry.StreamIndex)
	default:
		value = pdfvalue.Null{}
	}
	if err != nil {
		return nil, fmt.Errorf("document: resolving object %d: %w", objNumber, err)
	}

	reg.cachePut(objNumber, value)
	return value, nil
}

// parseAt parses the indirect object at a direct file offset, reading
// the stream body too when the object is a stream.
func (reg *Registry) parseAt(objNumber int, offset int64) (pdfvalue.Value, error) {
	buf, err := reg.r.ReadFrom(offset)
	if err != nil {
		return nil, err
	}

	tk := pdftoken.New(buf)
	p := pdfparse.FromTokenizer(tk)
	hdr, err := p.ParseObjectHeader()
	if err != nil {
		return nil, err
	}
	if int(hdr.Number) != objNumber {
		return nil, fmt.Errorf("xref offset points at object %d, expected %d", hdr.Number, objNumber)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, err
	}

	dict, isDict := obj.(pdfvalue.Dict)
	if !isDict {
		return obj, nil
	}

	next, err := tk.PeekToken()
	if err != nil || !next.IsOther("stream") {
		return dict, nil
	}

	// Re-parse as a proper stream header so ContentOffset accounts for
	// the EOL convention after "stream".
	sh, err := pdfparse.ParseStreamHeader(buf)
	if err != nil {
		return nil, err
	}
	raw, err := readStreamBytes(reg, offset+int64(sh.ContentOffset), sh.Dict)
	if err != nil {
		return nil, err
	}
	names, _ := filterNames(sh.Dict)
	return pdfvalue.Stream{Dict: dict, Bytes: raw, Filters: toNames(names)}, nil
}

func toNames(ss []string) []pdfvalue.Name {
	out := make([]pdfvalue.Name, len(ss))
	for i, s := range ss {
		out[i] = pdfvalue.Name(s)
	}
	return out
}

func filterNames(dict pdfvalue.Dict) ([]string, []pdfvalue.Dict) {
	var names []string
	var parms []pdfvalue.Dict
	f, ok := dict.Get("Filter")
	if !ok {
		return nil, nil
	}
	switch v := f.(type) {
	case pdfvalue.Name:
		names = []string{string(v)}
	case pdfvalue.Array:
		for _, el := range v {
			if n, ok := el.(pdfvalue.Name); ok {
				names = append(names, string(n))
			}
		}
	}
	if dp, ok := dict.Get("DecodeParms"); ok {
		switch v := dp.(type) {
		case pdfvalue.Dict:
			parms = []pdfvalue.Dict{v}
		case pdfvalue.Array:
			for _, el := range v {
				if d, ok := el.(pdfvalue.Dict); ok {
					parms = append(parms, d)
				} else {
					parms = append(parms, pdfvalue.NewDict())
				}
			}
		}
	}
	return names, parms
}

// readStreamBytes reads and returns a stream's raw (still-encoded)
// bytes, trusting /Length (direct, or an indirect reference to an
// integer) when "endstream" follows that many bytes, and scanning for
// "endstream" otherwise (a missing or corrupt Length, which real-world
// PDFs do have).
func readStreamBytes(reg *Registry, contentStart int64, dict pdfvalue.Dict) ([]byte, error) {
	// endstreamAt reports whether "endstream" follows n content bytes,
	// separated from them by end-of-line bytes only.
	endstreamAt := func(n int64) bool {
		tail, err := reg.r.ReadRange(contentStart+n, 16)
		if err != nil {
			return false
		}
		i := indexOf(tail, "endstream")
		return i >= 0 && len(trimTrailingEOL(tail[:i])) == 0
	}
	if l, ok := dict.Get("Length"); ok {
		switch n := l.(type) {
		case pdfvalue.Int:
			if n >= 0 && endstreamAt(int64(n)) {
				if data, err := reg.r.ReadRange(contentStart, int(n)); err == nil {
					return data, nil
				}
			}
		case pdfvalue.Ref:
			resolved, err := reg.Resolve(n)
			if err == nil {
				if ni, ok := resolved.(pdfvalue.Int); ok && ni >= 0 && endstreamAt(int64(ni)) {
					if data, err := reg.r.ReadRange(contentStart, int(ni)); err == nil {
						return data, nil
					}
				}
			}
		}
	}
	rest, err := reg.r.ReadFrom(contentStart)
	if err != nil {
		return nil, err
	}
	if i := indexOf(rest, "endstream"); i >= 0 {
		return trimTrailingEOL(rest[:i]), nil
	}
	return rest, nil
}

func indexOf(data []byte, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(data); i++ {
		if string(data[i:i+n]) == needle {
			return i
		}
	}
	return -1
}

func trimTrailingEOL(data []byte) []byte {
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}
	return data
}

// DecodedStream returns a stream object's decoded (filters applied)
// bytes.
func (reg *Registry) DecodedStream(s pdfvalue.Stream) ([]byte, error) {
	names, parms := filterNames(s.Dict)
	out := s.Bytes
	for i, name := range names {
		var p filters.Params
		if i < len(parms) {
			p = filters.BuildParams(name, parms[i])
		} else {
			p = filters.BuildParams(name, pdfvalue.NewDict())
		}
		decoded, err := filters.Decode(name, p, out)
		if err != nil {
			return nil, err
		}
		out = decoded
	}
	return out, nil
}

func (reg *Registry) cacheGet(objNumber int) (pdfvalue.Value, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	el, ok := reg.cache[objNumber]
	if !ok {
		return nil, false
	}
	reg.lru.MoveToFront(el)
	return el.Value.(*cacheNode).value, true
}

func (reg *Registry) cachePut(objNumber int, v pdfvalue.Value) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if el, ok := reg.cache[objNumber]; ok {
		el.Value.(*cacheNode).value = v
		reg.lru.MoveToFront(el)
		return
	}
	el := reg.lru.PushFront(&cacheNode{objNumber: objNumber, value: v})
	reg.cache[objNumber] = el

	if reg.cacheSize > 0 {
		for reg.lru.Len() > reg.cacheSize {
			oldest := reg.lru.Back()
			if oldest == nil {
				break
			}
			reg.lru.Remove(oldest)
			delete(reg.cache, oldest.Value.(*cacheNode).objNumber)
		}
	}
}
