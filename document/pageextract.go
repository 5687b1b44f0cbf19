package document

import (
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// closureNode pairs a resolved value with the (possibly zero, for a
// value that was only ever seen directly) original object number it
// came from.
type closureNode struct {
	objNumber uint32
	value     pdfvalue.Value
}

// Extract builds a new, self-contained Document holding exactly the
// pageNumber'th page (1-based) of d, plus every object it transitively
// references (content streams, Resources and everything it names,
// soft masks, CMaps, ...), with a minimal synthetic Pages root. The
// result has no dangling references: every Ref in its object graph
// resolves within the same result.
func (d *Document) Extract(pageNumber int) (*ExtractedDocument, error) {
	page, err := d.PageByNumber(pageNumber)
	if err != nil {
		return nil, err
	}

	closure, order, err := d.collectClosure(page)
	if err != nil {
		return nil, err
	}

	// Assign new sequential object numbers (starting at 1) in discovery
	// order, reserving numbers for the page dict, its closure, and the
	// synthetic catalog/pages objects added below.
	translation := make(map[uint32]uint32, len(order))
	next := uint32(1)
	for _, on := range order {
		translation[on] = next
		next++
	}
	catalogNum := next
	next++
	pagesNum := next
	next++
	pageNum := translation[page.Obj]

	objects := make(map[uint32]pdfvalue.Value, len(order)+2)
	for _, on := range order {
		objects[translation[on]] = rewriteRefs(closure[on].value, translation)
	}

	// Patch the cloned page's /Parent to point at the synthetic Pages
	// node, matching the new, minimal tree.
	pageDict, _ := objects[pageNum].(pdfvalue.Dict)
	pageDict.Set("Parent", pdfvalue.Ref{Obj: pagesNum, Gen: 0})
	objects[pageNum] = pageDict

	mediaBox, hasMediaBox := d.effectiveMediaBox(page.Dict)

	pagesDict := pdfvalue.NewDict()
	pagesDict.Set("Type", pdfvalue.Name("Pages"))
	pagesDict.Set("Kids", pdfvalue.Array{pdfvalue.Ref{Obj: pageNum, Gen: 0}})
	pagesDict.Set("Count", pdfvalue.Int(1))
	if hasMediaBox {
		pagesDict.Set("MediaBox", rewriteRefs(mediaBox, translation).(pdfvalue.Array))
	}
	objects[pagesNum] = pagesDict

	catalogDict := pdfvalue.NewDict()
	catalogDict.Set("Type", pdfvalue.Name("Catalog"))
	catalogDict.Set("Pages", pdfvalue.Ref{Obj: pagesNum, Gen: 0})
	objects[catalogNum] = catalogDict

	return &ExtractedDocument{
		Version:   d.Version,
		Objects:   objects,
		RootObj:   catalogNum,
		MaxObj:    next - 1,
	}, nil
}

// collectClosure computes the transitive closure of objects reachable
// from page's dictionary. The walk never follows a /Parent entry, so
// the page's ancestors are not pulled in, and neither are sibling pages
// unless some other entry references them directly. Traversal is keyed
// by object number so
// cycles (e.g. a resource dictionary referencing its own page) are
// visited only once.
func (d *Document) collectClosure(page Page) (map[uint32]closureNode, []uint32, error) {
	closure := map[uint32]closureNode{page.Obj: {objNumber: page.Obj, value: page.Dict}}
	order := []uint32{page.Obj}

	var walk func(v pdfvalue.Value) error
	walk = func(v pdfvalue.Value) error {
		switch x := v.(type) {
		case pdfvalue.Ref:
			if _, done := closure[x.Obj]; done {
				return nil
			}
			resolved, err := d.Reg.Resolve(x)
			if err != nil {
				return wrapErr(ErrCorruptObject, err)
			}
			closure[x.Obj] = closureNode{objNumber: x.Obj, value: resolved}
			order = append(order, x.Obj)
			return walk(resolved)
		case pdfvalue.Dict:
			// Stop at the page-tree parent link: the new document gets
			// its own synthetic Pages root instead.
			for _, k := range x.Keys() {
				if k == "Parent" {
					continue
				}
				val, _ := x.Get(k)
				if err := walk(val); err != nil {
					return err
				}
			}
			return nil
		case pdfvalue.Array:
			for _, el := range x {
				if err := walk(el); err != nil {
					return err
				}
			}
			return nil
		case pdfvalue.Stream:
			for _, k := range x.Dict.Keys() {
				val, _ := x.Dict.Get(k)
				if err := walk(val); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}

	for _, k := range page.Dict.Keys() {
		if k == "Parent" {
			continue
		}
		v, _ := page.Dict.Get(k)
		if err := walk(v); err != nil {
			return nil, nil, err
		}
	}
	return closure, order, nil
}

// rewriteRefs deep-copies v, replacing every Ref's object number
// through translation. A Ref with no entry in translation (a dangling
// reference the closure walk never reached, e.g. one stripped by a
// page-tree boundary) is rewritten to Null, matching the
// self-containment invariant.
func rewriteRefs(v pdfvalue.Value, translation map[uint32]uint32) pdfvalue.Value {
	switch x := v.(type) {
	case pdfvalue.Ref:
		if newObj, ok := translation[x.Obj]; ok {
			return pdfvalue.Ref{Obj: newObj, Gen: 0}
		}
		return pdfvalue.Null{}
	case pdfvalue.Dict:
		out := pdfvalue.NewDict()
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out.Set(k, rewriteRefs(val, translation))
		}
		return out
	case pdfvalue.Array:
		out := make(pdfvalue.Array, len(x))
		for i, el := range x {
			out[i] = rewriteRefs(el, translation)
		}
		return out
	case pdfvalue.Stream:
		return pdfvalue.Stream{
			Dict:    rewriteRefs(x.Dict, translation).(pdfvalue.Dict),
			Bytes:   append([]byte(nil), x.Bytes...),
			Filters: append([]pdfvalue.Name(nil), x.Filters...),
		}
	default:
		return v.Clone()
	}
}

// ExtractedDocument is the self-contained result of Extract: a flat set
// of newly-numbered objects with no dependency on the source Document
// or its Registry, ready for Serialize.
type ExtractedDocument struct {
	Version string
	Objects map[uint32]pdfvalue.Value
	RootObj uint32
	MaxObj  uint32
}
