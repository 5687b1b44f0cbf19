package document

import (
	"fmt"

	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// Page pairs a page dictionary with the object number it was found at,
// the handle page extraction and lookups operate on.
type Page struct {
	Number int // the document's 1-based page index
	Obj    uint32
	Dict   pdfvalue.Dict
}

// Flatten walks the page tree rooted at Pages (Root.Pages), expanding
// /Kids depth-first, and returns every leaf /Type /Page dictionary in
// document order. A node revisited through a cycle (a malformed
// /Kids loop) is only expanded once.
func (d *Document) Flatten() ([]Page, error) {
	root, err := d.Pages()
	if err != nil {
		return nil, err
	}

	var pages []Page
	visited := map[uint32]bool{}
	var walk func(node pdfvalue.Dict, ref pdfvalue.Ref) error
	walk = func(node pdfvalue.Dict, ref pdfvalue.Ref) error {
		if visited[ref.Obj] {
			return nil
		}
		visited[ref.Obj] = true

		typ, _ := node.Get("Type")
		if name, ok := typ.(pdfvalue.Name); ok && name == "Page" {
			pages = append(pages, Page{Number: len(pages) + 1, Obj: ref.Obj, Dict: node})
			return nil
		}

		kids, ok := node.Get("Kids")
		if !ok {
			return nil
		}
		arr, ok := kids.(pdfvalue.Array)
		if !ok {
			return wrapErr(ErrCorruptObject, fmt.Errorf("/Kids is not an array"))
		}
		for _, kidRef := range arr {
			r, ok := kidRef.(pdfvalue.Ref)
			if !ok {
				continue
			}
			v, err := d.Reg.Resolve(r)
			if err != nil {
				return wrapErr(ErrCorruptObject, err)
			}
			kidDict, ok := v.(pdfvalue.Dict)
			if !ok {
				continue
			}
			if err := walk(kidDict, pdfvalue.Ref{Obj: r.Obj, Gen: r.Gen}); err != nil {
				return err
			}
		}
		return nil
	}

	rootRef, err := d.pagesRef()
	if err != nil {
		return nil, err
	}
	if err := walk(root, rootRef); err != nil {
		return nil, err
	}
	return pages, nil
}

func (d *Document) pagesRef() (pdfvalue.Ref, error) {
	catalog, err := d.Root()
	if err != nil {
		return pdfvalue.Ref{}, err
	}
	v, ok := catalog.Get("Pages")
	if !ok {
		return pdfvalue.Ref{}, wrapErr(ErrMissingRoot, fmt.Errorf("catalog has no /Pages"))
	}
	ref, ok := v.(pdfvalue.Ref)
	if !ok {
		// A direct (non-indirect) /Pages dictionary has no object number
		// of its own; use 0, which Flatten's cycle guard still handles
		// correctly since it is only ever visited once regardless.
		return pdfvalue.Ref{}, nil
	}
	return ref, nil
}

// PageByNumber returns the pageNumber'th page (1-based), in document
// order.
func (d *Document) PageByNumber(pageNumber int) (Page, error) {
	pages, err := d.Flatten()
	if err != nil {
		return Page{}, err
	}
	if pageNumber < 1 || pageNumber > len(pages) {
		return Page{}, wrapErr(ErrCorruptObject, fmt.Errorf("page %d out of range (document has %d pages)", pageNumber, len(pages)))
	}
	return pages[pageNumber-1], nil
}

// effectiveMediaBox resolves /MediaBox, inheriting up the page tree
// through /Parent when the page dictionary itself doesn't carry one (a
// legal PDF inheritance rule, 7.7.3.4 ISO 32000-1).
func (d *Document) effectiveMediaBox(page pdfvalue.Dict) (pdfvalue.Array, bool) {
	node := page
	for i := 0; i < 64; i++ { // bounded: guards against a /Parent cycle
		if mb, ok := node.Get("MediaBox"); ok {
			if arr, ok := mb.(pdfvalue.Array); ok {
				return arr, true
			}
		}
		parentRef, ok := node.Get("Parent")
		if !ok {
			break
		}
		ref, ok := parentRef.(pdfvalue.Ref)
		if !ok {
			break
		}
		v, err := d.Reg.Resolve(ref)
		if err != nil {
			break
		}
		parent, ok := v.(pdfvalue.Dict)
		if !ok {
			break
		}
		node = parent
	}
	return nil, false
}
