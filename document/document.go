package document

import (
	"fmt"

	"github.com/inkwell-labs/pdfkit/logging"
	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfkitconf"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
	"github.com/inkwell-labs/pdfkit/xref"
)

// ErrorKind classifies a document-level failure, letting callers branch
// with errors.Is/errors.As instead of string matching.
type ErrorKind uint8

const (
	ErrUnknown ErrorKind = iota
	ErrCorruptHeader
	ErrCorruptXref
	ErrCorruptObject
	ErrMissingRoot
	ErrUnsupportedFeature
	ErrReaderAborted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCorruptHeader:
		return "corrupt header"
	case ErrCorruptXref:
		return "corrupt xref"
	case ErrCorruptObject:
		return "corrupt object"
	case ErrMissingRoot:
		return "missing root"
	case ErrUnsupportedFeature:
		return "unsupported feature"
	case ErrReaderAborted:
		return "reader aborted"
	default:
		return "unknown"
	}
}

// Error wraps a lower-level error with a classification, the shape every
// package-level failure in document is reported as.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("document: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Document owns one PDF version header, one cross-reference table, and
// the Registry used to lazily resolve object numbers to values. It is
// the top-level handle callers parse a file into and operate on.
type Document struct {
	Version string
	Table   *xref.Table
	Reg     *Registry

	root pdfvalue.Value
}

// Open parses r's header and cross-reference structure and returns a
// ready-to-use Document, eagerly resolving only the document catalog
// (trailer.Root). The registry is sized with pdfkitconf.NewDefaultConfig.
func Open(r pdfio.Reader) (*Document, error) {
	return OpenWithConfig(r, pdfkitconf.NewDefaultConfig())
}

// OpenWithConfig is Open, but lets the caller tune the registry's cache
// size (and, indirectly, its memory footprint) via cfg. cfg is
// validated before use.
func OpenWithConfig(r pdfio.Reader, cfg *pdfkitconf.Config) (*Document, error) {
	if cfg == nil {
		cfg = pdfkitconf.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, wrapErr(ErrUnknown, err)
	}

	table, version, err := xref.Build(r)
	if err != nil {
		return nil, wrapErr(ErrCorruptXref, err)
	}

	reg := NewRegistry(r, table)
	reg.SetCacheSize(cfg.CacheSize)

	doc := &Document{
		Version: version,
		Table:   table,
		Reg:     reg,
	}

	if table.Root != nil {
		root, err := doc.Reg.Resolve(pdfvalue.Ref{Obj: table.Root.Obj, Gen: table.Root.Gen})
		if err != nil {
			logging.Logger().Error("failed to resolve trailer Root", "obj", table.Root.Obj, "error", err)
			return nil, wrapErr(ErrCorruptObject, err)
		}
		doc.root = root
	}
	return doc, nil
}

// Root returns the document catalog (the /Root dictionary), or an error
// if the trailer carried no Root entry.
func (d *Document) Root() (pdfvalue.Dict, error) {
	dict, ok := d.root.(pdfvalue.Dict)
	if !ok {
		return pdfvalue.Dict{}, wrapErr(ErrMissingRoot, fmt.Errorf("trailer has no usable /Root"))
	}
	return dict, nil
}

// Info returns the document information dictionary, if the trailer
// carried one.
func (d *Document) Info() (pdfvalue.Dict, bool, error) {
	if d.Table.Info == nil {
		return pdfvalue.Dict{}, false, nil
	}
	v, err := d.Reg.Resolve(pdfvalue.Ref{Obj: d.Table.Info.Obj, Gen: d.Table.Info.Gen})
	if err != nil {
		return pdfvalue.Dict{}, false, wrapErr(ErrCorruptObject, err)
	}
	dict, ok := v.(pdfvalue.Dict)
	return dict, ok, nil
}

// Pages returns the root of the document's page tree (Root.Pages,
// resolved).
func (d *Document) Pages() (pdfvalue.Dict, error) {
	root, err := d.Root()
	if err != nil {
		return pdfvalue.Dict{}, err
	}
	pagesRef, ok := root.Get("Pages")
	if !ok {
		return pdfvalue.Dict{}, wrapErr(ErrMissingRoot, fmt.Errorf("catalog has no /Pages"))
	}
	v, err := d.Reg.Deref(pagesRef)
	if err != nil {
		return pdfvalue.Dict{}, wrapErr(ErrCorruptObject, err)
	}
	dict, ok := v.(pdfvalue.Dict)
	if !ok {
		return pdfvalue.Dict{}, wrapErr(ErrCorruptObject, fmt.Errorf("/Pages is not a dictionary"))
	}
	return dict, nil
}

// ConcatContents joins the raw decoded bytes of every stream in v (a
// single Stream, or an Array of them, as /Contents may legally be
// either) with a single "\n" separator per object, since a page's
// content stream operators may not span the implicit boundary between
// adjacent stream objects.
func (d *Document) ConcatContents(v pdfvalue.Value) ([]byte, error) {
	var streams []pdfvalue.Stream
	switch x := v.(type) {
	case pdfvalue.Stream:
		streams = []pdfvalue.Stream{x}
	case pdfvalue.Array:
		for _, el := range x {
			resolved, err := d.Reg.Deref(el)
			if err != nil {
				return nil, wrapErr(ErrCorruptObject, err)
			}
			s, ok := resolved.(pdfvalue.Stream)
			if !ok {
				continue
			}
			streams = append(streams, s)
		}
	default:
		return nil, wrapErr(ErrCorruptObject, fmt.Errorf("/Contents is neither a stream nor an array"))
	}

	var out []byte
	for i, s := range streams {
		decoded, err := d.Reg.DecodedStream(s)
		if err != nil {
			return nil, wrapErr(ErrCorruptObject, err)
		}
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, decoded...)
	}
	return out, nil
}
