package xref

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/inkwell-labs/pdfkit/pdfparse"
	"github.com/inkwell-labs/pdfkit/pdftoken"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// trailerInfo holds the parsed contents of a trailer dictionary (or a
// cross-reference stream's dictionary, which carries the same keys).
type trailerInfo struct {
	root    *Ref
	info    *Ref
	encrypt *Ref
	id      [][]byte
	size    int
	prev    int64
	hasPrev bool
	xrefStm int64
	hasXRefStm bool
}

var errNotTrailerDict = errors.New("xref: expected trailer dictionary")

// parseClassicSection parses one "xref ... trailer <<...>>" section
// starting right after the "xref" keyword has been consumed, returning
// the trailer it read.
func parseClassicSection(tk *pdftoken.Tokenizer, t *Table) (trailerInfo, error) {
	for {
		if err := parseSubsection(tk, t); err != nil {
			return trailerInfo{}, err
		}
		next, err := tk.PeekToken()
		if err != nil {
			return trailerInfo{}, err
		}
		if next.IsOther("trailer") {
			break
		}
	}
	_, _ = tk.NextToken() // consume "trailer"

	p := pdfparse.FromTokenizer(tk)
	obj, err := p.ParseObject()
	if err != nil {
		return trailerInfo{}, err
	}
	dict, ok := obj.(pdfvalue.Dict)
	if !ok {
		return trailerInfo{}, errNotTrailerDict
	}
	return parseTrailerDict(dict)
}

func parseSubsection(tk *pdftoken.Tokenizer, t *Table) error {
	startTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	start, err := startTok.Int()
	if startTok.Kind != pdftoken.Integer || err != nil {
		return fmt.Errorf("xref: invalid subsection start object number")
	}
	countTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	count, err := countTok.Int()
	if countTok.Kind != pdftoken.Integer || err != nil {
		return fmt.Errorf("xref: invalid subsection object count")
	}

	for i := 0; i < count; i++ {
		if err := parseEntry(tk, t, start+i); err != nil {
			return err
		}
	}
	return nil
}

func parseEntry(tk *pdftoken.Tokenizer, t *Table, objNumber int) error {
	offsetTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	offset, err := strconv.ParseInt(offsetTok.Value, 10, 64)
	if err != nil {
		return fmt.Errorf("xref: invalid entry offset: %w", err)
	}

	genTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	gen, err := genTok.Int()
	if err != nil {
		return fmt.Errorf("xref: invalid entry generation: %w", err)
	}

	typeTok, err := tk.NextToken()
	if err != nil {
		return err
	}
	if typeTok.Kind != pdftoken.Other || (typeTok.Value != "f" && typeTok.Value != "n") {
		return errors.New("xref: corrupt entry type")
	}

	if typeTok.Value == "n" && offset == 0 {
		return nil // a 0 offset for an in-use entry is never valid; skip it
	}

	t.setIfAbsent(objNumber, Entry{
		Kind:       kindFor(typeTok.Value),
		Offset:     offset,
		Generation: uint16(gen),
	})
	return nil
}

func kindFor(typ string) EntryKind {
	if typ == "f" {
		return Free
	}
	return InUse
}

func refFromValue(v pdfvalue.Value) *Ref {
	r, ok := v.(pdfvalue.Ref)
	if !ok {
		return nil
	}
	return &Ref{Obj: r.Obj, Gen: r.Gen}
}

// offsetFromValue accepts either a bare integer or (tolerating a common
// generator bug) an indirect reference whose object number is used as
// the offset.
func offsetFromValue(v pdfvalue.Value) (int64, bool) {
	switch x := v.(type) {
	case pdfvalue.Int:
		return int64(x), true
	case pdfvalue.Ref:
		return int64(x.Obj), true
	default:
		return 0, false
	}
}

func parseTrailerDict(d pdfvalue.Dict) (trailerInfo, error) {
	var out trailerInfo

	if v, ok := d.Get("Size"); ok {
		if n, ok := v.(pdfvalue.Int); ok {
			out.size = int(n)
		}
	}
	if v, ok := d.Get("Root"); ok {
		out.root = refFromValue(v)
	}
	if v, ok := d.Get("Info"); ok {
		out.info = refFromValue(v)
	}
	if v, ok := d.Get("Encrypt"); ok {
		out.encrypt = refFromValue(v)
	}
	if v, ok := d.Get("ID"); ok {
		if arr, ok := v.(pdfvalue.Array); ok {
			for _, el := range arr {
				switch s := el.(type) {
				case pdfvalue.LiteralString:
					out.id = append(out.id, []byte(s))
				case pdfvalue.HexString:
					out.id = append(out.id, []byte(s))
				}
			}
		}
	}
	if v, ok := d.Get("Prev"); ok {
		if off, ok := offsetFromValue(v); ok {
			out.prev, out.hasPrev = off, true
		}
	}
	if v, ok := d.Get("XRefStm"); ok {
		if n, ok := v.(pdfvalue.Int); ok {
			out.xrefStm, out.hasXRefStm = int64(n), true
		}
	}
	return out, nil
}
