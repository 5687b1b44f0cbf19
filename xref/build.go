package xref

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inkwell-labs/pdfkit/logging"
	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfparse"
	"github.com/inkwell-labs/pdfkit/pdftoken"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

var errCorruptHeader = errors.New("xref: missing or corrupt %PDF- header")

// Build reads r's header, locates the last "startxref" offset, and
// walks the /Prev chain of cross-reference sections (classic tables and
// streams alike, including hybrid files) to assemble a complete Table.
//
// If the last xref section cannot be parsed at all, Build falls back to
// scanning the file for "n g obj" declarations directly (bypassXref),
// the same recovery classic readers use for files with a corrupt or
// missing xref.
func Build(r pdfio.Reader) (*Table, string, error) {
	version, err := headerVersion(r)
	if err != nil {
		return nil, "", err
	}

	offset, err := findStartXRef(r)
	if err != nil {
		logging.Logger().Debug("falling back to xref bypass scan", "reason", err)
		return bypassTable(r)
	}

	t := newTable()
	seen := map[int64]bool{}
	for offset != 0 {
		if seen[offset] {
			break
		}
		seen[offset] = true

		next, err := parseSection(r, offset, t)
		if err != nil {
			logging.Logger().Debug("falling back to xref bypass scan", "reason", err)
			return bypassTable(r)
		}
		offset = next
	}
	return t, version, nil
}

func bypassTable(r pdfio.Reader) (*Table, string, error) {
	version, _ := headerVersion(r)
	t, err := bypassXref(r)
	if err != nil {
		logging.Logger().Error("xref bypass scan failed", "error", err)
	}
	return t, version, err
}

// parseSection reads one cross-reference section (classic or stream)
// at offset, merges it into t, and returns the offset to follow next
// (0 meaning the chain is complete).
func parseSection(r pdfio.Reader, offset int64, t *Table) (int64, error) {
	buf, err := r.ReadFrom(offset)
	if err != nil {
		return 0, err
	}

	tk := pdftoken.New(buf)
	start, err := tk.PeekToken()
	if err != nil {
		return 0, err
	}

	if start.IsOther("xref") {
		_, _ = tk.NextToken()
		tr, err := parseClassicSection(tk, t)
		if err != nil {
			return 0, err
		}
		t.mergeTrailer(tr)
		if tr.hasXRefStm {
			// Hybrid file: the compressed entries hidden from classic
			// readers live in this stream and must be merged first.
			if _, err := parseXRefStream(r, tr.xrefStm, t); err != nil {
				return 0, err
			}
		}
		if tr.hasPrev {
			return tr.prev, nil
		}
		return 0, nil
	}

	tr, err := parseXRefStream(r, offset, t)
	if err != nil {
		return 0, err
	}
	t.mergeTrailer(tr)
	if tr.hasPrev {
		return tr.prev, nil
	}
	return 0, nil
}

// findStartXRef locates the final "startxref\n<offset>\n%%EOF" near the
// end of the file, scanning backwards in chunks since the offset may be
// preceded by an arbitrary amount of trailing whitespace or garbage.
func findStartXRef(r pdfio.Reader) (int64, error) {
	const chunk = 1024
	size := r.Size()
	var tail []byte

	for scanned := int64(0); scanned < size; scanned += chunk {
		want := chunk
		if int64(want) > size-scanned {
			want = int(size - scanned)
		}
		start := size - scanned - int64(want)
		data, err := r.ReadRange(start, want)
		if err != nil {
			return 0, err
		}
		tail = append(data, tail...)

		if idx := bytes.LastIndex(tail, []byte("startxref")); idx >= 0 {
			rest := tail[idx+len("startxref"):]
			eof := bytes.Index(rest, []byte("%%EOF"))
			if eof < 0 {
				return 0, errors.New("xref: \"startxref\" has no matching %%EOF")
			}
			numStr := strings.TrimSpace(string(rest[:eof]))
			offset, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil || offset < 0 || offset >= size {
				return 0, fmt.Errorf("xref: corrupt startxref offset %q", numStr)
			}
			return offset, nil
		}
	}
	return 0, errors.New("xref: \"startxref\" not found")
}

func headerVersion(r pdfio.Reader) (string, error) {
	buf, err := r.ReadRange(0, 1024)
	if err != nil {
		return "", err
	}
	const prefix = "%PDF-"
	idx := bytes.Index(buf, []byte(prefix))
	if idx < 0 || idx+len(prefix)+3 > len(buf) {
		return "", errCorruptHeader
	}
	return string(buf[idx+len(prefix) : idx+len(prefix)+3]), nil
}

// bypassXref reconstructs a Table by scanning the whole file, line by
// line, for "n g obj" declarations and a final "trailer" dictionary.
// Used when the declared xref section is too corrupt to parse at all.
func bypassXref(r pdfio.Reader) (*Table, error) {
	data, err := r.ReadFrom(0)
	if err != nil {
		return nil, err
	}
	t := newTable()
	t.setIfAbsent(0, Entry{Kind: Free, Generation: 65535})

	var offset int64
	for offset < int64(len(data)) {
		line, lineOffset, next := readLine(data, offset)
		offset = next
		if len(line) == 0 {
			continue
		}

		if bytes.Equal(bytes.TrimSpace(line), []byte("trailer")) {
			rest := data[lineOffset+int64(len("trailer")):]
			p := pdfparse.New(rest)
			obj, err := p.ParseObject()
			if err != nil {
				continue
			}
			if d, ok := obj.(pdfvalue.Dict); ok {
				if tr, err := parseTrailerDict(d); err == nil {
					t.mergeTrailer(tr)
				}
			}
			continue
		}

		objNr, gen, ok := sniffObjectDeclaration(line)
		if ok {
			t.setIfAbsent(objNr, Entry{Kind: InUse, Offset: lineOffset, Generation: uint16(gen)})
		}
	}
	return t, nil
}

func readLine(data []byte, offset int64) (line []byte, lineOffset int64, next int64) {
	i := offset
	for i < int64(len(data)) && (data[i] == '\n' || data[i] == '\r') {
		i++
	}
	lineOffset = i
	start := i
	for i < int64(len(data)) && data[i] != '\n' && data[i] != '\r' {
		i++
	}
	return data[start:i], lineOffset, i
}

func sniffObjectDeclaration(line []byte) (objNumber, generation int, ok bool) {
	tk := pdftoken.New(line)
	numTok, err := tk.NextToken()
	if err != nil || numTok.Kind != pdftoken.Integer {
		return 0, 0, false
	}
	n, err := numTok.Int()
	if err != nil {
		return 0, 0, false
	}
	genTok, err := tk.NextToken()
	if err != nil || genTok.Kind != pdftoken.Integer {
		return 0, 0, false
	}
	g, err := genTok.Int()
	if err != nil {
		return 0, 0, false
	}
	kwTok, err := tk.NextToken()
	if err != nil || !kwTok.IsOther("obj") {
		return 0, 0, false
	}
	return n, g, true
}

