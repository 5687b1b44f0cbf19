package xref

import (
	"errors"
	"fmt"

	"github.com/inkwell-labs/pdfkit/filters"
	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfparse"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

// streamDict is a cross-reference stream's /W, /Index and /Size
// parameters, decoded from its dictionary (7.5.8, ISO 32000-1).
type streamDict struct {
	index [][2]int
	w     [3]int
	size  int
}

func (s streamDict) entrySize() int { return s.w[0] + s.w[1] + s.w[2] }

func (s streamDict) count() int {
	total := 0
	for _, sub := range s.index {
		total += sub[1]
	}
	return total
}

var (
	errXRefStreamIndex  = errors.New("xref: corrupted /Index entry")
	errXRefStreamW      = errors.New("xref: /W must be an array of 3 non-negative integers")
	errXRefStreamLength = errors.New("xref: missing /Length")
	errXRefStreamSize   = errors.New("xref: missing /Size")
)

func parseStreamDict(d pdfvalue.Dict) (streamDict, error) {
	var out streamDict

	size, ok := d.Get("Size")
	n, okInt := size.(pdfvalue.Int)
	if !ok || !okInt {
		return out, errXRefStreamSize
	}
	out.size = int(n)

	if idx, ok := d.Get("Index"); ok {
		arr, ok := idx.(pdfvalue.Array)
		if !ok || len(arr)%2 != 0 {
			return out, errXRefStreamIndex
		}
		for i := 0; i < len(arr); i += 2 {
			start, ok1 := arr[i].(pdfvalue.Int)
			count, ok2 := arr[i+1].(pdfvalue.Int)
			if !ok1 || !ok2 {
				return out, errXRefStreamIndex
			}
			out.index = append(out.index, [2]int{int(start), int(count)})
		}
	} else {
		out.index = [][2]int{{0, out.size}}
	}

	w, ok := d.Get("W")
	warr, okArr := w.(pdfvalue.Array)
	if !ok || !okArr || len(warr) < 3 {
		return out, errXRefStreamW
	}
	for i := 0; i < 3; i++ {
		v, ok := warr[i].(pdfvalue.Int)
		if !ok || v < 0 {
			return out, errXRefStreamW
		}
		out.w[i] = int(v)
	}
	return out, nil
}

// readRaw reads a stream's raw (still-encoded) bytes, trusting /Length
// when it is a direct integer, and otherwise (or if Length looks wrong,
// i.e. "endstream" does not follow that many bytes) scanning forward for
// "endstream" the way a tolerant reader must for any stream with a
// corrupt or indirect Length.
func readRaw(r pdfio.Reader, contentStart int64, dict pdfvalue.Dict) ([]byte, error) {
	endstreamAt := func(n int64) bool {
		tail, err := r.ReadRange(contentStart+n, 16)
		if err != nil {
			return false
		}
		i := indexOf(tail, "endstream")
		return i >= 0 && len(trimTrailingEOL(tail[:i])) == 0
	}
	if l, ok := dict.Get("Length"); ok {
		if n, ok := l.(pdfvalue.Int); ok && n >= 0 && endstreamAt(int64(n)) {
			data, err := r.ReadRange(contentStart, int(n))
			if err == nil {
				return data, nil
			}
		}
	}
	rest, err := r.ReadFrom(contentStart)
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

// parseXRefStream reads the cross-reference stream at offset, merges
// its entries into t, and returns the trailer fields of its dictionary
// (including any /Prev offset) for the caller to merge.
func parseXRefStream(r pdfio.Reader, offset int64, t *Table) (trailerInfo, error) {
	buf, err := r.ReadFrom(offset)
	if err != nil {
		return trailerInfo{}, err
	}

	sh, err := pdfparse.ParseStreamHeader(buf)
	if err != nil {
		return trailerInfo{}, fmt.Errorf("xref: xref stream at %d: %w", offset, err)
	}

	sd, err := parseStreamDict(sh.Dict)
	if err != nil {
		return trailerInfo{}, err
	}

	contentStart := offset + int64(sh.ContentOffset)
	raw, err := readRaw(r, contentStart, sh.Dict)
	if err != nil {
		return trailerInfo{}, err
	}

	decoded, err := decodeStreamBody(sh.Dict, raw)
	if err != nil {
		return trailerInfo{}, err
	}

	if err := extractEntries(decoded, sd, t); err != nil {
		return trailerInfo{}, err
	}

	// Record the xref stream object itself, since it is a legitimate
	// indirect object like any other.
	t.setIfAbsent(int(sh.Header.Number), Entry{Kind: InUse, Offset: offset, Generation: sh.Header.Generation})

	return parseTrailerDict(sh.Dict)
}

// decodeStreamBody runs the dictionary's filter pipeline (almost always
// just FlateDecode with a PNG predictor for xref streams) over raw.
func decodeStreamBody(dict pdfvalue.Dict, raw []byte) ([]byte, error) {
	names, parms := filterPipeline(dict)
	out := raw
	for i, name := range names {
		var p filters.Params
		if i < len(parms) {
			p = filters.BuildParams(name, parms[i])
		} else {
			p = filters.DefaultParams()
		}
		decoded, err := filters.Decode(name, p, out)
		if err != nil {
			return nil, err
		}
		out = decoded
	}
	return out, nil
}

// filterPipeline normalizes /Filter and /DecodeParms, each of which may
// be a single name/dict or an array of them, into parallel slices.
func filterPipeline(dict pdfvalue.Dict) ([]string, []pdfvalue.Dict) {
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

func bufToInt64(buf []byte) int64 {
	var v int64
	for _, b := range buf {
		v = (v << 8) | int64(b)
	}
	return v
}

func extractEntries(buf []byte, sd streamDict, t *Table) error {
	entrySize, count := sd.entrySize(), sd.count()
	need := entrySize * count
	if len(buf) < need {
		return errors.New("xref: truncated xref stream")
	}
	buf = buf[:need]

	w0, w1, w2 := sd.w[0], sd.w[1], sd.w[2]
	i := 0
	for _, sub := range sd.index {
		first, n := sub[0], sub[1]
		for k := 0; k < n; k++ {
			objNumber := first + k
			off := i * entrySize
			typ := int64(1)
			if w0 > 0 {
				typ = bufToInt64(buf[off : off+w0])
			}
			f2 := bufToInt64(buf[off+w0 : off+w0+w1])
			f3 := bufToInt64(buf[off+w0+w1 : off+w0+w1+w2])

			var e Entry
			switch typ {
			case 0:
				e = Entry{Kind: Free, Offset: f2, Generation: uint16(f3)}
			case 1:
				e = Entry{Kind: InUse, Offset: f2, Generation: uint16(f3)}
			case 2:
				e = Entry{Kind: Compressed, StreamObject: int(f2), StreamIndex: int(f3)}
			default:
				i++
				continue
			}
			t.setIfAbsent(objNumber, e)
			i++
		}
	}
	return nil
}
