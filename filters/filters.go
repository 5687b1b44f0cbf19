// Package filters decodes the stream-encoding filters defined by 7.4 of
// ISO 32000-1: compression (Flate, LZW, RunLength), ASCII transport
// encodings (ASCII85, ASCIIHex), and CCITT Group 3/4 fax image data. It
// is used both for ordinary stream objects and for cross-reference
// streams, which reuse the PNG-predictor machinery directly.
package filters

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"

	"github.com/inkwell-labs/pdfkit/ccitt"
)

// Filter names, as they appear in a stream dictionary's /Filter entry.
const (
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	DCT       = "DCTDecode"
	CCITTFax  = "CCITTFaxDecode"
)

// Params bundles the /DecodeParms entries understood by any of the
// supported filters; only the fields a given filter cares about are
// read.
type Params struct {
	Predictor   int
	Colors      int
	BPC         int
	Columns     int
	EarlyChange bool

	// CCITTFaxDecode parameters. Columns above doubles as /Columns here;
	// BuildParams defaults it to 1728 (CCITT's default) rather than 1
	// (the predictor default) when the filter is CCITTFaxDecode.
	K          int
	Rows       int
	EndOfBlock bool
	EndOfLine  bool
	ByteAlign  bool
	BlackIs1   bool
	// DamagedRowsBeforeError bounds how many corrupt CCITT rows are
	// tolerated before decoding fails outright. Defaults to 0 (no
	// tolerance).
	DamagedRowsBeforeError uint32
}

// DefaultParams returns the parameter defaults the spec mandates when
// /DecodeParms is absent or omits a given entry, for every filter but
// CCITTFaxDecode: its /Columns default of 1728 is applied by
// BuildParams, while DefaultParams sets Columns to 1.
func DefaultParams() Params {
	return Params{Predictor: 1, Colors: 1, BPC: 8, Columns: 1, EarlyChange: true, EndOfBlock: true}
}

func (p Params) predictorParams() PredictorParams {
	return PredictorParams{Predictor: p.Predictor, Colors: p.Colors, BPC: p.BPC, Columns: p.Columns}
}

// Decode applies the named filter to encoded, returning the decoded
// bytes. DCTDecode (baseline JPEG) is intentionally left encoded: image
// rendering is out of scope, and callers that only need raw image bytes
// (e.g. for re-embedding) can use them as-is.
func Decode(name string, params Params, encoded []byte) ([]byte, error) {
	switch name {
	case Flate:
		return decodeFlate(params, encoded)
	case LZW:
		return decodeLZW(params, encoded)
	case ASCII85:
		return decodeASCII85(encoded)
	case ASCIIHex:
		return decodeASCIIHex(encoded)
	case RunLength:
		return decodeRunLength(encoded)
	case CCITTFax:
		return decodeCCITT(params, encoded)
	case DCT:
		return encoded, nil
	case "":
		return encoded, nil
	default:
		return nil, fmt.Errorf("filters: unsupported filter %q", name)
	}
}

func decodeFlate(params Params, encoded []byte) ([]byte, error) {
	rc, err := zlib.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("filters: FlateDecode: %w", err)
	}
	defer rc.Close()
	r, err := ApplyPredictor(params.predictorParams(), rc)
	if err != nil {
		return nil, fmt.Errorf("filters: FlateDecode predictor: %w", err)
	}
	return io.ReadAll(r)
}

func decodeLZW(params Params, encoded []byte) ([]byte, error) {
	rc := lzw.NewReader(bytes.NewReader(encoded), params.EarlyChange)
	defer rc.Close()
	r, err := ApplyPredictor(params.predictorParams(), rc)
	if err != nil {
		return nil, fmt.Errorf("filters: LZWDecode predictor: %w", err)
	}
	return io.ReadAll(r)
}

// decodeASCII85 decodes PDF's "ASCII85Decode" filter, which is the
// standard btoa/Adobe ASCII85 alphabet terminated by "~>" rather than
// stdlib's bare length-delimited form.
func decodeASCII85(encoded []byte) ([]byte, error) {
	if i := bytes.Index(encoded, []byte("~>")); i >= 0 {
		encoded = encoded[:i]
	}
	out := make([]byte, len(encoded))
	n, _, err := ascii85.Decode(out, encoded, true)
	if err != nil {
		return nil, fmt.Errorf("filters: ASCII85Decode: %w", err)
	}
	return out[:n], nil
}

func decodeASCIIHex(encoded []byte) ([]byte, error) {
	if i := bytes.IndexByte(encoded, '>'); i >= 0 {
		encoded = encoded[:i]
	}
	clean := make([]byte, 0, len(encoded))
	for _, b := range encoded {
		if isHexDigit(b) {
			clean = append(clean, b)
		}
	}
	if len(clean)%2 != 0 {
		clean = append(clean, '0')
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	if _, err := hex.Decode(out, clean); err != nil {
		return nil, fmt.Errorf("filters: ASCIIHexDecode: %w", err)
	}
	return out, nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// decodeRunLength decodes PDF's byte-oriented RunLengthDecode filter
// (7.4.5, ISO 32000-1): a length byte < 128 means "copy the next
// length+1 literal bytes", a length byte in [129,255] means "repeat the
// next byte 257-length times", and 128 is the end-of-data marker.
func decodeRunLength(encoded []byte) ([]byte, error) {
	src := bytes.NewReader(encoded)
	var out bytes.Buffer
	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("filters: RunLengthDecode: missing EOD marker")
		}
		switch {
		case b == 128:
			return out.Bytes(), nil
		case b < 128:
			n := int(b) + 1
			buf := make([]byte, n)
			if _, err := io.ReadFull(src, buf); err != nil {
				return nil, fmt.Errorf("filters: RunLengthDecode: %w", err)
			}
			out.Write(buf)
		default:
			n := 257 - int(b)
			c, err := src.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("filters: RunLengthDecode: %w", err)
			}
			for i := 0; i < n; i++ {
				out.WriteByte(c)
			}
		}
	}
}

func decodeCCITT(params Params, encoded []byte) ([]byte, error) {
	cols := params.Columns
	if cols <= 0 {
		cols = 1728
	}
	ccittParams := ccitt.Params{
		K:                      int32(params.K),
		Columns:                int32(cols),
		Rows:                   int32(params.Rows),
		EndOfBlock:             params.EndOfBlock,
		EndOfLine:              params.EndOfLine,
		ByteAlign:              params.ByteAlign,
		BlackIs1:               params.BlackIs1,
		DamagedRowsBeforeError: params.DamagedRowsBeforeError,
	}
	dec, err := ccitt.NewDecoder(bytes.NewReader(encoded), ccittParams)
	if err != nil {
		return nil, fmt.Errorf("filters: CCITTFaxDecode: %w", err)
	}
	return io.ReadAll(dec)
}
