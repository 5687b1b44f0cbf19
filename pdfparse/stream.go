package pdfparse

import (
	"errors"
	"fmt"

	"github.com/inkwell-labs/pdfkit/pdftoken"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

var errStreamKeywordMissing = errors.New("pdfparse: expected \"stream\" keyword")

// StreamHeader is everything needed to locate a stream object's raw
// bytes without yet having read them: the object header, its
// dictionary, and the byte offset (relative to the start of the data
// passed to ParseStreamHeader) where the stream's content begins.
type StreamHeader struct {
	Header        ObjectHeader
	Dict          pdfvalue.Dict
	ContentOffset int
}

// ParseStreamHeader parses "n g obj <<dict>> stream<EOL>" and stops
// right at the first content byte, leaving the actual stream bytes
// (whose length depends on /Length, which may itself be an indirect
// reference) for the caller to slice out of the original buffer.
func ParseStreamHeader(data []byte) (StreamHeader, error) {
	p := New(data)
	hdr, err := p.ParseObjectHeader()
	if err != nil {
		return StreamHeader{}, err
	}

	obj, err := p.ParseObject()
	if err != nil {
		return StreamHeader{}, fmt.Errorf("pdfparse: stream dictionary: %w", err)
	}
	dict, ok := obj.(pdfvalue.Dict)
	if !ok {
		return StreamHeader{}, fmt.Errorf("pdfparse: expected stream dictionary, got %T", obj)
	}

	kw, err := p.tokens.NextToken()
	if err != nil {
		return StreamHeader{}, err
	}
	if !kw.IsOther("stream") {
		return StreamHeader{}, errStreamKeywordMissing
	}

	offset := p.tokens.CurrentPosition()
	offset = skipStreamEOL(data, offset)

	return StreamHeader{Header: hdr, Dict: dict, ContentOffset: offset}, nil
}

// skipStreamEOL advances past the single end-of-line marker that must
// follow the "stream" keyword (7.3.8.1, ISO 32000-1): CRLF, or a bare
// LF. A bare CR is tolerated, matching real-world generators that omit
// the LF.
func skipStreamEOL(data []byte, offset int) int {
	if offset >= len(data) {
		return offset
	}
	switch data[offset] {
	case '\r':
		if offset+1 < len(data) && data[offset+1] == '\n' {
			return offset + 2
		}
		return offset + 1
	case '\n':
		return offset + 1
	default:
		return offset
	}
}

// TokenizerAt returns a fresh Tokenizer reading data starting at pos,
// the idiom used to resume parsing right after a stream's raw bytes
// have been sliced out.
func TokenizerAt(data []byte, pos int) *pdftoken.Tokenizer {
	tk := pdftoken.New(data)
	tk.SetPosition(pos)
	return tk
}
