// Package pdfparse builds pdfvalue.Value trees out of the token stream
// produced by package pdftoken: arrays, dictionaries, indirect
// references, and whole indirect object definitions ("n g obj ... endobj").
//
// It only parses chunks of PDF syntax (an object body, a trailer
// dictionary); it knows nothing about cross-reference tables or streams.
// Package xref and package document sit on top and supply that.
package pdfparse

import (
	"errors"
	"fmt"

	"github.com/inkwell-labs/pdfkit/pdftoken"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

var (
	errArrayNotTerminated      = errors.New("pdfparse: unterminated array")
	errDictNotTerminated       = errors.New("pdfparse: unterminated dictionary")
	errDictCorrupt             = errors.New("pdfparse: corrupted dictionary")
	errUnexpectedEOF           = errors.New("pdfparse: unexpected end of input")
	errObjectHeaderMissing     = errors.New("pdfparse: missing object number/generation header")
	errObjKeywordMissing       = errors.New("pdfparse: expected \"obj\" keyword")
)

// Parser turns a pdftoken token stream into pdfvalue.Value trees.
type Parser struct {
	tokens *pdftoken.Tokenizer
}

// New creates a Parser reading from data.
func New(data []byte) *Parser {
	return &Parser{tokens: pdftoken.New(data)}
}

// FromTokenizer creates a Parser sharing an already-positioned Tokenizer,
// so callers (e.g. the stream-dict reader) can resume lexing where a
// previous parse left off.
func FromTokenizer(tokens *pdftoken.Tokenizer) *Parser {
	return &Parser{tokens: tokens}
}

// Tokenizer exposes the underlying token cursor, e.g. so a caller can
// read CurrentPosition() right after parsing a stream's dictionary.
func (p *Parser) Tokenizer() *pdftoken.Tokenizer { return p.tokens }

// ParseObject parses a single PDF object starting at the beginning of
// data: a number, name, string, array, dictionary, or
// indirect reference ("n g R").
func ParseObject(data []byte) (pdfvalue.Value, error) {
	return New(data).ParseObject()
}

// ParseObject parses the next object from the token stream.
func (p *Parser) ParseObject() (pdfvalue.Value, error) {
	tk, err := p.tokens.NextToken()
	if err != nil {
		return nil, err
	}
	return p.parseFromToken(tk)
}

func (p *Parser) parseFromToken(tk pdftoken.Token) (pdfvalue.Value, error) {
	switch tk.Kind {
	case pdftoken.EOF:
		return nil, errUnexpectedEOF
	case pdftoken.Name:
		return pdfvalue.Name(tk.Value), nil
	case pdftoken.String:
		return pdfvalue.LiteralString([]byte(tk.Value)), nil
	case pdftoken.StringHex:
		return pdfvalue.HexString([]byte(tk.Value)), nil
	case pdftoken.StartArray:
		return p.parseArray()
	case pdftoken.StartDict:
		return p.parseDict()
	case pdftoken.Float:
		f, err := tk.Float()
		if err != nil {
			return nil, err
		}
		return pdfvalue.Float(f), nil
	case pdftoken.Other:
		return p.parseKeyword(tk.Value)
	case pdftoken.Integer:
		return p.parseNumericOrRef(tk)
	default:
		return nil, fmt.Errorf("pdfparse: unexpected token %v", tk.Kind)
	}
}

func (p *Parser) parseArray() (pdfvalue.Array, error) {
	var arr pdfvalue.Array
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case pdftoken.EndArray:
			_, _ = p.tokens.NextToken()
			return arr, nil
		case pdftoken.EOF:
			return nil, errArrayNotTerminated
		default:
			v, err := p.ParseObject()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	}
}

func (p *Parser) parseDict() (pdfvalue.Dict, error) {
	d := pdfvalue.NewDict()
	for {
		tk, err := p.tokens.PeekToken()
		if err != nil {
			return d, err
		}
		switch tk.Kind {
		case pdftoken.EndDict:
			_, _ = p.tokens.NextToken()
			return d, nil
		case pdftoken.EOF:
			return d, errDictNotTerminated
		case pdftoken.Name:
			_, _ = p.tokens.NextToken()
			key := pdfvalue.Name(tk.Value)
			v, err := p.ParseObject()
			if err != nil {
				return d, err
			}
			// A null value is equivalent to an absent entry (7.3.7, ISO 32000-1).
			if _, isNull := v.(pdfvalue.Null); !isNull {
				d.Set(key, v)
			}
		default:
			return d, errDictCorrupt
		}
	}
}

func (p *Parser) parseKeyword(v string) (pdfvalue.Value, error) {
	switch v {
	case "null":
		return pdfvalue.Null{}, nil
	case "true":
		return pdfvalue.Bool(true), nil
	case "false":
		return pdfvalue.Bool(false), nil
	default:
		return nil, fmt.Errorf("pdfparse: unexpected keyword %q", v)
	}
}

// parseNumericOrRef disambiguates a bare integer from the start of an
// indirect reference "n g R", using the two-token lookahead the
// tokenizer provides.
func (p *Parser) parseNumericOrRef(tk pdftoken.Token) (pdfvalue.Value, error) {
	i, err := tk.Int()
	if err != nil {
		return nil, err
	}

	next, err := p.tokens.PeekToken()
	if err != nil || next.Kind != pdftoken.Integer {
		return pdfvalue.Int(i), nil
	}
	gen, err := next.Int()
	if err != nil {
		return pdfvalue.Int(i), nil
	}

	afterNext, err := p.tokens.PeekPeekToken()
	if err != nil || !afterNext.IsOther("R") {
		return pdfvalue.Int(i), nil
	}

	_, _ = p.tokens.NextToken() // consume generation
	_, _ = p.tokens.NextToken() // consume "R"
	return pdfvalue.Ref{Obj: uint32(i), Gen: uint16(gen)}, nil
}

// ObjectHeader is the "n g obj" prologue of an indirect object
// definition.
type ObjectHeader struct {
	Number     uint32
	Generation uint16
}

// ParseObjectHeader reads "n g obj" from the front of the token stream
// and leaves the cursor positioned right after the "obj" keyword, ready
// for ParseObject (or, for a stream object, for the caller to look for
// "stream" next).
func (p *Parser) ParseObjectHeader() (ObjectHeader, error) {
	numTok, err := p.tokens.NextToken()
	if err != nil {
		return ObjectHeader{}, err
	}
	num, err := numTok.Int()
	if numTok.Kind != pdftoken.Integer || err != nil {
		return ObjectHeader{}, errObjectHeaderMissing
	}

	genTok, err := p.tokens.NextToken()
	if err != nil {
		return ObjectHeader{}, err
	}
	gen, err := genTok.Int()
	if genTok.Kind != pdftoken.Integer || err != nil {
		return ObjectHeader{}, errObjectHeaderMissing
	}

	kwTok, err := p.tokens.NextToken()
	if err != nil {
		return ObjectHeader{}, err
	}
	if !kwTok.IsOther("obj") {
		return ObjectHeader{}, errObjKeywordMissing
	}

	return ObjectHeader{Number: uint32(num), Generation: uint16(gen)}, nil
}

// ParseIndirectObject parses "n g obj <object> endobj" and returns the
// header and the object. It does not handle stream bodies; the caller
// (package xref / package document) detects the "stream" keyword itself
// via Tokenizer().PeekToken() right after ParseObjectHeader, since a
// stream's raw bytes must be sliced out of the original buffer rather
// than lexed.
func ParseIndirectObject(data []byte) (ObjectHeader, pdfvalue.Value, error) {
	p := New(data)
	hdr, err := p.ParseObjectHeader()
	if err != nil {
		return ObjectHeader{}, nil, err
	}
	obj, err := p.ParseObject()
	if err != nil {
		return hdr, nil, err
	}
	return hdr, obj, nil
}
