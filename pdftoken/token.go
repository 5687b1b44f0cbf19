// Package pdftoken implements the lowest level of PDF byte syntax:
// splitting a byte slice into a stream of lexical tokens (numbers, names,
// strings, delimiters, keywords). Higher-level structure (arrays,
// dictionaries, indirect objects) is built on top by package pdfparse.
package pdftoken

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the lexical category of a Token.
type Kind uint8

const (
	EOF Kind = iota
	Integer
	Float
	Name
	String    // literal string "(...)"
	StringHex // hex string "<...>"
	StartArray
	EndArray
	StartDict
	EndDict
	Other // keywords and operators: obj, endobj, stream, R, true, Tj, ...
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Name:
		return "Name"
	case String:
		return "String"
	case StringHex:
		return "StringHex"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case StartDict:
		return "StartDict"
	case EndDict:
		return "EndDict"
	case Other:
		return "Other"
	default:
		return "<invalid token>"
	}
}

func isWhitespace(ch byte) bool {
	switch ch {
	case 0, 9, 10, 12, 13, 32:
		return true
	default:
		return false
	}
}

// isDelimiter reports whether ch terminates a bare token (name, number,
// keyword): either PDF's own delimiter set or whitespace.
func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return isWhitespace(ch)
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Token is one lexical unit. Value must be interpreted according to Kind;
// parsing packages do that interpretation.
type Token struct {
	Kind  Kind
	Value string
}

// Int returns the integer value of the token, truncating float values
// toward zero.
func (t Token) Int() (int, error) {
	f, err := t.Float()
	return int(f), err
}

// Float returns the float value of a numeric token.
func (t Token) Float() (float64, error) {
	return strconv.ParseFloat(t.Value, 64)
}

// IsNumber reports whether t is an Integer or Float token.
func (t Token) IsNumber() bool {
	return t.Kind == Integer || t.Kind == Float
}

// IsOther reports whether t is an Other token with the given value, the
// idiom used to recognize keywords like "obj", "endobj", "stream", "R".
func (t Token) IsOther(v string) bool {
	return t.Kind == Other && t.Value == v
}

// startsBinary reports whether t introduces raw bytes the tokenizer must
// not attempt to lex (a stream body, or inline image data).
func (t Token) startsBinary() bool {
	return t.Kind == Other && (t.Value == "stream" || t.Value == "ID")
}

// Tokenize splits data into tokens. Prefer the iteration methods of
// Tokenizer when performance matters.
func Tokenize(data []byte) ([]Token, error) {
	tk := New(data)
	var out []Token
	for {
		t, err := tk.NextToken()
		if err != nil {
			return out, err
		}
		if t.Kind == EOF {
			return out, nil
		}
		out = append(out, t)
	}
}

// Tokenizer is a two-token-lookahead PDF lexer: PeekToken and
// PeekPeekToken let the parser recognize "m n R" and "m n obj" without
// backtracking.
//
// The tokenizer cannot handle stream bodies or inline image data on its
// own; it stops (returning EOF) right after a "stream"/"ID" keyword.
// Callers resume lexing after skipping the raw bytes via SetPosition.
type Tokenizer struct {
	data []byte

	pos        int // read cursor
	currentPos int // end of the current (to-be-returned) token
	nextPos    int // end of the +1 token

	aToken  Token
	aError  error
	aaToken Token
	aaError error
}

// New creates a Tokenizer reading from data.
func New(data []byte) *Tokenizer {
	tk := &Tokenizer{data: data}
	tk.initiateAt(0)
	return tk
}

// CurrentPosition returns the byte offset of the next token to be
// returned by NextToken.
func (tk *Tokenizer) CurrentPosition() int { return tk.currentPos }

// SetPosition resets the tokenizer to read from the given byte offset,
// re-priming the two-token lookahead.
func (tk *Tokenizer) SetPosition(pos int) { tk.initiateAt(pos) }

// Bytes returns the remaining unconsumed input, starting at the current
// position.
func (tk *Tokenizer) Bytes() []byte {
	if tk.currentPos >= len(tk.data) {
		return nil
	}
	return tk.data[tk.currentPos:]
}

func (tk *Tokenizer) initiateAt(pos int) {
	tk.currentPos = pos
	tk.pos = pos
	tk.aToken, tk.aError = tk.lex(Token{})
	tk.nextPos = tk.pos
	tk.aaToken, tk.aaError = tk.lex(tk.aToken)
}

// PeekToken returns the next token without consuming it. Cheap: it
// returns a value cached by the previous NextToken/New call.
func (tk *Tokenizer) PeekToken() (Token, error) {
	return tk.aToken, tk.aError
}

// PeekPeekToken returns the token after the next, without consuming
// anything.
func (tk *Tokenizer) PeekPeekToken() (Token, error) {
	return tk.aaToken, tk.aaError
}

// NextToken returns the next token and advances past it. At end of
// input it returns an EOF token and a nil error.
func (tk *Tokenizer) NextToken() (Token, error) {
	t, err := tk.aToken, tk.aError
	tk.aToken, tk.aError = tk.aaToken, tk.aaError
	tk.currentPos = tk.nextPos
	tk.nextPos = tk.pos

	if tk.aaToken.startsBinary() {
		// Don't lex past "stream"/"ID": the caller must SkipBytes first.
		tk.aaToken, tk.aaError = Token{Kind: EOF}, nil
	} else {
		tk.aaToken, tk.aaError = tk.lex(tk.aaToken)
	}
	return t, err
}

// SkipBytes consumes and returns the next n raw bytes, re-priming the
// lookahead from the new position. Used to step over stream bodies and
// inline image data, which the tokenizer itself cannot lex.
func (tk *Tokenizer) SkipBytes(n int) []byte {
	target := tk.currentPos + n
	if target > len(tk.data) {
		target = len(tk.data)
	}
	out := tk.data[tk.currentPos:target]
	tk.initiateAt(target)
	return out
}

func (tk *Tokenizer) read() (byte, bool) {
	if tk.pos >= len(tk.data) {
		return 0, false
	}
	ch := tk.data[tk.pos]
	tk.pos++
	return ch, true
}

func isHexChar(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return c, false
}

// lex reads and advances, producing the next token. previous is the
// token just returned by the caller (needed for none of the PDF grammar,
// kept for symmetry with the two-phase lookahead priming).
func (tk *Tokenizer) lex(previous Token) (Token, error) {
	ch, ok := tk.read()
	for ok && isWhitespace(ch) {
		ch, ok = tk.read()
	}
	if !ok {
		return Token{Kind: EOF}, nil
	}

	var buf []byte
	switch ch {
	case '[':
		return Token{Kind: StartArray}, nil
	case ']':
		return Token{Kind: EndArray}, nil
	case '/':
		for {
			ch, ok = tk.read()
			if !ok || isDelimiter(ch) {
				break
			}
			buf = append(buf, ch)
			if ch == '#' {
				h1, _ := tk.read()
				h2, _ := tk.read()
				if _, err := hex.Decode([]byte{0}, []byte{h1, h2}); err != nil {
					return Token{}, errors.New("pdftoken: corrupted name escape")
				}
				buf = append(buf, h1, h2)
			}
		}
		if ok {
			tk.pos-- // the delimiter may matter to the caller; don't consume it
		}
		return Token{Kind: Name, Value: decodeNameEscapes(buf)}, nil
	case '>':
		ch, ok = tk.read()
		if ch != '>' {
			return Token{}, errors.New("pdftoken: unexpected '>'")
		}
		return Token{Kind: EndDict}, nil
	case '<':
		v1, ok1 := tk.read()
		if v1 == '<' {
			return Token{Kind: StartDict}, nil
		}
		for {
			for ok1 && isWhitespace(v1) {
				v1, ok1 = tk.read()
			}
			if v1 == '>' {
				break
			}
			v1, ok1 = isHexChar(v1)
			if !ok1 {
				return Token{}, fmt.Errorf("pdftoken: invalid hex char %q", rune(v1))
			}
			v2, ok2 := tk.read()
			for ok2 && isWhitespace(v2) {
				v2, ok2 = tk.read()
			}
			if v2 == '>' {
				buf = append(buf, v1<<4)
				break
			}
			v2, ok2 = isHexChar(v2)
			if !ok2 {
				return Token{}, fmt.Errorf("pdftoken: invalid hex char %q", rune(v2))
			}
			buf = append(buf, (v1<<4)+v2)
			v1, ok1 = tk.read()
		}
		return Token{Kind: StringHex, Value: string(buf)}, nil
	case '%':
		ch, ok = tk.read()
		for ok && ch != '\r' && ch != '\n' {
			ch, ok = tk.read()
		}
		return tk.lex(previous) // comments are invisible to the parser
	case '(':
		nesting := 0
	literalLoop:
		for {
			ch, ok = tk.read()
			if !ok {
				break
			}
			switch {
			case ch == '(':
				nesting++
			case ch == ')':
				nesting--
			case ch == '\\':
				esc, lineBreak, keep := tk.readEscape()
				if lineBreak {
					continue literalLoop
				}
				if !keep {
					ok = false
					break literalLoop
				}
				ch = esc
			case ch == '\r':
				ch, ok = tk.read()
				if !ok {
					break literalLoop
				}
				if ch != '\n' {
					tk.pos--
					ch = '\n'
				}
			}
			if nesting == -1 {
				break
			}
			buf = append(buf, ch)
		}
		if !ok {
			return Token{}, errors.New("pdftoken: unterminated literal string")
		}
		return Token{Kind: String, Value: string(buf)}, nil
	default:
		tk.pos-- // put back: readNumber needs the first char
		if token, ok := tk.readNumber(); ok {
			return token, nil
		}
		ch, _ = tk.read()
		buf = append(buf, ch)
		ch, ok = tk.read()
		for ok && !isDelimiter(ch) {
			buf = append(buf, ch)
			ch, ok = tk.read()
		}
		if ok {
			tk.pos--
		}
		return Token{Kind: Other, Value: string(buf)}, nil
	}
}

// readEscape consumes the character(s) following a backslash inside a
// literal string. It returns the decoded byte (when keep is true), or
// signals a line-continuation escape ("\\\n" / "\\\r\n") via lineBreak.
func (tk *Tokenizer) readEscape() (ch byte, lineBreak, keep bool) {
	c, ok := tk.read()
	switch c {
	case 'n':
		return '\n', false, true
	case 'r':
		return '\r', false, true
	case 't':
		return '\t', false, true
	case 'b':
		return '\b', false, true
	case 'f':
		return '\f', false, true
	case '(', ')', '\\':
		return c, false, true
	case '\r':
		c2, ok2 := tk.read()
		if ok2 && c2 != '\n' {
			tk.pos--
		}
		return 0, true, false
	case '\n':
		return 0, true, false
	default:
		if c < '0' || c > '7' {
			// An escaped char with no special meaning: the backslash is
			// simply dropped (7.3.4.2 of ISO 32000-1).
			if !ok {
				return 0, false, false
			}
			return c, false, true
		}
		octal := c - '0'
		c, ok = tk.read()
		if !ok || c < '0' || c > '7' {
			if ok {
				tk.pos--
			}
			return octal, false, true
		}
		octal = (octal << 3) + (c - '0')
		c, ok = tk.read()
		if !ok || c < '0' || c > '7' {
			if ok {
				tk.pos--
			}
			return octal, false, true
		}
		octal = (octal << 3) + (c - '0')
		return octal & 0xff, false, true
	}
}

// readNumber parses a PDF numeric object ("[+-]?\d+(\.\d+)?"), falling
// back to false (and rewinding) if the input isn't a number.
func (tk *Tokenizer) readNumber() (Token, bool) {
	marked := tk.pos
	var sb strings.Builder
	c, ok := tk.read()
	if c == '+' || c == '-' {
		sb.WriteByte(c)
		c, ok = tk.read()
	}

	hasDigit := false
	for isDigit(c) {
		sb.WriteByte(c)
		c, ok = tk.read()
		hasDigit = true
	}

	if c == '.' {
		sb.WriteByte(c)
		c, ok = tk.read()
	} else {
		if sb.Len() == 0 || !hasDigit {
			tk.pos = marked
			return Token{}, false
		}
		if ok {
			tk.pos--
		}
		return Token{Kind: Integer, Value: sb.String()}, true
	}

	for isDigit(c) {
		sb.WriteByte(c)
		c, ok = tk.read()
	}
	if ok {
		tk.pos--
	}
	if sb.String() == "." || strings.HasSuffix(sb.String(), ".") && sb.Len() == 1 {
		tk.pos = marked
		return Token{}, false
	}
	return Token{Kind: Float, Value: sb.String()}, true
}

// decodeNameEscapes resolves "#xx" hex escapes in a name's raw bytes
// (7.3.5 of ISO 32000-1).
func decodeNameEscapes(raw []byte) string {
	if !containsHash(raw) {
		return string(raw)
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if hi, ok1 := isHexChar(raw[i+1]); ok1 {
				if lo, ok2 := isHexChar(raw[i+2]); ok2 {
					out = append(out, (hi<<4)+lo)
					i += 2
					continue
				}
			}
		}
		out = append(out, raw[i])
	}
	return string(out)
}

func containsHash(b []byte) bool {
	for _, c := range b {
		if c == '#' {
			return true
		}
	}
	return false
}
