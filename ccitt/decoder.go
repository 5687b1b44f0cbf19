package ccitt

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Params mirrors the PDF CCITTFaxDecode filter's /DecodeParms entries
// that affect decoding.
type Params struct {
	// K selects the coding scheme: K<0 is pure 2D (Group 4 / T.6), K==0
	// is pure 1D (Group 3, T.4), K>0 is mixed 1D/2D Group 3.
	K int32
	// Columns is the row width in pixels. Defaults to 1728 if <= 0.
	Columns int32
	// Rows is the expected row count; 0 means unknown (EndOfBlock must
	// then be true so the decoder can find the end of data itself).
	Rows int32
	// EndOfBlock requests detection of the end-of-block (RTC/EOFB)
	// marker rather than stopping after Rows rows.
	EndOfBlock bool
	// EndOfLine requests that each row be preceded by an EOL marker.
	EndOfLine bool
	// ByteAlign pads each encoded row to a byte boundary.
	ByteAlign bool
	// BlackIs1 reverses the decoder's default polarity (0 = white).
	BlackIs1 bool
	// DamagedRowsBeforeError is the number of defective rows (an
	// unrecognized run-length or mode code) the decoder tolerates before
	// failing with ErrDamagedStream. A defective row is dropped entirely
	// and decoding resumes at the next EOL code. Zero means any
	// defective row is immediately fatal.
	DamagedRowsBeforeError uint32
}

// Decoder decodes a CCITT Group 3/4 encoded bit stream into packed,
// byte-aligned scan lines: one bit per pixel, MSB first, 1 meaning
// white unless Params.BlackIs1 is set.
type Decoder struct {
	in *bitReader
	p  Params

	codingLine []int32 // changing-element positions of the current row
	refLine    []int32 // changing-element positions of the reference row
	a0i        int32

	nextLine2D bool
	row        int32
	outputBits int32
	eof        bool

	damagedRows uint32 // defective rows dropped so far
}

// ErrDamagedStream is returned once a run-length or mode code cannot be
// matched and Params.DamagedRowsBeforeError's budget of tolerated
// defective rows is exhausted.
var ErrDamagedStream = errors.New("ccitt: damaged stream: too many defective rows")

// NewDecoder returns a ready-to-use Decoder reading from src.
func NewDecoder(src io.ByteReader, p Params) (*Decoder, error) {
	if p.Columns <= 0 {
		p.Columns = 1728
	} else if p.Columns > math.MaxInt32-2 {
		p.Columns = math.MaxInt32 - 2
	}
	d := &Decoder{
		in:         newBitReader(src),
		p:          p,
		codingLine: make([]int32, p.Columns+1),
		refLine:    make([]int32, p.Columns+2),
		nextLine2D: p.K < 0,
	}
	d.codingLine[0] = p.Columns
	if err := d.skipLeadingFill(); err != nil {
		return nil, err
	}
	return d, nil
}

// skipLeadingFill discards any leading zero fill bits and an optional
// leading EOL marker, then (for mixed 1D/2D Group 3) reads the tag bit
// that announces the first row's coding.
func (d *Decoder) skipLeadingFill() error {
	code, err := d.in.lookBits(12)
	if err != nil {
		return err
	}
	for code == 0 {
		d.in.eatBits(1)
		code, err = d.in.lookBits(12)
		if err != nil {
			return err
		}
	}
	if code == 1 {
		d.in.eatBits(12)
		d.p.EndOfLine = true
	}
	if d.p.K > 0 {
		bit, err := d.in.lookBits(1)
		if err != nil {
			return err
		}
		d.nextLine2D = bit == 0
		d.in.eatBits(1)
	}
	return nil
}

// Read implements io.Reader, filling p with packed, byte-aligned pixel
// rows.
func (d *Decoder) Read(p []byte) (int, error) {
	for i := range p {
		b, err := d.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	return len(p), nil
}

// ReadByte returns the next packed output byte, decoding a new row when
// the previous one is exhausted.
func (d *Decoder) ReadByte() (byte, error) {
	if d.outputBits == 0 {
		if err := d.readRow(); err != nil {
			return 0, err
		}
	}
	return d.packByte()
}

func (d *Decoder) readRow() error {
	if d.eof {
		return io.EOF
	}

	for {
		var err error
		if d.nextLine2D {
			err = d.decode2DRow()
		} else {
			err = d.decode1DRow()
		}
		if err == nil {
			break
		}
		if d.damagedRows >= d.p.DamagedRowsBeforeError {
			return ErrDamagedStream
		}
		d.damagedRows++
		if recErr := d.recoverToNextEOL(); recErr != nil {
			return ErrDamagedStream
		}
	}

	gotEOL := false
	if !d.p.EndOfBlock && d.row == d.p.Rows-1 {
		d.eof = true
	} else if d.p.EndOfLine || !d.p.ByteAlign {
		code, err := d.in.lookBits(12)
		if err != nil {
			return err
		}
		if d.p.EndOfLine {
			for code != eofCode && code != 1 {
				d.in.eatBits(1)
				code, err = d.in.lookBits(12)
				if err != nil {
					return err
				}
			}
		} else {
			for code == 0 {
				d.in.eatBits(1)
				code, err = d.in.lookBits(12)
				if err != nil {
					return err
				}
			}
		}
		if code == 1 {
			d.in.eatBits(12)
			gotEOL = true
		}
	}

	if d.p.ByteAlign && !gotEOL {
		d.in.alignToByte()
	}

	code, err := d.in.lookBits(1)
	if err != nil {
		return err
	}
	if code == eofCode {
		d.eof = true
	}

	if !d.eof && d.p.K > 0 {
		bit, err := d.in.lookBits(1)
		if err != nil {
			return err
		}
		d.nextLine2D = bit == 0
		d.in.eatBits(1)
	}

	if d.p.EndOfBlock && !d.p.EndOfLine && d.p.ByteAlign {
		code, err := d.in.lookBits(24)
		if err != nil {
			return err
		}
		if code == 0x001001 {
			d.in.eatBits(12)
			gotEOL = true
		}
	}
	if d.p.EndOfBlock && gotEOL {
		if err := d.consumeRTC(); err != nil {
			return err
		}
	}

	if d.codingLine[0] > 0 {
		d.a0i = 0
	} else {
		d.a0i = 1
	}
	d.outputBits = d.codingLine[d.a0i]

	d.row++
	return nil
}

// recoverToNextEOL discards bits one at a time until it finds and
// consumes the next 12-bit EOL code (000000000001), resynchronizing the
// bit stream after a defective row. It also resets the coding line to
// the all-white state NewDecoder starts with, so the following row is
// decoded against a clean reference rather than the partially-decoded
// garbage the failed row left behind.
func (d *Decoder) recoverToNextEOL() error {
	for {
		code, err := d.in.lookBits(12)
		if err != nil {
			return err
		}
		if code == eofCode {
			return io.EOF
		}
		if code == 1 {
			d.in.eatBits(12)
			break
		}
		d.in.eatBits(1)
	}
	d.codingLine[0] = d.p.Columns
	d.a0i = 0
	return nil
}

// consumeRTC swallows the end-of-block marker: the Return-To-Control
// sequence of six consecutive EOL codes for Group 3 (K >= 0), or the
// two-EOL EOFB for Group 4 (K < 0).
func (d *Decoder) consumeRTC() error {
	code, err := d.in.lookBits(12)
	if err != nil {
		return err
	}
	if code != 1 {
		return nil
	}
	d.in.eatBits(12)
	if d.p.K > 0 {
		if _, err := d.in.lookBits(1); err != nil {
			return err
		}
		d.in.eatBits(1)
	}
	if d.p.K >= 0 {
		for i := 0; i < 4; i++ {
			code, err := d.in.lookBits(12)
			if err != nil {
				return err
			}
			if code != 1 {
				return errors.New("ccitt: bad RTC sequence")
			}
			d.in.eatBits(12)
			if d.p.K > 0 {
				if _, err := d.in.lookBits(1); err != nil {
					return err
				}
				d.in.eatBits(1)
			}
		}
	}
	d.eof = true
	return nil
}

func (d *Decoder) addPixels(a1, color int32) error {
	if a1 > d.codingLine[d.a0i] {
		if a1 > d.p.Columns {
			return fmt.Errorf("ccitt: row overrun (%d columns)", a1)
		}
		if (d.a0i&1)^color != 0 {
			d.a0i++
		}
		d.codingLine[d.a0i] = a1
	}
	return nil
}

func (d *Decoder) addPixelsNeg(a1, color int32) error {
	if a1 > d.codingLine[d.a0i] {
		if a1 > d.p.Columns {
			return fmt.Errorf("ccitt: row overrun (%d columns)", a1)
		}
		if (d.a0i&1)^color != 0 {
			d.a0i++
		}
		d.codingLine[d.a0i] = a1
	} else if a1 < d.codingLine[d.a0i] {
		if a1 < 0 {
			return errors.New("ccitt: negative changing element")
		}
		for d.a0i > 0 && a1 <= d.codingLine[d.a0i-1] {
			d.a0i--
		}
		d.codingLine[d.a0i] = a1
	}
	return nil
}

func (d *Decoder) readRunLength(trie *trieNode) (int32, error) {
	var total int32
	for {
		run, err := decodeTrie(d.in, trie, 14)
		if err != nil {
			return 0, err
		}
		if run == eofCode {
			return total, nil
		}
		total += run
		if run < 64 {
			return total, nil
		}
	}
}

// decode1DRow decodes one Group 3 1D-coded scan line: alternating white
// and black run lengths starting from white, per T.4 §4.1.
func (d *Decoder) decode1DRow() error {
	d.codingLine[0] = 0
	d.a0i = 0
	color := int32(0)
	for d.codingLine[d.a0i] < d.p.Columns {
		trie := whiteTrie
		if color != 0 {
			trie = blackTrie
		}
		run, err := d.readRunLength(trie)
		if err != nil {
			return err
		}
		if err := d.addPixels(d.codingLine[d.a0i]+run, color); err != nil {
			return err
		}
		color ^= 1
	}
	return nil
}

// decode2DRow decodes one Group 4 / T.6 two-dimensional scan line,
// referencing the previous row's changing elements (refLine) to encode
// Pass, Horizontal, and Vertical(-3..+3) modes per T.4 §4.2 / T.6.
func (d *Decoder) decode2DRow() error {
	var i, b1i, color int32
	for i = 0; i < d.p.Columns && d.codingLine[i] < d.p.Columns; i++ {
		d.refLine[i] = d.codingLine[i]
	}
	for ; i < d.p.Columns+2; i++ {
		d.refLine[i] = d.p.Columns
	}
	d.codingLine[0] = 0
	d.a0i = 0

	advanceB1 := func() error {
		for d.refLine[b1i] <= d.codingLine[d.a0i] && d.refLine[b1i] < d.p.Columns {
			b1i += 2
			if b1i > d.p.Columns+1 {
				return errBadCode("2D", b1i)
			}
		}
		return nil
	}

	for d.codingLine[d.a0i] < d.p.Columns {
		mode, err := decodeTrie(d.in, modeTrie, 13)
		if err != nil {
			return err
		}
		switch mode {
		case modePass:
			if b1i+1 < d.p.Columns+2 {
				if err := d.addPixels(d.refLine[b1i+1], color); err != nil {
					return err
				}
				if d.refLine[b1i+1] < d.p.Columns {
					b1i += 2
				}
			}
		case modeHoriz:
			var run1, run2 int32
			first, second := whiteTrie, blackTrie
			if color != 0 {
				first, second = blackTrie, whiteTrie
			}
			run1, err = d.readRunLength(first)
			if err != nil {
				return err
			}
			run2, err = d.readRunLength(second)
			if err != nil {
				return err
			}
			if err := d.addPixels(d.codingLine[d.a0i]+run1, color); err != nil {
				return err
			}
			if d.codingLine[d.a0i] < d.p.Columns {
				if err := d.addPixels(d.codingLine[d.a0i]+run2, color^1); err != nil {
					return err
				}
			}
			if err := advanceB1(); err != nil {
				return err
			}
		case modeV0, modeVR1, modeVR2, modeVR3, modeVL1, modeVL2, modeVL3:
			delta := map[int32]int32{modeV0: 0, modeVR1: 1, modeVR2: 2, modeVR3: 3, modeVL1: -1, modeVL2: -2, modeVL3: -3}[mode]
			if b1i > d.p.Columns+1 {
				return errBadCode("2D", mode)
			}
			target := d.refLine[b1i] + delta
			if delta >= 0 {
				err = d.addPixels(target, color)
			} else {
				err = d.addPixelsNeg(target, color)
			}
			if err != nil {
				return err
			}
			color ^= 1
			if d.codingLine[d.a0i] < d.p.Columns {
				if delta < 0 && b1i > 0 {
					b1i--
				} else {
					b1i++
				}
				if err := advanceB1(); err != nil {
					return err
				}
			}
		case eofCode:
			if err := d.addPixels(d.p.Columns, 0); err != nil {
				return err
			}
			d.eof = true
		case modeExt:
			// Extension code: skip its 3 trailing bits and carry on.
			if _, err := d.in.lookBits(3); err != nil {
				return err
			}
			d.in.eatBits(3)
		default:
			return errBadCode("2D mode", mode)
		}
	}
	return nil
}

// packByte assembles the next output byte from the current row's
// changing-element run, MSB first with 1 meaning white (inverted if
// BlackIs1 is set).
func (d *Decoder) packByte() (byte, error) {
	var out byte
	if d.outputBits >= 8 {
		if d.a0i&1 == 0 {
			out = 0xff
		}
		d.outputBits -= 8
		if d.outputBits == 0 && d.codingLine[d.a0i] < d.p.Columns {
			d.a0i++
			d.outputBits = d.codingLine[d.a0i] - d.codingLine[d.a0i-1]
		}
	} else {
		bits := int32(8)
		for bits > 0 {
			if d.outputBits > bits {
				out <<= bits
				if d.a0i&1 == 0 {
					out |= byte(0xff >> (8 - bits))
				}
				d.outputBits -= bits
				bits = 0
				continue
			}
			out <<= d.outputBits
			if d.a0i&1 == 0 {
				out |= byte(0xff >> (8 - d.outputBits))
			}
			bits -= d.outputBits
			d.outputBits = 0
			if d.codingLine[d.a0i] < d.p.Columns {
				d.a0i++
				if d.a0i > d.p.Columns {
					return 0, fmt.Errorf("ccitt: row overrun packing byte")
				}
				d.outputBits = d.codingLine[d.a0i] - d.codingLine[d.a0i-1]
			} else if bits > 0 {
				out <<= bits
				bits = 0
			}
		}
	}
	if d.p.BlackIs1 {
		out = ^out
	}
	return out, nil
}
