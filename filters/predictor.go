package filters

import (
	"bytes"
	"fmt"
	"io"
)

// PredictorParams are the /DecodeParms entries governing PNG/TIFF
// prediction, shared by FlateDecode and LZWDecode (and, through them,
// by cross-reference streams, whose bodies are decoded with Decode).
type PredictorParams struct {
	Predictor int
	Colors    int
	BPC       int
	Columns   int
}

// DefaultPredictorParams returns the parameter defaults mandated by the
// PDF specification when the corresponding dictionary entry is absent.
func DefaultPredictorParams() PredictorParams {
	return PredictorParams{Predictor: 1, Colors: 1, BPC: 8, Columns: 1}
}

func (p PredictorParams) bytesPerPixel() int {
	return (p.BPC*p.Colors + 7) / 8
}

func (p PredictorParams) rowSize() int {
	return p.BPC * p.Colors * p.Columns / 8
}

// ApplyPredictor reverses the PNG (predictor >= 10) or TIFF (predictor
// == 2) row prediction applied to r's decompressed bytes. Predictor 0 or
// 1 means "no prediction" and r is returned unchanged.
func ApplyPredictor(p PredictorParams, r io.Reader) (io.Reader, error) {
	if p.Predictor == 0 || p.Predictor == 1 {
		return r, nil
	}

	bpp := p.bytesPerPixel()
	rowSize := p.rowSize()
	if p.Predictor != 2 {
		rowSize++ // PNG rows carry a leading filter-type byte
	}

	cur := make([]byte, rowSize)
	prev := make([]byte, rowSize)
	var out []byte

	for {
		if _, err := io.ReadFull(r, cur); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		row, err := unfilterRow(prev, cur, p.Predictor, p.Colors, bpp)
		if err != nil {
			return nil, err
		}
		out = append(out, row...)
		prev, cur = cur, prev
	}

	if want := p.rowSize(); want > 0 && len(out)%want != 0 {
		return nil, fmt.Errorf("filters: predictor output %d bytes, not a multiple of row size %d", len(out), want)
	}
	return bytes.NewReader(out), nil
}

func unfilterRow(prev, cur []byte, predictor, colors, bpp int) ([]byte, error) {
	if predictor == 2 {
		return unfilterTIFF(cur, colors), nil
	}

	tag := int(cur[0])
	cdat := cur[1:]
	pdat := prev[1:]

	switch tag {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case 2: // Up
		for i, p := range pdat {
			cdat[i] += p
		}
	case 3: // Average
		for i := 0; i < bpp; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += byte((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case 4: // Paeth
		paethRow(cdat, pdat, bpp)
	default:
		return nil, fmt.Errorf("filters: unknown PNG row filter %d", tag)
	}
	return cdat, nil
}

func unfilterTIFF(row []byte, colors int) []byte {
	if colors <= 0 {
		colors = 1
	}
	for i := 1; i < len(row)/colors; i++ {
		for j := 0; j < colors; j++ {
			row[i*colors+j] += row[(i-1)*colors+j]
		}
	}
	return row
}

func paethRow(cdat, pdat []byte, bpp int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bpp; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bpp {
			b = int32(pdat[j])
			pa = absInt32(b - c)
			pb = absInt32(a - c)
			pc = absInt32(a + b - 2*c)
			switch {
			case pa <= pb && pa <= pc:
				// predict a
			case pb <= pc:
				a = b
			default:
				a = c
			}
			a = (a + int32(cdat[j])) & 0xff
			cdat[j] = byte(a)
			c = b
		}
	}
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
