package ccitt

import "io"

// pack encodes lines — one byte per pixel, 0 or 255 — into columns-wide,
// MSB-first packed rows: ceil(columns/8) bytes per line, with a pixel
// value >= 128 setting the bit. This is the inverse of unpack.
func pack(lines [][]byte, columns int32) []byte {
	stride := packedStride(columns)
	out := make([]byte, 0, stride*int32(len(lines)))
	for _, line := range lines {
		row := make([]byte, stride)
		for x := int32(0); x < columns; x++ {
			if line[x] >= 128 {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
		out = append(out, row...)
	}
	return out
}

// unpack is pack's inverse: given columns-wide packed rows (ceil(columns/8)
// bytes each, rows many) it returns one byte-per-pixel (0 or 255) line per
// row.
func unpack(data []byte, columns, rows int32) [][]byte {
	stride := packedStride(columns)
	lines := make([][]byte, rows)
	for r := int32(0); r < rows; r++ {
		row := data[r*stride : (r+1)*stride]
		line := make([]byte, columns)
		for x := int32(0); x < columns; x++ {
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				line[x] = 255
			}
		}
		lines[r] = line
	}
	return lines
}

// toUncompressed flattens lines — already one byte per pixel — into a
// single row-major byte slice.
func toUncompressed(lines [][]byte) []byte {
	var out []byte
	for _, line := range lines {
		out = append(out, line...)
	}
	return out
}

func packedStride(columns int32) int32 {
	return (columns + 7) / 8
}

// DecodeLines decodes every row of a CCITT-encoded src into a
// line-materialized bitmap: one []byte per row, one byte per pixel (0 or
// 255, white unless Params.BlackIs1). It is the materialized counterpart
// of NewDecoder plus Read/ReadByte, which instead streams the same
// pixels packed MSB-first into bytes; passing DecodeLines' result
// through pack must reproduce that streamed output byte-for-byte (§4.4,
// §8 "CCITT streaming equality").
func DecodeLines(src io.ByteReader, p Params) ([][]byte, error) {
	d, err := NewDecoder(src, p)
	if err != nil {
		return nil, err
	}
	var lines [][]byte
	for {
		if err := d.readRow(); err != nil {
			if err == io.EOF {
				return lines, nil
			}
			return nil, err
		}
		lines = append(lines, d.linePixels())
	}
}

// linePixels renders the row just decoded into codingLine as one byte
// per pixel (0 or 255), independent of the byte-packed outputBits/a0i
// cursor ReadByte advances — so it can be called without disturbing a
// concurrent streamed read of the same row.
func (d *Decoder) linePixels() []byte {
	row := make([]byte, d.p.Columns)
	white := true
	var pos, i int32
	for pos < d.p.Columns {
		end := d.codingLine[i]
		if end > d.p.Columns {
			end = d.p.Columns
		}
		val := byte(0)
		if white {
			val = 0xff
		}
		for ; pos < end; pos++ {
			row[pos] = val
		}
		white = !white
		i++
	}
	if d.p.BlackIs1 {
		for j := range row {
			row[j] = ^row[j]
		}
	}
	return row
}
