package filters

import "github.com/inkwell-labs/pdfkit/pdfvalue"

// BuildParams reads a stream's /DecodeParms dictionary into a Params
// value, applying the per-filter defaults ISO 32000-1 mandates for
// absent entries.
func BuildParams(filter string, parms pdfvalue.Dict) Params {
	p := Params{Predictor: 1, Colors: 1, BPC: 8, Columns: 1, EarlyChange: true, EndOfBlock: true}
	if filter == CCITTFax {
		p.Columns = 1728
	}

	if v, ok := intEntry(parms, "Predictor"); ok {
		p.Predictor = v
	}
	if v, ok := intEntry(parms, "Colors"); ok {
		p.Colors = v
	}
	if v, ok := intEntry(parms, "BitsPerComponent"); ok {
		p.BPC = v
	}
	if v, ok := intEntry(parms, "Columns"); ok {
		p.Columns = v
	}
	if v, ok := intEntry(parms, "EarlyChange"); ok {
		p.EarlyChange = v != 0
	}
	if v, ok := intEntry(parms, "K"); ok {
		p.K = v
	}
	if v, ok := intEntry(parms, "Rows"); ok {
		p.Rows = v
	}
	if v, ok := boolEntry(parms, "EndOfBlock"); ok {
		p.EndOfBlock = v
	}
	if v, ok := boolEntry(parms, "EndOfLine"); ok {
		p.EndOfLine = v
	}
	if v, ok := boolEntry(parms, "EncodedByteAlign"); ok {
		p.ByteAlign = v
	}
	if v, ok := boolEntry(parms, "BlackIs1"); ok {
		p.BlackIs1 = v
	}
	if v, ok := intEntry(parms, "DamagedRowsBeforeError"); ok && v > 0 {
		p.DamagedRowsBeforeError = uint32(v)
	}
	return p
}

func intEntry(d pdfvalue.Dict, key pdfvalue.Name) (int, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case pdfvalue.Int:
		return int(n), true
	case pdfvalue.Float:
		return int(n), true
	}
	return 0, false
}

func boolEntry(d pdfvalue.Dict, key pdfvalue.Name) (bool, bool) {
	v, ok := d.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(pdfvalue.Bool)
	return bool(b), ok
}
