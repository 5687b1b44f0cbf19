package document

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/inkwell-labs/pdfkit/pdfvalue"
	"github.com/inkwell-labs/pdfkit/xref"
)

// Serialize emits e as a complete PDF file: header, each object in
// ascending object-number order, a fresh classic xref table built from
// the offsets recorded while writing, and a trailer.
func (e *ExtractedDocument) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	version := e.Version
	if version == "" {
		version = "1.7"
	}
	fmt.Fprintf(&buf, "%%PDF-%s\n", version)
	// A binary-marker comment, matching how real writers signal 8-bit
	// content to naive transfer tools (7.5.2, ISO 32000-1).
	buf.WriteString("%\xE2\xE3\xCF\xD3\n")

	nums := make([]uint32, 0, len(e.Objects))
	for n := range e.Objects {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	offsets := make(map[uint32]int64, len(nums)+1)
	for _, n := range nums {
		offsets[n] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", n)
		buf.WriteString(e.Objects[n].Write())
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := int64(buf.Len())
	buf.Write(writeXref(nums, offsets))

	trailer := pdfvalue.NewDict()
	trailer.Set("Size", pdfvalue.Int(int64(e.MaxObj)+1))
	trailer.Set("Root", pdfvalue.Ref{Obj: e.RootObj, Gen: 0})
	buf.WriteString("trailer\n")
	buf.WriteString(trailer.Write())
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes(), nil
}

// writeXref builds a classic cross-reference table covering object 0
// (always present and free) plus every object number in nums and
// delegates subsection grouping (7.5.4, ISO 32000-1) to xref.Table,
// which also honors the empty-table boundary case.
func writeXref(nums []uint32, offsets map[uint32]int64) []byte {
	t := xref.NewForWrite()
	for _, n := range nums {
		t.SetInUse(int(n), offsets[n], 0)
	}
	return t.Serialize()
}
