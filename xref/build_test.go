package xref

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/pdfkit/pdfio"
)

func classicFixture() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make(map[int]int)
	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [] /Count 0 >>")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	fmt.Fprintf(&buf, "%010d %05d n \n", offsets[1], 0)
	fmt.Fprintf(&buf, "%010d %05d n \n", offsets[2], 0)
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func TestBuildParsesClassicTableAndTrailer(t *testing.T) {
	data := classicFixture()
	table, version, err := Build(pdfio.NewBufferReader(data))
	require.NoError(t, err)
	require.Equal(t, "1.4", version)
	require.NotNil(t, table.Root)
	require.Equal(t, uint32(1), table.Root.Obj)
	require.Equal(t, 3, table.Size)

	e, ok := table.Lookup(1)
	require.True(t, ok)
	require.Equal(t, InUse, e.Kind)

	free, ok := table.Lookup(0)
	require.True(t, ok)
	require.Equal(t, Free, free.Kind)
}

func TestBuildFallsBackToBypassScanOnCorruptXref(t *testing.T) {
	data := classicFixture()
	// Corrupt the xref keyword itself so the declared section can't be
	// parsed at all, forcing the bypass-scan recovery path.
	corrupt := bytes.Replace(data, []byte("\nxref\n"), []byte("\nXREFX\n"), 1)

	table, _, err := Build(pdfio.NewBufferReader(corrupt))
	require.NoError(t, err)
	require.NotNil(t, table.Root)
	e, ok := table.Lookup(1)
	require.True(t, ok)
	require.Equal(t, InUse, e.Kind)
}

func TestTableNewestWinsOnPrevChain(t *testing.T) {
	table := newTable()
	table.setIfAbsent(5, Entry{Kind: InUse, Offset: 100})
	// A later (older, /Prev-chained) section's entry for the same object
	// number must never overwrite the newer one.
	table.setIfAbsent(5, Entry{Kind: InUse, Offset: 999})

	e, ok := table.Lookup(5)
	require.True(t, ok)
	require.Equal(t, int64(100), e.Offset)
}
