package document

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/pdfkit/pdfio"
	"github.com/inkwell-labs/pdfkit/pdfvalue"
)

func refOf(obj uint32) pdfvalue.Ref { return pdfvalue.Ref{Obj: obj} }

// buildFixturePDF assembles a minimal, valid one-page PDF with a classic
// xref table, computing every byte offset as it writes so the fixture
// stays correct if the object bodies below ever change.
func buildFixturePDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	offsets := make(map[int]int)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	content := "BT /F1 12 Tf (hi) Tj ET"
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << >> >>")

	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)

	xrefOffset := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", 5)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&buf, "%010d %05d n \n", offsets[i], 0)
	}
	buf.WriteString("trailer\n<< /Size 5 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return buf.Bytes()
}

func TestOpenResolvesCatalogAndPages(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)
	require.Equal(t, "1.7", doc.Version)

	root, err := doc.Root()
	require.NoError(t, err)
	typ, ok := root.Get("Type")
	require.True(t, ok)
	require.Equal(t, pdfvalue.Name("Catalog"), typ)

	pages, err := doc.Pages()
	require.NoError(t, err)
	kids, ok := pages.Get("Kids")
	require.True(t, ok)
	require.Len(t, kids, 1)
}

func TestFlattenAndPageByNumber(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	pages, err := doc.Flatten()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, uint32(3), pages[0].Obj)

	page, err := doc.PageByNumber(1)
	require.NoError(t, err)
	require.Equal(t, pages[0].Obj, page.Obj)

	_, err = doc.PageByNumber(2)
	require.Error(t, err)
}

func TestConcatContentsDecodesPageStream(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	page, err := doc.PageByNumber(1)
	require.NoError(t, err)

	contentsRef, ok := page.Dict.Get("Contents")
	require.True(t, ok)
	contents, err := doc.Reg.Deref(contentsRef)
	require.NoError(t, err)

	out, err := doc.ConcatContents(contents)
	require.NoError(t, err)
	require.Contains(t, string(out), "Tj")
}

func TestExtractProducesSelfContainedDocument(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	extracted, err := doc.Extract(1)
	require.NoError(t, err)
	require.NotZero(t, extracted.RootObj)

	out, err := extracted.Serialize()
	require.NoError(t, err)
	require.Contains(t, string(out), "%PDF-1.7")

	// The re-serialized bytes must themselves parse into a usable document.
	doc2, err := Open(pdfio.NewBufferReader(out))
	require.NoError(t, err)
	pages2, err := doc2.Flatten()
	require.NoError(t, err)
	require.Len(t, pages2, 1)
}

func TestRegistryCacheSizeEviction(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)
	doc.Reg.SetCacheSize(1)

	_, err = doc.Reg.Resolve(refOf(1))
	require.NoError(t, err)
	_, err = doc.Reg.Resolve(refOf(2))
	require.NoError(t, err)
	// With a cache of size 1, object 1 has been evicted; resolving it
	// again must still succeed by re-parsing from disk.
	v, err := doc.Reg.Resolve(refOf(1))
	require.NoError(t, err)
	require.NotNil(t, v)
}
