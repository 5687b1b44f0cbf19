package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/pdfkit/pdfio"
)

func TestPrefetchResolvesEveryObject(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	err = doc.Reg.Prefetch(context.Background(), []int{1, 2, 3, 4}, 2)
	require.NoError(t, err)

	for _, n := range []int{1, 2, 3, 4} {
		v, ok := doc.Reg.cacheGet(n)
		require.True(t, ok, "object %d should be cached after Prefetch", n)
		require.NotNil(t, v)
	}
}

func TestPrefetchZeroConcurrencyDefaultsToOne(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	err = doc.Reg.Prefetch(context.Background(), []int{1, 2}, 0)
	require.NoError(t, err)
}

func TestPrefetchReturnsFirstErrorButResolvesSiblings(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	// Object 99 doesn't exist in the xref table, so resolveNumber returns
	// Null rather than an error (missing objects resolve to the PDF null
	// object, not a failure); Prefetch over a mix of valid and unknown
	// object numbers should still complete cleanly.
	err = doc.Reg.Prefetch(context.Background(), []int{1, 99, 2}, 4)
	require.NoError(t, err)
}

func TestPrefetchRespectsCanceledContext(t *testing.T) {
	data := buildFixturePDF(t)
	doc, err := Open(pdfio.NewBufferReader(data))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = doc.Reg.Prefetch(ctx, []int{1, 2, 3}, 1)
	require.Error(t, err)
}
