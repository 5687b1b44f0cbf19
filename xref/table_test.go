package xref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeEmptyTableIsExactlyXrefZeroZero(t *testing.T) {
	t.Parallel()
	table := NewForWrite()
	require.Equal(t, "xref\n0 0\n", string(table.Serialize()))
}

func TestSerializeGroupsContiguousSubsections(t *testing.T) {
	t.Parallel()
	table := NewForWrite()
	table.SetInUse(1, 100, 0)
	table.SetInUse(2, 200, 0)
	table.SetInUse(5, 500, 0)

	got := string(table.Serialize())
	want := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000100 00000 n \n" +
		"0000000200 00000 n \n" +
		"5 1\n" +
		"0000000500 00000 n \n"
	require.Equal(t, want, got)
}
