// Package xref builds a document's cross-reference table: the map from
// object number to "where to find this object's bytes" that makes lazy
// object resolution possible. It understands both the classic,
// plain-text xref table/trailer format and PDF 1.5's binary
// cross-reference streams, including hybrid files that carry both and
// files with a /Prev chain of incremental updates.
package xref

import (
	"bytes"
	"fmt"
	"sort"
)

// EntryKind distinguishes the three ways an object can be located.
type EntryKind uint8

const (
	// Free marks an object number as available for reuse; it is not a
	// live object.
	Free EntryKind = iota
	// InUse objects are found at a byte Offset in the file, as an
	// ordinary "n g obj ... endobj" definition.
	InUse
	// Compressed objects live inside an object stream (7.5.7, ISO
	// 32000-1): StreamObject names the object stream, StreamIndex this
	// object's position within it.
	Compressed
)

// Entry is one cross-reference table row.
type Entry struct {
	Kind EntryKind

	// Valid when Kind == InUse.
	Offset     int64
	Generation uint16

	// Valid when Kind == Compressed.
	StreamObject int
	StreamIndex  int
}

// Table maps object numbers to their Entry, merged across every
// /Prev-linked section with newest-wins semantics: entries discovered
// first (from the most recent xref section) are never overwritten by
// an older section's entry for the same object number.
type Table struct {
	entries map[int]Entry
	// Size is the highest object number plus one, as declared by the
	// newest trailer's /Size entry.
	Size int
	// Root, Info, Encrypt and ID carry the newest trailer's references,
	// filled in as each trailer is merged, first writer wins.
	Root    *Ref
	Info    *Ref
	Encrypt *Ref
	ID      [][]byte
}

// Ref is an indirect object reference as seen in a trailer dictionary.
type Ref struct {
	Obj uint32
	Gen uint16
}

func newTable() *Table {
	return &Table{entries: make(map[int]Entry)}
}

// NewForWrite returns an empty Table meant to be populated with SetInUse
// and then serialized, as opposed to one built by parsing a file.
func NewForWrite() *Table {
	return newTable()
}

// SetInUse records an in-use entry for objNumber, for tables being built
// up for serialization rather than parsed from a file.
func (t *Table) SetInUse(objNumber int, offset int64, generation uint16) {
	t.entries[objNumber] = Entry{Kind: InUse, Offset: offset, Generation: generation}
}

// Lookup returns the entry for objNumber, if any.
func (t *Table) Lookup(objNumber int) (Entry, bool) {
	e, ok := t.entries[objNumber]
	return e, ok
}

// Len returns the number of known entries (free and in-use).
func (t *Table) Len() int { return len(t.entries) }

// setIfAbsent records e for objNumber only if nothing has claimed that
// object number yet, implementing the "first (newest) xref section
// wins" merge rule for /Prev chains.
func (t *Table) setIfAbsent(objNumber int, e Entry) {
	if _, exists := t.entries[objNumber]; exists {
		return
	}
	t.entries[objNumber] = e
}

// Serialize emits t as a classic cross-reference table: "xref\n"
// followed by one subsection per maximal run of consecutive object
// numbers, each a "start count\n" header and count fixed-width 20-byte
// entry lines. Object 0 is always present and free unless t has no
// entries at all, in which case Serialize emits exactly "xref\n0 0\n"
// with no subsections (§8 boundary behavior).
func (t *Table) Serialize() []byte {
	var buf bytes.Buffer
	buf.WriteString("xref\n")

	if len(t.entries) == 0 {
		buf.WriteString("0 0\n")
		return buf.Bytes()
	}

	nums := make([]int, 0, len(t.entries)+1)
	if _, ok := t.entries[0]; !ok {
		nums = append(nums, 0)
	}
	for n := range t.entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	for i := 0; i < len(nums); {
		j := i + 1
		for j < len(nums) && nums[j] == nums[j-1]+1 {
			j++
		}
		run := nums[i:j]
		fmt.Fprintf(&buf, "%d %d\n", run[0], len(run))
		for _, n := range run {
			e, ok := t.entries[n]
			if !ok {
				// the virtual, always-present free object 0
				buf.WriteString("0000000000 65535 f \n")
				continue
			}
			kind := byte('n')
			if e.Kind == Free {
				kind = 'f'
			}
			fmt.Fprintf(&buf, "%010d %05d %c \n", e.Offset, e.Generation, kind)
		}
		i = j
	}
	return buf.Bytes()
}

func (t *Table) mergeTrailer(tr trailerInfo) {
	if t.Root == nil && tr.root != nil {
		t.Root = tr.root
	}
	if t.Info == nil && tr.info != nil {
		t.Info = tr.info
	}
	if t.Encrypt == nil && tr.encrypt != nil {
		t.Encrypt = tr.encrypt
	}
	if t.ID == nil && tr.id != nil {
		t.ID = tr.id
	}
	if t.Size == 0 {
		t.Size = tr.size
	}
}
