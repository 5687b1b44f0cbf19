package pdfvalue

import "strings"

// Dict is a PDF dictionary object, "<< /Key Value ... >>". Unlike the raw
// PDF grammar (which treats dictionaries as unordered), Dict preserves
// the order in which keys were first inserted, so that parsing a
// document and serializing it back produces byte-for-byte comparable
// (modulo whitespace) output. Re-inserting an existing key updates its
// value in place without moving it to the end.
type Dict struct {
	keys   []Name
	values map[Name]Value
}

// NewDict returns an empty Dict ready for use.
func NewDict() Dict {
	return Dict{values: make(map[Name]Value)}
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.keys) }

// Get returns the value for key and whether it was present.
func (d Dict) Get(key Name) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// GetOr returns the value for key, or def if absent.
func (d Dict) GetOr(key Name, def Value) Value {
	if v, ok := d.values[key]; ok {
		return v
	}
	return def
}

// Set inserts or updates key. A duplicate key (as may occur while
// parsing a malformed dictionary) keeps the last value written, per
// spec.md's lexer rule, but does not change its position in Keys().
func (d *Dict) Set(key Name, value Value) {
	if d.values == nil {
		d.values = make(map[Name]Value)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes key, if present.
func (d *Dict) Delete(key Name) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the dictionary's keys in insertion order. The returned
// slice must not be mutated.
func (d Dict) Keys() []Name { return d.keys }

// Write implements Value.
func (d Dict) Write() string {
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range d.keys {
		b.WriteByte(' ')
		b.WriteString(Name(k).Write())
		b.WriteByte(' ')
		b.WriteString(d.values[k].Write())
	}
	b.WriteString(" >>")
	return b.String()
}

// Clone implements Value.
func (d Dict) Clone() Value {
	out := Dict{
		keys:   append([]Name(nil), d.keys...),
		values: make(map[Name]Value, len(d.values)),
	}
	for k, v := range d.values {
		out.values[k] = v.Clone()
	}
	return out
}
