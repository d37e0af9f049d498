// Package phash builds a static minimal perfect hash over a known key set,
// used by the solver to turn information-set keys discovered while walking
// the game tree into a dense slot index without the indirection (and
// resize churn) of a map lookup on every CFR accumulate.
package phash

import chd "github.com/opencoff/go-chd"

// Table is a frozen minimal perfect hash: Lookup(key) returns a value in
// [0, Len()) for every key that was Add-ed before Build, and is undefined for
// any other key.
type Table struct {
	h   *chd.CHD
	len int
}

// Builder accumulates keys before freezing them into a Table.
type Builder struct {
	b    *chd.Builder
	keys [][]byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{b: chd.NewBuilder()}
}

// Add registers key for inclusion in the perfect hash. Keys are not
// de-duplicated here; callers add each distinct key once.
func (b *Builder) Add(key []byte) {
	b.b.Add(key)
	b.keys = append(b.keys, key)
}

// Build freezes the accumulated keys into a Table. It is an error to call
// Build with zero keys.
func (b *Builder) Build() (*Table, error) {
	h, err := b.b.Freeze()
	if err != nil {
		return nil, err
	}
	return &Table{h: h, len: len(b.keys)}, nil
}

// Lookup returns the dense slot assigned to key.
func (t *Table) Lookup(key []byte) int {
	return int(t.h.Find(key))
}

// Len returns the number of keys passed to Add before Build.
func (t *Table) Len() int {
	return t.len
}
