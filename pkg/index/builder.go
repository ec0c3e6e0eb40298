package index

import "sort"

// Builder accumulates entries for a new index revision. Index files are
// rewritten whole rather than patched, so mutation happens here and Build
// finalizes the count and ordering.
type Builder struct {
	version    uint32
	entries    []*Entry
	extensions []byte
}

// NewBuilder returns an empty builder at the current format version.
func NewBuilder() *Builder {
	return &Builder{version: Version}
}

// BuilderFrom seeds a builder with the entries and extensions of an
// existing index.
func BuilderFrom(idx *Index) *Builder {
	b := &Builder{
		version: idx.Version,
		entries: make([]*Entry, len(idx.Entries)),
	}
	copy(b.entries, idx.Entries)
	if len(idx.Extensions) > 0 {
		b.extensions = append([]byte(nil), idx.Extensions...)
	}
	return b
}

// Add appends an entry.
func (b *Builder) Add(e *Entry) {
	b.entries = append(b.entries, e)
}

// RemoveByPath removes and returns the entry with the given path, or nil if
// absent. A linear scan is fine at the index sizes seen here.
func (b *Builder) RemoveByPath(path string) *Entry {
	for i, e := range b.entries {
		if e.Path == path {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return e
		}
	}
	return nil
}

// Build finalizes the index, sorting entries by path for determinism.
func (b *Builder) Build() *Index {
	sort.Slice(b.entries, func(i, j int) bool {
		return b.entries[i].Path < b.entries[j].Path
	})
	return &Index{
		Version:    b.version,
		Entries:    b.entries,
		Extensions: b.extensions,
	}
}
