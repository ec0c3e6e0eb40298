package object

import (
	"fmt"
	"time"
)

// Type identifies the kind of object stored.
type Type string

const (
	TypeBlob   Type = "blob"
	TypeTree   Type = "tree"
	TypeCommit Type = "commit"
)

// File modes as stored in tree entries and the index, in octal.
const (
	ModeDir        uint32 = 0o40000
	ModeFile       uint32 = 0o100644
	ModeExecutable uint32 = 0o100755
)

// IsDirMode reports whether mode describes a directory entry.
func IsDirMode(mode uint32) bool {
	return mode&0o170000 == 0o040000
}

// Object is the closed union of storable object kinds. The set is fixed:
// Blob, Tree and Commit.
type Object interface {
	Type() Type
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

func (*Blob) Type() Type { return TypeBlob }

// TreeEntry is one entry in a tree object: a file or a subtree.
type TreeEntry struct {
	Mode uint32 // octal file mode
	Path string // single path segment, relative to the owning tree
	Hash Hash
}

// Tree holds a directory listing. Entries keep insertion order; producers
// that need reproducible hashes must sort by path before writing.
type Tree struct {
	Entries []TreeEntry
}

func (*Tree) Type() Type { return TypeTree }

// Ident identifies the author or committer of a commit.
type Ident struct {
	Identifier string // "Name <email>"; may contain spaces
	Timestamp  int64  // unix seconds
	Timezone   string // fixed ±HHMM offset token
}

// String renders the ident the way it appears in a commit body.
func (id Ident) String() string {
	return fmt.Sprintf("%s %d %s", id.Identifier, id.Timestamp, id.Timezone)
}

// NewIdent builds an Ident for the given identifier at time t.
func NewIdent(identifier string, t time.Time) Ident {
	return Ident{
		Identifier: identifier,
		Timestamp:  t.Unix(),
		Timezone:   FormatTimezone(t),
	}
}

// FormatTimezone renders the UTC offset of t as a ±HHMM token with a
// mandatory sign and zero padding.
func FormatTimezone(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, (offset%3600)/60)
}

func validTimezone(s string) bool {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Commit records a tree snapshot, its parents and authorship metadata.
type Commit struct {
	TreeHash  Hash
	Parents   []Hash // zero or more, in insertion order
	Author    Ident
	Committer Ident
	Message   string
}

func (*Commit) Type() Type { return TypeCommit }
