package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Marshal returns the canonical byte encoding of obj. Encoding is pure and
// deterministic; it cannot fail for well-formed in-memory values.
func Marshal(obj Object) []byte {
	switch o := obj.(type) {
	case *Blob:
		return MarshalBlob(o)
	case *Tree:
		return MarshalTree(o)
	case *Commit:
		return MarshalCommit(o)
	default:
		panic(fmt.Sprintf("object: marshal: unexpected type %T", obj))
	}
}

// Decode parses an encoded object, dispatching on the leading ASCII type
// token (everything up to the first space). The typed decoders each
// re-validate their own "{type} {len}\0" header from the full byte slice.
func Decode(data []byte) (Object, error) {
	space := bytes.IndexByte(data, ' ')
	if space < 0 {
		return nil, fmt.Errorf("%w: missing type token", ErrFormat)
	}
	switch Type(data[:space]) {
	case TypeBlob:
		return UnmarshalBlob(data)
	case TypeTree:
		return UnmarshalTree(data)
	case TypeCommit:
		return UnmarshalCommit(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(data[:space]))
	}
}

// header builds the "{type} {len}\0" envelope prefix.
func header(t Type, payloadLen int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", t, payloadLen))
}

// parseHeader validates the "{type} {len}\0" envelope at the start of data
// and returns the payload and the declared payload length.
func parseHeader(data []byte, want Type) ([]byte, int, error) {
	space := bytes.IndexByte(data, ' ')
	if space < 0 {
		return nil, 0, fmt.Errorf("%w: %s: missing space after type", ErrFormat, want)
	}
	if Type(data[:space]) != want {
		return nil, 0, fmt.Errorf("%w: expected %q, got %q", ErrFormat, want, string(data[:space]))
	}
	rest := data[space+1:]
	nul := bytes.IndexByte(rest, 0)
	if nul < 0 {
		return nil, 0, fmt.Errorf("%w: %s: missing NUL after length", ErrFormat, want)
	}
	declared, err := strconv.Atoi(string(rest[:nul]))
	if err != nil || declared < 0 {
		return nil, 0, fmt.Errorf("%w: %s: bad length %q", ErrFormat, want, string(rest[:nul]))
	}
	return rest[nul+1:], declared, nil
}

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob encodes a blob as "blob {len}\0{data}".
func MarshalBlob(b *Blob) []byte {
	out := header(TypeBlob, len(b.Data))
	return append(out, b.Data...)
}

// UnmarshalBlob parses a blob, verifying the declared length matches the
// actual payload size.
func UnmarshalBlob(data []byte) (*Blob, error) {
	payload, declared, err := parseHeader(data, TypeBlob)
	if err != nil {
		return nil, err
	}
	if len(payload) != declared {
		return nil, fmt.Errorf("%w: blob: declared length %d, actual %d", ErrFormat, declared, len(payload))
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// MarshalTree encodes a tree as "tree {len}\0" followed by one
// "{octalMode} {path}\0{20-byte hash}" record per entry, with no separator
// between records.
func MarshalTree(t *Tree) []byte {
	var body bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&body, "%o %s\x00", e.Mode, e.Path)
		body.Write(e.Hash[:])
	}
	out := header(TypeTree, body.Len())
	return append(out, body.Bytes()...)
}

// UnmarshalTree parses a tree, keeping a running byte counter that must
// exactly exhaust the declared payload length.
func UnmarshalTree(data []byte) (*Tree, error) {
	payload, declared, err := parseHeader(data, TypeTree)
	if err != nil {
		return nil, err
	}
	if len(payload) != declared {
		return nil, fmt.Errorf("%w: tree: declared length %d, actual %d", ErrFormat, declared, len(payload))
	}

	tree := &Tree{}
	consumed := 0
	for consumed < declared {
		rest := payload[consumed:]

		space := bytes.IndexByte(rest, ' ')
		if space < 0 {
			return nil, fmt.Errorf("%w: tree entry: missing space after mode", ErrFormat)
		}
		mode, err := strconv.ParseUint(string(rest[:space]), 8, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: tree entry: bad mode %q", ErrFormat, string(rest[:space]))
		}
		consumed += space + 1
		rest = rest[space+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: tree entry: missing NUL after path", ErrFormat)
		}
		path := string(rest[:nul])
		consumed += nul + 1
		rest = rest[nul+1:]

		if len(rest) < HashLen {
			return nil, fmt.Errorf("%w: tree entry %q: truncated hash", ErrFormat, path)
		}
		h, _ := HashFromBytes(rest[:HashLen])
		consumed += HashLen

		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: uint32(mode),
			Path: path,
			Hash: h,
		})
	}
	if consumed != declared {
		return nil, fmt.Errorf("%w: tree: consumed %d bytes, declared %d", ErrFormat, consumed, declared)
	}
	return tree, nil
}

// ---------------------------------------------------------------------------
// Commit
// ---------------------------------------------------------------------------

// MarshalCommit encodes a commit as "commit {len}\0" plus a body of header
// lines (tree, zero or more parents, author, committer), a blank line and
// the raw message.
func MarshalCommit(c *Commit) []byte {
	var body bytes.Buffer
	fmt.Fprintf(&body, "tree %s\n", c.TreeHash)
	for _, p := range c.Parents {
		fmt.Fprintf(&body, "parent %s\n", p)
	}
	fmt.Fprintf(&body, "author %s\n", c.Author)
	fmt.Fprintf(&body, "committer %s\n", c.Committer)
	body.WriteByte('\n')
	body.WriteString(c.Message)

	out := header(TypeCommit, body.Len())
	return append(out, body.Bytes()...)
}

// UnmarshalCommit parses a commit body. The message is everything after the
// blank line, newlines included; it is not line-delimited.
func UnmarshalCommit(data []byte) (*Commit, error) {
	payload, declared, err := parseHeader(data, TypeCommit)
	if err != nil {
		return nil, err
	}
	if len(payload) != declared {
		return nil, fmt.Errorf("%w: commit: declared length %d, actual %d", ErrFormat, declared, len(payload))
	}

	sep := bytes.Index(payload, []byte("\n\n"))
	if sep < 0 {
		return nil, fmt.Errorf("%w: commit: missing blank line before message", ErrFormat)
	}
	headerPart := string(payload[:sep])
	message := string(payload[sep+2:])

	c := &Commit{Message: message}
	lines := strings.Split(headerPart, "\n")
	i := 0

	// tree {hash}
	if i >= len(lines) || !strings.HasPrefix(lines[i], "tree ") {
		return nil, fmt.Errorf("%w: commit: expected tree line", ErrFormat)
	}
	c.TreeHash, err = ParseHash(strings.TrimPrefix(lines[i], "tree "))
	if err != nil {
		return nil, fmt.Errorf("%w: commit tree: %v", ErrFormat, err)
	}
	i++

	// parent {hash}, zero or more
	for i < len(lines) && strings.HasPrefix(lines[i], "parent ") {
		p, err := ParseHash(strings.TrimPrefix(lines[i], "parent "))
		if err != nil {
			return nil, fmt.Errorf("%w: commit parent: %v", ErrFormat, err)
		}
		c.Parents = append(c.Parents, p)
		i++
	}

	c.Author, err = parseIdentLine(lines, i, "author")
	if err != nil {
		return nil, err
	}
	i++

	c.Committer, err = parseIdentLine(lines, i, "committer")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// parseIdentLine parses "{keyword} {identifier} {timestamp} {timezone}". The
// identifier may contain spaces, so it is everything between the keyword and
// the last two tokens.
func parseIdentLine(lines []string, i int, keyword string) (Ident, error) {
	if i >= len(lines) || !strings.HasPrefix(lines[i], keyword+" ") {
		return Ident{}, fmt.Errorf("%w: commit: expected %s line", ErrFormat, keyword)
	}
	tokens := strings.Split(strings.TrimPrefix(lines[i], keyword+" "), " ")
	if len(tokens) < 3 {
		return Ident{}, fmt.Errorf("%w: commit %s: want identifier, timestamp and timezone", ErrFormat, keyword)
	}

	tz := tokens[len(tokens)-1]
	if !validTimezone(tz) {
		return Ident{}, fmt.Errorf("%w: commit %s: bad timezone %q", ErrFormat, keyword, tz)
	}
	ts, err := strconv.ParseInt(tokens[len(tokens)-2], 10, 64)
	if err != nil {
		return Ident{}, fmt.Errorf("%w: commit %s: bad timestamp %q", ErrFormat, keyword, tokens[len(tokens)-2])
	}
	identifier := strings.Join(tokens[:len(tokens)-2], " ")
	if identifier == "" {
		return Ident{}, fmt.Errorf("%w: commit %s: empty identifier", ErrFormat, keyword)
	}

	return Ident{Identifier: identifier, Timestamp: ts, Timezone: tz}, nil
}
