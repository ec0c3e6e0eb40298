package index

import (
	"errors"
	"testing"

	"github.com/gritvcs/grit/pkg/object"
)

func testEntry(path string, content string) *Entry {
	return &Entry{
		MTimeSec:  1700000000,
		MTimeNsec: 123456789,
		Dev:       64769,
		Inode:     42,
		Mode:      object.ModeFile,
		Size:      uint32(len(content)),
		Hash:      object.ComputeHash([]byte(content)),
		Flags:     DefaultFlags(len(path)),
		Path:      path,
	}
}

func TestEntryEncodedLen(t *testing.T) {
	cases := []struct {
		path string
		want int
	}{
		{"a", 64},          // 62 + 1 + 1 = 64, already aligned
		{"ab", 72},         // 62 + 2 + 1 = 65 -> 72
		{"123456789", 72},  // 62 + 9 + 1 = 72
		{"1234567890", 80}, // 62 + 10 + 1 = 73 -> 80
	}
	for _, c := range cases {
		e := &Entry{Path: c.path}
		if got := e.EncodedLen(); got != c.want {
			t.Errorf("EncodedLen(%q) = %d, want %d", c.path, got, c.want)
		}
	}
}

func TestEntryFlags(t *testing.T) {
	e := &Entry{Flags: DefaultFlags(5), Path: "a/b.c"}
	if e.PathLenFlag() != 5 {
		t.Fatalf("path length flag = %d, want 5", e.PathLenFlag())
	}
	if e.AssumeValid() {
		t.Fatal("assume-valid set on fresh entry")
	}
	if e.Stage() != StageNormal {
		t.Fatalf("stage = %d, want normal", e.Stage())
	}

	for _, s := range []Stage{StageNormal, StageOurs, StageTheirs, StageBase} {
		e.SetStage(s)
		if e.Stage() != s {
			t.Errorf("stage round trip: got %d, want %d", e.Stage(), s)
		}
		if e.PathLenFlag() != 5 {
			t.Errorf("stage %d clobbered path length flag", s)
		}
	}

	e.SetAssumeValid(true)
	if !e.AssumeValid() {
		t.Fatal("assume-valid not set")
	}
	if e.Stage() != StageBase || e.PathLenFlag() != 5 {
		t.Fatal("assume-valid clobbered other flag bits")
	}
	e.SetAssumeValid(false)
	if e.AssumeValid() {
		t.Fatal("assume-valid not cleared")
	}
}

func TestDefaultFlagsCapsLongPaths(t *testing.T) {
	if got := DefaultFlags(5000); got != 0x0FFF {
		t.Fatalf("DefaultFlags(5000) = %#x, want 0x0fff", got)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("src/main.go", "package main"))
	b.Add(testEntry("README.md", "# hello"))
	idx := b.Build()
	idx.Extensions = []byte("TREE\x00\x00\x00\x04abcd")

	data := idx.Encode()

	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != Version {
		t.Fatalf("version = %d, want %d", got.Version, Version)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(got.Entries))
	}
	// Build sorts by path.
	if got.Entries[0].Path != "README.md" || got.Entries[1].Path != "src/main.go" {
		t.Fatalf("entry order: %q, %q", got.Entries[0].Path, got.Entries[1].Path)
	}
	for i, e := range got.Entries {
		want := idx.Entries[i]
		if *e != *want {
			t.Errorf("entry %d = %+v, want %+v", i, e, want)
		}
	}
	if string(got.Extensions) != string(idx.Extensions) {
		t.Fatalf("extensions = %q, want %q", got.Extensions, idx.Extensions)
	}
	if got.Checksum != idx.Checksum {
		t.Fatalf("checksum = %s, want %s", got.Checksum, idx.Checksum)
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("file.txt", "content"))
	data := b.Build().Encode()

	// Flip a bit in the trailing checksum. The index contents are intact,
	// so decoding must still hand them back.
	data[len(data)-1] ^= 0xFF

	idx, err := Decode(data)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("got %v, want ErrChecksumMismatch", err)
	}
	if idx == nil || len(idx.Entries) != 1 || idx.Entries[0].Path != "file.txt" {
		t.Fatalf("parsed index not returned alongside mismatch: %+v", idx)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	data := New().Encode()
	data[7] = 3 // version big-endian low byte

	if _, err := Decode(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data := New().Encode()
	copy(data, "JUNK")

	if _, err := Decode(data); !errors.Is(err, ErrFormat) {
		t.Fatalf("got %v, want ErrFormat", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("a.txt", "x"))
	data := b.Build().Encode()

	for _, n := range []int{0, 4, 11, 30} {
		if _, err := Decode(data[:n]); !errors.Is(err, ErrFormat) {
			t.Errorf("Decode(%d bytes): got %v, want ErrFormat", n, err)
		}
	}
}

func TestDecodePathLengthFlagMismatch(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("a", "x"))
	data := b.Build().Encode()

	// The flags word sits at byte 60 of the entry, which starts after the
	// 12-byte header. Claim a path length of 3 for a 1-byte path.
	data[headerLen+61] = 3

	if _, err := Decode(data); !errors.Is(err, ErrFormat) {
		t.Fatalf("got %v, want ErrFormat", err)
	}
}

func TestBuilderRemoveByPath(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("a.txt", "a"))
	b.Add(testEntry("b.txt", "b"))

	removed := b.RemoveByPath("a.txt")
	if removed == nil || removed.Path != "a.txt" {
		t.Fatalf("removed = %+v, want a.txt", removed)
	}
	if b.RemoveByPath("missing") != nil {
		t.Fatal("removed a missing path")
	}

	idx := b.Build()
	if len(idx.Entries) != 1 || idx.Entries[0].Path != "b.txt" {
		t.Fatalf("remaining entries: %+v", idx.Entries)
	}
}

func TestBuilderFromPreservesExtensions(t *testing.T) {
	orig := New()
	orig.Extensions = []byte("EXT!")
	orig.Entries = []*Entry{testEntry("z.txt", "z")}

	b := BuilderFrom(orig)
	b.Add(testEntry("a.txt", "a"))
	idx := b.Build()

	if len(idx.Entries) != 2 || idx.Entries[0].Path != "a.txt" {
		t.Fatalf("entries: %+v", idx.Entries)
	}
	if string(idx.Extensions) != "EXT!" {
		t.Fatalf("extensions = %q", idx.Extensions)
	}
}

func TestEntryByPath(t *testing.T) {
	b := NewBuilder()
	b.Add(testEntry("a.txt", "a"))
	idx := b.Build()

	if e := idx.EntryByPath("a.txt"); e == nil || e.Path != "a.txt" {
		t.Fatalf("EntryByPath = %+v", e)
	}
	if idx.EntryByPath("nope") != nil {
		t.Fatal("found a missing path")
	}
}
