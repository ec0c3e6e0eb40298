package object

import (
	"strings"
	"testing"
)

func TestComputeHashKnownValue(t *testing.T) {
	// The empty blob has a well-known content hash.
	h := ComputeHash([]byte("blob 0\x00"))
	if got, want := h.String(), "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"; got != want {
		t.Fatalf("empty blob hash = %s, want %s", got, want)
	}
}

func TestParseHashRoundTrip(t *testing.T) {
	h := ComputeHash([]byte("some content"))
	parsed, err := ParseHash(h.String())
	if err != nil {
		t.Fatalf("ParseHash(%q): %v", h, err)
	}
	if parsed != h {
		t.Fatalf("round trip mismatch: %s != %s", parsed, h)
	}
}

func TestParseHashRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"abc",
		strings.Repeat("a", 39),
		strings.Repeat("a", 41),
		strings.Repeat("g", 40), // not hex
	}
	for _, in := range cases {
		if _, err := ParseHash(in); err == nil {
			t.Errorf("ParseHash(%q) succeeded, want error", in)
		}
	}
}

func TestHashFromBytes(t *testing.T) {
	raw := make([]byte, HashLen)
	raw[0] = 0xab
	h, err := HashFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h.String(), "ab") {
		t.Fatalf("unexpected hash %s", h)
	}

	if _, err := HashFromBytes(raw[:19]); err == nil {
		t.Fatal("HashFromBytes accepted short input")
	}
}

func TestHashIsZero(t *testing.T) {
	var zero Hash
	if !zero.IsZero() {
		t.Fatal("zero hash not reported as zero")
	}
	if ComputeHash([]byte("x")).IsZero() {
		t.Fatal("computed hash reported as zero")
	}
}
