package object

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// HashLen is the byte length of an object hash.
const HashLen = 20

// Hash is a 20-byte SHA-1 digest. It is a plain value type so it can be
// compared with == and used directly as a map key.
type Hash [HashLen]byte

// ComputeHash returns the SHA-1 digest of data.
func ComputeHash(data []byte) Hash {
	return sha1.Sum(data)
}

// ParseHash parses a 40-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HashLen*2 {
		return h, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidHash, HashLen*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	copy(h[:], raw)
	return h, nil
}

// HashFromBytes builds a Hash from exactly HashLen raw bytes.
func HashFromBytes(raw []byte) (Hash, error) {
	var h Hash
	if len(raw) != HashLen {
		return h, fmt.Errorf("%w: want %d raw bytes, got %d", ErrInvalidHash, HashLen, len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare orders hashes by byte content, consistent with ==.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}
