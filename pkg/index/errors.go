package index

import "errors"

var (
	// ErrFormat indicates malformed index bytes: bad magic, a truncated
	// entry, or a path length that contradicts the flags word.
	ErrFormat = errors.New("malformed index")

	// ErrUnsupportedVersion indicates an index version other than 2. There
	// is no forward compatibility; this is fatal.
	ErrUnsupportedVersion = errors.New("unsupported index version")

	// ErrChecksumMismatch indicates the trailing integrity checksum does not
	// match the preceding bytes. Decode still returns the parsed index so
	// callers can choose to treat this as a warning.
	ErrChecksumMismatch = errors.New("index checksum mismatch")
)
