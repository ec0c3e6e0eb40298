package object

import "errors"

var (
	// ErrNotFound indicates no object exists for the requested hash.
	ErrNotFound = errors.New("object not found")

	// ErrUnknownType indicates the leading type token of an encoded object
	// was not one of blob, tree or commit.
	ErrUnknownType = errors.New("unknown object type")

	// ErrFormat indicates malformed object bytes: truncated input, a bad
	// header, or a length that does not match the payload.
	ErrFormat = errors.New("malformed object")

	// ErrInvalidHash indicates a hash string or raw hash slice of the wrong
	// shape.
	ErrInvalidHash = errors.New("invalid hash")
)
