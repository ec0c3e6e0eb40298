package index

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gritvcs/grit/pkg/object"
)

// Version is the only index format version this package reads or writes.
const Version = 2

// signature is the 4-byte magic at the start of every index file.
var signature = []byte("DIRC")

const headerLen = 12 // magic + version + entry count

// Index is the staging-area file: a header, an ordered list of entries, any
// extension records (opaque, round-tripped verbatim) and a trailing
// integrity checksum over all preceding bytes.
type Index struct {
	Version    uint32
	Entries    []*Entry
	Extensions []byte
	Checksum   object.Hash
}

// New returns an empty index at the current version.
func New() *Index {
	return &Index{Version: Version}
}

// EntryByPath returns the entry for path, or nil.
func (idx *Index) EntryByPath(path string) *Entry {
	for _, e := range idx.Entries {
		if e.Path == path {
			return e
		}
	}
	return nil
}

// Encode serializes the index: magic, version, entry count, each entry's
// encoding back to back, extension bytes, and a freshly computed checksum
// over everything written so far. The checksum field is updated in place.
func (idx *Index) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(signature)

	var word [4]byte
	binary.BigEndian.PutUint32(word[:], idx.Version)
	buf.Write(word[:])
	binary.BigEndian.PutUint32(word[:], uint32(len(idx.Entries)))
	buf.Write(word[:])

	for _, e := range idx.Entries {
		buf.Write(encodeEntry(e))
	}
	buf.Write(idx.Extensions)

	idx.Checksum = object.ComputeHash(buf.Bytes())
	buf.Write(idx.Checksum[:])
	return buf.Bytes()
}

// encodeEntry serializes one entry: ten big-endian 32-bit integers, the raw
// hash, the flags word, the path, a NUL terminator and NUL padding to an
// 8-byte boundary.
func encodeEntry(e *Entry) []byte {
	out := make([]byte, e.EncodedLen())
	be := binary.BigEndian

	be.PutUint32(out[0:], e.CTimeSec)
	be.PutUint32(out[4:], e.CTimeNsec)
	be.PutUint32(out[8:], e.MTimeSec)
	be.PutUint32(out[12:], e.MTimeNsec)
	be.PutUint32(out[16:], e.Dev)
	be.PutUint32(out[20:], e.Inode)
	be.PutUint32(out[24:], e.Mode)
	be.PutUint32(out[28:], e.UID)
	be.PutUint32(out[32:], e.GID)
	be.PutUint32(out[36:], e.Size)
	copy(out[40:], e.Hash[:])
	be.PutUint16(out[60:], e.Flags)
	copy(out[entryFixedLen:], e.Path)
	// The rest of out is already the NUL terminator and padding.
	return out
}

// Decode parses an index file. A checksum mismatch is not fatal: the parsed
// index is returned together with ErrChecksumMismatch so the caller can
// decide whether to warn or abort. Every other failure returns a nil index.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerLen+object.HashLen {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrFormat, len(data))
	}
	if !bytes.Equal(data[:4], signature) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, string(data[:4]))
	}

	version := binary.BigEndian.Uint32(data[4:])
	if version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, Version)
	}
	count := binary.BigEndian.Uint32(data[8:])

	idx := &Index{Version: version}
	body := data[:len(data)-object.HashLen]
	off := headerLen

	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(body[off:])
		if err != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, err)
		}
		idx.Entries = append(idx.Entries, e)
		off += n
	}

	// Everything between the last entry and the checksum is extension data.
	// It is not interpreted, only preserved for the next encode.
	if off < len(body) {
		idx.Extensions = append([]byte(nil), body[off:]...)
	}

	stored, _ := object.HashFromBytes(data[len(data)-object.HashLen:])
	idx.Checksum = stored

	if computed := object.ComputeHash(body); computed != stored {
		return idx, fmt.Errorf("%w: stored %s, computed %s", ErrChecksumMismatch, stored, computed)
	}
	return idx, nil
}

// decodeEntry parses one entry from the front of data, returning the entry
// and the number of bytes consumed including padding.
func decodeEntry(data []byte) (*Entry, int, error) {
	if len(data) < entryFixedLen+1 {
		return nil, 0, fmt.Errorf("%w: truncated entry (%d bytes)", ErrFormat, len(data))
	}
	be := binary.BigEndian

	e := &Entry{
		CTimeSec:  be.Uint32(data[0:]),
		CTimeNsec: be.Uint32(data[4:]),
		MTimeSec:  be.Uint32(data[8:]),
		MTimeNsec: be.Uint32(data[12:]),
		Dev:       be.Uint32(data[16:]),
		Inode:     be.Uint32(data[20:]),
		Mode:      be.Uint32(data[24:]),
		UID:       be.Uint32(data[28:]),
		GID:       be.Uint32(data[32:]),
		Size:      be.Uint32(data[36:]),
		Flags:     be.Uint16(data[60:]),
	}
	e.Hash, _ = object.HashFromBytes(data[40:60])

	nul := bytes.IndexByte(data[entryFixedLen:], 0)
	if nul < 0 {
		return nil, 0, fmt.Errorf("%w: missing NUL after entry path", ErrFormat)
	}
	e.Path = string(data[entryFixedLen : entryFixedLen+nul])

	// The flags word stores the path length capped at 0xFFF. When capped,
	// the actual length is trusted; otherwise a disagreement means the
	// entry is corrupt.
	if flag := e.PathLenFlag(); flag != flagPathMask && int(flag) != len(e.Path) {
		return nil, 0, fmt.Errorf("%w: flags path length %d does not match path %q (%d bytes)",
			ErrFormat, flag, e.Path, len(e.Path))
	}

	n := e.EncodedLen()
	if len(data) < n {
		return nil, 0, fmt.Errorf("%w: entry %q: truncated padding", ErrFormat, e.Path)
	}
	return e, n, nil
}
