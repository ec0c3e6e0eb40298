package index

import (
	"fmt"

	"github.com/gritvcs/grit/pkg/object"
)

// Flags word layout: the low 12 bits hold the path length capped at 0xFFF,
// bit 13 is assume-valid, bit 14 is reserved (extended), bits 15-16 hold the
// merge stage.
const (
	flagPathMask    uint16 = 0x0FFF
	flagAssumeValid uint16 = 0x1000
	flagStageMask   uint16 = 0xC000
	flagStageShift         = 14

	// maxFlagPathLen is the largest path length representable in the flags
	// word. Longer paths store 0xFFF and the actual length is trusted.
	maxFlagPathLen = int(flagPathMask)
)

// entryFixedLen is the byte length of an entry before the path: ten 32-bit
// fields, the 20-byte hash and the 16-bit flags word.
const entryFixedLen = 62

// Stage is the merge stage of an index entry.
type Stage uint16

const (
	// StageNormal marks a file tracked and staged normally.
	StageNormal Stage = iota
	// StageOurs is the version from the current branch during a merge.
	StageOurs
	// StageTheirs is the version from the branch being merged in.
	StageTheirs
	// StageBase is the common ancestor version during a merge.
	StageBase
)

// Entry records one staged file: the stat metadata used for loose change
// detection, the blob hash, the flags word and the repo-relative path.
// Entries are replaced, never mutated in place, when content changes.
type Entry struct {
	CTimeSec  uint32
	CTimeNsec uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Inode     uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32
	Hash      object.Hash
	Flags     uint16
	Path      string
}

// DefaultFlags returns the flags word for a fresh entry with the given path
// length: stage Normal, assume-valid unset.
func DefaultFlags(pathLen int) uint16 {
	if pathLen > maxFlagPathLen {
		pathLen = maxFlagPathLen
	}
	return uint16(pathLen)
}

// EncodedLen returns the on-disk length of this entry: the fixed fields,
// the path, a NUL terminator, and NUL padding to the next 8-byte boundary.
func (e *Entry) EncodedLen() int {
	n := entryFixedLen + len(e.Path) + 1
	if rem := n % 8; rem != 0 {
		n += 8 - rem
	}
	return n
}

// PathLenFlag returns the low 12 bits of the flags word.
func (e *Entry) PathLenFlag() uint16 {
	return e.Flags & flagPathMask
}

// AssumeValid reports whether the assume-valid bit is set.
func (e *Entry) AssumeValid() bool {
	return e.Flags&flagAssumeValid != 0
}

// SetAssumeValid sets or clears the assume-valid bit.
func (e *Entry) SetAssumeValid(v bool) {
	if v {
		e.Flags |= flagAssumeValid
	} else {
		e.Flags &^= flagAssumeValid
	}
}

// Stage returns the merge stage stored in the flags word.
func (e *Entry) Stage() Stage {
	return Stage((e.Flags & flagStageMask) >> flagStageShift)
}

// SetStage stores the merge stage in the flags word.
func (e *Entry) SetStage(s Stage) {
	e.Flags = e.Flags&^flagStageMask | uint16(s)<<flagStageShift
}

// Cache is the coarse stat comparator used to decide whether a file can be
// assumed unchanged without rehashing its content.
type Cache struct {
	Size      uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Inode     uint32
}

// Cache returns the entry's stat comparator.
func (e *Entry) Cache() Cache {
	return Cache{
		Size:      e.Size,
		MTimeSec:  e.MTimeSec,
		MTimeNsec: e.MTimeNsec,
		Dev:       e.Dev,
		Inode:     e.Inode,
	}
}

// MatchesLoose reports whether two comparators agree on size, mtime, device
// and inode.
func (c Cache) MatchesLoose(o Cache) bool {
	return c == o
}

// String renders the entry the way ls-files prints it.
func (e *Entry) String() string {
	return fmt.Sprintf("%o %s %d\t%s", e.Mode, e.Hash, e.Stage(), e.Path)
}

// DebugString renders every field of the entry, one group per line.
func (e *Entry) DebugString() string {
	return fmt.Sprintf(
		"path: %s\nobject hash: %s\ncreation time: %d:%d\nmodification time: %d:%d\ndevice: %d\tinode: %d\nmode: %o\tuid: %d\ngid: %d\tfile size: %d\nstage: %d",
		e.Path, e.Hash,
		e.CTimeSec, e.CTimeNsec,
		e.MTimeSec, e.MTimeNsec,
		e.Dev, e.Inode,
		e.Mode, e.UID,
		e.GID, e.Size,
		e.Stage(),
	)
}
