package repo

import (
	"os"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

// fillStatPortable populates the fields available through os.FileInfo
// alone. Creation time, device, inode, uid and gid stay zero, which only
// costs an occasional rehash during status.
func fillStatPortable(e *index.Entry, info os.FileInfo) {
	mt := info.ModTime()
	e.MTimeSec = uint32(mt.Unix())
	e.MTimeNsec = uint32(mt.Nanosecond())
	e.Size = uint32(info.Size())
	e.Mode = modeFromFileInfo(info)
}

func modeFromFileInfo(info os.FileInfo) uint32 {
	if info.Mode()&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeFile
}

// cacheFromInfo returns the loose comparator for a working-tree file.
func cacheFromInfo(info os.FileInfo) index.Cache {
	var e index.Entry
	fillStat(&e, info)
	return e.Cache()
}
