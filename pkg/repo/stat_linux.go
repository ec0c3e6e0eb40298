//go:build linux

package repo

import (
	"os"
	"syscall"

	"github.com/gritvcs/grit/pkg/index"
)

// fillStat populates the stat-derived fields of e from the raw syscall
// data, matching what the index codec persists.
func fillStat(e *index.Entry, info os.FileInfo) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		fillStatPortable(e, info)
		return
	}
	e.CTimeSec = uint32(st.Ctim.Sec)
	e.CTimeNsec = uint32(st.Ctim.Nsec)
	e.MTimeSec = uint32(st.Mtim.Sec)
	e.MTimeNsec = uint32(st.Mtim.Nsec)
	e.Dev = uint32(st.Dev)
	e.Inode = uint32(st.Ino)
	e.Mode = st.Mode
	e.UID = st.Uid
	e.GID = st.Gid
	e.Size = uint32(st.Size)
}
