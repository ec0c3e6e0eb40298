//go:build !linux

package repo

import (
	"os"

	"github.com/gritvcs/grit/pkg/index"
)

func fillStat(e *index.Entry, info os.FileInfo) {
	fillStatPortable(e, info)
}
