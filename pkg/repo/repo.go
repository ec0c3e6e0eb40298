package repo

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gritvcs/grit/pkg/object"
)

// Repo represents an opened Grit repository. The paths are resolved once at
// construction and passed by reference into every component; there is no
// global repository state.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // content-addressed object store
	Log     *zap.Logger   // warning/diagnostic sink, nop by default
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitDir, "index")
}

func (r *Repo) headPath() string {
	return filepath.Join(r.GitDir, "HEAD")
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, "config.toml")
}
