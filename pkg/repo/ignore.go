package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ignoredPaths reads .gitignore in the repository root and returns the set
// of ignored repo-relative paths. Pattern matching is deliberately simple:
// each non-comment line is one exact relative path. The .git directory is
// always ignored.
func (r *Repo) ignoredPaths() map[string]bool {
	ignored := map[string]bool{".git": true}

	f, err := os.Open(filepath.Join(r.RootDir, ".gitignore"))
	if err != nil {
		if !os.IsNotExist(err) {
			r.Log.Warn("could not read .gitignore, ignoring only .git", zap.Error(err))
		}
		return ignored
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ignored[strings.TrimSuffix(line, "/")] = true
	}
	if err := scanner.Err(); err != nil {
		r.Log.Warn("error while reading .gitignore", zap.Error(err))
	}
	return ignored
}
