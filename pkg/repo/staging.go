package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

// ReadIndex loads the staging index. A missing file is an empty index. A
// checksum mismatch is logged and otherwise tolerated so a damaged trailer
// does not make the repository unusable.
func (r *Repo) ReadIndex() (*index.Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return index.New(), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	idx, err := index.Decode(data)
	if err != nil {
		if errors.Is(err, index.ErrChecksumMismatch) {
			r.Log.Warn("index checksum mismatch, continuing with parsed contents", zap.Error(err))
			return idx, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

// WriteIndex serializes the index to .git/index.lock and renames it into
// place. The lock file doubles as mutual exclusion against concurrent
// writers and as the atomicity mechanism for readers.
func (r *Repo) WriteIndex(idx *index.Index) error {
	lockPath := r.indexPath() + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("write index: lock: %w", err)
	}

	if _, err := lockFile.Write(idx.Encode()); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return fmt.Errorf("write index: write: %w", err)
	}
	if err := lockFile.Sync(); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return fmt.Errorf("write index: sync: %w", err)
	}
	if err := lockFile.Close(); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("write index: close: %w", err)
	}
	if err := os.Rename(lockPath, r.indexPath()); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("write index: rename: %w", err)
	}
	return nil
}

// ListFiles returns the staged entries in index order.
func (r *Repo) ListFiles() ([]*index.Entry, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}
	return idx.Entries, nil
}

// Add stages the given paths. Staging "." walks the whole working tree,
// honors .gitignore and additionally drops index entries whose files no
// longer exist on disk. A path naming a directory stages its files
// recursively; a path naming a file is staged even when ignored. Any file
// error aborts the operation before the index is written, so a failed add
// never leaves a half-staged index behind.
func (r *Repo) Add(paths []string) error {
	if len(paths) == 0 {
		return errors.New("add: nothing specified")
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return err
	}

	targets, deleteMissing, err := r.collectAddTargets(paths)
	if err != nil {
		return err
	}

	// Index entries not encountered during a full-tree add correspond to
	// files deleted from the working tree; those deletions get staged too.
	missing := make(map[string]bool)
	if deleteMissing {
		for _, e := range idx.Entries {
			missing[e.Path] = true
		}
	}

	builder := index.BuilderFrom(idx)
	for _, rel := range targets {
		delete(missing, rel)
		if err := r.stageFile(builder, idx, rel); err != nil {
			return fmt.Errorf("add %q: %w", rel, err)
		}
	}
	for path := range missing {
		builder.RemoveByPath(path)
	}

	return r.WriteIndex(builder.Build())
}

// stageFile stages one file. When the on-disk stat metadata still matches
// the existing entry the content is assumed unchanged and nothing is done;
// otherwise the file is hashed into the store and the entry replaced with a
// fresh one carrying current metadata.
func (r *Repo) stageFile(builder *index.Builder, idx *index.Index, rel string) error {
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}

	if existing := idx.EntryByPath(rel); existing != nil &&
		existing.Cache().MatchesLoose(cacheFromInfo(info)) {
		return nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	h, err := r.Store.Write(&object.Blob{Data: data})
	if err != nil {
		return err
	}

	e := &index.Entry{
		Hash:  h,
		Flags: index.DefaultFlags(len(rel)),
		Path:  rel,
	}
	fillStat(e, info)

	builder.RemoveByPath(rel)
	builder.Add(e)
	return nil
}

// collectAddTargets expands the argument paths into a sorted, deduplicated
// list of repo-relative file paths. The second return value reports whether
// the whole tree was named, which enables staged deletions.
func (r *Repo) collectAddTargets(paths []string) ([]string, bool, error) {
	seen := make(map[string]bool)
	var targets []string
	deleteMissing := false

	appendTarget := func(rel string) {
		if !seen[rel] {
			seen[rel] = true
			targets = append(targets, rel)
		}
	}

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return nil, false, fmt.Errorf("add: %w", err)
		}

		if rel == "." {
			deleteMissing = true
			files, err := r.walkFiles(r.RootDir)
			if err != nil {
				return nil, false, fmt.Errorf("add: %w", err)
			}
			for _, f := range files {
				appendTarget(f)
			}
			continue
		}

		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			return nil, false, fmt.Errorf("add %q: %w", p, err)
		}
		if info.IsDir() {
			files, err := r.walkFiles(abs)
			if err != nil {
				return nil, false, fmt.Errorf("add %q: %w", p, err)
			}
			for _, f := range files {
				appendTarget(f)
			}
		} else {
			appendTarget(rel)
		}
	}

	sort.Strings(targets)
	return targets, deleteMissing, nil
}

// relPath converts a user-supplied path to a slash-separated path relative
// to the repository root, rejecting paths that escape it.
func (r *Repo) relPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %q is outside the repository", p)
	}
	return rel, nil
}

// walkFiles lists the regular files under root as repo-relative paths,
// skipping ignored files and directories.
func (r *Repo) walkFiles(root string) ([]string, error) {
	ignored := r.ignoredPaths()

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if ignored[rel] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, rel)
		}
		return nil
	})
	return out, err
}
