package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

// ErrDirtyWorkingTree is returned when an operation that rewrites the
// working tree would clobber uncommitted changes.
var ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")

// Checkout switches the working tree and index to the given target. A
// branch name attaches HEAD to that branch; a 40-character hash detaches
// HEAD at that commit. The working tree must be clean apart from untracked
// files, which are left alone.
func (r *Repo) Checkout(target string) error {
	if err := r.ensureClean(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	var commitHash object.Hash
	var branch string

	refPath := filepath.Join(r.GitDir, "refs", "heads", target)
	if _, err := os.Stat(refPath); err == nil {
		h, err := r.ResolveRef(target)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		commitHash, branch = h, target
	} else {
		h, err := object.ParseHash(target)
		if err != nil {
			return fmt.Errorf("checkout: %q is neither a branch nor a commit hash", target)
		}
		commitHash = h
	}

	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.removeTrackedFiles(idx); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.writeTreeFiles(files); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.rebuildIndexFromTree(files); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	headContent := commitHash.String()
	if branch != "" {
		headContent = "ref: refs/heads/" + branch
	}
	if err := r.writeHead(headContent); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// ensureClean fails when any tracked file has staged or unstaged changes.
func (r *Repo) ensureClean() error {
	statuses, err := r.Status()
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if s.Stage == StageUntracked {
			continue
		}
		if s.Status != StatusUnchanged {
			return fmt.Errorf("%w: %s (%s, %s)", ErrDirtyWorkingTree, s.Path, s.Status, s.Stage)
		}
	}
	return nil
}

// removeTrackedFiles deletes every indexed file from the working tree and
// prunes directories left empty, leaving untracked files untouched.
func (r *Repo) removeTrackedFiles(idx *index.Index) error {
	for _, e := range idx.Entries {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return err
		}
		for dir := filepath.Dir(abs); dir != r.RootDir; dir = filepath.Dir(dir) {
			// Remove fails on non-empty directories, which ends the climb.
			if err := os.Remove(dir); err != nil {
				break
			}
		}
	}
	return nil
}

// writeTreeFiles materializes blobs into the working tree, restoring the
// executable bit from the stored mode.
func (r *Repo) writeTreeFiles(files []TreeFile) error {
	for _, f := range files {
		blob, err := r.Store.ReadBlob(f.Hash)
		if err != nil {
			return err
		}

		abs := filepath.Join(r.RootDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return err
		}

		perm := os.FileMode(0o644)
		if f.Mode == object.ModeExecutable {
			perm = 0o755
		}
		if err := os.WriteFile(abs, blob.Data, perm); err != nil {
			return err
		}
	}
	return nil
}

// rebuildIndexFromTree replaces the index with entries for the given tree
// files. Stat metadata is captured only when the working copy's content
// actually matches the tree entry; anything else keeps zeroed metadata so
// the next status rehashes it instead of trusting a stale cache.
func (r *Repo) rebuildIndexFromTree(files []TreeFile) error {
	builder := index.NewBuilder()
	for _, f := range files {
		e := &index.Entry{
			Mode:  f.Mode,
			Hash:  f.Hash,
			Flags: index.DefaultFlags(len(f.Path)),
			Path:  f.Path,
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(f.Path))
		if info, err := os.Stat(abs); err == nil {
			if data, err := os.ReadFile(abs); err == nil &&
				object.ComputeHash(object.Marshal(&object.Blob{Data: data})) == f.Hash {
				fillStat(e, info)
			}
		}
		builder.Add(e)
	}
	return r.WriteIndex(builder.Build())
}
