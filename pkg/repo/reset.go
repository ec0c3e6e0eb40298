package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gritvcs/grit/pkg/index"
)

// Reset moves the current branch (or detached HEAD) to target and rebuilds
// the index from that commit's tree. With hard, the working tree is
// rewritten to match as well; otherwise files on disk are left alone.
func (r *Repo) Reset(target string, hard bool) error {
	h, err := r.ResolveRef(target)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	commit, err := r.Store.ReadCommit(h)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if hard {
		idx, err := r.ReadIndex()
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		if err := r.removeTrackedFiles(idx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		if err := r.writeTreeFiles(files); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	head, err := r.Head()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if strings.HasPrefix(head, "refs/") {
		if err := r.UpdateRef(head, h); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	} else {
		if err := r.writeHead(h.String()); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	if err := r.rebuildIndexFromTree(files); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// ResetFiles restores the index entries for the given paths to their state
// in the last commit: re-staged at the committed content, or dropped from
// the index when the commit does not know the path. The working tree is
// left alone. Restored entries carry no stat metadata, so the next status
// rehashes them instead of trusting a stale cache.
func (r *Repo) ResetFiles(paths []string) error {
	if len(paths) == 0 {
		return errors.New("reset: no paths given")
	}

	committed := make(map[string]TreeFile)
	if h, ok, err := r.LastCommitHash(); err != nil {
		return fmt.Errorf("reset: %w", err)
	} else if ok {
		commit, err := r.Store.ReadCommit(h)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		files, err := r.FlattenTree(commit.TreeHash)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		for _, f := range files {
			committed[f.Path] = f
		}
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return err
	}
	builder := index.BuilderFrom(idx)

	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		builder.RemoveByPath(rel)
		if f, ok := committed[rel]; ok {
			builder.Add(&index.Entry{
				Mode:  f.Mode,
				Hash:  f.Hash,
				Flags: index.DefaultFlags(len(rel)),
				Path:  rel,
			})
		}
	}

	return r.WriteIndex(builder.Build())
}
