package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

// Status classifies how a path changed.
type Status int

const (
	StatusUnchanged Status = iota
	StatusNew
	StatusModified
	StatusDeleted
	StatusMoved
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusNew:
		return "new file"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusMoved:
		return "moved"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StageStatus says where a change sits relative to the index: already
// staged, tracked but not staged, or not tracked at all.
type StageStatus int

const (
	StageCommit StageStatus = iota
	StageNotCommit
	StageUntracked
)

func (s StageStatus) String() string {
	switch s {
	case StageCommit:
		return "staged"
	case StageNotCommit:
		return "not staged"
	case StageUntracked:
		return "untracked"
	}
	return fmt.Sprintf("StageStatus(%d)", int(s))
}

// FileStatus is one line of status output. MovedFrom is set only when
// Status is StatusMoved.
type FileStatus struct {
	Path      string
	MovedFrom string
	Status    Status
	Stage     StageStatus
}

// indexState is what the reconciler needs from one index entry.
type indexState struct {
	hash  object.Hash
	cache index.Cache
}

// workFile is one file found in the working tree.
type workFile struct {
	path  string // repo-relative, slash-separated
	abs   string
	cache index.Cache
}

// lazyHash hashes a working-tree file at most once, on first demand. Files
// whose stat metadata matches the index are classified without ever reading
// their content.
type lazyHash struct {
	abs  string
	done bool
	hash object.Hash
}

func (l *lazyHash) get() (object.Hash, error) {
	if l.done {
		return l.hash, nil
	}
	data, err := os.ReadFile(l.abs)
	if err != nil {
		return object.Hash{}, err
	}
	l.hash = object.ComputeHash(object.Marshal(&object.Blob{Data: data}))
	l.done = true
	return l.hash, nil
}

// movedCandidate is a tracked path with no counterpart in the last commit.
// Its content hash might match a path that disappeared, turning a
// delete+create pair into a move. Untracked files never become candidates.
type movedCandidate struct {
	path    string
	stage   StageStatus
	claimed bool
}

// Status reconciles the last commit, the index and the working tree into a
// per-path report, sorted by path.
func (r *Repo) Status() ([]FileStatus, error) {
	committed, err := r.commitData()
	if err != nil {
		return nil, err
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, err
	}
	staged := make(map[string]indexState, len(idx.Entries))
	for _, e := range idx.Entries {
		staged[e.Path] = indexState{hash: e.Hash, cache: e.Cache()}
	}

	work, err := r.workingTreeFiles()
	if err != nil {
		return nil, err
	}

	out, err := reconcile(committed, staged, work)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// reconcile is the single pass over the working tree plus two cleanup
// passes. Paths are consumed from the committed and staged maps as they are
// matched; whatever remains afterwards is gone from the working tree or the
// index respectively. Any failure to hash a file aborts the whole report
// rather than guessing at a classification.
func reconcile(committed map[string]object.Hash, staged map[string]indexState, work []workFile) ([]FileStatus, error) {
	var out []FileStatus
	moved := make(map[object.Hash]*movedCandidate)

	for _, w := range work {
		lh := lazyHash{abs: w.abs}

		st, inIndex := staged[w.path]
		if !inIndex {
			// Untracked files never become move candidates, but they still
			// consume their committed counterpart so a path is reported once.
			commitHash, inCommit := committed[w.path]
			if !inCommit {
				out = append(out, FileStatus{Path: w.path, Status: StatusNew, Stage: StageUntracked})
				continue
			}
			delete(committed, w.path)
			h, err := lh.get()
			if err != nil {
				return nil, fmt.Errorf("status: hash %q: %w", w.path, err)
			}
			status := StatusModified
			if h == commitHash {
				status = StatusUnchanged
			}
			out = append(out, FileStatus{Path: w.path, Status: status, Stage: StageUntracked})
			continue
		}
		delete(staged, w.path)

		// When the loose cache matches, the index hash stands in for the
		// content hash and the file is never read.
		contentHash := st.hash
		matchesIndex := w.cache.MatchesLoose(st.cache)
		if !matchesIndex {
			h, err := lh.get()
			if err != nil {
				return nil, fmt.Errorf("status: hash %q: %w", w.path, err)
			}
			contentHash = h
			matchesIndex = h == st.hash
		}
		stage := StageCommit
		if !matchesIndex {
			stage = StageNotCommit
		}

		commitHash, inCommit := committed[w.path]
		if !inCommit {
			// Tracked but absent from the commit; defer in case it is one
			// half of a move. Last write wins when paths share content.
			moved[contentHash] = &movedCandidate{path: w.path, stage: stage}
			continue
		}
		delete(committed, w.path)

		if contentHash == commitHash {
			out = append(out, FileStatus{Path: w.path, Status: StatusUnchanged, Stage: stage})
		} else {
			out = append(out, FileStatus{Path: w.path, Status: StatusModified, Stage: stage})
		}
	}

	// Index entries with no working-tree file: deleted from disk but still
	// staged, or the old half of a move whose new path is tracked.
	for path, st := range staged {
		delete(committed, path)
		if cand, ok := moved[st.hash]; ok && !cand.claimed {
			cand.claimed = true
			out = append(out, FileStatus{Path: cand.path, MovedFrom: path, Status: StatusMoved, Stage: StageNotCommit})
			continue
		}
		out = append(out, FileStatus{Path: path, Status: StatusDeleted, Stage: StageNotCommit})
	}

	// Committed paths consumed by nothing above were removed from the index:
	// a staged deletion, or a staged move when a staged addition matches.
	for path, h := range committed {
		if cand, ok := moved[h]; ok && !cand.claimed {
			cand.claimed = true
			out = append(out, FileStatus{Path: cand.path, MovedFrom: path, Status: StatusMoved, Stage: StageCommit})
			continue
		}
		out = append(out, FileStatus{Path: path, Status: StatusDeleted, Stage: StageCommit})
	}

	for _, cand := range moved {
		if !cand.claimed {
			out = append(out, FileStatus{Path: cand.path, Status: StatusNew, Stage: cand.stage})
		}
	}
	return out, nil
}

// commitData flattens the HEAD commit's tree into path to hash. An
// unborn branch yields an empty map.
func (r *Repo) commitData() (map[string]object.Hash, error) {
	h, ok, err := r.LastCommitHash()
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]object.Hash{}, nil
	}

	commit, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	files, err := r.FlattenTree(commit.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	out := make(map[string]object.Hash, len(files))
	for _, f := range files {
		out[f.Path] = f.Hash
	}
	return out, nil
}

// workingTreeFiles stats every non-ignored file under the repository root.
func (r *Repo) workingTreeFiles() ([]workFile, error) {
	paths, err := r.walkFiles(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	out := make([]workFile, 0, len(paths))
	for _, rel := range paths {
		abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("status: stat %q: %w", rel, err)
		}
		out = append(out, workFile{path: rel, abs: abs, cache: cacheFromInfo(info)})
	}
	return out, nil
}
