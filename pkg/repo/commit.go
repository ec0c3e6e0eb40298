package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gritvcs/grit/pkg/object"
)

// Signer produces a detached signature over a commit's serialized bytes.
type Signer func(payload []byte) (string, error)

// Commit writes the staged tree as a new commit, advances the current ref
// and returns the commit hash. It refuses to create a commit identical in
// content to its parent. A non-nil signer stores a detached signature under
// .git/signatures, keyed by the commit hash, leaving the commit encoding
// itself untouched.
func (r *Repo) Commit(message string, signer Signer) (object.Hash, error) {
	if message == "" {
		return object.Hash{}, errors.New("commit: empty message")
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return object.Hash{}, err
	}

	parent, hasParent, err := r.LastCommitHash()
	if err != nil {
		return object.Hash{}, err
	}
	if !hasParent && len(idx.Entries) == 0 {
		return object.Hash{}, errors.New("commit: nothing staged")
	}

	treeHash, err := r.BuildTree(idx)
	if err != nil {
		return object.Hash{}, err
	}

	var parents []object.Hash
	if hasParent {
		parentCommit, err := r.Store.ReadCommit(parent)
		if err != nil {
			return object.Hash{}, fmt.Errorf("commit: %w", err)
		}
		if parentCommit.TreeHash == treeHash {
			return object.Hash{}, errors.New("commit: nothing staged")
		}
		parents = append(parents, parent)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Hash{}, err
	}
	ident := object.NewIdent(cfg.Identifier(), time.Now())

	commit := &object.Commit{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    ident,
		Committer: ident,
		Message:   message,
	}
	h, err := r.Store.Write(commit)
	if err != nil {
		return object.Hash{}, fmt.Errorf("commit: %w", err)
	}

	if signer != nil {
		if err := r.writeSignature(h, commit, signer); err != nil {
			return object.Hash{}, err
		}
	}

	head, err := r.Head()
	if err != nil {
		return object.Hash{}, err
	}
	if strings.HasPrefix(head, "refs/") {
		if err := r.UpdateRef(head, h); err != nil {
			return object.Hash{}, err
		}
	} else {
		// Detached HEAD: the new hash goes straight into the HEAD file.
		if err := r.writeHead(h.String()); err != nil {
			return object.Hash{}, err
		}
	}
	return h, nil
}

// writeSignature signs the commit's serialized form and stores the result
// as .git/signatures/<commit hash>.
func (r *Repo) writeSignature(h object.Hash, commit *object.Commit, signer Signer) error {
	sig, err := signer(object.Marshal(commit))
	if err != nil {
		return fmt.Errorf("commit: sign: %w", err)
	}

	dir := filepath.Join(r.GitDir, "signatures")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("commit: sign: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, h.String()), []byte(sig), 0o644); err != nil {
		return fmt.Errorf("commit: sign: %w", err)
	}
	return nil
}

// ReadSignature returns the stored detached signature for a commit, or
// ok=false when the commit was not signed.
func (r *Repo) ReadSignature(h object.Hash) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, "signatures", h.String()))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read signature: %w", err)
	}
	return string(data), true, nil
}

// writeHead atomically replaces the HEAD file.
func (r *Repo) writeHead(content string) error {
	tmp := r.headPath() + ".lock"
	f, err := acquireLock(tmp)
	if err != nil {
		return fmt.Errorf("write HEAD: lock: %w", err)
	}
	if _, err := f.WriteString(content + "\n"); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write HEAD: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write HEAD: %w", err)
	}
	if err := os.Rename(tmp, r.headPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// LogEntry pairs a commit with its hash for history listings.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// History walks from HEAD along first parents, newest first. A limit of
// zero or less means no limit.
func (r *Repo) History(limit int) ([]LogEntry, error) {
	h, ok, err := r.LastCommitHash()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var out []LogEntry
	for {
		commit, err := r.Store.ReadCommit(h)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		out = append(out, LogEntry{Hash: h, Commit: commit})
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
		if len(commit.Parents) == 0 {
			return out, nil
		}
		h = commit.Parents[0]
	}
}
