package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gritvcs/grit/pkg/object"
)

const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// Head reads .git/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g. "refs/heads/main"). Otherwise the raw content is returned
// as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// CurrentBranch returns the name of the branch HEAD points to, or an error
// when HEAD is detached.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(head, "refs/heads/") {
		return "", fmt.Errorf("current branch: HEAD is detached at %s", head)
	}
	return strings.TrimPrefix(head, "refs/heads/"), nil
}

// LastCommitHash resolves HEAD to a commit hash. The second return value is
// false when there are no commits yet (the branch ref file does not exist).
func (r *Repo) LastCommitHash() (object.Hash, bool, error) {
	head, err := r.Head()
	if err != nil {
		return object.Hash{}, false, err
	}

	if !strings.HasPrefix(head, "refs/") {
		// Detached HEAD: the content is the hash itself.
		h, err := object.ParseHash(head)
		if err != nil {
			return object.Hash{}, false, fmt.Errorf("last commit: %w", err)
		}
		return h, true, nil
	}

	data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(head)))
	if err != nil {
		if os.IsNotExist(err) {
			return object.Hash{}, false, nil
		}
		return object.Hash{}, false, fmt.Errorf("last commit: read %q: %w", head, err)
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return object.Hash{}, false, fmt.Errorf("last commit: ref %q: %w", head, err)
	}
	return h, true, nil
}

// ResolveRef resolves a name to an object hash. "HEAD" follows the symbolic
// ref; a 40-character hex string is taken literally; "refs/..." reads that
// file; anything else tries "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if h, err := object.ParseHash(name); err == nil {
		return h, nil
	}
	if name == "HEAD" {
		h, ok, err := r.LastCommitHash()
		if err != nil {
			return object.Hash{}, err
		}
		if !ok {
			return object.Hash{}, fmt.Errorf("resolve ref HEAD: no commits yet")
		}
		return h, nil
	}

	refPath := name
	if !strings.HasPrefix(name, "refs/") {
		refPath = "refs/heads/" + name
	}

	data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(refPath)))
	if err != nil {
		return object.Hash{}, fmt.Errorf("resolve ref %q: %w", name, err)
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return object.Hash{}, fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return h, nil
}

// UpdateRef writes a hash to the named ref file under .git/ using the
// lockfile + rename pattern. Parent directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	refPath := filepath.Join(r.GitDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}

	if _, err := lockFile.WriteString(h.String() + "\n"); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		lockFile.Close()
		os.Remove(lockPath)
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}

	if err := os.Rename(lockPath, refPath); err != nil {
		os.Remove(lockPath)
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	return nil
}

// acquireLock creates lockPath exclusively, retrying for a bounded window
// when another process holds it.
func acquireLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(lockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(lockRetryDelay)
			continue
		}
		return nil, err
	}
}
