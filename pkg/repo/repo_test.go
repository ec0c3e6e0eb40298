package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gritvcs/grit/pkg/object"
)

func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func removeFile(t *testing.T, r *Repo, rel string) {
	t.Helper()
	if err := os.Remove(filepath.Join(r.RootDir, filepath.FromSlash(rel))); err != nil {
		t.Fatal(err)
	}
}

func renameFile(t *testing.T, r *Repo, from, to string) {
	t.Helper()
	absFrom := filepath.Join(r.RootDir, filepath.FromSlash(from))
	absTo := filepath.Join(r.RootDir, filepath.FromSlash(to))
	if err := os.Rename(absFrom, absTo); err != nil {
		t.Fatal(err)
	}
}

// addAll stages the whole working tree.
func addAll(t *testing.T, r *Repo) {
	t.Helper()
	if err := r.Add([]string{r.RootDir}); err != nil {
		t.Fatal(err)
	}
}

func mustCommit(t *testing.T, r *Repo, msg string) object.Hash {
	t.Helper()
	h, err := r.Commit(msg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func blobHash(content string) object.Hash {
	return object.ComputeHash(object.Marshal(&object.Blob{Data: []byte(content)}))
}
