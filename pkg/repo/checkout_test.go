package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readWorkFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCheckoutDetachedAndBack(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "version one\n")
	addAll(t, r)
	first := mustCommit(t, r, "first")

	writeFile(t, r, "a.txt", "a longer version two\n")
	addAll(t, r)
	mustCommit(t, r, "second")

	if err := r.Checkout(first.String()); err != nil {
		t.Fatal(err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "version one\n" {
		t.Fatalf("a.txt = %q after detach", got)
	}
	head, err := r.Head()
	if err != nil {
		t.Fatal(err)
	}
	if head != first.String() {
		t.Fatalf("HEAD = %q, want detached at %s", head, first)
	}

	// The working tree must be clean right after checkout.
	for _, s := range mustStatus(t, r) {
		if s.Status != StatusUnchanged {
			t.Errorf("%s: status %s after checkout", s.Path, s.Status)
		}
	}

	if err := r.Checkout("main"); err != nil {
		t.Fatal(err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "a longer version two\n" {
		t.Fatalf("a.txt = %q after returning to main", got)
	}
	if branch, err := r.CurrentBranch(); err != nil || branch != "main" {
		t.Fatalf("branch = %q, %v", branch, err)
	}
}

func TestCheckoutRefusesDirtyTree(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "one\n")
	addAll(t, r)
	first := mustCommit(t, r, "first")

	writeFile(t, r, "a.txt", "uncommitted edit\n")

	err := r.Checkout(first.String())
	if !errors.Is(err, ErrDirtyWorkingTree) {
		t.Fatalf("got %v, want ErrDirtyWorkingTree", err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "uncommitted edit\n" {
		t.Fatalf("refused checkout still modified the file: %q", got)
	}
}

func TestCheckoutPreservesUntracked(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "one\n")
	addAll(t, r)
	first := mustCommit(t, r, "first")

	writeFile(t, r, "a.txt", "two two\n")
	addAll(t, r)
	mustCommit(t, r, "second")

	writeFile(t, r, "notes.txt", "untracked scratch file\n")

	if err := r.Checkout(first.String()); err != nil {
		t.Fatal(err)
	}
	if got := readWorkFile(t, r, "notes.txt"); got != "untracked scratch file\n" {
		t.Fatalf("untracked file changed: %q", got)
	}
}

func TestCheckoutRemovesFilesAndEmptyDirs(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "one\n")
	addAll(t, r)
	first := mustCommit(t, r, "first")

	writeFile(t, r, "deep/nested/b.txt", "later\n")
	addAll(t, r)
	mustCommit(t, r, "second")

	if err := r.Checkout(first.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(r.RootDir, "deep")); !os.IsNotExist(err) {
		t.Fatalf("deep/ still present: %v", err)
	}
}

func TestCheckoutUnknownTarget(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "one\n")
	addAll(t, r)
	mustCommit(t, r, "first")

	if err := r.Checkout("no-such-branch"); err == nil {
		t.Fatal("checkout of unknown target succeeded")
	}
}
