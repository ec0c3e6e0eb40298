package repo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAddStagesFiles(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "alpha\n")
	writeFile(t, r, "src/main.go", "package main\n")

	addAll(t, r)

	entries, err := r.ListFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Path != "a.txt" || entries[1].Path != "src/main.go" {
		t.Fatalf("entry order: %q, %q", entries[0].Path, entries[1].Path)
	}
	if entries[0].Hash != blobHash("alpha\n") {
		t.Fatalf("a.txt hash = %s, want %s", entries[0].Hash, blobHash("alpha\n"))
	}

	// Staged content must be retrievable from the store.
	blob, err := r.Store.ReadBlob(entries[1].Hash)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob.Data) != "package main\n" {
		t.Fatalf("stored blob = %q", blob.Data)
	}
}

func TestAddRespectsGitignore(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, ".gitignore", "ignored.txt\nbuild\n")
	writeFile(t, r, "ignored.txt", "secret\n")
	writeFile(t, r, "build/out.bin", "binary\n")
	writeFile(t, r, "kept.txt", "kept\n")

	addAll(t, r)

	entries, err := r.ListFiles()
	if err != nil {
		t.Fatal(err)
	}
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	want := []string{".gitignore", "kept.txt"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("staged paths = %v, want %v", paths, want)
	}
}

func TestAddExplicitIgnoredFile(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, ".gitignore", "ignored.txt\n")
	writeFile(t, r, "ignored.txt", "contents\n")

	if err := r.Add([]string{filepath.Join(r.RootDir, "ignored.txt")}); err != nil {
		t.Fatal(err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if idx.EntryByPath("ignored.txt") == nil {
		t.Fatal("explicitly named ignored file was not staged")
	}
}

func TestAddUnchangedKeepsIndexStable(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "stable\n")
	addAll(t, r)

	before, err := os.ReadFile(r.indexPath())
	if err != nil {
		t.Fatal(err)
	}

	addAll(t, r)

	after, err := os.ReadFile(r.indexPath())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("re-adding unchanged files rewrote index contents")
	}
}

func TestAddStagesDeletions(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	writeFile(t, r, "b.txt", "b\n")
	addAll(t, r)

	removeFile(t, r, "b.txt")
	addAll(t, r)

	entries, err := r.ListFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Path != "a.txt" {
		t.Fatalf("entries after deletion: %+v", entries)
	}
}

func TestAddMissingPathFails(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")

	if err := r.Add([]string{filepath.Join(r.RootDir, "missing.txt")}); err == nil {
		t.Fatal("adding a missing path succeeded")
	}

	// The failed add must not have written an index.
	if _, err := os.Stat(r.indexPath()); !os.IsNotExist(err) {
		t.Fatalf("index exists after failed add: %v", err)
	}
}

func TestAddOutsideRepoFails(t *testing.T) {
	r := initTestRepo(t)
	if err := r.Add([]string{filepath.Dir(r.RootDir)}); err == nil {
		t.Fatal("adding a path outside the repository succeeded")
	}
}

func TestReadIndexToleratesChecksumMismatch(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	addAll(t, r)

	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(r.indexPath(), data, 0o644); err != nil {
		t.Fatal(err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex failed on checksum mismatch: %v", err)
	}
	if len(idx.Entries) != 1 || idx.Entries[0].Path != "a.txt" {
		t.Fatalf("entries = %+v", idx.Entries)
	}
}

func TestReadIndexMissingFile(t *testing.T) {
	r := initTestRepo(t)
	idx, err := r.ReadIndex()
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Entries) != 0 {
		t.Fatalf("fresh repo index has %d entries", len(idx.Entries))
	}
}

func TestWriteIndexRemovesLock(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	addAll(t, r)

	if _, err := os.Stat(r.indexPath() + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("index.lock left behind: %v", err)
	}
}
