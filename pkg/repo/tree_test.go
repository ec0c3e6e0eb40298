package repo

import (
	"testing"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

func indexWith(paths ...string) *index.Index {
	b := index.NewBuilder()
	for _, p := range paths {
		b.Add(&index.Entry{
			Mode:  object.ModeFile,
			Hash:  object.ComputeHash([]byte(p)),
			Flags: index.DefaultFlags(len(p)),
			Path:  p,
		})
	}
	return b.Build()
}

func TestBuildTreeFlattenRoundTrip(t *testing.T) {
	r := initTestRepo(t)
	idx := indexWith("a.txt", "src/main.go", "src/utils/helper.go")

	root, err := r.BuildTree(idx)
	if err != nil {
		t.Fatal(err)
	}

	files, err := r.FlattenTree(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	want := []string{"a.txt", "src/main.go", "src/utils/helper.go"}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("file %d = %q, want %q", i, f.Path, want[i])
		}
		if f.Hash != object.ComputeHash([]byte(want[i])) {
			t.Errorf("file %q has wrong hash", f.Path)
		}
		if f.Mode != object.ModeFile {
			t.Errorf("file %q mode = %o", f.Path, f.Mode)
		}
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	r := initTestRepo(t)

	h1, err := r.BuildTree(indexWith("b.txt", "a.txt", "dir/c.txt"))
	if err != nil {
		t.Fatal(err)
	}
	h2, err := r.BuildTree(indexWith("dir/c.txt", "a.txt", "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("tree hash depends on entry order: %s vs %s", h1, h2)
	}
}

func TestBuildTreeEmptyIndex(t *testing.T) {
	r := initTestRepo(t)

	h, err := r.BuildTree(index.New())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := h.String(), "4b825dc642cb6eb9a060e54bf8d69288fbee4904"; got != want {
		t.Fatalf("empty tree hash = %s, want %s", got, want)
	}
}

func TestBuildTreeWritesSubtrees(t *testing.T) {
	r := initTestRepo(t)

	root, err := r.BuildTree(indexWith("src/main.go"))
	if err != nil {
		t.Fatal(err)
	}

	tree, err := r.Store.ReadTree(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Entries) != 1 || tree.Entries[0].Path != "src" {
		t.Fatalf("root entries = %+v", tree.Entries)
	}
	if !object.IsDirMode(tree.Entries[0].Mode) {
		t.Fatalf("src mode = %o, want directory", tree.Entries[0].Mode)
	}

	sub, err := r.Store.ReadTree(tree.Entries[0].Hash)
	if err != nil {
		t.Fatal(err)
	}
	if len(sub.Entries) != 1 || sub.Entries[0].Path != "main.go" {
		t.Fatalf("subtree entries = %+v", sub.Entries)
	}
}
