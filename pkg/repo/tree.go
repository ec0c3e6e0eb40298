package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gritvcs/grit/pkg/index"
	"github.com/gritvcs/grit/pkg/object"
)

// treeBuilder assembles the nested tree objects for one directory level.
// Index paths are flat; routing each path on its first segment builds the
// hierarchy, and a post-order write assigns child hashes before parents.
type treeBuilder struct {
	entries  []object.TreeEntry
	subtrees map[string]*treeBuilder
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{subtrees: make(map[string]*treeBuilder)}
}

func (tb *treeBuilder) add(mode uint32, path string, h object.Hash) {
	name, rest, nested := strings.Cut(path, "/")
	if !nested {
		tb.entries = append(tb.entries, object.TreeEntry{Mode: mode, Path: name, Hash: h})
		return
	}
	sub, ok := tb.subtrees[name]
	if !ok {
		sub = newTreeBuilder()
		tb.subtrees[name] = sub
	}
	sub.add(mode, rest, h)
}

// buildAndWrite writes this level's subtrees, then the level itself, to the
// store. All hashing goes through the store so a tree hash always refers to
// a persisted object.
func (tb *treeBuilder) buildAndWrite(store *object.Store) (object.Hash, error) {
	entries := make([]object.TreeEntry, len(tb.entries))
	copy(entries, tb.entries)

	for name, sub := range tb.subtrees {
		h, err := sub.buildAndWrite(store)
		if err != nil {
			return object.Hash{}, err
		}
		entries = append(entries, object.TreeEntry{Mode: object.ModeDir, Path: name, Hash: h})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	return store.Write(&object.Tree{Entries: entries})
}

// BuildTree converts the index into a hierarchy of tree objects, writes
// every level to the store and returns the root tree hash. An empty index
// yields the empty tree.
func (r *Repo) BuildTree(idx *index.Index) (object.Hash, error) {
	root := newTreeBuilder()
	for _, e := range idx.Entries {
		root.add(e.Mode, e.Path, e.Hash)
	}
	h, err := root.buildAndWrite(r.Store)
	if err != nil {
		return object.Hash{}, fmt.Errorf("build tree: %w", err)
	}
	return h, nil
}

// TreeFile is one file reachable from a tree, with its full path from the
// tree root.
type TreeFile struct {
	Path string
	Mode uint32
	Hash object.Hash
}

// FlattenTree walks the tree at h and returns every file beneath it with
// slash-joined paths, in tree order.
func (r *Repo) FlattenTree(h object.Hash) ([]TreeFile, error) {
	return r.flattenTree(h, "")
}

func (r *Repo) flattenTree(h object.Hash, prefix string) ([]TreeFile, error) {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree %s: %w", h, err)
	}

	var out []TreeFile
	for _, e := range tree.Entries {
		path := e.Path
		if prefix != "" {
			path = prefix + "/" + e.Path
		}
		if object.IsDirMode(e.Mode) {
			sub, err := r.flattenTree(e.Hash, path)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		out = append(out, TreeFile{Path: path, Mode: e.Mode, Hash: e.Hash})
	}
	return out, nil
}
