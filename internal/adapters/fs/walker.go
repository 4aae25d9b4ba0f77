// Package fs provides file system adapters for walking, globbing, and
// hashing task input files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreScope pairs a compiled .gitignore with the directory its patterns
// are relative to.
type ignoreScope struct {
	dir string
	gi  *ignore.GitIgnore
}

// Walker enumerates files under a directory tree, respecting standard
// ignore files (.gitignore, compiled per directory and inherited by its
// descendants) in addition to the always-skipped .git and .jj control
// directories.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the absolute path of every non-ignored file under root,
// in directory-tree order.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		chains := map[string][]ignoreScope{root: loadIgnoreChain(root, nil)}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			name := d.Name()
			if d.IsDir() && (name == ".git" || name == ".jj") {
				return filepath.SkipDir
			}

			parent := filepath.Dir(path)
			chain := chains[parent]

			if d.IsDir() {
				if matchesChain(chain, path) {
					return filepath.SkipDir
				}
				chains[path] = loadIgnoreChain(path, chain)
				return nil
			}

			if matchesChain(chain, path) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// loadIgnoreChain appends dir's own .gitignore matcher (if present) to the
// inherited parent chain.
func loadIgnoreChain(dir string, parent []ignoreScope) []ignoreScope {
	chain := make([]ignoreScope, len(parent), len(parent)+1)
	copy(chain, parent)

	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err == nil && gi != nil {
		chain = append(chain, ignoreScope{dir: dir, gi: gi})
	}
	return chain
}

// matchesChain reports whether any scope in chain ignores path, evaluating
// each matcher's patterns against path relative to that matcher's own
// directory, mirroring git's per-directory .gitignore scoping.
func matchesChain(chain []ignoreScope, path string) bool {
	for _, scope := range chain {
		rel, err := filepath.Rel(scope.dir, path)
		if err != nil {
			continue
		}
		if scope.gi.MatchesPath(rel) {
			return true
		}
	}
	return false
}
