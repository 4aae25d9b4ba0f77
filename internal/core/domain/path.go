package domain

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// WorkspaceRoot is an absolute, canonicalised directory that every other
// path in a workspace is expressed relative to.
type WorkspaceRoot struct {
	abs string // always ends with filepath.Separator
}

// NewWorkspaceRoot canonicalises dir (resolving symlinks) and returns a
// WorkspaceRoot rooted there.
func NewWorkspaceRoot(dir string) (WorkspaceRoot, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return WorkspaceRoot{}, zerr.With(zerr.Wrap(err, ErrInvalidWorkspaceRoot.Error()), "path", dir)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return WorkspaceRoot{}, zerr.With(zerr.Wrap(err, ErrInvalidWorkspaceRoot.Error()), "path", abs)
	}

	return WorkspaceRoot{abs: withTrailingSeparator(resolved)}, nil
}

func withTrailingSeparator(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}

// String returns the canonical absolute directory, with trailing separator.
func (w WorkspaceRoot) String() string {
	return w.abs
}

// Subpath builds an unvalidated RelativePath rooted at w from a caller
// supplied string. A leading separator restarts resolution from the root
// instead of appending. A subpath that climbs above the root via ".." is
// recorded as escaped and later rejected by Validate, rather than silently
// clamped to the root.
func (w WorkspaceRoot) Subpath(s string) RelativePath {
	sub, escaped := normalizeSubpath(".", s)
	return RelativePath{root: w, sub: sub, escaped: escaped}
}

// normalizeSubpath joins s onto the already-resolved subpath base and
// reports whether the result climbs above the workspace root (any leading
// ".." segment after Clean).
func normalizeSubpath(base, s string) (string, bool) {
	s = strings.TrimPrefix(s, string(filepath.Separator))
	joined := filepath.Clean(filepath.Join(base, s))
	if joined == ".." || strings.HasPrefix(joined, ".."+string(filepath.Separator)) {
		return "", true
	}
	return joined, false
}

// RelativePath is a path expressed relative to a WorkspaceRoot that has not
// been checked for existence. Use Validate to turn it into a ValidPath once
// the target is expected to exist.
type RelativePath struct {
	root    WorkspaceRoot
	sub     string // cleaned, relative, "." for the root itself
	escaped bool   // true if this path was built from a subpath that climbed above root
}

// Join appends s to the relative path, following the same absolute-restart
// and containment rules as WorkspaceRoot.Subpath.
func (p RelativePath) Join(s string) RelativePath {
	if filepath.IsAbs(s) {
		return p.root.Subpath(s)
	}
	sub, escaped := normalizeSubpath(p.sub, s)
	return RelativePath{root: p.root, sub: sub, escaped: p.escaped || escaped}
}

// Sub returns the cleaned relative subpath text.
func (p RelativePath) Sub() string {
	return p.sub
}

// FullPath returns the absolute path, without checking it exists or is
// contained within the workspace root.
func (p RelativePath) FullPath() string {
	return filepath.Join(p.root.abs, p.sub)
}

// Root returns the owning workspace root.
func (p RelativePath) Root() WorkspaceRoot {
	return p.root
}

// Validate checks that the joined absolute path exists and, after resolving
// symlinks, is still contained within the workspace root. A symlink that
// escapes the root is rejected with ErrPathNotInWorkspace.
func (p RelativePath) Validate() (ValidPath, error) {
	if p.escaped {
		return ValidPath{}, zerr.With(ErrPathNotInWorkspace, "path", p.sub)
	}

	full := p.FullPath()

	if _, err := os.Stat(full); err != nil {
		return ValidPath{}, zerr.With(zerr.Wrap(err, ErrPathNotFound.Error()), "path", full)
	}

	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return ValidPath{}, zerr.With(zerr.Wrap(err, ErrPathNotFound.Error()), "path", full)
	}

	if !isWithinRoot(resolved, p.root.abs) {
		return ValidPath{}, zerr.With(ErrPathNotInWorkspace, "path", full)
	}

	return ValidPath{RelativePath: p}, nil
}

func isWithinRoot(resolved, root string) bool {
	resolved = withTrailingSeparator(resolved)
	return resolved == root || strings.HasPrefix(resolved, root)
}

// ValidPath is a RelativePath that has been confirmed to exist and to be
// contained within its workspace root at validation time. Less and Equal
// compare the subpath only; as a map key (==) the workspace root is
// compared as well.
type ValidPath struct {
	RelativePath
}

// Join returns an (unvalidated) RelativePath for a child of p.
func (p ValidPath) Join(s string) RelativePath {
	return p.RelativePath.Join(s)
}

// Parent returns the validated parent of p, or false if p is the workspace
// root itself.
func (p ValidPath) Parent() (ValidPath, bool) {
	if p.sub == "." {
		return ValidPath{}, false
	}
	parentSub := filepath.Dir(p.sub)
	parent := RelativePath{root: p.root, sub: parentSub}
	valid, err := parent.Validate()
	if err != nil {
		return ValidPath{}, false
	}
	return valid, true
}

// Less orders two ValidPaths lexicographically by subpath, for deterministic
// iteration over sets of paths.
func (p ValidPath) Less(other ValidPath) bool {
	return p.sub < other.sub
}

// Equal compares two ValidPaths by subpath only.
func (p ValidPath) Equal(other ValidPath) bool {
	return p.sub == other.sub
}
