package domain

// ProjectRef identifies a project by its canonical root directory — the
// identity a project keeps even if its display name changes in
// configuration.
type ProjectRef struct {
	Root ValidPath
}

// String returns the project's workspace-relative subpath, used as its
// display form in task refs and diagnostics.
func (r ProjectRef) String() string {
	return r.Root.Sub()
}

// Equal compares two ProjectRefs by root path.
func (r ProjectRef) Equal(other ProjectRef) bool {
	return r.Root.Equal(other.Root)
}

// Less orders two ProjectRefs by root path, for deterministic iteration.
func (r ProjectRef) Less(other ProjectRef) bool {
	return r.Root.Less(other.Root)
}

// ProjectInfo is the immutable, post-load description of a project:
// its display name, canonical root, and declared project-level dependencies.
type ProjectInfo struct {
	DisplayName  string
	Root         ValidPath
	Dependencies []ProjectRef
}

// Ref returns the ProjectRef identifying this project.
func (p ProjectInfo) Ref() ProjectRef {
	return ProjectRef{Root: p.Root}
}
