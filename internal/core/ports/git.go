package ports

// GitClient isolates the read-only git subprocess calls the change oracle's
// git-diff branch needs: whether a path range has uncommitted or
// since-a-ref changes.
//
//go:generate go run go.uber.org/mock/mockgen -source=git.go -destination=mocks/mock_git.go -package=mocks
type GitClient interface {
	// IsRepo reports whether dir is inside a git working tree.
	IsRepo(dir string) bool

	// ChangedFiles returns the dir-relative paths that differ between
	// ref (e.g. "HEAD", a branch, or a commit) and the current working tree,
	// including untracked and staged-but-uncommitted files, scoped to dir and
	// excluding any path under an entry of exclusions (absolute nested
	// project roots) so a change belongs to its innermost containing
	// project, never also to an enclosing one.
	ChangedFiles(dir, ref string, exclusions []string) ([]string, error)

	// MergeBase returns the merge-base commit of ref and HEAD, the common
	// ancestor a "--since" comparison diffs against.
	MergeBase(dir, ref string) (string, error)
}
