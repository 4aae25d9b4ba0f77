package domain

// FilterMatcherKind discriminates how a FilterSpec selects projects.
type FilterMatcherKind int

const (
	// MatchByName selects the project whose display name matches.
	MatchByName FilterMatcherKind = iota
	// MatchByPath selects the project whose canonical root matches.
	MatchByPath
)

// FilterSpec is one entry of a ProjectFilter. IncludeDependencies and
// IncludeDependents are reserved (see spec Open Questions): parsed and
// stored, but never consulted — current behaviour selects only the
// matched project(s).
type FilterSpec struct {
	Matcher             FilterMatcherKind
	Value               string
	IncludeDependencies bool
	IncludeDependents   bool
}

// ProjectFilter is an ordered list of FilterSpecs narrowing a workspace to a
// subset of projects.
type ProjectFilter []FilterSpec
