package config

import "gopkg.in/yaml.v3"

// WorkspaceDocument is the root manifest marking a directory as a workspace
// root (spec.md §6, "workspace" document kind).
type WorkspaceDocument struct {
	Name         string   `yaml:"name"`
	ProjectPaths []string `yaml:"project_paths"`
}

// ProjectDocument describes one project: its display name, its project-level
// dependencies, and its task block (spec.md §6, "project" document kind).
type ProjectDocument struct {
	Name         string             `yaml:"name"`
	Dependencies DependenciesBlock  `yaml:"dependencies"`
	Tasks        TaskBlockDocument  `yaml:"tasks"`
}

// DependenciesBlock lists the other projects this project depends on, each
// either absolute-from-root ("/foo/bar") or relative to the project file.
type DependenciesBlock struct {
	Projects []string `yaml:"projects"`
}

// TaskBlockDocument is spec.md §6's "task block" document kind: an inline
// task list plus paths to further task-block documents to merge in. Imports
// are relative to the file the TaskBlockDocument was parsed from.
type TaskBlockDocument struct {
	Imports []string  `yaml:"imports"`
	Tasks   []TaskDoc `yaml:"tasks"`
}

// TaskDoc is one task declaration.
type TaskDoc struct {
	Name     string        `yaml:"name"`
	Commands []string      `yaml:"commands"`
	Requires []RequireDoc  `yaml:"requires"`
	Inputs   InputsDoc     `yaml:"inputs"`
}

// InputsDoc mirrors domain.TaskInputs on the wire.
type InputsDoc struct {
	Paths    []string `yaml:"paths"`
	EnvVars  []string `yaml:"env_vars"`
	Commands []string `yaml:"commands"`
}

// RequireDoc is one requires clause. It captures the YAML node's line number
// at decode time so the resolved domain.RequiresClause can carry a
// diagnostic-friendly location; yaml.v3 does not expose byte offsets, only
// line/column, so Spanned.Start/End here are line numbers, not byte ranges
// (see DESIGN.md Open Questions).
type RequireDoc struct {
	Task   string     `yaml:"task"`
	Target *TargetDoc `yaml:"target"`
	line   int
}

// UnmarshalYAML decodes a RequireDoc while recording its source line.
func (r *RequireDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain RequireDoc
	var tmp plain
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*r = RequireDoc(tmp)
	r.line = node.Line
	return nil
}

// TargetDoc is the wire shape of a TargetSelector: Kind selects which of
// Name/Path is meaningful.
type TargetDoc struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

const (
	targetKindCurrentProject       = "current_project"
	targetKindDependenciesOfCurrent = "dependencies_of_current"
	targetKindByName                = "by_name"
	targetKindByPath                = "by_path"
)
