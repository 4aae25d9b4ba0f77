// Package config implements ports.ConfigLoader against YAML documents
// shaped like spec.md §6's three document kinds (workspace, project, task
// block). No KDL parsing library is grounded anywhere in the reference
// corpus (see DESIGN.md), so YAML stands in behind the same port.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.nabs.build/nabs/internal/engine/graph"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceFileName is the manifest marking a directory as a workspace root.
	WorkspaceFileName = "nabs.workspace.yaml"
	// ProjectFileName is the manifest declaring one project within a workspace.
	ProjectFileName = "nabs.project.yaml"
)

var validProjectNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader against nabs's YAML documents.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers the workspace root above cwd, parses every project it
// declares, resolves task dependencies, and returns the validated graph.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	manifestPath, err := findWorkspaceManifest(cwd)
	if err != nil {
		return nil, err
	}

	var workspaceDoc WorkspaceDocument
	if err := readYAML(manifestPath, &workspaceDoc); err != nil {
		return nil, err
	}

	workspaceDir := filepath.Dir(manifestPath)
	root, err := domain.NewWorkspaceRoot(workspaceDir)
	if err != nil {
		return nil, err
	}

	projectDirs, err := l.resolveProjectDirs(root, workspaceDoc.ProjectPaths)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	decls := make([]graph.ProjectDecl, 0, len(projectDirs))
	for _, dir := range projectDirs {
		decl, ok, err := l.loadProject(root, dir, names)
		if err != nil {
			return nil, err
		}
		if ok {
			decls = append(decls, decl)
		}
	}

	return graph.Build(root, decls)
}

func findWorkspaceManifest(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, WorkspaceFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
		}
		dir = parent
	}
}

// resolveProjectDirs expands workspaceDoc.ProjectPaths (recursive-glob
// patterns relative to the workspace root) into the directories they match,
// sorted and deduplicated for deterministic iteration.
func (l *Loader) resolveProjectDirs(root domain.WorkspaceRoot, patterns []string) ([]string, error) {
	fsys := os.DirFS(root.String())

	seen := make(map[string]struct{})
	var dirs []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigValidate.Error()), "pattern", pattern)
		}
		for _, m := range matches {
			info, err := os.Stat(filepath.Join(root.String(), m))
			if err != nil || !info.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			dirs = append(dirs, m)
		}
	}

	slices.Sort(dirs)
	return dirs, nil
}

// loadProject parses one project directory's manifest. Returns ok=false
// (not an error) when the directory has no project manifest, matching
// spec.md's glob-then-filter discovery shape.
func (l *Loader) loadProject(root domain.WorkspaceRoot, relDir string, names map[string]string) (graph.ProjectDecl, bool, error) {
	manifestPath := filepath.Join(root.String(), relDir, ProjectFileName)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		l.Logger.Warn(fmt.Sprintf("%s missing in %s, skipping", ProjectFileName, relDir))
		return graph.ProjectDecl{}, false, nil
	}

	var doc ProjectDocument
	if err := readYAML(manifestPath, &doc); err != nil {
		return graph.ProjectDecl{}, false, err
	}

	if err := validateProjectName(doc.Name, relDir); err != nil {
		return graph.ProjectDecl{}, false, err
	}
	if existing, exists := names[doc.Name]; exists {
		err := zerr.With(domain.ErrDuplicateProjectName, "project", doc.Name)
		return graph.ProjectDecl{}, false, zerr.With(err, "first", existing, "duplicate", relDir)
	}
	names[doc.Name] = relDir

	projectRoot, err := root.Subpath(relDir).Validate()
	if err != nil {
		return graph.ProjectDecl{}, false, err
	}

	deps := l.resolveDependencies(projectRoot, doc.Dependencies.Projects)

	projectDir := filepath.Dir(manifestPath)
	taskBlock, err := loadTaskBlock(doc.Tasks, projectDir)
	if err != nil {
		return graph.ProjectDecl{}, false, err
	}

	tasks := make([]graph.TaskDecl, 0, len(taskBlock.Tasks))
	for _, t := range taskBlock.Tasks {
		decl, err := convertTask(t)
		if err != nil {
			return graph.ProjectDecl{}, false, err
		}
		tasks = append(tasks, decl)
	}

	return graph.ProjectDecl{
		Name:               doc.Name,
		Root:               projectRoot,
		DependencySubpaths: deps,
		Tasks:              tasks,
	}, true, nil
}

func validateProjectName(name, relDir string) error {
	if name == "" {
		return zerr.With(domain.ErrMissingProjectName, "directory", relDir)
	}
	if !validProjectNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidProjectName, "name", name, "directory", relDir)
	}
	return nil
}

// resolveDependencies turns each declared dependency path (absolute-from-root
// or relative to the project directory) into a workspace-relative subpath
// string, using ValidPath.Join's restart-on-absolute semantics.
func (l *Loader) resolveDependencies(projectRoot domain.ValidPath, paths []string) []string {
	subpaths := make([]string, 0, len(paths))
	for _, p := range paths {
		subpaths = append(subpaths, projectRoot.Join(p).Sub())
	}
	return subpaths
}

// loadTaskBlock merges doc's inline tasks with every task block it imports
// (paths relative to dir), recursively.
func loadTaskBlock(doc TaskBlockDocument, dir string) (TaskBlockDocument, error) {
	merged := TaskBlockDocument{Tasks: append([]TaskDoc{}, doc.Tasks...)}

	for _, importPath := range doc.Imports {
		full := filepath.Join(dir, importPath)
		var imported TaskBlockDocument
		if err := readYAML(full, &imported); err != nil {
			return TaskBlockDocument{}, err
		}

		nested, err := loadTaskBlock(imported, filepath.Dir(full))
		if err != nil {
			return TaskBlockDocument{}, err
		}
		merged.Tasks = append(merged.Tasks, nested.Tasks...)
	}

	return merged, nil
}

func convertTask(t TaskDoc) (graph.TaskDecl, error) {
	if err := validateTaskName(t.Name); err != nil {
		return graph.TaskDecl{}, err
	}

	requires := make([]domain.RequiresClause, 0, len(t.Requires))
	for _, r := range t.Requires {
		clause, err := convertRequire(r)
		if err != nil {
			return graph.TaskDecl{}, err
		}
		requires = append(requires, clause)
	}

	inputs := domain.TaskInputs{
		PathGlobs:     t.Inputs.Paths,
		EnvVars:       t.Inputs.EnvVars,
		CommandInputs: t.Inputs.Commands,
	}
	if inputs.HasReservedInputs() {
		return graph.TaskDecl{}, zerr.With(domain.ErrUnsupportedInputKind, "task", t.Name)
	}

	return graph.TaskDecl{
		Name:     t.Name,
		Commands: t.Commands,
		Requires: requires,
		Inputs:   inputs,
	}, nil
}

func convertRequire(r RequireDoc) (domain.RequiresClause, error) {
	clause := domain.RequiresClause{
		TaskName: domain.Spanned[string]{Value: r.Task, Start: r.line, End: r.line},
	}

	if r.Target == nil {
		return clause, nil
	}

	selector, err := convertTarget(*r.Target)
	if err != nil {
		return domain.RequiresClause{}, err
	}
	clause.Target = &domain.Spanned[domain.TargetSelector]{Value: selector, Start: r.line, End: r.line}
	return clause, nil
}

func convertTarget(t TargetDoc) (domain.TargetSelector, error) {
	switch t.Kind {
	case "", targetKindCurrentProject:
		return domain.TargetSelector{Kind: domain.CurrentProject}, nil
	case targetKindDependenciesOfCurrent:
		return domain.TargetSelector{Kind: domain.DependenciesOfCurrent}, nil
	case targetKindByName:
		return domain.TargetSelector{Kind: domain.SpecificDependencyByName, Name: t.Name}, nil
	case targetKindByPath:
		return domain.TargetSelector{Kind: domain.SpecificDependencyByPath, Path: t.Path}, nil
	default:
		return domain.TargetSelector{}, zerr.With(domain.ErrConfigValidate, "target_kind", t.Kind)
	}
}

func validateTaskName(name string) error {
	if name == "all" {
		return zerr.With(domain.ErrReservedTaskName, "task_name", name)
	}
	if strings.Contains(name, ":") {
		err := zerr.With(domain.ErrInvalidTaskName, "invalid_character", ":")
		return zerr.With(err, "task_name", name)
	}
	return nil
}

func readYAML[T any](path string, target *T) error {
	//nolint:gosec // path is derived from workspace-relative discovery, not raw user input
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigRead.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParse.Error()), "path", path)
	}
	return nil
}
