// Package resolver expands each task's declarative requires clauses into a
// concrete list of task dependencies against an already-seeded workspace
// graph (projects, project edges, and task nodes present; task edges not
// yet added).
package resolver

import (
	"go.nabs.build/nabs/internal/core/domain"
	"go.trai.ch/zerr"
)

// Declaration pairs the task a set of requires clauses belongs to with the
// clauses themselves, the input this package consumes per task.
type Declaration struct {
	Task     domain.TaskRef
	Requires []domain.RequiresClause
}

// Resolved is one task's expanded dependency list, the flat pairs
// spec.md §4.B step 4 feeds into Graph.AddTaskDependency.
type Resolved struct {
	Task         domain.TaskRef
	Dependencies []domain.TaskRef
}

// Resolve expands every declaration's requires clauses against g, returning
// one Resolved entry per declaration in input order. g must already contain
// every project and task node; it is read only, never mutated.
func Resolve(g *domain.Graph, declarations []Declaration) ([]Resolved, error) {
	out := make([]Resolved, 0, len(declarations))

	for _, decl := range declarations {
		deps, err := resolveOne(g, decl)
		if err != nil {
			return nil, err
		}
		out = append(out, Resolved{Task: decl.Task, Dependencies: deps})
	}

	return out, nil
}

func resolveOne(g *domain.Graph, decl Declaration) ([]domain.TaskRef, error) {
	project, ok := g.GetProject(decl.Task.Project)
	if !ok {
		return nil, zerr.With(domain.ErrProjectNotFound, "project", decl.Task.Project.String())
	}

	var deps []domain.TaskRef
	for _, clause := range decl.Requires {
		anchors, err := anchorSet(g, project, clause)
		if err != nil {
			return nil, err
		}

		matched, err := expandTasks(g, project, clause, anchors)
		if err != nil {
			return nil, err
		}
		deps = append(deps, matched...)
	}

	return deps, nil
}

// anchorSet resolves the projects a requires clause addresses (spec.md
// §4.C step 1) and validates relatedness (step 2).
func anchorSet(g *domain.Graph, self domain.ProjectInfo, clause domain.RequiresClause) ([]domain.ProjectInfo, error) {
	target := clause.ResolvedTarget()

	switch target.Kind {
	case domain.CurrentProject:
		return []domain.ProjectInfo{self}, nil

	case domain.DependenciesOfCurrent:
		deps := make([]domain.ProjectInfo, 0, len(self.Dependencies))
		for _, ref := range self.Dependencies {
			info, ok := g.GetProject(ref)
			if !ok {
				return nil, zerr.With(domain.ErrProjectNotFound, "project", ref.String())
			}
			deps = append(deps, info)
		}
		return deps, nil

	case domain.SpecificDependencyByName:
		info, ok := findProjectByName(g, target.Name)
		if !ok {
			return nil, zerr.With(domain.ErrUnknownProjectByName, "name", target.Name, "task", clause.TaskName.Value)
		}
		if !related(g, self.Ref(), info.Ref()) {
			return nil, zerr.With(domain.ErrRequiredFromUnrelatedProject, "project", info.DisplayName, "task", clause.TaskName.Value)
		}
		return []domain.ProjectInfo{info}, nil

	case domain.SpecificDependencyByPath:
		info, ok := findProjectByPath(g, target.Path)
		if !ok {
			return nil, zerr.With(domain.ErrUnknownProjectByPath, "path", target.Path, "task", clause.TaskName.Value)
		}
		if !related(g, self.Ref(), info.Ref()) {
			return nil, zerr.With(domain.ErrRequiredFromUnrelatedProject, "project", info.DisplayName, "task", clause.TaskName.Value)
		}
		return []domain.ProjectInfo{info}, nil
	}

	return []domain.ProjectInfo{self}, nil
}

func related(g *domain.Graph, self, candidate domain.ProjectRef) bool {
	return g.HasProjectDependency(self, candidate)
}

func findProjectByName(g *domain.Graph, name string) (domain.ProjectInfo, bool) {
	for _, ref := range g.Projects() {
		info, ok := g.GetProject(ref)
		if ok && info.DisplayName == name {
			return info, true
		}
	}
	return domain.ProjectInfo{}, false
}

func findProjectByPath(g *domain.Graph, path string) (domain.ProjectInfo, bool) {
	for _, ref := range g.Projects() {
		info, ok := g.GetProject(ref)
		if ok && info.Root.Sub() == path {
			return info, true
		}
	}
	return domain.ProjectInfo{}, false
}

// expandTasks looks up clause.TaskName in every anchor project (spec.md
// §4.C step 3).
func expandTasks(g *domain.Graph, self domain.ProjectInfo, clause domain.RequiresClause, anchors []domain.ProjectInfo) ([]domain.TaskRef, error) {
	name := clause.TaskName.Value

	var matched []domain.TaskRef
	for _, anchor := range anchors {
		ref := domain.TaskRef{Project: anchor.Ref(), Name: name}
		if _, ok := g.GetTask(ref); ok {
			matched = append(matched, ref)
		}
	}

	if len(matched) == 0 {
		if clause.Target == nil {
			return nil, zerr.With(domain.ErrNoMatchingTasksImplicitSelf, "task", name, "project", self.DisplayName)
		}
		return nil, zerr.With(domain.ErrNoMatchingTasks, "task", name)
	}

	return matched, nil
}
