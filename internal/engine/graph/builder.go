// Package graph builds the validated workspace graph (spec.md §4.B) out of
// the project and task declarations a configuration loader discovers,
// running the requires resolver over the task layer before sealing the
// graph with a cycle check.
package graph

import (
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// TaskDecl is one task declaration discovered by a configuration loader,
// still carrying unresolved requires clauses.
type TaskDecl struct {
	Name     string
	Commands []string
	Inputs   domain.TaskInputs
	Requires []domain.RequiresClause
}

// ProjectDecl is one project discovered by a configuration loader: its
// already-validated root, the workspace-relative subpaths of its declared
// project dependencies, and its tasks.
type ProjectDecl struct {
	Name               string
	Root               domain.ValidPath
	DependencySubpaths []string
	Tasks              []TaskDecl
}

// Build assembles a validated domain.Graph from root and decls, running the
// four phases of spec.md §4.B: seed project nodes, add project edges, seed
// task nodes, then add task edges from the requires resolver's output.
func Build(root domain.WorkspaceRoot, decls []ProjectDecl) (*domain.Graph, error) {
	g := domain.NewGraph(root)

	bySubpath := make(map[string]domain.ProjectRef, len(decls))
	for _, decl := range decls {
		bySubpath[decl.Root.Sub()] = domain.ProjectRef{Root: decl.Root}
	}

	// Phase 1: seed project nodes, with dependency refs resolved up front
	// so ProjectInfo.Dependencies is populated at AddProject time.
	for _, decl := range decls {
		deps := make([]domain.ProjectRef, 0, len(decl.DependencySubpaths))
		for _, sub := range decl.DependencySubpaths {
			ref, ok := bySubpath[sub]
			if !ok {
				return nil, zerr.With(domain.ErrUnknownProjectDependency, "path", sub, "project", decl.Name)
			}
			deps = append(deps, ref)
		}

		info := domain.ProjectInfo{DisplayName: decl.Name, Root: decl.Root, Dependencies: deps}
		if err := g.AddProject(info); err != nil {
			return nil, err
		}
	}

	// Phase 2: project edges.
	for _, decl := range decls {
		from := domain.ProjectRef{Root: decl.Root}
		for _, sub := range decl.DependencySubpaths {
			to := bySubpath[sub]
			if err := g.AddProjectDependency(from, to); err != nil {
				return nil, err
			}
		}
	}

	// Phase 3: task nodes.
	var declarations []resolver.Declaration
	for _, decl := range decls {
		projectRef := domain.ProjectRef{Root: decl.Root}
		for _, task := range decl.Tasks {
			info := domain.TaskInfo{
				Project:  projectRef,
				Name:     task.Name,
				Commands: task.Commands,
				Inputs:   task.Inputs,
			}
			if err := g.AddTask(info); err != nil {
				return nil, err
			}
			declarations = append(declarations, resolver.Declaration{
				Task:     info.Ref(),
				Requires: task.Requires,
			})
		}
	}

	// Phase 4: task edges, from the resolver's expansion of requires clauses.
	resolved, err := resolver.Resolve(g, declarations)
	if err != nil {
		return nil, err
	}
	for _, r := range resolved {
		for _, dep := range r.Dependencies {
			if err := g.AddTaskDependency(r.Task, dep); err != nil {
				return nil, err
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}
