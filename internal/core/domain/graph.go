// Package domain contains the core domain models and business logic for the workspace task graph.
package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Graph is the tagged two-layer DAG over a workspace: one Root, one node per
// project, one node per task. Edges are not modelled as a separate type;
// each layer keeps its own adjacency maps, queried through the methods
// below. Project nodes hang off the root via HasProject; task nodes hang
// off their declaring project via HasTask; ProjectDependsOn /
// ProjectDependedOnBy and TaskDependsOn / TaskDependedOnBy link within a
// layer.
type Graph struct {
	root WorkspaceRoot

	projects     map[ProjectRef]ProjectInfo
	projectOrder []ProjectRef // insertion order, for deterministic iteration

	projectDeps     map[ProjectRef][]ProjectRef // ProjectDependsOn
	projectDepdntOn map[ProjectRef][]ProjectRef // ProjectDependedOnBy

	tasks     map[TaskRef]TaskInfo
	taskOrder []TaskRef

	taskDeps     map[TaskRef][]TaskRef // TaskDependsOn
	taskDepdntOn map[TaskRef][]TaskRef // TaskDependedOnBy

	taskTopo []TaskRef // populated by Validate
}

// NewGraph creates an empty Graph rooted at root.
func NewGraph(root WorkspaceRoot) *Graph {
	return &Graph{
		root:            root,
		projects:        make(map[ProjectRef]ProjectInfo),
		projectDeps:     make(map[ProjectRef][]ProjectRef),
		projectDepdntOn: make(map[ProjectRef][]ProjectRef),
		tasks:           make(map[TaskRef]TaskInfo),
		taskDeps:        make(map[TaskRef][]TaskRef),
		taskDepdntOn:    make(map[TaskRef][]TaskRef),
	}
}

// Root returns the workspace root this graph was built against.
func (g *Graph) Root() WorkspaceRoot {
	return g.root
}

// AddProject adds a Root->Project (HasProject) node. Returns
// ErrProjectAlreadyExists if a project with the same root was already added.
func (g *Graph) AddProject(p ProjectInfo) error {
	ref := p.Ref()
	if _, exists := g.projects[ref]; exists {
		return zerr.With(ErrProjectAlreadyExists, "project", ref.String())
	}
	g.projects[ref] = p
	g.projectOrder = append(g.projectOrder, ref)
	return nil
}

// AddProjectDependency adds a ProjectDependsOn edge (and its inverse
// ProjectDependedOnBy edge) from -> to. Both refs must already have been
// added via AddProject. Self-loops collapse to no edge.
func (g *Graph) AddProjectDependency(from, to ProjectRef) error {
	if _, ok := g.projects[from]; !ok {
		return zerr.With(ErrProjectNotFound, "project", from.String())
	}
	if _, ok := g.projects[to]; !ok {
		return zerr.With(ErrUnknownProjectDependency, "project", to.String())
	}
	if from.Equal(to) {
		return nil
	}
	g.projectDeps[from] = append(g.projectDeps[from], to)
	g.projectDepdntOn[to] = append(g.projectDepdntOn[to], from)
	return nil
}

// AddTask adds a Project->Task (HasTask) node. Returns ErrTaskAlreadyExists
// if a task with the same project+name was already added.
func (g *Graph) AddTask(t TaskInfo) error {
	ref := t.Ref()
	if _, exists := g.tasks[ref]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task", ref.String())
	}
	if _, ok := g.projects[t.Project]; !ok {
		return zerr.With(ErrProjectNotFound, "project", t.Project.String())
	}
	g.tasks[ref] = t
	g.taskOrder = append(g.taskOrder, ref)
	return nil
}

// AddTaskDependency adds a TaskDependsOn edge (and its inverse
// TaskDependedOnBy edge) from -> to. Self-loops collapse to no edge.
func (g *Graph) AddTaskDependency(from, to TaskRef) error {
	if _, ok := g.tasks[from]; !ok {
		return zerr.With(ErrTaskNotFound, "task", from.String())
	}
	if _, ok := g.tasks[to]; !ok {
		return zerr.With(ErrMissingDependency, "task", to.String())
	}
	if from.Equal(to) {
		return nil
	}
	g.taskDeps[from] = append(g.taskDeps[from], to)
	g.taskDepdntOn[to] = append(g.taskDepdntOn[to], from)
	return nil
}

// GetProject looks up a project by reference.
func (g *Graph) GetProject(ref ProjectRef) (ProjectInfo, bool) {
	p, ok := g.projects[ref]
	return p, ok
}

// GetTask looks up a task by reference.
func (g *Graph) GetTask(ref TaskRef) (TaskInfo, bool) {
	t, ok := g.tasks[ref]
	return t, ok
}

// ProjectCount returns the number of project nodes.
func (g *Graph) ProjectCount() int {
	return len(g.projects)
}

// TaskCount returns the number of task nodes.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Projects returns every project ref, in insertion order.
func (g *Graph) Projects() []ProjectRef {
	out := make([]ProjectRef, len(g.projectOrder))
	copy(out, g.projectOrder)
	return out
}

// ProjectTasks returns the outgoing HasTask neighbours of p: every task
// declared directly by project p, in insertion order.
func (g *Graph) ProjectTasks(p ProjectRef) []TaskRef {
	var out []TaskRef
	for _, ref := range g.taskOrder {
		if ref.Project.Equal(p) {
			out = append(out, ref)
		}
	}
	return out
}

// DirectTaskDependencies returns the outgoing TaskDependsOn neighbours of t.
func (g *Graph) DirectTaskDependencies(t TaskRef) []TaskRef {
	return g.taskDeps[t]
}

// TaskDependents returns the tasks that directly depend on t
// (TaskDependedOnBy).
func (g *Graph) TaskDependents(t TaskRef) []TaskRef {
	return g.taskDepdntOn[t]
}

// WalkTaskDependencies returns the forward transitive closure of t's task
// dependencies via TaskDependsOn, excluding t itself.
func (g *Graph) WalkTaskDependencies(t TaskRef) []TaskRef {
	visited := make(map[TaskRef]bool)
	var order []TaskRef
	var visit func(TaskRef)
	visit = func(cur TaskRef) {
		for _, dep := range g.taskDeps[cur] {
			if !visited[dep] {
				visited[dep] = true
				order = append(order, dep)
				visit(dep)
			}
		}
	}
	visit(t)
	return order
}

// WalkProjectDependents returns the reverse transitive closure of p's
// project dependents via ProjectDependedOnBy, excluding p itself.
func (g *Graph) WalkProjectDependents(p ProjectRef) []ProjectRef {
	visited := make(map[ProjectRef]bool)
	var order []ProjectRef
	var visit func(ProjectRef)
	visit = func(cur ProjectRef) {
		for _, dependent := range g.projectDepdntOn[cur] {
			if !visited[dependent] {
				visited[dependent] = true
				order = append(order, dependent)
				visit(dependent)
			}
		}
	}
	visit(p)
	return order
}

// WalkProjectDependencies returns the forward transitive closure of p's
// project dependencies via ProjectDependsOn, excluding p itself.
func (g *Graph) WalkProjectDependencies(p ProjectRef) []ProjectRef {
	visited := make(map[ProjectRef]bool)
	var order []ProjectRef
	var visit func(ProjectRef)
	visit = func(cur ProjectRef) {
		for _, dep := range g.projectDeps[cur] {
			if !visited[dep] {
				visited[dep] = true
				order = append(order, dep)
				visit(dep)
			}
		}
	}
	visit(p)
	return order
}

// HasProjectDependency reports whether b is reachable from a via
// ProjectDependsOn (a depends on b, directly or transitively).
func (g *Graph) HasProjectDependency(a, b ProjectRef) bool {
	for _, dep := range g.WalkProjectDependencies(a) {
		if dep.Equal(b) {
			return true
		}
	}
	return false
}

// Validate checks for cycles in both the project layer and the task layer,
// and populates the topological task order used by TopsortTasks. Must be
// called (and return nil) before TopsortTasks.
func (g *Graph) Validate() error {
	if err := detectCycle(g.projectOrder, g.projectDeps, func(r ProjectRef) string { return r.String() }); err != nil {
		return err
	}
	if err := detectCycle(g.taskOrder, g.taskDeps, func(r TaskRef) string { return r.String() }); err != nil {
		return err
	}

	g.taskTopo = topsort(g.taskOrder, g.taskDeps)
	return nil
}

// TopsortTasks returns the tasks in topological order: every transitive
// TaskDependsOn dependency of a task precedes it. Requires a prior
// successful Validate call; stable across repeated calls against an
// unchanged graph.
func (g *Graph) TopsortTasks() []TaskRef {
	out := make([]TaskRef, len(g.taskTopo))
	copy(out, g.taskTopo)
	return out
}

// detectCycle runs a 3-colour DFS (0 unvisited, 1 visiting, 2 visited) over
// nodes ordered deterministically by their display form, so the error
// reported for a given cyclic graph is stable across runs regardless of map
// iteration order.
func detectCycle[T comparable](order []T, edges map[T][]T, display func(T) string) error {
	sorted := sortedByDisplay(order, display)

	visited := make(map[T]int, len(sorted))
	var path []T

	var visit func(T) error
	visit = func(u T) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range edges[u] {
			switch visited[dep] {
			case 1:
				return buildCycleError(path, dep, display)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, n := range sorted {
		if visited[n] == 0 {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedByDisplay[T any](in []T, display func(T) string) []T {
	out := make([]T, len(in))
	copy(out, in)
	slices.SortFunc(out, func(a, b T) int {
		da, db := display(a), display(b)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
	return out
}

func buildCycleError[T any](path []T, dep T, display func(T) string) error {
	startIdx := 0
	for i, node := range path {
		if display(node) == display(dep) {
			startIdx = i
			break
		}
	}
	cycle := ""
	for i := startIdx; i < len(path); i++ {
		cycle += display(path[i]) + " -> "
	}
	cycle += display(dep)
	return zerr.With(ErrCycleDetected, "cycle", cycle)
}

// topsort returns a DFS-postorder topological order restricted to edges,
// with deterministic tie-breaking by display form so repeated calls over an
// unchanged graph return an identical order.
func topsort(order []TaskRef, edges map[TaskRef][]TaskRef) []TaskRef {
	sorted := sortedByDisplay(order, func(r TaskRef) string { return r.String() })

	visited := make(map[TaskRef]bool, len(sorted))
	result := make([]TaskRef, 0, len(sorted))

	var visit func(TaskRef)
	visit = func(u TaskRef) {
		if visited[u] {
			return
		}
		visited[u] = true
		for _, dep := range edges[u] {
			visit(dep)
		}
		result = append(result, u)
	}

	for _, n := range sorted {
		visit(n)
	}
	return result
}
