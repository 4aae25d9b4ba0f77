// Package app wires the config loader, change oracle, and scheduler
// together for one invocation of the CLI.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.nabs.build/nabs/internal/adapters/cas"
	"go.nabs.build/nabs/internal/adapters/fs"
	"go.nabs.build/nabs/internal/adapters/output"
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.nabs.build/nabs/internal/engine/oracle"
	"go.nabs.build/nabs/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App is the composition root for one run/changed invocation. Registry,
// Oracle, Runner, and Scheduler are all constructed fresh inside Run/Changed
// rather than held as fields, because each needs the workspace root that
// only config loading resolves — they cannot be graft singletons (see
// DESIGN.md).
type App struct {
	configLoader ports.ConfigLoader
	hasher       ports.Hasher
	executor     ports.Executor
	git          ports.GitClient
	logger       ports.Logger
}

// New creates an App.
func New(loader ports.ConfigLoader, hasher ports.Hasher, executor ports.Executor, git ports.GitClient, logger ports.Logger) *App {
	return &App{configLoader: loader, hasher: hasher, executor: executor, git: git, logger: logger}
}

// RunOptions configures a Run invocation.
type RunOptions struct {
	// Filter narrows the workspace to a project subset. An empty filter
	// defaults to the project containing the invocation directory, or the
	// whole workspace if the invocation directory is not inside a project.
	Filter domain.ProjectFilter
	// Since, when non-empty, routes every task's change oracle through the
	// git-diff branch instead of the hash branch.
	Since string
	// Parallelism bounds concurrent in-flight tasks. Zero means
	// runtime.NumCPU().
	Parallelism int
}

// Run implements the `run` command: resolve the selected task set, execute
// it via the scheduler, and persist the hash registry. The returned results
// cover every task the scheduler attempted; err is non-nil if any of them
// failed, wraps domain.ErrCommand-family sentinels otherwise.
func (a *App) Run(ctx context.Context, taskNames []string, opts RunOptions) ([]domain.TaskResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigRead.Error())
	}

	graph, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, err
	}

	registry, err := cas.NewRegistry(graph.Root().String(), graph)
	if err != nil {
		return nil, err
	}

	projects, err := selectProjects(graph, opts.Filter, cwd)
	if err != nil {
		return nil, err
	}

	tasks := selectTasks(graph, projects, taskNames)
	if len(tasks) == 0 {
		return nil, domain.ErrNoTasksSelected
	}

	exclusions := fs.ExclusionsForWorkspace(projectRoots(graph))

	o := oracle.New(a.hasher, registry, a.git)
	mux := output.NewMultiplexer(os.Stdout, tasks)
	runner := scheduler.NewRunner(o, a.executor, registry, mux)

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	sched := scheduler.NewScheduler(runner, parallelism)

	results := sched.Run(ctx, graph, tasks, exclusions, opts.Since)

	if saveErr := registry.Save(); saveErr != nil {
		a.logger.Error(zerr.Wrap(saveErr, domain.ErrRegistryWrite.Error()))
	}

	return results, firstTaskError(results)
}

// Changed implements the `changed` command: every project whose own files
// changed since ref (attributed to its innermost containing project), plus
// every project that transitively depends on one of them.
func (a *App) Changed(_ context.Context, since string) ([]domain.ProjectRef, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigRead.Error())
	}

	graph, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, err
	}

	exclusions := fs.ExclusionsForWorkspace(projectRoots(graph))

	directlyChanged := make(map[domain.ProjectRef]bool)
	for _, ref := range graph.Projects() {
		info, _ := graph.GetProject(ref)
		root := info.Root.FullPath()

		base, err := a.git.MergeBase(root, since)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrGit.Error())
		}
		changed, err := a.git.ChangedFiles(root, base, exclusions[root])
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrGit.Error())
		}
		if len(changed) > 0 {
			directlyChanged[ref] = true
		}
	}

	affected := make(map[domain.ProjectRef]bool, len(directlyChanged))
	for ref := range directlyChanged {
		affected[ref] = true
		for _, dependent := range graph.WalkProjectDependents(ref) {
			affected[dependent] = true
		}
	}

	out := make([]domain.ProjectRef, 0, len(affected))
	for _, ref := range graph.Projects() {
		if affected[ref] {
			out = append(out, ref)
		}
	}
	return out, nil
}

// Load exposes the resolved workspace graph for the introspection commands
// (`projects`, `tasks`, `graph`).
func (a *App) Load(_ context.Context) (*domain.Graph, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigRead.Error())
	}
	return a.configLoader.Load(cwd)
}

func firstTaskError(results []domain.TaskResult) error {
	var errs error
	for _, res := range results {
		if res.Outcome == domain.OutcomeFailed {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(res.Err, domain.ErrCommand.Error()), "task", res.Task.String()))
		}
	}
	return errs
}

// selectProjects applies filter to graph, defaulting to the project
// containing cwd (or the whole workspace if cwd is not inside one).
func selectProjects(g *domain.Graph, filter domain.ProjectFilter, cwd string) ([]domain.ProjectRef, error) {
	if len(filter) == 0 {
		if ref, ok := projectContaining(g, cwd); ok {
			return []domain.ProjectRef{ref}, nil
		}
		return g.Projects(), nil
	}

	var out []domain.ProjectRef
	for _, spec := range filter {
		matched := false
		for _, ref := range g.Projects() {
			info, _ := g.GetProject(ref)
			if matchesFilter(info, spec) {
				out = append(out, ref)
				matched = true
			}
		}
		if !matched {
			switch spec.Matcher {
			case domain.MatchByName:
				return nil, zerr.With(domain.ErrUnknownProjectByName, "name", spec.Value)
			default:
				return nil, zerr.With(domain.ErrUnknownProjectByPath, "path", spec.Value)
			}
		}
	}
	return out, nil
}

func matchesFilter(info domain.ProjectInfo, spec domain.FilterSpec) bool {
	switch spec.Matcher {
	case domain.MatchByName:
		return info.DisplayName == spec.Value
	case domain.MatchByPath:
		return info.Root.Sub() == spec.Value
	default:
		return false
	}
}

func projectContaining(g *domain.Graph, cwd string) (domain.ProjectRef, bool) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return domain.ProjectRef{}, false
	}
	abs = filepath.Clean(abs)

	// The innermost project wins when project roots are nested.
	var best domain.ProjectRef
	bestLen := -1
	for _, ref := range g.Projects() {
		root := filepath.Clean(ref.Root.FullPath())
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = ref, len(root)
		}
	}
	return best, bestLen >= 0
}

// selectTasks resolves names against the selected projects' own tasks
// ("all", or no names, means every task of every selected project), then
// expands the result to its full transitive task-dependency closure so the
// scheduler always receives a runnable, dependency-complete set, ordered
// topologically.
func selectTasks(g *domain.Graph, projects []domain.ProjectRef, names []string) []domain.TaskRef {
	runAll := len(names) == 0 || slices.Contains(names, "all")

	var roots []domain.TaskRef
	for _, ref := range projects {
		for _, t := range g.ProjectTasks(ref) {
			if runAll || slices.Contains(names, t.Name) {
				roots = append(roots, t)
			}
		}
	}

	closure := make(map[domain.TaskRef]bool, len(roots))
	var include func(domain.TaskRef)
	include = func(t domain.TaskRef) {
		if closure[t] {
			return
		}
		closure[t] = true
		for _, dep := range g.DirectTaskDependencies(t) {
			include(dep)
		}
	}
	for _, t := range roots {
		include(t)
	}

	out := make([]domain.TaskRef, 0, len(closure))
	for _, t := range g.TopsortTasks() {
		if closure[t] {
			out = append(out, t)
		}
	}
	return out
}

func projectRoots(g *domain.Graph) []string {
	refs := g.Projects()
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.Root.FullPath()
	}
	return out
}
