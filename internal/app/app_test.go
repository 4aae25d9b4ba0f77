package app_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/app"
	"go.nabs.build/nabs/internal/core/domain"
)

type fakeConfigLoader struct {
	graph *domain.Graph
	err   error
}

func (l *fakeConfigLoader) Load(string) (*domain.Graph, error) {
	return l.graph, l.err
}

type fakeExecutor struct{ err error }

func (e *fakeExecutor) Execute(context.Context, domain.TaskInfo, string, []string, io.Writer) error {
	return e.err
}

type fakeHasher struct{ digest domain.Digest }

func (h *fakeHasher) ComputeInputHash(domain.TaskInfo, string, []string) (*domain.Digest, error) {
	digest := h.digest
	return &digest, nil
}
func (h *fakeHasher) ComputeFileHash(string) (domain.Digest, error) { return domain.Digest{}, nil }

type fakeGit struct {
	changed    []string
	changedFor map[string][]string
}

func (g *fakeGit) IsRepo(string) bool { return true }
func (g *fakeGit) ChangedFiles(dir, _ string, _ []string) ([]string, error) {
	if g.changedFor != nil {
		return g.changedFor[dir], nil
	}
	return g.changed, nil
}
func (g *fakeGit) MergeBase(string, string) (string, error) { return "base", nil }

type fakeLogger struct{ errs []error }

func (l *fakeLogger) Info(string)     {}
func (l *fakeLogger) Warn(string)     {}
func (l *fakeLogger) Error(err error) { l.errs = append(l.errs, err) }

func buildGraph(t *testing.T) (*domain.Graph, domain.TaskRef) {
	t.Helper()
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)

	g := domain.NewGraph(root)
	valid, err := root.Subpath(".").Validate()
	require.NoError(t, err)

	projectRef := domain.ProjectRef{Root: valid}
	require.NoError(t, g.AddProject(domain.ProjectInfo{DisplayName: "app", Root: valid}))

	task := domain.TaskInfo{Project: projectRef, Name: "build", Commands: []string{"echo build"}}
	require.NoError(t, g.AddTask(task))
	require.NoError(t, g.Validate())

	return g, task.Ref()
}

func TestApp_Run_ExecutesSelectedTask(t *testing.T) {
	graph, ref := buildGraph(t)
	loader := &fakeConfigLoader{graph: graph}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{}, &fakeGit{}, &fakeLogger{})

	results, err := a.Run(context.Background(), []string{"build"}, app.RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ref, results[0].Task)
	assert.Equal(t, domain.OutcomeSuccessful, results[0].Outcome)
}

func TestApp_Run_AllSelectsEveryTask(t *testing.T) {
	graph, ref := buildGraph(t)
	loader := &fakeConfigLoader{graph: graph}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{}, &fakeGit{}, &fakeLogger{})

	results, err := a.Run(context.Background(), nil, app.RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ref, results[0].Task)
}

func TestApp_Run_CommandFailureReturnsError(t *testing.T) {
	graph, _ := buildGraph(t)
	loader := &fakeConfigLoader{graph: graph}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{err: domain.ErrCommand}, &fakeGit{}, &fakeLogger{})

	results, err := a.Run(context.Background(), []string{"build"}, app.RunOptions{})
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeFailed, results[0].Outcome)
}

func TestApp_Run_UnknownTaskNameYieldsNoTasksSelected(t *testing.T) {
	graph, _ := buildGraph(t)
	loader := &fakeConfigLoader{graph: graph}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{}, &fakeGit{}, &fakeLogger{})

	_, err := a.Run(context.Background(), []string{"nonexistent"}, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTasksSelected)
}

func TestApp_Run_UnknownFilterNameFails(t *testing.T) {
	graph, _ := buildGraph(t)
	loader := &fakeConfigLoader{graph: graph}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{}, &fakeGit{}, &fakeLogger{})

	filter := domain.ProjectFilter{{Matcher: domain.MatchByName, Value: "missing"}}
	_, err := a.Run(context.Background(), []string{"build"}, app.RunOptions{Filter: filter})
	assert.ErrorIs(t, err, domain.ErrUnknownProjectByName)
}

func TestApp_Changed_ExpandsToDependents(t *testing.T) {
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)
	g := domain.NewGraph(root)

	libValid, err := root.Subpath("lib").Validate()
	require.NoError(t, err)
	appValid, err := root.Subpath("app").Validate()
	require.NoError(t, err)

	lib := domain.ProjectRef{Root: libValid}
	appProject := domain.ProjectRef{Root: appValid}
	require.NoError(t, g.AddProject(domain.ProjectInfo{DisplayName: "lib", Root: libValid}))
	require.NoError(t, g.AddProject(domain.ProjectInfo{DisplayName: "app", Root: appValid, Dependencies: []domain.ProjectRef{lib}}))
	require.NoError(t, g.AddProjectDependency(appProject, lib))
	require.NoError(t, g.Validate())

	loader := &fakeConfigLoader{graph: g}
	git := &fakeGit{changedFor: map[string][]string{
		libValid.FullPath(): {"lib.go"},
	}}
	a := app.New(loader, &fakeHasher{}, &fakeExecutor{}, git, &fakeLogger{})

	affected, err := a.Changed(context.Background(), "main")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ProjectRef{lib, appProject}, affected)
}
