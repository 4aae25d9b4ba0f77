package commands_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/cmd/nabs/commands"
	"go.nabs.build/nabs/internal/app"
	"go.nabs.build/nabs/internal/core/domain"
)

type fakeConfigLoader struct{ graph *domain.Graph }

func (l *fakeConfigLoader) Load(string) (*domain.Graph, error) { return l.graph, nil }

type fakeExecutor struct{ err error }

func (e *fakeExecutor) Execute(context.Context, domain.TaskInfo, string, []string, io.Writer) error {
	return e.err
}

type fakeHasher struct{}

func (fakeHasher) ComputeInputHash(domain.TaskInfo, string, []string) (*domain.Digest, error) {
	digest := domain.Digest{1}
	return &digest, nil
}
func (fakeHasher) ComputeFileHash(string) (domain.Digest, error) { return domain.Digest{}, nil }

type fakeGit struct{}

func (fakeGit) IsRepo(string) bool                            { return true }
func (fakeGit) ChangedFiles(string, string, []string) ([]string, error) { return nil, nil }
func (fakeGit) MergeBase(string, string) (string, error)      { return "base", nil }

type fakeLogger struct{}

func (fakeLogger) Info(string)  {}
func (fakeLogger) Warn(string)  {}
func (fakeLogger) Error(error)  {}

func buildSingleTaskGraph(t *testing.T) *domain.Graph {
	t.Helper()
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)
	valid, err := root.Subpath(".").Validate()
	require.NoError(t, err)

	g := domain.NewGraph(root)
	ref := domain.ProjectRef{Root: valid}
	require.NoError(t, g.AddProject(domain.ProjectInfo{DisplayName: "root", Root: valid}))
	require.NoError(t, g.AddTask(domain.TaskInfo{Project: ref, Name: "build", Commands: []string{"echo build"}}))
	require.NoError(t, g.Validate())
	return g
}

func newCLI(graph *domain.Graph, executor *fakeExecutor) *commands.CLI {
	a := app.New(&fakeConfigLoader{graph: graph}, fakeHasher{}, executor, fakeGit{}, fakeLogger{})
	return commands.New(a)
}

func TestRun_Success(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{})
	cli.SetArgs([]string{"run", "build"})
	assert.NoError(t, cli.Execute(context.Background()))
}

func TestRun_CommandFailureReturnsError(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{err: domain.ErrCommand})
	cli.SetArgs([]string{"run", "build"})
	assert.Error(t, cli.Execute(context.Background()))
}

func TestChanged_Plain(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{})
	var out bytes.Buffer
	cli.SetArgs([]string{"changed", "--format", "plain"})
	cli.SetOut(&out)
	require.NoError(t, cli.Execute(context.Background()))
}

func TestProjects_ListsProject(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{})
	var out bytes.Buffer
	cli.SetArgs([]string{"projects"})
	cli.SetOut(&out)
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, out.String(), "root")
}

func TestRoot_Help(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{})
	cli.SetArgs([]string{"--help"})
	assert.NoError(t, cli.Execute(context.Background()))
}

func TestVersion(t *testing.T) {
	cli := newCLI(buildSingleTaskGraph(t), &fakeExecutor{})
	var out bytes.Buffer
	cli.SetArgs([]string{"version"})
	cli.SetOut(&out)
	require.NoError(t, cli.Execute(context.Background()))
	assert.NotEmpty(t, out.String())
}
