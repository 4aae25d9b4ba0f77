package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/engine/graph"
)

func validRoot(t *testing.T, root domain.WorkspaceRoot, sub string) domain.ValidPath {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root.String(), sub), 0o755))
	valid, err := root.Subpath(sub).Validate()
	require.NoError(t, err)
	return valid
}

func TestBuild_SimpleWorkspace(t *testing.T) {
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)

	lib := validRoot(t, root, "lib")
	app := validRoot(t, root, "app")

	decls := []graph.ProjectDecl{
		{
			Name: "lib",
			Root: lib,
			Tasks: []graph.TaskDecl{
				{Name: "build", Commands: []string{"echo lib"}},
			},
		},
		{
			Name:               "app",
			Root:               app,
			DependencySubpaths: []string{"lib"},
			Tasks: []graph.TaskDecl{
				{
					Name:     "build",
					Commands: []string{"echo app"},
					Requires: []domain.RequiresClause{
						{
							TaskName: domain.NewSpanned("build"),
							Target:   &domain.Spanned[domain.TargetSelector]{Value: domain.TargetSelector{Kind: domain.DependenciesOfCurrent}},
						},
					},
				},
			},
		},
	}

	g, err := graph.Build(root, decls)
	require.NoError(t, err)

	assert.Equal(t, 2, g.ProjectCount())
	assert.Equal(t, 2, g.TaskCount())

	appTask := domain.TaskRef{Project: domain.ProjectRef{Root: app}, Name: "build"}
	libTask := domain.TaskRef{Project: domain.ProjectRef{Root: lib}, Name: "build"}
	assert.Equal(t, []domain.TaskRef{libTask}, g.DirectTaskDependencies(appTask))

	order := g.TopsortTasks()
	libIdx, appIdx := -1, -1
	for i, ref := range order {
		if ref.Equal(libTask) {
			libIdx = i
		}
		if ref.Equal(appTask) {
			appIdx = i
		}
	}
	assert.Less(t, libIdx, appIdx)
}

func TestBuild_UnknownProjectDependency(t *testing.T) {
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)

	app := validRoot(t, root, "app")
	decls := []graph.ProjectDecl{
		{Name: "app", Root: app, DependencySubpaths: []string{"ghost"}},
	}

	_, err = graph.Build(root, decls)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownProjectDependency)
}

func TestBuild_DuplicateTaskName(t *testing.T) {
	root, err := domain.NewWorkspaceRoot(t.TempDir())
	require.NoError(t, err)

	app := validRoot(t, root, "app")
	decls := []graph.ProjectDecl{
		{
			Name: "app",
			Root: app,
			Tasks: []graph.TaskDecl{
				{Name: "build"},
				{Name: "build"},
			},
		},
	}

	_, err = graph.Build(root, decls)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTaskAlreadyExists)
}
