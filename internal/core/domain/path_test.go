package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/core/domain"
)

func TestWorkspaceRoot_SubpathValidatesExistingDir(t *testing.T) {
	root := testRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root.String(), "app"), 0o755))

	valid, err := root.Subpath("app").Validate()
	require.NoError(t, err)
	assert.Equal(t, "app", valid.Sub())
}

func TestWorkspaceRoot_SubpathRejectsEscapeAboveRoot(t *testing.T) {
	root := testRoot(t)

	_, err := root.Subpath("../outside").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPathNotInWorkspace)
}

func TestRelativePath_JoinRejectsEscapeAboveRoot(t *testing.T) {
	root := testRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root.String(), "app"), 0o755))

	valid, err := root.Subpath("app").Validate()
	require.NoError(t, err)

	_, err = valid.Join("../../outside").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPathNotInWorkspace)
}

func TestRelativePath_JoinWithinSiblingDoesNotEscape(t *testing.T) {
	root := testRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root.String(), "app"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root.String(), "sibling"), 0o755))

	valid, err := root.Subpath("app").Validate()
	require.NoError(t, err)

	sibling, err := valid.Join("../sibling").Validate()
	require.NoError(t, err)
	assert.Equal(t, "sibling", sibling.Sub())
}

func TestWorkspaceRoot_SubpathRejectsMissingPath(t *testing.T) {
	root := testRoot(t)

	_, err := root.Subpath("missing").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
}
