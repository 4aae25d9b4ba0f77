package cas_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/adapters/cas"
	"go.nabs.build/nabs/internal/core/domain"
)

func testTaskRef(t *testing.T, workspaceDir, projectSubdir, task string) domain.TaskRef {
	t.Helper()
	root, err := domain.NewWorkspaceRoot(workspaceDir)
	require.NoError(t, err)

	full := filepath.Join(workspaceDir, projectSubdir)
	require.NoError(t, os.MkdirAll(full, 0o755))

	valid, err := root.Subpath(projectSubdir).Validate()
	require.NoError(t, err)

	return domain.TaskRef{Project: domain.ProjectRef{Root: valid}, Name: task}
}

// graphWith builds a minimal validated graph resolving exactly ref, so a
// registry loaded against it keeps ref's record rather than pruning it as
// stale.
func graphWith(t *testing.T, workspaceDir string, ref domain.TaskRef) *domain.Graph {
	t.Helper()
	root, err := domain.NewWorkspaceRoot(workspaceDir)
	require.NoError(t, err)

	g := domain.NewGraph(root)
	require.NoError(t, g.AddProject(domain.ProjectInfo{DisplayName: "app", Root: ref.Project.Root}))
	require.NoError(t, g.AddTask(domain.TaskInfo{Project: ref.Project, Name: ref.Name}))
	require.NoError(t, g.Validate())
	return g
}

func digestOf(b byte) domain.Digest {
	var d domain.Digest
	d[0] = b
	return d
}

func TestRegistry_PutAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	ref := testTaskRef(t, tmpDir, "app", "build")

	reg, err := cas.NewRegistry(tmpDir, graphWith(t, tmpDir, ref))
	require.NoError(t, err)

	inputs := digestOf(1)
	reg.Put(ref, domain.Hashes{InputsHash: &inputs})

	got, ok := reg.Get(ref)
	require.True(t, ok)
	assert.Equal(t, inputs, *got.InputsHash)
}

func TestRegistry_GetMissing(t *testing.T) {
	tmpDir := t.TempDir()
	ref := testTaskRef(t, tmpDir, "app", "build")

	reg, err := cas.NewRegistry(tmpDir, graphWith(t, tmpDir, ref))
	require.NoError(t, err)

	_, ok := reg.Get(ref)
	assert.False(t, ok)
}

func TestRegistry_SaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	ref := testTaskRef(t, tmpDir, "app", "build")
	g := graphWith(t, tmpDir, ref)

	reg1, err := cas.NewRegistry(tmpDir, g)
	require.NoError(t, err)

	inputs := digestOf(7)
	reg1.Put(ref, domain.Hashes{InputsHash: &inputs})
	require.NoError(t, reg1.Save())

	reg2, err := cas.NewRegistry(tmpDir, g)
	require.NoError(t, err)

	got, ok := reg2.Get(ref)
	require.True(t, ok)
	assert.Equal(t, inputs, *got.InputsHash)
}

func TestRegistry_LoadPrunesStaleEntries(t *testing.T) {
	tmpDir := t.TempDir()
	ref := testTaskRef(t, tmpDir, "app", "build")
	stale := testTaskRef(t, tmpDir, "app", "lint")

	reg1, err := cas.NewRegistry(tmpDir, graphWith(t, tmpDir, ref))
	require.NoError(t, err)

	inputs := digestOf(3)
	reg1.Put(ref, domain.Hashes{InputsHash: &inputs})
	reg1.Put(stale, domain.Hashes{InputsHash: &inputs})
	require.NoError(t, reg1.Save())

	// Reload against a graph that no longer has the "lint" task: its record
	// must be discarded, not carried forward forever.
	reg2, err := cas.NewRegistry(tmpDir, graphWith(t, tmpDir, ref))
	require.NoError(t, err)

	_, ok := reg2.Get(ref)
	assert.True(t, ok)
	_, ok = reg2.Get(stale)
	assert.False(t, ok)
}

func TestRegistry_LoadRejectsUnsupportedVersion(t *testing.T) {
	tmpDir := t.TempDir()
	nabsDir := filepath.Join(tmpDir, ".nabs")
	require.NoError(t, os.MkdirAll(nabsDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(nabsDir, "hashes.json"), []byte(`{"version":99,"records":[]}`), 0o600))

	_, err := cas.NewRegistry(tmpDir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryVersionUnsupported)
}

func TestRegistry_SaveOmitsEmptyOutputsHash(t *testing.T) {
	tmpDir := t.TempDir()
	ref := testTaskRef(t, tmpDir, "app", "build")

	reg, err := cas.NewRegistry(tmpDir, graphWith(t, tmpDir, ref))
	require.NoError(t, err)

	inputs := digestOf(2)
	reg.Put(ref, domain.Hashes{InputsHash: &inputs})
	require.NoError(t, reg.Save())

	data, err := os.ReadFile(filepath.Join(tmpDir, ".nabs", "hashes.json"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "outputs_hash"))
	assert.True(t, strings.Contains(string(data), "inputs_hash"))
}
