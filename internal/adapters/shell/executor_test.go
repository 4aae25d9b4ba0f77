package shell_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.nabs.build/nabs/internal/adapters/shell"
	"go.nabs.build/nabs/internal/core/domain"
)

func TestExecutor_Execute_Success(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "test", Commands: []string{"echo hello"}}

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, t.TempDir(), nil, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "hello")
}

func TestExecutor_Execute_Failure(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "fail", Commands: []string{"false"}}

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, t.TempDir(), nil, &out)
	require.Error(t, err)
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "empty", Commands: []string{""}}

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, t.TempDir(), nil, &out)
	require.NoError(t, err)
}

func TestExecutor_Execute_StopsAtFirstFailure(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "multi", Commands: []string{"false", "echo should-not-run"}}

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, t.TempDir(), nil, &out)
	require.Error(t, err)
	assert.NotContains(t, out.String(), "should-not-run")
}

func TestExecutor_Execute_ContextCancellation(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "sleep", Commands: []string{"sleep 5"}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := executor.Execute(ctx, task, t.TempDir(), nil, &out)
	require.Error(t, err)
}

func TestExecutor_Execute_CustomEnv(t *testing.T) {
	executor := shell.NewExecutor()
	task := domain.TaskInfo{Name: "env", Commands: []string{"printenv NABS_TEST_VAR"}}

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, t.TempDir(), []string{"NABS_TEST_VAR=injected"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "injected")
}
