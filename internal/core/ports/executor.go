// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.nabs.build/nabs/internal/core/domain"
)

// Executor runs a task's commands in order, splitting each on ASCII space
// (never through a shell), stopping at the first non-zero exit.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs every command of task in its project's working directory,
	// streaming combined stdout/stderr to out, and inheriting the current
	// process environment plus env. Execute returns (honouring ctx
	// cancellation, which kills any in-flight child process) as soon as a
	// command exits non-zero or fails to spawn.
	Execute(ctx context.Context, task domain.TaskInfo, workDir string, env []string, out io.Writer) error
}
