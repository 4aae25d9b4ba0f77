// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec, running each of a
// task's commands in order without a shell.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs every command of task in sequence, stopping at the first
// one that fails to spawn or exits non-zero. Each command string is split
// on ASCII space; no shell is ever invoked. ctx cancellation kills any
// in-flight child process.
func (e *Executor) Execute(ctx context.Context, task domain.TaskInfo, workDir string, env []string, out io.Writer) error {
	cmdEnv := append(append([]string{}, os.Environ()...), env...)

	for _, commandLine := range task.Commands {
		fields := strings.FieldsFunc(commandLine, func(r rune) bool { return r == ' ' })
		if len(fields) == 0 {
			continue
		}

		if err := e.runOne(ctx, fields, workDir, cmdEnv, out); err != nil {
			return err
		}
	}

	return nil
}

func (e *Executor) runOne(ctx context.Context, fields []string, workDir string, env []string, out io.Writer) error {
	name := fields[0]
	args := fields[1:]

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // caller-declared task command, never shell-interpreted
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = workDir
	cmd.Env = env
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if ok := asExitError(err, &exitErr); ok {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, domain.ErrCommand.Error()), "command", name, "exit_code", exitCode)
	}

	return nil
}

func asExitError(err error, target **exec.ExitError) bool {
	exitErr, ok := err.(*exec.ExitError)
	if ok {
		*target = exitErr
	}
	return ok
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
