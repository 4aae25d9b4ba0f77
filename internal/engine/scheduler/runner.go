package scheduler

import (
	"context"

	"go.nabs.build/nabs/internal/adapters/output"
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.nabs.build/nabs/internal/engine/oracle"
)

// Runner executes one task end to end: consult the change oracle, run its
// commands through the executor, and persist a fresh input hash once every
// command succeeds. Grounded on the teacher's Scheduler.executeTask and
// checkTaskCache, split into its own type so Scheduler can drive many of
// these concurrently without owning command-spawning detail itself.
type Runner struct {
	oracle   *oracle.Oracle
	executor ports.Executor
	registry ports.HashRegistry
	mux      *output.Multiplexer
}

// NewRunner creates a Runner.
func NewRunner(o *oracle.Oracle, executor ports.Executor, registry ports.HashRegistry, mux *output.Multiplexer) *Runner {
	return &Runner{oracle: o, executor: executor, registry: registry, mux: mux}
}

// Run executes task, implementing spec.md §4.H. index selects the
// multiplexer's output colour. exclusions is the nested-project path
// exclusion set for task's own project (spec.md §4.E). since, when
// non-empty, routes the change oracle through the git-diff branch instead
// of the hash-comparison branch. forceRun is the scheduler's override
// (spec.md §4.F): true when a direct dependency of task actually executed
// this run, which forces a run even if the oracle alone would skip it.
func (r *Runner) Run(ctx context.Context, task domain.TaskInfo, index int, exclusions []string, since string, forceRun bool) domain.TaskResult {
	ref := task.Ref()
	workDir := task.Project.Root.FullPath()

	decision, err := r.oracle.Decide(task, workDir, exclusions, since)
	if err != nil {
		kind := domain.FailureHashing
		if since != "" {
			kind = domain.FailureGit
		}
		return domain.TaskResult{Task: ref, Outcome: domain.OutcomeFailed, Failure: kind, Err: err}
	}

	if !decision.Run && !forceRun {
		return domain.TaskResult{Task: ref, Outcome: domain.OutcomeSkipped}
	}

	out := r.mux.Writer(ref, index)
	execErr := r.executor.Execute(ctx, task, workDir, nil, out)
	_ = out.Close()
	if execErr != nil {
		return domain.TaskResult{Task: ref, Outcome: domain.OutcomeFailed, Failure: domain.FailureCommand, Err: execErr}
	}

	if decision.Hash != nil {
		r.registry.Put(ref, domain.Hashes{InputsHash: decision.Hash})
	}

	return domain.TaskResult{Task: ref, Outcome: domain.OutcomeSuccessful, InputsHash: decision.Hash}
}
