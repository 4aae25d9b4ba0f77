// Package scheduler drives dependency-ordered, bounded-parallelism execution
// of a selected task set, exchanging completion events with workers rather
// than sharing mutable schedule state (spec.md §5).
package scheduler

import (
	"context"

	"go.nabs.build/nabs/internal/core/domain"
)

// Scheduler runs a selected task set against a Runner, never dispatching a
// task before every one of its direct dependencies (restricted to the
// selected set) has completed. Grounded on the teacher's
// schedulerRunState, rebuilt around TaskRef/domain.Graph and the
// completion-channel loop of spec.md §4.I.
type Scheduler struct {
	runner      *Runner
	parallelism int
}

// NewScheduler creates a Scheduler bounded to parallelism concurrent
// in-flight tasks. parallelism below 1 is treated as 1.
func NewScheduler(runner *Runner, parallelism int) *Scheduler {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Scheduler{runner: runner, parallelism: parallelism}
}

// Run executes tasks (the user-selected set plus its transitive task
// dependencies, as resolved by the caller) against graph g. exclusionsFor
// maps a project's absolute root to the nested-project paths its own input
// hash must exclude (fs.ExclusionsForWorkspace's output, keyed by
// FullPath()). since, when non-empty, selects the git-diff oracle for every
// task instead of the hash oracle. Results are returned in completion
// order, one per dispatched task; once a task fails, tasks still waiting
// are never dispatched and have no result.
func (s *Scheduler) Run(
	ctx context.Context,
	g *domain.Graph,
	tasks []domain.TaskRef,
	exclusionsFor map[string][]string,
	since string,
) []domain.TaskResult {
	selected := make(map[domain.TaskRef]bool, len(tasks))
	for _, t := range tasks {
		selected[t] = true
	}

	waiting := make(map[domain.TaskRef]int, len(tasks))
	dependants := make(map[domain.TaskRef][]domain.TaskRef, len(tasks))
	var ready []domain.TaskRef

	for _, t := range tasks {
		degree := 0
		for _, dep := range g.DirectTaskDependencies(t) {
			if selected[dep] {
				degree++
				dependants[dep] = append(dependants[dep], t)
			}
		}
		waiting[t] = degree
		if degree == 0 {
			ready = append(ready, t)
		}
	}

	outcomes := make(map[domain.TaskRef]domain.Outcome, len(tasks))
	results := make([]domain.TaskResult, 0, len(tasks))
	resultsCh := make(chan domain.TaskResult, len(tasks))

	inFlight := 0
	index := 0

	dispatch := func(t domain.TaskRef) {
		task, _ := g.GetTask(t)

		forceRun := false
		for _, dep := range g.DirectTaskDependencies(t) {
			if outcomes[dep] == domain.OutcomeSuccessful {
				forceRun = true
				break
			}
		}

		i := index
		index++
		inFlight++

		workDir := task.Project.Root.FullPath()
		go func() {
			resultsCh <- s.runner.Run(ctx, task, i, exclusionsFor[workDir], since, forceRun)
		}()
	}

	for len(waiting) > 0 || inFlight > 0 {
		for len(ready) > 0 && inFlight < s.parallelism {
			t := ready[0]
			ready = ready[1:]
			delete(waiting, t)
			dispatch(t)
		}

		if inFlight == 0 {
			break
		}

		res := <-resultsCh
		inFlight--
		results = append(results, res)
		outcomes[res.Task] = res.Outcome

		if res.Outcome == domain.OutcomeFailed {
			for t := range waiting {
				delete(waiting, t)
			}
			ready = nil
			continue
		}

		for _, dep := range dependants[res.Task] {
			if _, stillWaiting := waiting[dep]; !stillWaiting {
				continue
			}
			waiting[dep]--
			if waiting[dep] == 0 {
				delete(waiting, dep)
				ready = append(ready, dep)
			}
		}
	}

	return results
}
