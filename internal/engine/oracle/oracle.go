// Package oracle decides whether a task's declared inputs have changed
// since the last successful run, using either a git-diff comparison against
// a ref or a content-hash comparison against the persisted registry.
package oracle

import (
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
)

// Decision is the change oracle's verdict for one task: whether it must
// run, and (in hash mode) the freshly computed input hash to carry forward
// and persist once the task succeeds.
type Decision struct {
	Run  bool
	Hash *domain.Digest
}

// Oracle wraps the hasher, registry, and git client behind spec.md §4.F's
// decide algorithm. Grounded on the teacher's Scheduler.checkTaskCache
// (hash-comparison shape) and Scheduler.computeHashForce (unconditional
// compute), generalized with a git-diff branch the teacher has no
// equivalent for.
type Oracle struct {
	hasher   ports.Hasher
	registry ports.HashRegistry
	git      ports.GitClient
}

// New creates an Oracle.
func New(hasher ports.Hasher, registry ports.HashRegistry, git ports.GitClient) *Oracle {
	return &Oracle{hasher: hasher, registry: registry, git: git}
}

// Decide implements spec.md §4.F's decide algorithm for task t, whose
// project lives at workDir. exclusions are the nested-project path
// exclusions computed once per workspace (spec.md §4.E). When since is
// non-empty, the git-diff branch is used and the returned Decision never
// carries a hash (nothing is persisted in that mode). Otherwise the hash
// oracle runs: an empty since means "no git comparison requested".
func (o *Oracle) Decide(t domain.TaskInfo, workDir string, exclusions []string, since string) (Decision, error) {
	if since != "" {
		return o.decideSince(t, workDir, since, exclusions)
	}
	return o.decideHash(t, workDir, exclusions)
}

func (o *Oracle) decideSince(t domain.TaskInfo, workDir, since string, exclusions []string) (Decision, error) {
	base, err := o.git.MergeBase(workDir, since)
	if err != nil {
		return Decision{}, err
	}
	changed, err := o.git.ChangedFiles(workDir, base, exclusions)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Run: len(changed) > 0}, nil
}

// decideHash implements spec.md §4.E step 1: a task declaring no path globs
// at all has no hash to compare and always runs, with nothing persisted to
// the registry afterward. Otherwise it compares the freshly computed hash
// against the last persisted one, running when they differ or nothing was
// persisted yet.
func (o *Oracle) decideHash(t domain.TaskInfo, workDir string, exclusions []string) (Decision, error) {
	newHash, err := o.hasher.ComputeInputHash(t, workDir, exclusions)
	if err != nil {
		return Decision{}, err
	}
	if newHash == nil {
		return Decision{Run: true}, nil
	}

	last, ok := o.registry.Get(t.Ref())

	run := !ok || last.InputsHash == nil || *last.InputsHash != *newHash
	return Decision{Run: run, Hash: newHash}, nil
}
