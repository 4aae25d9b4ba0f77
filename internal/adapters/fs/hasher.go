package fs

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/zeebo/blake3"
	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// workerLimit bounds the hashing pool to the number of available CPUs, per
// spec.md §5's "a separate thread pool performs CPU-bound hashing".
func workerLimit() int {
	return runtime.NumCPU()
}

var _ ports.Hasher = (*Hasher)(nil)

// Hasher resolves a task's declared path globs and combines the blake3
// digest of every matched file into one outer digest.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash returns the blake3 digest of a single file's contents.
func (h *Hasher) ComputeFileHash(path string) (domain.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // path is controlled by the caller, resolved via globs against a validated workspace root
	if err != nil {
		return domain.Digest{}, zerr.With(zerr.Wrap(err, domain.ErrHashing.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return domain.Digest{}, zerr.With(zerr.Wrap(err, domain.ErrHashing.Error()), "path", path)
	}

	var digest domain.Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// ComputeInputHash resolves task's declared path globs against workDir,
// excludes matches falling under any path in exclusions (nested project
// roots), hashes every remaining file in parallel, and combines the
// relative-path-sorted per-file digests into one outer blake3 digest. A task
// with no declared path globs has no content to hash at all and returns a
// nil digest rather than the fixed digest of an empty input set, so the
// oracle can tell "nothing declared" apart from "declared inputs hashed to
// nothing" and treat the former as always-run.
func (h *Hasher) ComputeInputHash(task domain.TaskInfo, workDir string, exclusions []string) (*domain.Digest, error) {
	if task.Inputs.HasReservedInputs() {
		return nil, zerr.With(domain.ErrUnsupportedInputKind, "task", task.Ref().String())
	}
	if len(task.Inputs.PathGlobs) == 0 {
		return nil, nil
	}

	matches, err := resolveGlobs(workDir, task.Inputs.PathGlobs, exclusions, h.walker)
	if err != nil {
		return nil, err
	}

	digests := make([]domain.Digest, len(matches))
	group := new(errgroup.Group)
	group.SetLimit(workerLimit())

	for i, rel := range matches {
		group.Go(func() error {
			d, err := h.ComputeFileHash(filepath.Join(workDir, rel))
			if err != nil {
				return err
			}
			digests[i] = d
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	outer := blake3.New()
	for i, rel := range matches {
		_, _ = outer.WriteString(rel)
		_, _ = outer.Write([]byte{0})
		_, _ = outer.Write(digests[i][:])
	}

	var digest domain.Digest
	copy(digest[:], outer.Sum(nil))
	return &digest, nil
}

// resolveGlobs walks workDir through walker (respecting gitignore semantics
// per spec.md §4.E step 2), matches each file's workDir-relative path against
// globs with doublestar, drops matches under any exclusions prefix, and
// returns the matched relative paths deduplicated and sorted. A glob matching
// no file is not an error: an empty matched set is a legitimate input state,
// not a misconfiguration.
func resolveGlobs(workDir string, globs []string, exclusions []string, walker *Walker) ([]string, error) {
	seen := make(map[string]bool)

	for full := range walker.WalkFiles(workDir) {
		if isExcluded(full, exclusions) {
			continue
		}
		rel, err := filepath.Rel(workDir, full)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		for _, glob := range globs {
			ok, err := doublestar.Match(glob, rel)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrHashing.Error()), "glob", glob)
			}
			if ok {
				seen[rel] = true
				break
			}
		}
	}

	out := make([]string, 0, len(seen))
	for rel := range seen {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

func isExcluded(path string, exclusions []string) bool {
	for _, ex := range exclusions {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ExclusionsForWorkspace computes, for every project in the graph, the set
// of other project roots nested inside it: paths under a nested project
// must not count toward the outer project's own input hash. Only minimal
// (not-further-nested) children are returned per project, since a grandchild
// is already covered by excluding its parent.
func ExclusionsForWorkspace(roots []string) map[string][]string {
	sorted := make([]string, len(roots))
	copy(sorted, roots)
	sort.Strings(sorted)

	exclusions := make(map[string][]string, len(sorted))
	for _, outer := range sorted {
		for _, inner := range sorted {
			if outer == inner {
				continue
			}
			if !strings.HasPrefix(inner, outer+string(filepath.Separator)) {
				continue
			}
			if hasIntermediateProject(outer, inner, sorted) {
				continue
			}
			exclusions[outer] = append(exclusions[outer], inner)
		}
	}
	return exclusions
}

func hasIntermediateProject(outer, inner string, all []string) bool {
	for _, candidate := range all {
		if candidate == outer || candidate == inner {
			continue
		}
		if strings.HasPrefix(candidate, outer+string(filepath.Separator)) &&
			strings.HasPrefix(inner, candidate+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
