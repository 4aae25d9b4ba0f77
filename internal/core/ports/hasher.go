package ports

import "go.nabs.build/nabs/internal/core/domain"

// Hasher computes blake3 digests over a task's declared input globs.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeInputHash resolves task's PathGlobs against workDir, excludes
	// any path that falls under a nested project root, and combines the
	// sorted per-file digests into a single outer digest. Returns a nil
	// digest when task declares no path globs at all: "no inputs" is not the
	// same as "inputs hashed to nothing", and the oracle must tell them
	// apart. Returns ErrUnsupportedInputKind if task declares any reserved
	// input kind.
	ComputeInputHash(task domain.TaskInfo, workDir string, exclusions []string) (*domain.Digest, error)

	// ComputeFileHash returns the blake3 digest of a single file's contents.
	ComputeFileHash(path string) (domain.Digest, error)
}
