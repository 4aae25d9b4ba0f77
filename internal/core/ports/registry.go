package ports

import "go.nabs.build/nabs/internal/core/domain"

// HashRegistry persists the last-observed input (and, reserved, output)
// digest for each task across invocations, backing the hash-comparison
// branch of the change oracle.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type HashRegistry interface {
	// Get retrieves the stored hashes for ref. Returns ok=false if ref has
	// no record.
	Get(ref domain.TaskRef) (hashes domain.Hashes, ok bool)

	// Put records hashes for ref, overwriting any prior record.
	Put(ref domain.TaskRef, hashes domain.Hashes)

	// Save persists the registry to its backing store atomically.
	Save() error
}
