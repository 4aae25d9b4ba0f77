package ports

import "go.nabs.build/nabs/internal/core/domain"

// ConfigLoader defines the interface for loading a workspace's configuration
// into a task graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the workspace root by walking upward from cwd, reads
	// every project's configuration file, and returns the fully resolved
	// workspace graph.
	Load(cwd string) (*domain.Graph, error)
}
