package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.nabs.build/nabs/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.nabs.build/nabs/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.nabs.build/nabs/internal/adapters/git"     //nolint:depguard // Wired in app layer
	"go.nabs.build/nabs/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.nabs.build/nabs/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.nabs.build/nabs/internal/core/ports"
)

// NodeID is the unique identifier for the App Graft node. App itself has
// only path-independent dependencies (every adapter it holds is a graft
// singleton); the path-dependent pieces — the hash registry, the oracle,
// the scheduler — are constructed per-invocation inside Run/Changed once
// the workspace root is known, and are never graft-registered (see
// DESIGN.md).
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.HasherNodeID,
			shell.NodeID,
			git.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			gitClient, err := graft.Dep[ports.GitClient](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, hasher, executor, gitClient, log), nil
		},
	})
}
