// Package wiring registers all Graft nodes for the application. Import it
// for its side effects only, before resolving app.NodeID.
package wiring

import (
	// Register adapter nodes. cas.Registry and the engine packages
	// (graph, resolver, oracle, scheduler) are deliberately absent: they
	// need a runtime-resolved workspace root and are constructed directly
	// inside App.Run/App.Changed instead (see DESIGN.md).
	_ "go.nabs.build/nabs/internal/adapters/config"
	_ "go.nabs.build/nabs/internal/adapters/fs"
	_ "go.nabs.build/nabs/internal/adapters/git"
	_ "go.nabs.build/nabs/internal/adapters/logger"
	_ "go.nabs.build/nabs/internal/adapters/shell"
	// Register the app node.
	_ "go.nabs.build/nabs/internal/app"
)
