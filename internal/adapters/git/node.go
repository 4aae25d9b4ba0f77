package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.nabs.build/nabs/internal/core/ports"
)

// NodeID is the unique identifier for the git client Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[ports.GitClient]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GitClient, error) {
			return NewClient(), nil
		},
	})
}
