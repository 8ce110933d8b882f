package scratch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tinify/internal/core/ports"
)

// NodeID is the unique identifier for the scratch space Graft node.
const NodeID graft.ID = "adapter.scratch"

func init() {
	graft.Register(graft.Node[ports.ScratchSpace]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ScratchSpace, error) {
			return New(), nil
		},
	})
}
