package tinifier

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tinify/internal/adapters/archive"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tinify/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tinify/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tinify/internal/adapters/manifest" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tinify/internal/adapters/scratch"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/tinify/internal/core/ports"
)

// NodeID is the unique identifier for the tinifier Graft node.
const NodeID graft.ID = "engine.tinifier"

func init() {
	graft.Register(graft.Node[*Tinifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			archive.ReaderNodeID,
			archive.WriterNodeID,
			manifest.NodeID,
			scratch.NodeID,
			fs.VerifierNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Tinifier, error) {
			reader, err := graft.Dep[ports.ArchiveReader](ctx)
			if err != nil {
				return nil, err
			}

			writer, err := graft.Dep[ports.ArchiveWriter](ctx)
			if err != nil {
				return nil, err
			}

			codec, err := graft.Dep[ports.ManifestCodec](ctx)
			if err != nil {
				return nil, err
			}

			space, err := graft.Dep[ports.ScratchSpace](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.PayloadVerifier](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(reader, writer, codec, space, verifier, log), nil
		},
	})
}
