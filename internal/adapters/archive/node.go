package archive

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/tinify/internal/adapters/fs"
	"go.trai.ch/tinify/internal/core/ports"
)

const (
	// ReaderNodeID is the unique identifier for the archive reader Graft node.
	ReaderNodeID graft.ID = "adapter.archive.reader"
	// WriterNodeID is the unique identifier for the archive writer Graft node.
	WriterNodeID graft.ID = "adapter.archive.writer"
)

func init() {
	graft.Register(graft.Node[ports.ArchiveReader]{
		ID:        ReaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArchiveReader, error) {
			return NewReader(), nil
		},
	})

	graft.Register(graft.Node[ports.ArchiveWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.ArchiveWriter, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewWriter(walker), nil
		},
	})
}
