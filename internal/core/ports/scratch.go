package ports

import "go.trai.ch/tinify/internal/core/domain"

// ScratchSpace hands out exclusively-owned working trees.
//
//go:generate mockgen -source=scratch.go -destination=mocks/mock_scratch.go -package=mocks
type ScratchSpace interface {
	// Acquire creates a fresh, empty working tree.
	Acquire(pattern string) (*domain.WorkingTree, error)

	// Release removes the working tree and everything in it.
	Release(tree *domain.WorkingTree) error
}
