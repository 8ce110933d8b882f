// Package scratch hands out temporary working trees.
package scratch

import (
	"errors"
	"os"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ScratchSpace = (*Space)(nil)

// Space creates working trees below a base directory.
type Space struct {
	base string
}

// New creates a Space rooted at the system temp directory.
func New() *Space {
	return &Space{}
}

// NewAt creates a Space rooted at base.
func NewAt(base string) *Space {
	return &Space{base: base}
}

// Acquire creates a fresh, empty directory named after pattern.
func (s *Space) Acquire(pattern string) (*domain.WorkingTree, error) {
	root, err := os.MkdirTemp(s.base, pattern)
	if err != nil {
		var wrapped error = zerr.Wrap(errors.Join(domain.ErrScratchCreateFailed, err), "no working tree")
		return nil, zerr.With(wrapped, "pattern", pattern)
	}
	return &domain.WorkingTree{Root: root}, nil
}

// Release removes the working tree. Releasing a nil or already removed tree is a no-op.
func (s *Space) Release(tree *domain.WorkingTree) error {
	if tree == nil || tree.Root == "" {
		return nil
	}
	if err := os.RemoveAll(tree.Root); err != nil {
		var wrapped error = zerr.Wrap(errors.Join(domain.ErrScratchRemoveFailed, err), "working tree left behind")
		return zerr.With(wrapped, "path", tree.Root)
	}
	return nil
}
