// Package app implements the application layer for tinify.
package app

import (
	"context"
	"path/filepath"
	"strconv"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/tinify/internal/engine/tinifier"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	tinifier *tinifier.Tinifier
	hasher   ports.Hasher
	logger   ports.Logger
}

// New creates a new App instance.
func New(t *tinifier.Tinifier, hasher ports.Hasher, log ports.Logger) *App {
	return &App{
		tinifier: t,
		hasher:   hasher,
		logger:   log,
	}
}

// TinifyRelease tinifies the release at src into dest.
func (a *App) TinifyRelease(ctx context.Context, src, dest string) (*domain.Outcome, error) {
	if err := checkPaths(src, dest); err != nil {
		return nil, err
	}

	outcome, err := a.tinifier.TinifyRelease(ctx, src, dest)
	if err != nil {
		return nil, zerr.Wrap(err, "release tinification failed")
	}

	if err := a.fingerprint(outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// TinifyTile tinifies every compiled release inside the tile at src into dest.
func (a *App) TinifyTile(ctx context.Context, src, dest string) (*domain.TileOutcome, error) {
	if err := checkPaths(src, dest); err != nil {
		return nil, err
	}

	outcome, err := a.tinifier.TinifyTile(ctx, src, dest)
	if err != nil {
		return nil, zerr.Wrap(err, "tile tinification failed")
	}

	for _, r := range outcome.Releases {
		if r.Status == domain.StatusRebuilt {
			a.logger.Debug(r.Name + ": " + formatRemoved(r.Redundant))
		}
	}

	if err := a.fingerprint(&outcome.Outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// fingerprint records the digest of a written output.
func (a *App) fingerprint(outcome *domain.Outcome) error {
	if outcome.Status != domain.StatusRebuilt {
		return nil
	}

	digest, err := a.hasher.ComputeFileHash(outcome.Output)
	if err != nil {
		return zerr.With(err, "path", outcome.Output)
	}
	outcome.Digest = digest
	a.logger.Debug("output fingerprint: " + digest)

	return nil
}

// checkPaths rejects writing the output over the input.
func checkPaths(src, dest string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return zerr.Wrap(err, "invalid input path")
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return zerr.Wrap(err, "invalid output path")
	}
	if absSrc == absDest {
		var err error = zerr.Wrap(domain.ErrOutputIsInput, "refusing to overwrite input")
		return zerr.With(err, "path", absSrc)
	}
	return nil
}

func formatRemoved(names []string) string {
	switch len(names) {
	case 0:
		return "nothing to remove"
	case 1:
		return "removed 1 compiled package"
	default:
		return "removed " + strconv.Itoa(len(names)) + " compiled packages"
	}
}
