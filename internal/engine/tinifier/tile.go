package tinifier

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/zerr"
)

// reasonNotArchive is the skip reason for files under releases/ that are not release tarballs.
const reasonNotArchive = "not a release archive"

// TinifyTile writes a copy of the tile at src to dest in which every compiled release
// has been tinified. Other files are copied unchanged. The first failing release aborts
// the whole tile and nothing is written at dest.
func (t *Tinifier) TinifyTile(ctx context.Context, src, dest string) (_ *domain.TileOutcome, err error) {
	a, err := t.reader.Open(src)
	if err != nil {
		return nil, err
	}
	if a.Format() != domain.FormatZip {
		var err error = zerr.Wrap(domain.ErrNotAnArchive, "tile must be a zip container")
		return nil, zerr.With(err, "path", src)
	}

	inputSize, err := fileSize(src)
	if err != nil {
		return nil, err
	}

	tree, err := t.scratch.Acquire("tinify-tile-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := t.scratch.Release(tree); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	if err := a.ExtractAll(tree.Root); err != nil {
		return nil, err
	}

	releases, err := t.tinifyReleases(ctx, filepath.Join(tree.Root, domain.TileReleasesDir))
	if err != nil {
		return nil, zerr.With(err, "tile", src)
	}

	if err := t.writer.Write(tree.Root, dest, domain.FormatZip); err != nil {
		return nil, err
	}

	outputSize, err := fileSize(dest)
	if err != nil {
		return nil, err
	}

	return &domain.TileOutcome{
		Outcome: domain.Outcome{
			Status:     domain.StatusRebuilt,
			Input:      src,
			Output:     dest,
			InputSize:  inputSize,
			OutputSize: outputSize,
		},
		Releases: releases,
	}, nil
}

// tinifyReleases tinifies every regular file in dir one at a time, in lexical order,
// replacing each rebuilt release in place. The first failure stops the loop.
func (t *Tinifier) tinifyReleases(ctx context.Context, dir string) ([]domain.ReleaseOutcome, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			var wrapped error = zerr.Wrap(domain.ErrMemberNotFound, "tile has no releases directory")
			return nil, zerr.With(wrapped, "member", domain.TileReleasesDir)
		}
		return nil, zerr.Wrap(err, "failed to list releases")
	}

	var outcomes []domain.ReleaseOutcome
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		outcome, err := t.tinifyTileRelease(ctx, dir, entry.Name())
		if err != nil {
			var wrapped error = zerr.Wrap(errors.Join(domain.ErrReleaseFailed, err), "tile aborted")
			return nil, zerr.With(wrapped, "release", entry.Name())
		}
		outcomes = append(outcomes, domain.ReleaseOutcome{Name: entry.Name(), Outcome: *outcome})
	}

	return outcomes, nil
}

// tinifyTileRelease tinifies one release into a ".tiny" sibling and renames it over
// the original. Files whose leading bytes are not those of a gzip tarball, and releases
// without compiled packages, are left untouched. A recognized but unreadable release
// is an error.
func (t *Tinifier) tinifyTileRelease(ctx context.Context, dir, name string) (*domain.Outcome, error) {
	releasePath := filepath.Join(dir, name)
	tinyPath := releasePath + domain.TinySuffix

	a, err := t.reader.Open(releasePath)
	switch {
	case errors.Is(err, domain.ErrUnknownFormat):
		return t.skipNotArchive(name, releasePath), nil
	case err != nil:
		return nil, err
	case a.Format() != domain.FormatTarball:
		return t.skipNotArchive(name, releasePath), nil
	}

	outcome, err := t.tinifyRelease(ctx, a, tinyPath)
	if err != nil {
		return nil, err
	}

	if outcome.Status == domain.StatusSkipped {
		t.logger.Warn("skipping " + name + ": " + outcome.Reason)
		return outcome, nil
	}

	if err := os.Rename(tinyPath, releasePath); err != nil {
		_ = os.Remove(tinyPath)
		var wrapped error = zerr.Wrap(errors.Join(domain.ErrArchiveWriteFailed, err), "release not replaced")
		return nil, zerr.With(wrapped, "path", releasePath)
	}
	outcome.Output = releasePath

	return outcome, nil
}

func (t *Tinifier) skipNotArchive(name, releasePath string) *domain.Outcome {
	t.logger.Warn("skipping " + name + ": " + reasonNotArchive)
	return domain.Skipped(releasePath, reasonNotArchive)
}
