package tinifier

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

// TinifyRelease writes a copy of the release at src to dest without its redundant
// compiled packages. Releases without compiled packages are skipped and nothing is written.
func (t *Tinifier) TinifyRelease(ctx context.Context, src, dest string) (*domain.Outcome, error) {
	a, err := t.reader.Open(src)
	if err != nil {
		return nil, err
	}
	if a.Format() != domain.FormatTarball {
		var err error = zerr.Wrap(domain.ErrUnsupportedFormat, "release must be a gzip tarball")
		err = zerr.With(err, "path", src)
		return nil, zerr.With(err, "format", string(a.Format()))
	}

	return t.tinifyRelease(ctx, a, dest)
}

// tinifyRelease is TinifyRelease for an already opened release tarball.
func (t *Tinifier) tinifyRelease(ctx context.Context, a ports.Archive, dest string) (*domain.Outcome, error) {
	src := a.Path()

	inputSize, err := fileSize(src)
	if err != nil {
		return nil, err
	}

	if !IsCompiledRelease(a) {
		outcome := domain.Skipped(src, domain.ReasonNotCompiled)
		outcome.InputSize = inputSize
		return outcome, nil
	}

	t.logger.Info("tinifying release: " + filepath.Base(src))

	analysis, err := t.Analyze(a)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("declared " + strconv.Itoa(analysis.Declared.Len()) +
		" compiled packages, " + strconv.Itoa(len(analysis.Jobs)) + " jobs require " +
		strconv.Itoa(analysis.Required.Intersect(analysis.Declared).Len()))

	if err := t.Rebuild(ctx, a, analysis.Redundant, dest); err != nil {
		return nil, err
	}

	outputSize, err := fileSize(dest)
	if err != nil {
		return nil, err
	}

	return &domain.Outcome{
		Status:     domain.StatusRebuilt,
		Input:      src,
		Output:     dest,
		Redundant:  analysis.Redundant.Sorted(),
		InputSize:  inputSize,
		OutputSize: outputSize,
	}, nil
}

// Rebuild extracts a into a fresh working tree, deletes the payloads of the redundant
// packages, rewrites the manifest to match and archives the tree at dest.
// The working tree is released on every path.
func (t *Tinifier) Rebuild(ctx context.Context, a ports.Archive, redundant domain.PackageSet, dest string) (err error) {
	tree, err := t.scratch.Acquire("tinify-release-*")
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := t.scratch.Release(tree); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	if err := a.ExtractAll(tree.Root); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, name := range redundant.Sorted() {
		t.logger.Debug("removing compiled package: " + name)
		if err := removePayload(tree.Root, name); err != nil {
			return zerr.With(err, "path", a.Path())
		}
	}

	filtered, err := t.rewriteManifest(tree.Root, redundant)
	if err != nil {
		return zerr.With(err, "path", a.Path())
	}

	if err := t.verifier.VerifyPayloads(tree.Root, filtered); err != nil {
		return zerr.With(err, "path", a.Path())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return t.writer.Write(tree.Root, dest, domain.FormatTarball)
}

// removePayload deletes the payload file of the named package. Names that would
// resolve outside compiled_packages are rejected before anything is touched.
func removePayload(root, name string) error {
	rel := filepath.FromSlash(domain.PayloadPath(name))
	if !domain.ValidPackageName(name) || !filepath.IsLocal(rel) {
		var err error = zerr.Wrap(domain.ErrUnsafeMemberPath, "refusing to remove payload")
		return zerr.With(err, "package", name)
	}

	payload := filepath.Join(root, rel)
	if err := os.Remove(payload); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			var wrapped error = zerr.Wrap(domain.ErrPayloadNotFound, "cannot remove redundant package")
			return zerr.With(wrapped, "package", name)
		}
		var wrapped error = zerr.Wrap(err, "failed to remove payload")
		return zerr.With(wrapped, "package", name)
	}
	return nil
}

// rewriteManifest replaces the tree's release manifest with one that no longer names
// the redundant packages, returning the filtered manifest.
func (t *Tinifier) rewriteManifest(root string, redundant domain.PackageSet) (*domain.ReleaseManifest, error) {
	manifestPath := filepath.Join(root, domain.ReleaseManifestName)

	original, err := os.ReadFile(manifestPath) //nolint:gosec // path inside our own working tree
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			var wrapped error = zerr.Wrap(domain.ErrMemberNotFound, "release has no manifest")
			return nil, zerr.With(wrapped, "member", domain.MemberPath(domain.ReleaseManifestName))
		}
		return nil, zerr.Wrap(err, domain.ErrFileOpenFailed.Error())
	}

	manifest, err := t.codec.DecodeRelease(original)
	if err != nil {
		return nil, err
	}
	filtered := manifest.Without(redundant)

	data, err := t.codec.RewriteRelease(original, filtered)
	if err != nil {
		return nil, err
	}

	if err := replaceFile(manifestPath, data); err != nil {
		var wrapped error = zerr.Wrap(errors.Join(domain.ErrManifestWriteFailed, err), "manifest not replaced")
		return nil, zerr.With(wrapped, "path", manifestPath)
	}

	return filtered, nil
}

// replaceFile writes data to a sibling temp file and renames it over path.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
