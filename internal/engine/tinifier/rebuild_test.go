package tinifier_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tinify/internal/adapters/manifest"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports/mocks"
	"go.trai.ch/tinify/internal/engine/tinifier"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type mockSet struct {
	reader   *mocks.MockArchiveReader
	writer   *mocks.MockArchiveWriter
	scratch  *mocks.MockScratchSpace
	verifier *mocks.MockPayloadVerifier
	logger   *mocks.MockLogger
	archive  *mocks.MockArchive
}

func newMocks(t *testing.T) (*tinifier.Tinifier, *mockSet) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &mockSet{
		reader:   mocks.NewMockArchiveReader(ctrl),
		writer:   mocks.NewMockArchiveWriter(ctrl),
		scratch:  mocks.NewMockScratchSpace(ctrl),
		verifier: mocks.NewMockPayloadVerifier(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		archive:  mocks.NewMockArchive(ctrl),
	}
	m.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	m.archive.EXPECT().Path().Return("in.tgz").AnyTimes()

	return tinifier.New(m.reader, m.writer, manifest.NewCodec(), m.scratch, m.verifier, m.logger), m
}

// extractRelease returns an ExtractAll stand-in that lays out a two-package release.
func extractRelease(dest string) error {
	files := map[string]string{
		"release.MF":              "compiled_packages:\n- name: A\n  dependencies: []\n- name: B\n  dependencies: [A]\n",
		"compiled_packages/A.tgz": "a",
		"compiled_packages/B.tgz": "b",
	}
	for rel, content := range files {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}
	}
	return nil
}

func TestRebuild_WritesFilteredTree(t *testing.T) {
	tn, m := newMocks(t)
	tree := &domain.WorkingTree{Root: t.TempDir()}

	gomock.InOrder(
		m.scratch.EXPECT().Acquire(gomock.Any()).Return(tree, nil),
		m.archive.EXPECT().ExtractAll(tree.Root).DoAndReturn(extractRelease),
		m.verifier.EXPECT().VerifyPayloads(tree.Root, gomock.Any()).
			DoAndReturn(func(_ string, filtered *domain.ReleaseManifest) error {
				assert.Equal(t, []string{"A"}, filtered.PackageNames().Sorted())
				return nil
			}),
		m.writer.EXPECT().Write(tree.Root, "out.tgz", domain.FormatTarball).
			DoAndReturn(func(src, _ string, _ domain.ArchiveFormat) error {
				assert.NoFileExists(t, filepath.Join(src, "compiled_packages", "B.tgz"))
				assert.FileExists(t, filepath.Join(src, "compiled_packages", "A.tgz"))
				data, err := os.ReadFile(filepath.Join(src, "release.MF"))
				require.NoError(t, err)
				assert.Equal(t, "compiled_packages:\n  - name: A\n    dependencies: []\n", string(data))
				return nil
			}),
		m.scratch.EXPECT().Release(tree).Return(nil),
	)

	err := tn.Rebuild(context.Background(), m.archive, domain.NewPackageSet("B"), "out.tgz")
	require.NoError(t, err)
}

func TestRebuild_VerifierFailureSkipsWrite(t *testing.T) {
	tn, m := newMocks(t)
	tree := &domain.WorkingTree{Root: t.TempDir()}

	m.scratch.EXPECT().Acquire(gomock.Any()).Return(tree, nil)
	m.archive.EXPECT().ExtractAll(tree.Root).DoAndReturn(extractRelease)
	m.verifier.EXPECT().VerifyPayloads(tree.Root, gomock.Any()).Return(zerr.Wrap(domain.ErrPayloadMismatch, "payload check failed"))
	m.scratch.EXPECT().Release(tree).Return(nil)

	err := tn.Rebuild(context.Background(), m.archive, domain.NewPackageSet("B"), "out.tgz")
	require.ErrorIs(t, err, domain.ErrPayloadMismatch)
}

func TestRebuild_JoinsReleaseError(t *testing.T) {
	tn, m := newMocks(t)
	tree := &domain.WorkingTree{Root: t.TempDir()}

	m.scratch.EXPECT().Acquire(gomock.Any()).Return(tree, nil)
	m.archive.EXPECT().ExtractAll(tree.Root).Return(zerr.Wrap(domain.ErrExtractFailed, "boom"))
	m.scratch.EXPECT().Release(tree).Return(zerr.Wrap(domain.ErrScratchRemoveFailed, "busy"))

	err := tn.Rebuild(context.Background(), m.archive, domain.NewPackageSet(), "out.tgz")
	require.ErrorIs(t, err, domain.ErrExtractFailed)
	require.ErrorIs(t, err, domain.ErrScratchRemoveFailed)
}

func TestRebuild_AcquireFailure(t *testing.T) {
	tn, m := newMocks(t)

	m.scratch.EXPECT().Acquire(gomock.Any()).Return(nil, zerr.Wrap(domain.ErrScratchCreateFailed, "disk full"))

	err := tn.Rebuild(context.Background(), m.archive, domain.NewPackageSet(), "out.tgz")
	require.ErrorIs(t, err, domain.ErrScratchCreateFailed)
}

func TestRebuild_MissingManifest(t *testing.T) {
	tn, m := newMocks(t)
	tree := &domain.WorkingTree{Root: t.TempDir()}

	m.scratch.EXPECT().Acquire(gomock.Any()).Return(tree, nil)
	m.archive.EXPECT().ExtractAll(tree.Root).Return(nil)
	m.scratch.EXPECT().Release(tree).Return(nil)

	err := tn.Rebuild(context.Background(), m.archive, domain.NewPackageSet(), "out.tgz")
	require.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestTinifyRelease_OpenFailure(t *testing.T) {
	tn, m := newMocks(t)

	m.reader.EXPECT().Open("in.tgz").Return(nil, zerr.Wrap(domain.ErrNotAnArchive, "unrecognized archive"))

	_, err := tn.TinifyRelease(context.Background(), "in.tgz", "out.tgz")
	require.ErrorIs(t, err, domain.ErrNotAnArchive)
}

func TestIsCompiledRelease(t *testing.T) {
	_, m := newMocks(t)

	m.archive.EXPECT().Has("./compiled_packages").Return(true)
	assert.True(t, tinifier.IsCompiledRelease(m.archive))

	m.archive.EXPECT().Has("./compiled_packages").Return(false)
	assert.False(t, tinifier.IsCompiledRelease(m.archive))
}
