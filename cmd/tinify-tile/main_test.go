package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tinify/internal/adapters/archive"
	"go.trai.ch/tinify/internal/adapters/fs"
	"go.trai.ch/tinify/internal/adapters/manifest"
	"go.trai.ch/tinify/internal/adapters/scratch"
	"go.trai.ch/tinify/internal/app"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports/mocks"
	"go.trai.ch/tinify/internal/engine/tinifier"
	"go.trai.ch/tinify/internal/testutil/fixture"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T, mockLogger *mocks.MockLogger, mockHasher *mocks.MockHasher) ComponentProvider {
	t.Helper()

	walker := fs.NewWalker()
	engine := tinifier.New(
		archive.NewReader(),
		archive.NewWriter(walker),
		manifest.NewCodec(),
		scratch.NewAt(t.TempDir()),
		fs.NewVerifier(walker),
		mockLogger,
	)
	application := app.New(engine, mockHasher, mockLogger)

	return func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}
}

func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

func TestRun_Tinify(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockHasher := mocks.NewMockHasher(ctrl)
	mockHasher.EXPECT().ComputeFileHash(gomock.Any()).Return("0123456789abcdef", nil)

	dir := t.TempDir()
	src, dest := filepath.Join(dir, "in.pivotal"), filepath.Join(dir, "out.pivotal")
	fixture.WriteZip(t, src, map[string][]byte{
		"releases/cf.tgz": fixture.Release{
			Packages: []fixture.Package{{Name: "A"}, {Name: "B"}},
			Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
		}.Bytes(),
	})

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{src, dest}, stdout, new(bytes.Buffer), newProvider(t, mockLogger, mockHasher))

	assert.Equal(t, 0, exitCode)
	assert.FileExists(t, dest)
	assert.Contains(t, stdout.String(), "% reduction!\n")
}

func TestRun_ReleaseFailureAbortsTile(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()

	var logged error
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) { logged = err })

	dir := t.TempDir()
	src, dest := filepath.Join(dir, "in.pivotal"), filepath.Join(dir, "out.pivotal")
	fixture.WriteZip(t, src, map[string][]byte{
		"releases/cf.tgz": fixture.Release{
			Packages: []fixture.Package{{Name: "A"}, {Name: "B", NoPayload: true}},
			Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
		}.Bytes(),
	})

	exitCode := run(context.Background(), []string{src, dest}, new(bytes.Buffer), new(bytes.Buffer),
		newProvider(t, mockLogger, mocks.NewMockHasher(ctrl)))

	assert.Equal(t, 1, exitCode)
	assert.ErrorIs(t, logged, domain.ErrReleaseFailed)
	assert.NoFileExists(t, dest)
}
