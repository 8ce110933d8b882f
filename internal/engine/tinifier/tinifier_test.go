package tinifier_test

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tinify/internal/adapters/archive"
	"go.trai.ch/tinify/internal/adapters/fs"
	"go.trai.ch/tinify/internal/adapters/manifest"
	"go.trai.ch/tinify/internal/adapters/scratch"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports/mocks"
	"go.trai.ch/tinify/internal/engine/tinifier"
	"go.trai.ch/tinify/internal/testutil/fixture"
	"go.uber.org/mock/gomock"
)

type harness struct {
	tinifier *tinifier.Tinifier
	scratch  string
	dir      string
}

// newHarness wires a Tinifier with the real adapters and a permissive logger mock.
func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	walker := fs.NewWalker()
	scratchDir := t.TempDir()

	return &harness{
		tinifier: tinifier.New(
			archive.NewReader(),
			archive.NewWriter(walker),
			manifest.NewCodec(),
			scratch.NewAt(scratchDir),
			fs.NewVerifier(walker),
			log,
		),
		scratch: scratchDir,
		dir:     t.TempDir(),
	}
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

// assertScratchEmpty checks that every working tree was released.
func (h *harness) assertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "working trees must be released")
}

func decodeOutputManifest(t *testing.T, members map[string][]byte) *domain.ReleaseManifest {
	t.Helper()
	data, ok := members["./release.MF"]
	require.True(t, ok, "output must contain release.MF")
	m, err := manifest.NewCodec().DecodeRelease(data)
	require.NoError(t, err)
	return m
}

func payloads(members map[string][]byte) []string {
	var names []string
	for name, data := range members {
		if data == nil {
			continue
		}
		if filepath.Dir(name) == "./compiled_packages" || filepath.Dir(name) == "compiled_packages" {
			names = append(names, filepath.Base(name))
		}
	}
	return names
}

func TestTinifyRelease_RemovesUnusedPackages(t *testing.T) {
	h := newHarness(t)
	rel := fixture.Release{
		Name: "cf",
		Packages: []fixture.Package{
			{Name: "A"},
			{Name: "B", Dependencies: []string{"A"}},
			{Name: "C"},
		},
		Jobs: []fixture.Job{{Name: "web", Packages: []string{"A"}}},
	}
	rel.Write(t, h.path("in.tgz"))

	outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRebuilt, outcome.Status)
	assert.Equal(t, []string{"B", "C"}, outcome.Redundant)
	assert.Positive(t, outcome.InputSize)
	assert.Positive(t, outcome.OutputSize)
	assert.Equal(t, h.path("out.tgz"), outcome.Output)

	members := fixture.ReadTarGzFile(t, h.path("out.tgz"))
	assert.ElementsMatch(t, []string{"A.tgz"}, payloads(members))
	assert.Equal(t, []domain.CompiledPackage{{Name: "A", Dependencies: []string{}}}, decodeOutputManifest(t, members).CompiledPackages)

	original := fixture.ReadTarGz(t, rel.Bytes())
	assert.Equal(t, original["./jobs/web.tgz"], members["./jobs/web.tgz"], "jobs are copied unchanged")
	assert.Equal(t, original["./license.tgz"], members["./license.tgz"])
	assert.Contains(t, members, "./")

	h.assertScratchEmpty(t)
}

func TestTinifyRelease_NoJobs(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Packages: []fixture.Package{{Name: "A"}, {Name: "B"}},
	}.Write(t, h.path("in.tgz"))

	outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, outcome.Redundant)

	members := fixture.ReadTarGzFile(t, h.path("out.tgz"))
	assert.Empty(t, payloads(members))
	assert.Contains(t, members, "./compiled_packages/", "directory stays present")
	assert.Empty(t, decodeOutputManifest(t, members).CompiledPackages)
}

func TestTinifyRelease_JobWithoutPackagesKey(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Packages: []fixture.Package{{Name: "A"}, {Name: "B"}},
		Jobs: []fixture.Job{
			{Name: "errand"},
			{Name: "web", Packages: []string{"A"}},
		},
	}.Write(t, h.path("in.tgz"))

	outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, outcome.Redundant)
}

func TestTinifyRelease_Idempotent(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Packages: []fixture.Package{
			{Name: "golang"},
			{Name: "ruby", Dependencies: []string{"golang"}},
			{Name: "python", Dependencies: []string{"golang"}},
		},
		Jobs: []fixture.Job{{Name: "api", Packages: []string{"ruby", "golang"}}},
	}.Write(t, h.path("in.tgz"))

	first, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("once.tgz"))
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, first.Redundant)

	second, err := h.tinifier.TinifyRelease(context.Background(), h.path("once.tgz"), h.path("twice.tgz"))
	require.NoError(t, err)
	assert.Empty(t, second.Redundant)

	once := decodeOutputManifest(t, fixture.ReadTarGzFile(t, h.path("once.tgz")))
	twice := decodeOutputManifest(t, fixture.ReadTarGzFile(t, h.path("twice.tgz")))
	assert.Equal(t, once, twice)
	assert.Equal(t, []domain.CompiledPackage{
		{Name: "golang", Dependencies: []string{}},
		{Name: "ruby", Dependencies: []string{"golang"}},
	}, twice.CompiledPackages)
}

func TestTinifyRelease_PreservesUnrelatedFields(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Name:     "cf",
		Version:  "7.2",
		Packages: []fixture.Package{{Name: "A"}, {Name: "B"}},
		Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
		Extra:    "commit_hash: abc123\nuncommitted_changes: false\n",
	}.Write(t, h.path("in.tgz"))

	_, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	mf := string(fixture.ReadTarGzFile(t, h.path("out.tgz"))["./release.MF"])
	assert.Contains(t, mf, "name: cf\n")
	assert.Contains(t, mf, "version: '7.2'\n")
	assert.Contains(t, mf, "fingerprint: A-fp\n")
	assert.Contains(t, mf, "commit_hash: abc123\n")
	assert.Contains(t, mf, "license:\n  version: lic-v1\n")
	assert.NotContains(t, mf, "B-fp")
}

func TestTinifyRelease_NotCompiled(t *testing.T) {
	h := newHarness(t)
	fixture.Release{Source: true}.Write(t, h.path("in.tgz"))

	outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSkipped, outcome.Status)
	assert.Equal(t, domain.ReasonNotCompiled, outcome.Reason)
	assert.Positive(t, outcome.InputSize)
	assert.NoFileExists(t, h.path("out.tgz"))
	h.assertScratchEmpty(t)
}

func TestTinifyRelease_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, path string)
		wantErr error
	}{
		{
			name: "not an archive",
			prepare: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))
			},
			wantErr: domain.ErrNotAnArchive,
		},
		{
			name: "zip instead of tarball",
			prepare: func(t *testing.T, path string) {
				fixture.WriteZip(t, path, map[string][]byte{"release.MF": []byte("name: x\n")})
			},
			wantErr: domain.ErrUnsupportedFormat,
		},
		{
			name: "redundant package without payload",
			prepare: func(t *testing.T, path string) {
				fixture.Release{
					Packages: []fixture.Package{{Name: "A"}, {Name: "B", NoPayload: true}},
					Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
				}.Write(t, path)
			},
			wantErr: domain.ErrPayloadNotFound,
		},
		{
			name: "kept package without payload",
			prepare: func(t *testing.T, path string) {
				fixture.Release{
					Packages: []fixture.Package{{Name: "A", NoPayload: true}, {Name: "B"}},
					Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
				}.Write(t, path)
			},
			wantErr: domain.ErrPayloadMismatch,
		},
		{
			name: "malformed job manifest",
			prepare: func(t *testing.T, path string) {
				rel := fixture.Release{Packages: []fixture.Package{{Name: "A"}}}
				entries := append(rel.Entries(), fixture.Entry{
					Name: "./jobs/broken.tgz",
					Data: fixture.TarGz([]fixture.Entry{{Name: "./job.MF", Data: []byte("packages: {a: b}\n")}}),
				})
				require.NoError(t, os.WriteFile(path, fixture.TarGz(entries), 0o600))
			},
			wantErr: domain.ErrManifestParseFailed,
		},
		{
			name: "job archive without manifest",
			prepare: func(t *testing.T, path string) {
				rel := fixture.Release{Packages: []fixture.Package{{Name: "A"}}}
				entries := append(rel.Entries(), fixture.Entry{
					Name: "./jobs/empty.tgz",
					Data: fixture.TarGz([]fixture.Entry{{Name: "./monit", Data: []byte("")}}),
				})
				require.NoError(t, os.WriteFile(path, fixture.TarGz(entries), 0o600))
			},
			wantErr: domain.ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.prepare(t, h.path("in.tgz"))

			outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, outcome)
			assert.NoFileExists(t, h.path("out.tgz"))
			h.assertScratchEmpty(t)
		})
	}
}

func TestTinifyRelease_EmptyManifest(t *testing.T) {
	h := newHarness(t)
	entries := fixture.Release{Jobs: []fixture.Job{{Name: "web"}}}.Entries()
	for i := range entries {
		if entries[i].Name == "./release.MF" {
			entries[i].Data = []byte{}
		}
	}
	require.NoError(t, os.WriteFile(h.path("in.tgz"), fixture.TarGz(entries), 0o600))

	outcome, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRebuilt, outcome.Status)
	assert.Empty(t, outcome.Redundant)
	members := fixture.ReadTarGzFile(t, h.path("out.tgz"))
	assert.Equal(t, "compiled_packages: []\n", string(members["./release.MF"]))
	h.assertScratchEmpty(t)
}

func TestTinifyRelease_KeepsDirectoryModes(t *testing.T) {
	h := newHarness(t)
	compiledRelease().Write(t, h.path("in.tgz"))

	_, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))
	require.NoError(t, err)

	f, err := os.Open(h.path("out.tgz"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	dirs := make(map[string]os.FileMode)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeDir {
			dirs[hdr.Name] = hdr.FileInfo().Mode().Perm()
		}
	}

	assert.Equal(t, os.FileMode(0o755), dirs["./"])
	assert.Equal(t, os.FileMode(0o755), dirs["./compiled_packages/"])
	assert.Equal(t, os.FileMode(0o755), dirs["./jobs/"])
}

func TestTinifyRelease_RejectsEscapingPackageName(t *testing.T) {
	h := newHarness(t)
	outside := filepath.Join(h.scratch, "victim.tgz")
	require.NoError(t, os.WriteFile(outside, []byte("not ours"), 0o600))

	fixture.Release{
		Packages: []fixture.Package{{Name: "A"}, {Name: "../../victim", NoPayload: true}},
		Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
	}.Write(t, h.path("in.tgz"))

	_, err := h.tinifier.TinifyRelease(context.Background(), h.path("in.tgz"), h.path("out.tgz"))

	require.ErrorIs(t, err, domain.ErrUnsafeMemberPath)
	assert.FileExists(t, outside)
	assert.NoFileExists(t, h.path("out.tgz"))

	entries, err := os.ReadDir(h.scratch)
	require.NoError(t, err)
	require.Len(t, entries, 1, "working tree must be released")
	assert.Equal(t, "victim.tgz", entries[0].Name())
}

func TestTinifyRelease_Canceled(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Packages: []fixture.Package{{Name: "A"}, {Name: "B"}},
		Jobs:     []fixture.Job{{Name: "web", Packages: []string{"A"}}},
	}.Write(t, h.path("in.tgz"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.tinifier.TinifyRelease(ctx, h.path("in.tgz"), h.path("out.tgz"))

	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, h.path("out.tgz"))
	h.assertScratchEmpty(t)
}

func TestAnalyze(t *testing.T) {
	h := newHarness(t)
	fixture.Release{
		Packages: []fixture.Package{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Jobs: []fixture.Job{
			{Name: "web", Packages: []string{"A", "phantom"}},
			{Name: "worker", Packages: []string{"B"}},
		},
	}.Write(t, h.path("in.tgz"))

	a, err := archive.NewReader().Open(h.path("in.tgz"))
	require.NoError(t, err)
	require.True(t, tinifier.IsCompiledRelease(a))

	analysis, err := h.tinifier.Analyze(a)
	require.NoError(t, err)

	require.Len(t, analysis.Jobs, 2)
	assert.Equal(t, "web", analysis.Jobs[0].Name)
	assert.Equal(t, "worker", analysis.Jobs[1].Name)
	assert.Equal(t, []string{"A", "B", "C"}, analysis.Declared.Sorted())
	assert.Equal(t, []string{"A", "B", "phantom"}, analysis.Required.Sorted())
	assert.Equal(t, []string{"C"}, analysis.Redundant.Sorted())
}
