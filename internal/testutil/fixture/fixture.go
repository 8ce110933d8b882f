// Package fixture builds release tarballs and tile containers for tests.
package fixture

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// Package is a compiled package of a fixture release.
type Package struct {
	Name         string
	Dependencies []string
	// NoPayload omits the payload file while keeping the manifest record.
	NoPayload bool
}

// Job is a job of a fixture release.
type Job struct {
	Name string
	// Packages lists the packages the job requires. A nil slice omits the key.
	Packages []string
}

// Release describes a release tarball.
type Release struct {
	Name     string
	Version  string
	Packages []Package
	Jobs     []Job
	// Source makes the release a source release: no compiled packages directory.
	Source bool
	// Extra is appended verbatim to the manifest's top-level fields.
	Extra string
}

// Manifest renders the release.MF document of r with flow-style dependency lists.
func (r Release) Manifest() string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: " + orDefault(r.Name, "fixture") + "\n")
	b.WriteString("version: '" + orDefault(r.Version, "1.0") + "'\n")

	switch {
	case r.Source:
		b.WriteString("packages: []\n")
	case len(r.Packages) == 0:
		b.WriteString("compiled_packages: []\n")
	default:
		b.WriteString("compiled_packages:\n")
		for _, p := range r.Packages {
			b.WriteString("- name: " + p.Name + "\n")
			b.WriteString("  version: " + p.Name + "-v1\n")
			b.WriteString("  fingerprint: " + p.Name + "-fp\n")
			b.WriteString("  stemcell: ubuntu-jammy/1.0\n")
			b.WriteString("  dependencies: [" + strings.Join(p.Dependencies, ", ") + "]\n")
		}
	}

	if len(r.Jobs) == 0 {
		b.WriteString("jobs: []\n")
	} else {
		b.WriteString("jobs:\n")
		for _, j := range r.Jobs {
			b.WriteString("- name: " + j.Name + "\n  version: " + j.Name + "-v1\n")
		}
	}
	b.WriteString("license:\n  version: lic-v1\n")
	b.WriteString(r.Extra)

	return b.String()
}

// Entry is a tar member. A nil Data marks a directory.
type Entry struct {
	Name string
	Data []byte
	// Mode overrides the default permission bits when non-zero.
	Mode int64
}

// Entries returns the tar members of r in archive order.
func (r Release) Entries() []Entry {
	entries := []Entry{
		{Name: "./"},
		{Name: "./release.MF", Data: []byte(r.Manifest())},
		{Name: "./jobs/"},
	}
	for _, j := range r.Jobs {
		entries = append(entries, Entry{Name: "./jobs/" + j.Name + ".tgz", Data: JobArchive(j)})
	}
	if !r.Source {
		entries = append(entries, Entry{Name: "./compiled_packages/"})
		for _, p := range r.Packages {
			if p.NoPayload {
				continue
			}
			entries = append(entries, Entry{
				Name: "./compiled_packages/" + p.Name + ".tgz",
				Data: []byte("payload of " + p.Name),
			})
		}
	} else {
		entries = append(entries, Entry{Name: "./packages/"})
	}
	entries = append(entries, Entry{Name: "./license.tgz", Data: []byte("license")})

	return entries
}

// Bytes returns r as a gzip tarball.
func (r Release) Bytes() []byte {
	return TarGz(r.Entries())
}

// Write stores r as a gzip tarball at path.
func (r Release) Write(tb testing.TB, path string) {
	tb.Helper()
	require.NoError(tb, os.WriteFile(path, r.Bytes(), 0o600))
}

// JobArchive returns the nested job tarball for j.
func JobArchive(j Job) []byte {
	var b strings.Builder
	b.WriteString("---\nname: " + j.Name + "\ntemplates:\n  ctl.erb: bin/ctl\n")
	switch {
	case j.Packages == nil:
		// packages key omitted
	case len(j.Packages) == 0:
		b.WriteString("packages: []\n")
	default:
		b.WriteString("packages:\n")
		for _, p := range j.Packages {
			b.WriteString("- " + p + "\n")
		}
	}
	b.WriteString("properties: {}\n")

	return TarGz([]Entry{
		{Name: "./"},
		{Name: "./job.MF", Data: []byte(b.String())},
		{Name: "./templates/"},
		{Name: "./templates/ctl.erb", Data: []byte("#!/bin/bash\n")},
		{Name: "./monit", Data: []byte("")},
	})
}

// TarGz builds a gzip tarball from entries.
func TarGz(entries []Entry) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0o644, Typeflag: tar.TypeReg, Size: int64(len(e.Data))}
		if e.Data == nil {
			hdr = &tar.Header{Name: e.Name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if e.Mode != 0 {
			hdr.Mode = e.Mode
		}
		if err := tw.WriteHeader(hdr); err != nil {
			panic(err)
		}
		if _, err := tw.Write(e.Data); err != nil {
			panic(err)
		}
	}

	if err := tw.Close(); err != nil {
		panic(err)
	}
	if err := gz.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteZip stores files as a zip container at path. Names ending in "/" are directories.
func WriteZip(tb testing.TB, path string, files map[string][]byte) {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedKeys(files) {
		w, err := zw.Create(name)
		require.NoError(tb, err)
		if !strings.HasSuffix(name, "/") {
			_, err = w.Write(files[name])
			require.NoError(tb, err)
		}
	}
	require.NoError(tb, zw.Close())
	require.NoError(tb, os.WriteFile(path, buf.Bytes(), 0o600))
}

// ReadTarGz returns the members of a gzip tarball. Directories map to nil.
func ReadTarGz(tb testing.TB, data []byte) map[string][]byte {
	tb.Helper()

	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(tb, err)
	tr := tar.NewReader(gz)

	members := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(tb, err)
		if hdr.Typeflag == tar.TypeDir {
			members[hdr.Name] = nil
			continue
		}
		content, err := io.ReadAll(tr)
		require.NoError(tb, err)
		members[hdr.Name] = content
	}
	return members
}

// ReadTarGzFile returns the members of the gzip tarball at path.
func ReadTarGzFile(tb testing.TB, path string) map[string][]byte {
	tb.Helper()
	data, err := os.ReadFile(filepath.Clean(path))
	require.NoError(tb, err)
	return ReadTarGz(tb, data)
}

// ReadZipFile returns the files of the zip container at path. Directories map to nil.
func ReadZipFile(tb testing.TB, path string) map[string][]byte {
	tb.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(tb, err)
	defer func() { _ = zr.Close() }()

	files := make(map[string][]byte)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			files[f.Name] = nil
			continue
		}
		rc, err := f.Open()
		require.NoError(tb, err)
		content, err := io.ReadAll(rc)
		require.NoError(tb, err)
		require.NoError(tb, rc.Close())
		files[f.Name] = content
	}
	return files
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
