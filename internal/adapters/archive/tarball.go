package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archive = (*tarball)(nil)

// opener returns a fresh stream over the compressed archive bytes.
type opener func() (io.ReadCloser, error)

// tarball is a gzip-compressed tar archive. The member list is scanned once at open
// time; content is streamed again from the source on every read.
type tarball struct {
	path    string
	open    opener
	members []string
	index   map[string]byte
}

// openTarball scans the whole stream so that truncated or corrupt archives are
// rejected before anything is extracted.
func openTarball(name string, open opener) (*tarball, error) {
	t := &tarball{
		path:  name,
		open:  open,
		index: make(map[string]byte),
	}

	err := t.scan(func(hdr *tar.Header, _ io.Reader) error {
		t.members = append(t.members, hdr.Name)
		t.index[domain.LogicalPath(hdr.Name)] = hdr.Typeflag
		return nil
	})
	if err != nil {
		return nil, notAnArchive(name, err)
	}

	return t, nil
}

// openNestedTarball opens a tarball held entirely in memory.
func openNestedTarball(name string, data []byte) (*tarball, error) {
	return openTarball(name, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// scan streams every member header to fn. Returning errStop from fn ends the
// scan without error.
func (t *tarball) scan(fn func(hdr *tar.Header, content io.Reader) error) error {
	rc, err := t.open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	gz, err := gzip.NewReader(rc)
	if err != nil {
		return err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(hdr, tr); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}
	}
}

var errStop = errors.New("stop scan")

func (t *tarball) Path() string {
	return t.path
}

func (t *tarball) Format() domain.ArchiveFormat {
	return domain.FormatTarball
}

func (t *tarball) Members() []string {
	return append([]string(nil), t.members...)
}

func (t *tarball) Has(member string) bool {
	_, ok := t.index[domain.LogicalPath(member)]
	return ok
}

func (t *tarball) ReadMember(member string) ([]byte, error) {
	want := domain.LogicalPath(member)
	if typ, ok := t.index[want]; !ok || !isRegular(typ) {
		return nil, memberNotFound(t.path, member)
	}

	var data []byte
	err := t.scan(func(hdr *tar.Header, content io.Reader) error {
		if !isRegular(hdr.Typeflag) || domain.LogicalPath(hdr.Name) != want {
			return nil
		}
		var err error
		data, err = io.ReadAll(content)
		if err != nil {
			return err
		}
		return errStop
	})
	if err != nil {
		var wrapped error = zerr.Wrap(err, "failed to read archive member")
		wrapped = zerr.With(wrapped, "path", t.path)
		return nil, zerr.With(wrapped, "member", member)
	}

	return data, nil
}

func (t *tarball) WalkNested(dir string, fn func(member string, inner ports.Archive) error) error {
	parent := domain.LogicalPath(dir)

	return t.scan(func(hdr *tar.Header, content io.Reader) error {
		logical := domain.LogicalPath(hdr.Name)
		if !isRegular(hdr.Typeflag) || path.Dir(logical) != parent {
			return nil
		}

		data, err := io.ReadAll(content)
		if err != nil {
			var wrapped error = zerr.Wrap(err, "failed to read archive member")
			return zerr.With(wrapped, "member", hdr.Name)
		}

		inner, err := openNestedTarball(hdr.Name, data)
		if err != nil {
			return zerr.With(err, "member", hdr.Name)
		}
		return fn(hdr.Name, inner)
	})
}

func (t *tarball) ExtractAll(dest string) error {
	modes := make(dirModes)

	err := t.scan(func(hdr *tar.Header, content io.Reader) error {
		target, ok, err := extractTarget(dest, hdr.Name)
		if err != nil {
			return err
		}
		if !ok {
			if hdr.Typeflag != tar.TypeDir {
				return nil
			}
			target = dest
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return err
			}
			modes.record(target, hdr.FileInfo().Mode().Perm())
			return nil
		case tar.TypeReg:
			return writeFile(target, content, hdr.FileInfo().Mode().Perm())
		default:
			// Links and devices are dropped.
			return nil
		}
	})
	if err == nil {
		err = modes.apply()
	}
	if err != nil {
		return extractFailed(t.path, dest, err)
	}
	return nil
}

// ownerRWX is kept on every extracted directory so the working tree stays
// editable and removable.
const ownerRWX os.FileMode = 0o700

// dirModes collects directory permissions while extracting. They are applied once
// all members are written so that a read-only directory does not block its contents.
type dirModes map[string]os.FileMode

func (d dirModes) record(target string, perm os.FileMode) {
	if perm == 0 {
		return
	}
	d[target] = perm | ownerRWX
}

func (d dirModes) apply() error {
	for target, perm := range d {
		if err := os.Chmod(target, perm); err != nil {
			return err
		}
	}
	return nil
}

// isRegular reports whether a tar type flag denotes a regular file.
func isRegular(typ byte) bool {
	//nolint:staticcheck // TypeRegA is still produced by old archivers
	return typ == tar.TypeReg || typ == tar.TypeRegA
}

// extractTarget resolves a member name below dest. The root member resolves to
// nothing; names escaping dest are rejected.
func extractTarget(dest, member string) (string, bool, error) {
	rel := strings.TrimSuffix(strings.TrimPrefix(member, "./"), "/")
	if rel == "" || rel == "." {
		return "", false, nil
	}

	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		var err error = zerr.Wrap(domain.ErrUnsafeMemberPath, "refusing to extract member")
		return "", false, zerr.With(err, "member", member)
	}

	return filepath.Join(dest, rel), true, nil
}

// writeFile creates target with the given permissions and copies r into it.
func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}
	if perm == 0 {
		perm = domain.FilePerm
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // target is checked by extractTarget
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // archive sizes are bounded by the input file
		_ = f.Close()
		return err
	}
	return f.Close()
}

// extractFailed wraps an extraction error, keeping domain.ErrUnsafeMemberPath matchable.
func extractFailed(archivePath, dest string, cause error) error {
	var err error = zerr.Wrap(errors.Join(domain.ErrExtractFailed, cause), "extraction aborted")
	err = zerr.With(err, "path", archivePath)
	return zerr.With(err, "dest", dest)
}
