package archive

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Archive = (*zipArchive)(nil)

// creatorUnix is the "version made by" host byte of archives written on unix.
const creatorUnix = 3

// zipArchive is a zip container. The central directory is read once at open time
// and the file is reopened for every content access.
type zipArchive struct {
	path    string
	members []string
	index   map[string]bool
}

func openZip(name string) (*zipArchive, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, notAnArchive(name, err)
	}
	defer func() { _ = zr.Close() }()

	z := &zipArchive{
		path:  name,
		index: make(map[string]bool, len(zr.File)),
	}
	for _, f := range zr.File {
		z.members = append(z.members, f.Name)
		z.index[domain.LogicalPath(f.Name)] = !f.FileInfo().IsDir()
	}

	return z, nil
}

// each calls fn for every file in the container, in central directory order.
func (z *zipArchive) each(fn func(f *zip.File) error) error {
	zr, err := zip.OpenReader(z.path)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (z *zipArchive) Path() string {
	return z.path
}

func (z *zipArchive) Format() domain.ArchiveFormat {
	return domain.FormatZip
}

func (z *zipArchive) Members() []string {
	return append([]string(nil), z.members...)
}

func (z *zipArchive) Has(member string) bool {
	_, ok := z.index[domain.LogicalPath(member)]
	return ok
}

func (z *zipArchive) ReadMember(member string) ([]byte, error) {
	want := domain.LogicalPath(member)
	if regular, ok := z.index[want]; !ok || !regular {
		return nil, memberNotFound(z.path, member)
	}

	var data []byte
	err := z.each(func(f *zip.File) error {
		if data != nil || f.FileInfo().IsDir() || domain.LogicalPath(f.Name) != want {
			return nil
		}
		var err error
		data, err = readZipFile(f)
		return err
	})
	if err != nil {
		var wrapped error = zerr.Wrap(err, "failed to read archive member")
		wrapped = zerr.With(wrapped, "path", z.path)
		return nil, zerr.With(wrapped, "member", member)
	}

	return data, nil
}

func (z *zipArchive) WalkNested(dir string, fn func(member string, inner ports.Archive) error) error {
	parent := domain.LogicalPath(dir)

	return z.each(func(f *zip.File) error {
		if f.FileInfo().IsDir() || path.Dir(domain.LogicalPath(f.Name)) != parent {
			return nil
		}

		data, err := readZipFile(f)
		if err != nil {
			var wrapped error = zerr.Wrap(err, "failed to read archive member")
			return zerr.With(wrapped, "member", f.Name)
		}

		inner, err := openNestedTarball(f.Name, data)
		if err != nil {
			return zerr.With(err, "member", f.Name)
		}
		return fn(f.Name, inner)
	})
}

func (z *zipArchive) ExtractAll(dest string) error {
	modes := make(dirModes)

	err := z.each(func(f *zip.File) error {
		target, ok, err := extractTarget(dest, f.Name)
		if err != nil || !ok {
			return err
		}

		mode := f.FileInfo().Mode()
		switch {
		case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return err
			}
			// Only unix creators store meaningful permission bits.
			if f.CreatorVersion>>8 == creatorUnix {
				modes.record(target, mode.Perm())
			}
			return nil
		case mode.IsRegular():
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()
			return writeFile(target, rc, mode.Perm())
		default:
			return nil
		}
	})
	if err == nil {
		err = modes.apply()
	}
	if err != nil {
		return extractFailed(z.path, dest, err)
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
