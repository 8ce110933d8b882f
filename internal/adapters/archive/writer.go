package archive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"go.trai.ch/tinify/internal/adapters/fs"
	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArchiveWriter = (*Writer)(nil)

// Writer emits directory trees as gzip tarballs or zip containers.
type Writer struct {
	walker *fs.Walker
}

// NewWriter creates a new Writer.
func NewWriter(walker *fs.Walker) *Writer {
	return &Writer{walker: walker}
}

// Write archives srcDir into dest. The archive is written to a temporary file in the
// destination directory and renamed over dest once complete.
func (w *Writer) Write(srcDir, dest string, format domain.ArchiveFormat) error {
	var emit func(out io.Writer) error
	switch format {
	case domain.FormatTarball:
		emit = func(out io.Writer) error { return w.writeTarball(srcDir, out) }
	case domain.FormatZip:
		emit = func(out io.Writer) error { return w.writeZip(srcDir, out) }
	default:
		var err error = zerr.Wrap(domain.ErrUnsupportedFormat, "cannot write archive")
		return zerr.With(err, "format", string(format))
	}

	if err := writeAtomic(dest, emit); err != nil {
		var wrapped error = zerr.Wrap(errors.Join(domain.ErrArchiveWriteFailed, err), "archive not written")
		wrapped = zerr.With(wrapped, "src", srcDir)
		return zerr.With(wrapped, "dest", dest)
	}
	return nil
}

// writeAtomic runs emit against a temporary sibling of dest and renames it into place.
func writeAtomic(dest string, emit func(out io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = emit(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(domain.FilePerm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func (w *Writer) writeTarball(srcDir string, out io.Writer) error {
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for entry, err := range w.walker.WalkTree(srcDir) {
		if err != nil {
			return err
		}
		if err := writeTarEntry(tw, entry); err != nil {
			return zerr.With(err, "entry", entry.Rel)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// writeTarEntry writes one directory or regular file using the "./" member prefix.
func writeTarEntry(tw *tar.Writer, entry fs.Entry) error {
	mode := entry.Info.Mode()
	if !entry.IsDir() && !mode.IsRegular() {
		return nil
	}

	header, err := tar.FileInfoHeader(entry.Info, "")
	if err != nil {
		return err
	}
	header.Name = domain.MemberPath(entry.Rel)
	if entry.IsDir() && entry.Rel != "" {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if entry.IsDir() {
		return nil
	}

	return copyFile(tw, entry.Path)
}

func (w *Writer) writeZip(srcDir string, out io.Writer) error {
	zw := zip.NewWriter(out)

	for entry, err := range w.walker.WalkTree(srcDir) {
		if err != nil {
			return err
		}
		if entry.Rel == "" {
			continue
		}
		if err := writeZipEntry(zw, entry); err != nil {
			return zerr.With(err, "entry", entry.Rel)
		}
	}

	return zw.Close()
}

// writeZipEntry writes one directory or regular file without a "./" prefix.
func writeZipEntry(zw *zip.Writer, entry fs.Entry) error {
	mode := entry.Info.Mode()
	if !entry.IsDir() && !mode.IsRegular() {
		return nil
	}

	header, err := zip.FileInfoHeader(entry.Info)
	if err != nil {
		return err
	}
	header.Name = entry.Rel
	if entry.IsDir() {
		header.Name += "/"
		header.Method = zip.Store
	} else {
		header.Method = zip.Deflate
	}

	fw, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if entry.IsDir() {
		return nil
	}

	return copyFile(fw, entry.Path)
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from walking the source tree
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(dst, f)
	return err
}
