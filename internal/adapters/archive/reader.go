// Package archive reads and writes release tarballs and tile zip containers.
package archive

import (
	"bytes"
	"errors"
	"io"
	"os"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArchiveReader = (*Reader)(nil)

var (
	gzipMagic     = []byte{0x1f, 0x8b}
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
)

// Reader opens archives from disk, detecting their format from the leading bytes.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Open validates the file at path and returns it as an Archive.
func (r *Reader) Open(path string) (ports.Archive, error) {
	format, err := sniff(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case domain.FormatZip:
		return openZip(path)
	default:
		return openTarball(path, func() (io.ReadCloser, error) {
			return os.Open(path) //nolint:gosec // path is a user-supplied archive
		})
	}
}

// sniff reads the magic bytes of the file at path.
func sniff(path string) (domain.ArchiveFormat, error) {
	f, err := os.Open(path) //nolint:gosec // path is a user-supplied archive
	if err != nil {
		var wrapped error = zerr.Wrap(err, domain.ErrFileOpenFailed.Error())
		return "", zerr.With(wrapped, "path", path)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", notAnArchive(path, err)
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return domain.FormatTarball, nil
	case bytes.Equal(header, zipMagic), bytes.Equal(header, zipEmptyMagic):
		return domain.FormatZip, nil
	default:
		var err error = zerr.Wrap(errors.Join(domain.ErrNotAnArchive, domain.ErrUnknownFormat), "unrecognized archive")
		return "", zerr.With(err, "path", path)
	}
}

// notAnArchive builds an error matching domain.ErrNotAnArchive that keeps the parse cause.
func notAnArchive(path string, cause error) error {
	var err error = zerr.Wrap(errors.Join(domain.ErrNotAnArchive, cause), "unreadable archive")
	return zerr.With(err, "path", path)
}

// memberNotFound builds an error matching domain.ErrMemberNotFound.
func memberNotFound(path, member string) error {
	var err error = zerr.Wrap(domain.ErrMemberNotFound, "missing archive member")
	err = zerr.With(err, "path", path)
	return zerr.With(err, "member", member)
}
