// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/tinify/internal/core/domain"

//go:generate mockgen -source=archive.go -destination=mocks/mock_archive.go -package=mocks

// ArchiveReader opens archives from disk.
type ArchiveReader interface {
	// Open validates the file at path as a gzip tarball or zip container.
	// It returns domain.ErrNotAnArchive for anything else.
	Open(path string) (Archive, error)
}

// Archive is an opened, validated archive.
//
// Member arguments are logical paths: a leading "./" and a trailing "/" are ignored.
type Archive interface {
	// Path returns the file the archive was opened from.
	Path() string

	// Format returns the container format of the archive.
	Format() domain.ArchiveFormat

	// Members returns the member names in archive order.
	Members() []string

	// Has reports whether a member with the given logical path exists.
	Has(member string) bool

	// ReadMember returns the content of a regular member.
	// It returns domain.ErrMemberNotFound if the member is absent.
	ReadMember(member string) ([]byte, error)

	// WalkNested opens every regular member directly under dir as a nested gzip tarball,
	// streamed from this archive, and calls fn with it.
	WalkNested(dir string, fn func(member string, inner Archive) error) error

	// ExtractAll materializes every directory and regular file under dest.
	ExtractAll(dest string) error
}

// ArchiveWriter emits archives from a directory tree.
type ArchiveWriter interface {
	// Write archives the content of srcDir into dest using the given format.
	// Nothing is left at dest if writing fails.
	Write(srcDir, dest string, format domain.ArchiveFormat) error
}
