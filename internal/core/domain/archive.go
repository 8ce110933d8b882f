package domain

// ArchiveFormat identifies the container format of an archive.
type ArchiveFormat string

const (
	// FormatTarball is a gzip-compressed tar archive (releases, jobs, packages).
	FormatTarball ArchiveFormat = "tgz"
	// FormatZip is a zip container (tiles).
	FormatZip ArchiveFormat = "zip"
)

// WorkingTree is a scratch directory that one engine invocation extracts an archive into.
// It is owned by exactly one invocation and removed when that invocation ends.
type WorkingTree struct {
	Root string
}
