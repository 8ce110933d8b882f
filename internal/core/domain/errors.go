package domain

import "go.trai.ch/zerr"

var (
	// ErrNotAnArchive is returned when an input is not a gzip tarball or zip container.
	ErrNotAnArchive = zerr.New("not an archive")

	// ErrUnknownFormat marks an ErrNotAnArchive caused by the file's leading bytes alone,
	// as opposed to an archive that is recognized but corrupt.
	ErrUnknownFormat = zerr.New("unrecognized archive format")

	// ErrUnsupportedFormat is returned when an archive has the wrong format for the operation,
	// e.g. a zip passed where a release tarball is expected.
	ErrUnsupportedFormat = zerr.New("unsupported archive format")

	// ErrMemberNotFound is returned when a required archive member is absent.
	ErrMemberNotFound = zerr.New("archive member not found")

	// ErrUnsafeMemberPath is returned when an archive member would extract outside the destination.
	ErrUnsafeMemberPath = zerr.New("archive member escapes extraction root")

	// ErrExtractFailed is returned when an archive cannot be materialized on disk.
	ErrExtractFailed = zerr.New("failed to extract archive")

	// ErrArchiveWriteFailed is returned when an output archive cannot be written.
	ErrArchiveWriteFailed = zerr.New("failed to write archive")

	// ErrPayloadNotFound is returned when a redundant package has no payload file to delete.
	ErrPayloadNotFound = zerr.New("compiled package payload not found")

	// ErrPayloadMismatch is returned when the payload files left in a release do not match its manifest.
	ErrPayloadMismatch = zerr.New("compiled package payloads do not match manifest")

	// ErrManifestParseFailed is returned when a release or job manifest cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrManifestEncodeFailed is returned when a release manifest cannot be serialized.
	ErrManifestEncodeFailed = zerr.New("failed to encode manifest")

	// ErrManifestWriteFailed is returned when the rewritten manifest cannot replace the old one.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrScratchCreateFailed is returned when a scratch directory cannot be created.
	ErrScratchCreateFailed = zerr.New("failed to create scratch directory")

	// ErrScratchRemoveFailed is returned when a scratch directory cannot be removed.
	ErrScratchRemoveFailed = zerr.New("failed to remove scratch directory")

	// ErrReleaseFailed is returned when one release inside a tile cannot be tinified.
	ErrReleaseFailed = zerr.New("failed to tinify release")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")
)

// ErrOutputIsInput is returned when the output path names the input archive.
var ErrOutputIsInput = zerr.New("output path must differ from input path")
