package domain

import (
	"path"
	"strings"
)

const (
	// ReleaseManifestName is the root manifest of a release archive.
	ReleaseManifestName = "release.MF"

	// CompiledPackagesDir holds one payload file per compiled package.
	CompiledPackagesDir = "compiled_packages"

	// JobsDir holds one nested job archive per job.
	JobsDir = "jobs"

	// JobManifestName is the manifest inside a nested job archive.
	JobManifestName = "job.MF"

	// PayloadExt is the file extension of a compiled package payload.
	PayloadExt = ".tgz"

	// TileReleasesDir is the directory inside a tile that holds release archives.
	TileReleasesDir = "releases"

	// TinySuffix is appended to a release inside a tile while its replacement is being written.
	TinySuffix = ".tiny"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// MemberPath returns the archive member name for a root-relative logical path,
// using the leading "./" that release tarballs carry.
func MemberPath(logical string) string {
	logical = LogicalPath(logical)
	if logical == "" {
		return "./"
	}
	return "./" + logical
}

// LogicalPath normalizes an archive member name so that "./jobs/web", "jobs/web"
// and "jobs/web/" compare equal.
func LogicalPath(member string) string {
	cleaned := path.Clean("/" + strings.TrimPrefix(member, "./"))
	return strings.TrimPrefix(cleaned, "/")
}

// ValidPackageName reports whether name can name a payload file: it must be
// non-empty and a single path element.
func ValidPackageName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`)
}

// PayloadPath returns the root-relative path of a compiled package payload.
func PayloadPath(name string) string {
	return path.Join(CompiledPackagesDir, name+PayloadExt)
}

// PayloadName returns the package name encoded in a payload file name,
// and false if the file is not a payload.
func PayloadName(fileName string) (string, bool) {
	if !strings.HasSuffix(fileName, PayloadExt) {
		return "", false
	}
	return strings.TrimSuffix(fileName, PayloadExt), true
}
