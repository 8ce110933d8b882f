package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PayloadVerifier = (*Verifier)(nil)

// Verifier checks payload files of a working tree against its manifest.
type Verifier struct {
	walker *Walker
}

// NewVerifier creates a new Verifier.
func NewVerifier(walker *Walker) *Verifier {
	return &Verifier{walker: walker}
}

// VerifyPayloads checks that the payload files under root/compiled_packages are exactly
// the packages listed in m.
func (v *Verifier) VerifyPayloads(root string, m *domain.ReleaseManifest) error {
	dir := filepath.Join(root, domain.CompiledPackagesDir)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrMemberNotFound, "compiled packages directory missing"), "path", dir)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", dir)
	}

	present := domain.NewPackageSet()
	for path := range v.walker.WalkFiles(dir) {
		// Only top-level .tgz files are payloads.
		if filepath.Dir(path) != dir {
			continue
		}
		if name, ok := domain.PayloadName(filepath.Base(path)); ok {
			present.Add(name)
		}
	}

	declared := m.PackageNames()
	missing := declared.Difference(present)
	extra := present.Difference(declared)
	if missing.Len() == 0 && extra.Len() == 0 {
		return nil
	}

	var err error = zerr.Wrap(domain.ErrPayloadMismatch, "payload check failed")
	if missing.Len() > 0 {
		err = zerr.With(err, "missing", strings.Join(missing.Sorted(), ","))
	}
	if extra.Len() > 0 {
		err = zerr.With(err, "undeclared", strings.Join(extra.Sorted(), ","))
	}
	return err
}
