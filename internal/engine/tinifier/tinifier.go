// Package tinifier removes compiled packages that no job requires from releases and tiles.
package tinifier

import (
	"os"
	"path"
	"strings"

	"go.trai.ch/tinify/internal/core/domain"
	"go.trai.ch/tinify/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tinifier rebuilds release tarballs and tiles without their redundant compiled packages.
type Tinifier struct {
	reader   ports.ArchiveReader
	writer   ports.ArchiveWriter
	codec    ports.ManifestCodec
	scratch  ports.ScratchSpace
	verifier ports.PayloadVerifier
	logger   ports.Logger
}

// New creates a new Tinifier.
func New(
	reader ports.ArchiveReader,
	writer ports.ArchiveWriter,
	codec ports.ManifestCodec,
	scratch ports.ScratchSpace,
	verifier ports.PayloadVerifier,
	logger ports.Logger,
) *Tinifier {
	return &Tinifier{
		reader:   reader,
		writer:   writer,
		codec:    codec,
		scratch:  scratch,
		verifier: verifier,
		logger:   logger,
	}
}

// IsCompiledRelease reports whether a carries a compiled packages directory.
func IsCompiledRelease(a ports.Archive) bool {
	return a.Has(domain.MemberPath(domain.CompiledPackagesDir))
}

// Analyze reads the release manifest and every job of a and computes the redundant packages.
// A release without jobs has all of its packages redundant.
func (t *Tinifier) Analyze(a ports.Archive) (*domain.Analysis, error) {
	data, err := a.ReadMember(domain.MemberPath(domain.ReleaseManifestName))
	if err != nil {
		return nil, err
	}

	manifest, err := t.codec.DecodeRelease(data)
	if err != nil {
		return nil, zerr.With(err, "path", a.Path())
	}

	var jobs []domain.Job
	err = a.WalkNested(domain.MemberPath(domain.JobsDir), func(member string, inner ports.Archive) error {
		data, err := inner.ReadMember(domain.MemberPath(domain.JobManifestName))
		if err != nil {
			return zerr.With(err, "job", member)
		}

		job, err := t.codec.DecodeJob(jobName(member), data)
		if err != nil {
			return err
		}

		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, zerr.With(err, "path", a.Path())
	}

	return domain.Analyze(manifest, jobs), nil
}

// jobName derives a job's name from its member path, e.g. "./jobs/api.tgz" is "api".
func jobName(member string) string {
	return strings.TrimSuffix(path.Base(domain.LogicalPath(member)), domain.PayloadExt)
}

// fileSize returns the size of the file at path.
func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		var wrapped error = zerr.Wrap(err, domain.ErrPathStatFailed.Error())
		return 0, zerr.With(wrapped, "path", path)
	}
	return info.Size(), nil
}
