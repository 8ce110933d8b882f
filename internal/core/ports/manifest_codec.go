package ports

import "go.trai.ch/tinify/internal/core/domain"

// ManifestCodec parses and serializes release and job manifests.
//
//go:generate mockgen -source=manifest_codec.go -destination=mocks/mock_manifest_codec.go -package=mocks
type ManifestCodec interface {
	// DecodeRelease parses the first document of a release manifest.
	DecodeRelease(data []byte) (*domain.ReleaseManifest, error)

	// DecodeJob parses the first document of a job manifest.
	// A missing packages field yields a job requiring no packages.
	DecodeJob(name string, data []byte) (domain.Job, error)

	// RewriteRelease replaces the compiled package records of the original manifest with
	// those of m while keeping every other field of the original document.
	// An empty original yields a manifest holding only the compiled packages.
	RewriteRelease(original []byte, m *domain.ReleaseManifest) ([]byte, error)
}
