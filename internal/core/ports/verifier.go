package ports

import "go.trai.ch/tinify/internal/core/domain"

// PayloadVerifier checks that a working tree's payload files agree with its manifest.
//
//go:generate mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type PayloadVerifier interface {
	// VerifyPayloads returns domain.ErrPayloadMismatch unless the payload files under
	// root's compiled packages directory are exactly the packages named in m.
	VerifyPayloads(root string, m *domain.ReleaseManifest) error
}
