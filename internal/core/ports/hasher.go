package ports

// Hasher defines the interface for computing content fingerprints.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeFileHash returns a hex fingerprint of the file's content.
	ComputeFileHash(path string) (string, error)
}
