package domain

// Job is a job definition shipped in a release, reduced to the packages it requires.
type Job struct {
	Name     string
	Packages PackageSet
}
