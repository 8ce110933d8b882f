package domain

// Analysis is the result of inspecting a compiled release.
type Analysis struct {
	Manifest  *ReleaseManifest
	Jobs      []Job
	Declared  PackageSet
	Required  PackageSet
	Redundant PackageSet
}

// RequiredPackages returns the union of the packages required by every job.
func RequiredPackages(jobs []Job) PackageSet {
	required := make(PackageSet)
	for _, job := range jobs {
		for name := range job.Packages {
			required.Add(name)
		}
	}
	return required
}

// ComputeRedundant returns the declared packages that no job requires.
// Names required by a job but not declared are ignored; a release without jobs
// has every package redundant.
func ComputeRedundant(declared PackageSet, jobs []Job) PackageSet {
	return declared.Difference(RequiredPackages(jobs))
}

// Analyze builds an Analysis from a parsed manifest and its jobs.
func Analyze(manifest *ReleaseManifest, jobs []Job) *Analysis {
	declared := manifest.PackageNames()
	required := RequiredPackages(jobs)
	return &Analysis{
		Manifest:  manifest,
		Jobs:      jobs,
		Declared:  declared,
		Required:  required,
		Redundant: declared.Difference(required),
	}
}
