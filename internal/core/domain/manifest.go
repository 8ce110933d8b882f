// Package domain contains the core models of a release: its manifest, jobs, and the
// analysis that decides which compiled packages can be dropped.
package domain

// CompiledPackage is a compiled package record of a release manifest.
type CompiledPackage struct {
	Name         string
	Dependencies []string
}

// ReleaseManifest is the semantic part of a release's root manifest.
// Records keep the order in which they appear in the manifest.
type ReleaseManifest struct {
	CompiledPackages []CompiledPackage
}

// PackageNames returns the names of all declared compiled packages.
func (m *ReleaseManifest) PackageNames() PackageSet {
	names := make(PackageSet, len(m.CompiledPackages))
	for _, pkg := range m.CompiledPackages {
		names.Add(pkg.Name)
	}
	return names
}

// Without returns a copy of the manifest with every redundant record dropped and every
// redundant name removed from the dependency lists of the remaining records.
// The relative order of records and of dependency entries is preserved.
func (m *ReleaseManifest) Without(redundant PackageSet) *ReleaseManifest {
	kept := make([]CompiledPackage, 0, len(m.CompiledPackages))
	for _, pkg := range m.CompiledPackages {
		if redundant.Has(pkg.Name) {
			continue
		}

		deps := make([]string, 0, len(pkg.Dependencies))
		for _, dep := range pkg.Dependencies {
			if !redundant.Has(dep) {
				deps = append(deps, dep)
			}
		}

		kept = append(kept, CompiledPackage{Name: pkg.Name, Dependencies: deps})
	}
	return &ReleaseManifest{CompiledPackages: kept}
}
