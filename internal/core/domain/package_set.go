package domain

import (
	"maps"
	"slices"
)

// PackageSet is an unordered set of compiled package names.
type PackageSet map[string]struct{}

// NewPackageSet creates a set holding the given names.
func NewPackageSet(names ...string) PackageSet {
	s := make(PackageSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Add inserts names into the set.
func (s PackageSet) Add(names ...string) {
	for _, name := range names {
		s[name] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s PackageSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s PackageSet) Len() int {
	return len(s)
}

// Sorted returns the names in lexical order.
func (s PackageSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Union returns a new set holding the names of both sets.
func (s PackageSet) Union(other PackageSet) PackageSet {
	out := make(PackageSet, len(s)+len(other))
	for name := range s {
		out[name] = struct{}{}
	}
	for name := range other {
		out[name] = struct{}{}
	}
	return out
}

// Difference returns a new set holding the names of s that are not in other.
func (s PackageSet) Difference(other PackageSet) PackageSet {
	out := make(PackageSet, len(s))
	for name := range s {
		if !other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set holding the names present in both sets.
func (s PackageSet) Intersect(other PackageSet) PackageSet {
	out := make(PackageSet)
	for name := range s {
		if other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}
