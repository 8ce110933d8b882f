// Package fs provides file system adapters for walking, fingerprinting and verifying working trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Entry is a file or directory found while walking a tree.
type Entry struct {
	// Path is the host path of the entry.
	Path string
	// Rel is the slash-separated path relative to the walked root; empty for the root itself.
	Rel string
	// Info describes the entry.
	Info fs.FileInfo
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Info.IsDir()
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkTree yields every directory and file under root in lexical order, root first.
// A walk error is yielded once and ends the iteration.
func (w *Walker) WalkTree(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if rel == "." {
				rel = ""
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			if !yield(Entry{Path: path, Rel: filepath.ToSlash(rel), Info: info}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

// WalkFiles yields the paths of all regular files under root.
// Unreadable entries are skipped.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for entry, err := range w.WalkTree(root) {
			if err != nil {
				return
			}
			if !entry.Info.Mode().IsRegular() {
				continue
			}
			if !yield(entry.Path) {
				return
			}
		}
	}
}
