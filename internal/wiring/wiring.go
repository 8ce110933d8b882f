// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/tinify/internal/adapters/archive"
	_ "go.trai.ch/tinify/internal/adapters/fs"
	_ "go.trai.ch/tinify/internal/adapters/logger"
	_ "go.trai.ch/tinify/internal/adapters/manifest"
	_ "go.trai.ch/tinify/internal/adapters/scratch"
	// Register app and engine nodes.
	_ "go.trai.ch/tinify/internal/app"
	_ "go.trai.ch/tinify/internal/engine/tinifier"
)
