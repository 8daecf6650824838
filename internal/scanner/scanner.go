// Package scanner finds API endpoint references in client source trees.
//
// The scanner is a capability interface so the shipped regex implementation
// can later be swapped for a syntax-tree-based one without touching the
// impact matcher.
package scanner

import (
	"path/filepath"
	"strings"

	"github.com/specwatch/specwatch/pkg/types"
)

// FileScanner detects endpoint usage in a single source file.
type FileScanner interface {
	// SupportsFile reports whether the scanner understands files with the
	// given extension (".ts", ".py", ...).
	SupportsFile(ext string) bool

	// ScanFile scans one file's content and returns every detected
	// endpoint usage. The path is recorded relative to the repository root.
	ScanFile(path string, content string) []types.EndpointUsage
}

// skipDirs are conventional non-source directories excluded from the walk:
// version-control metadata, dependency caches, build output, test caches.
var skipDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	".next":         true,
	"dist":          true,
	"build":         true,
	"coverage":      true,
	".pytest_cache": true,
	"target":        true,
	"bin":           true,
	"obj":           true,
	"vendor":        true,
}

// SkipDir reports whether a directory name should be excluded from scans.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// fileExt returns the lower-cased extension of a path.
func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
