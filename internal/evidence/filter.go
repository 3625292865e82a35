package evidence

import "strings"

// Build-artifact paths are always dropped before tool results reach the
// model. The list is fixed: its only purpose is to keep dependency
// directories and compiled output out of the context window, so it is not
// configurable per call.
var ignoredDirSegments = map[string]struct{}{
	"node_modules":  {},
	".git":          {},
	".next":         {},
	"dist":          {},
	"build":         {},
	".venv":         {},
	"venv":          {},
	"__pycache__":   {},
	".pytest_cache": {},
	".mypy_cache":   {},
	"coverage":      {},
}

var ignoredSuffixes = []string{".pyc", ".pyo"}

var ignoredBasenames = map[string]struct{}{
	".ds_store": {},
	"thumbs.db": {},
	".coverage": {},
}

// ShouldIgnore reports whether a repository path is a build artifact.
// Matching is case-insensitive.
func ShouldIgnore(path string) bool {
	lower := strings.ToLower(path)

	for _, seg := range strings.Split(lower, "/") {
		if _, ok := ignoredDirSegments[seg]; ok {
			return true
		}
	}

	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	base := lower
	if idx := strings.LastIndex(lower, "/"); idx >= 0 {
		base = lower[idx+1:]
	}
	if _, ok := ignoredBasenames[base]; ok {
		return true
	}

	return false
}

// FilterPaths drops build-artifact paths from the list. The dropped count
// is returned for logging; it is never surfaced to the model.
func FilterPaths(paths []string) (kept []string, dropped int) {
	kept = make([]string, 0, len(paths))
	for _, p := range paths {
		if ShouldIgnore(p) {
			dropped++
			continue
		}
		kept = append(kept, p)
	}
	return kept, dropped
}

// FilterChanges drops build-artifact entries from a file-change list.
func FilterChanges(files []FileChange) (kept []FileChange, dropped int) {
	kept = make([]FileChange, 0, len(files))
	for _, f := range files {
		if ShouldIgnore(f.Filename) {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	return kept, dropped
}
