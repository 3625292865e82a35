package evidence

import (
	"reflect"
	"testing"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/app.py", false},
		{"node_modules/react/index.js", true},
		{".git/HEAD", true},
		{"dist/bundle.js", true},
		{"build/output.o", true},
		{"README.md", false},
		{"app/__pycache__/mod.cpython-311.pyc", true},
		{"app/utils.pyc", true},
		{"app/utils.pyo", true},
		{"docs/.DS_Store", true},
		{"Thumbs.db", true},
		{".coverage", true},
		{".venv/lib/python3.11/site.py", true},
		{"venv/bin/activate", true},
		{"coverage/lcov.info", true},
		{"NODE_MODULES/pkg/index.js", true}, // case-insensitive
		{"src/distances.py", false},        // "dist" must match a whole segment
		{"rebuild/main.go", false},
		{"src/builders/factory.go", false},
	}

	for _, tt := range tests {
		if got := ShouldIgnore(tt.path); got != tt.want {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFilterPaths(t *testing.T) {
	paths := []string{
		"src/app.py",
		"node_modules/react/index.js",
		".git/HEAD",
		"dist/bundle.js",
		"README.md",
	}

	kept, dropped := FilterPaths(paths)

	want := []string{"src/app.py", "README.md"}
	if !reflect.DeepEqual(kept, want) {
		t.Errorf("kept = %v, want %v", kept, want)
	}
	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestFilterPaths_Idempotent(t *testing.T) {
	paths := []string{
		"src/app.py",
		"node_modules/react/index.js",
		"README.md",
	}

	once, _ := FilterPaths(paths)
	twice, dropped := FilterPaths(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the list: %v != %v", once, twice)
	}
	if dropped != 0 {
		t.Errorf("second pass dropped %d files, want 0", dropped)
	}
}

func TestFilterChanges(t *testing.T) {
	files := []FileChange{
		{Filename: "src/auth.py", Status: "modified", Additions: 10},
		{Filename: "node_modules/lodash/index.js", Status: "added"},
		{Filename: "app.pyc", Status: "added"},
	}

	kept, dropped := FilterChanges(files)

	if len(kept) != 1 || kept[0].Filename != "src/auth.py" {
		t.Errorf("kept = %v, want only src/auth.py", kept)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}
