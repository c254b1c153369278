package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FileAssertions provides utilities for asserting file system state in tests.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains every expected fragment.
func (fa *FileAssertions) AssertFileContains(relativePath string, fragments ...string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)

	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return fa
	}

	for _, want := range fragments {
		if !strings.Contains(string(content), want) {
			fa.t.Errorf("Expected file %s to contain %q", relativePath, want)
		}
	}
	return fa
}

// AssertNoTempFiles validates that no "*.tmp" files were left in the directory
// holding relativePath.
func (fa *FileAssertions) AssertNoTempFiles(relativePath string) *FileAssertions {
	fa.t.Helper()
	dir := filepath.Dir(filepath.Join(fa.baseDir, relativePath))
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		fa.t.Errorf("glob %s: %v", dir, err)
		return fa
	}
	if len(matches) > 0 {
		fa.t.Errorf("Expected no temporary files in %s, found %v", dir, matches)
	}
	return fa
}
