package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	weaveerrors "github.com/toyz/weave/internal/errors"
)

// DirectoryScanner handles recursive directory scanning for Go packages
type DirectoryScanner struct{}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{}
}

// ScanDirectories resolves the given patterns to the directories that contain non-test Go
// files. Go-style "dir/..." patterns are scanned recursively; vendor, testdata and directories
// starting with "." or "_" are skipped.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		base := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if base == "" {
			base = "."
		}

		root, err := filepath.Abs(base)
		if err != nil {
			return nil, weaveerrors.WrapFileSystemError("resolve", base, err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, weaveerrors.WrapFileSystemError("stat", base, err)
		}
		if !info.IsDir() {
			return nil, weaveerrors.Newf(weaveerrors.FileSystemErrorCode, "%s is not a directory", base).
				WithSuggestion("Pass package directories or patterns like ./...")
		}

		if !recursive {
			if hasGoFiles(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != root && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, weaveerrors.WrapFileSystemError("scan", base, err)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
			return true
		}
	}
	return false
}
