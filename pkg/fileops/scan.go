package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents a file discovered during a scan.
type FileInfo struct {
	// Name is the base filename without path components
	Name string

	// Path is the slash-separated path relative to the scan root
	Path string

	Size    int64
	ModTime time.Time
}

// ScanWithFilter walks scanPath and returns the regular files accepted by
// fileFilter (nil accepts everything), sorted by Path. Hidden files and
// directories are skipped, symlinks are not followed, and recursion stops
// below maxDepth levels (1 means only scanPath itself).
//
// Scanning a directory that does not exist returns an error wrapping
// fs.ErrNotExist.
//
// Usage example:
//
//	guides, err := fileops.ScanWithFilter(dir, func(name string) bool {
//	    return strings.HasSuffix(name, ".md")
//	}, 3)
func ScanWithFilter(scanPath string, fileFilter func(string) bool, maxDepth int) ([]FileInfo, error) {
	if strings.TrimSpace(scanPath) == "" {
		return nil, fmt.Errorf("scan path cannot be empty")
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	root, err := filepath.Abs(ExpandPath(scanPath))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", root)
	}

	var results []FileInfo
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir // unreadable subdirectory
			}
			return walkErr
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if depth >= maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if fileFilter != nil && !fileFilter(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil // vanished between listing and stat
		}

		results = append(results, FileInfo{
			Name:    d.Name(),
			Path:    filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("directory scan failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// IsMarkdownFile reports whether filename has a markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown"
}
