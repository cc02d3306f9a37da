package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathSecurity validates a relative name before it is joined onto a
// base directory.
//
// The function validates:
//   - Empty or whitespace-only paths
//   - Path traversal attempts using ".." sequences
//   - Absolute paths, which would ignore the base directory when joined
//
// Usage example:
//
//	if err := fileops.ValidatePathSecurity("../../etc/passwd"); err != nil {
//	    return err
//	}
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for path traversal in raw input
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return fmt.Errorf("absolute paths not allowed")
	}

	// Clean and re-check for traversal
	cleanPath := filepath.Clean(path)
	if strings.HasPrefix(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	return nil
}

// ValidateFileInDirectory validates that a file path is within a specified base
// directory and that it is an existing regular file. Symlinks are resolved and
// their target must also stay inside baseDir.
//
// A missing file yields an error wrapping fs.ErrNotExist so callers can map it
// to their own not-found error.
//
// Usage example:
//
//	err := fileops.ValidateFileInDirectory("/srv/Data/controls.json", "/srv/Data")
//	if errors.Is(err, fs.ErrNotExist) {
//	    return cache.ErrNotFound
//	}
func ValidateFileInDirectory(filePath, baseDir string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("cannot resolve file path: %w", err)
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}

	if !isWithin(absBaseDir, absFilePath) {
		return fmt.Errorf("file is not within base directory")
	}

	info, err := os.Lstat(absFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s: %w", filepath.Base(filePath), fs.ErrNotExist)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(absFilePath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("symlink target does not exist: %s: %w", filepath.Base(filePath), fs.ErrNotExist)
			}
			return fmt.Errorf("cannot resolve symlink: %w", err)
		}

		resolvedBase, err := filepath.EvalSymlinks(absBaseDir)
		if err != nil {
			resolvedBase = absBaseDir
		}
		if !isWithin(resolvedBase, resolved) {
			return fmt.Errorf("symlink resolves outside base directory")
		}

		info, err = os.Stat(resolved)
		if err != nil {
			return fmt.Errorf("cannot access symlink target: %w", err)
		}
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	return nil
}

func isWithin(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ValidateContentSecurity performs security validation on text content.
//
// The function checks for:
//   - Control characters (except newlines, carriage returns, and tabs)
//   - Script injection patterns (script tags, javascript:, eval, etc.)
//
// Usage example:
//
//	if err := fileops.ValidateContentSecurity(body); err != nil {
//	    return fmt.Errorf("suspicious content detected: %w", err)
//	}
func ValidateContentSecurity(content string) error {
	for _, r := range content {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("content contains control characters")
		}
	}

	suspiciousPatterns := []string{
		"<script",
		"javascript:",
		"vbscript:",
		"data:text/html",
	}

	lowerContent := strings.ToLower(content)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lowerContent, pattern) {
			return fmt.Errorf("content contains potentially malicious pattern: %s", pattern)
		}
	}

	return nil
}

// SanitizeIdentifier sanitizes a string to be safe for use as an identifier.
// This function removes dangerous characters while preserving readability,
// making it suitable for cache keys and resource names.
//
// The function:
//   - Allows only alphanumeric characters, spaces, hyphens, underscores, and periods
//   - Normalizes runs of spaces and separators to a single underscore
//   - Trims leading/trailing separators
//   - Enforces length limits if specified (0 for no limit)
//
// Usage example:
//
//	clean, err := fileops.SanitizeIdentifier("my-tool@name#123", 50)
//	// clean will be "my-toolname123"
func SanitizeIdentifier(identifier string, maxLength int) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("identifier cannot be empty")
	}

	var cleanName strings.Builder

	for _, r := range identifier {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == ' ' || r == '-' || r == '_' || r == '.' {
			cleanName.WriteRune(r)
		}
	}

	result := strings.TrimSpace(cleanName.String())
	result = strings.Join(strings.Fields(result), "_")
	for strings.Contains(result, "--") || strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "--", "_")
		result = strings.ReplaceAll(result, "__", "_")
	}

	if maxLength > 0 && len(result) > maxLength {
		result = result[:maxLength]
	}

	result = strings.Trim(result, "_-.")

	if result == "" {
		return "", fmt.Errorf("identifier becomes empty after sanitization")
	}

	return result, nil
}

// ValidateFileSizeLimit checks if a file size is within acceptable limits.
//
// Usage example:
//
//	if err := fileops.ValidateFileSizeLimit(path, 5*1024*1024); err != nil {
//	    return fmt.Errorf("file too large: %w", err)
//	}
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s: %w", filepath.Base(filePath), fs.ErrNotExist)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}
