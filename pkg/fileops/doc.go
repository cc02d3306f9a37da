// Package fileops provides the file checks used when serving knowledge base
// files: path and identifier sanitising, directory containment, size limits,
// content screening, and a filtered directory scan.
//
// # Validation Order
//
// Loaders that turn a user-supplied name into a file read combine the checks
// in this order:
//
// 1. **Name**: ValidatePathSecurity() - rejects empty names and traversal
// 2. **Containment**: ValidateFileInDirectory() - the resolved file stays under the data directory
// 3. **Size**: ValidateFileSizeLimit() - bounds memory used by one cache entry
// 4. **Content**: ValidateContentSecurity() - rejects control characters and script injection
//
// # Example
//
//	if err := fileops.ValidatePathSecurity(name); err != nil {
//	    return fmt.Errorf("guide name: %w", err)
//	}
//	path := filepath.Join(dataDir, name)
//	if err := fileops.ValidateFileInDirectory(path, dataDir); err != nil {
//	    return fmt.Errorf("guide path: %w", err) // wraps fs.ErrNotExist for missing files
//	}
//
// # Identifiers
//
// SanitizeIdentifier() turns arbitrary strings such as control names or guide
// titles into stable identifiers suitable for cache keys and resource URIs.
package fileops
