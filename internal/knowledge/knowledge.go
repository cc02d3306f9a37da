// Package knowledge renders the AvaloniaUI knowledge base files into
// markdown, memoizing every rendered document in the resource cache.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"avaloniamcp/internal/cache"
	"avaloniamcp/internal/logging"
	"avaloniamcp/pkg/fileops"
)

var (
	// ErrUnknownControl is returned when no control matches the requested name
	ErrUnknownControl = errors.New("unknown control")

	// ErrUnknownGuide is returned when no guide matches the requested name
	ErrUnknownGuide = errors.New("unknown guide")

	// ErrEmptyQuery is returned for blank search queries
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// Cache key prefixes; every derived entry of a data file shares one prefix
const (
	keyControls  = "controls:"
	keyControl   = "control:"
	keyPatterns  = "patterns:"
	keyMigration = "migration:"
	keyGuide     = "guide:"
	keyGuides    = "guides:"
)

// maxIdentifierLength bounds normalized names used inside cache keys
const maxIdentifierLength = 100

// DefaultMaxFileSize limits guide files read from disk
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// Base serves the knowledge base under one data directory.
type Base struct {
	dataDir     string
	cache       *cache.Cache
	logger      *logging.AppLogger
	maxFileSize int64

	// generations counts invalidations per data source so a load that
	// raced with one does not leave stale content behind
	genMu       sync.Mutex
	generations map[string]uint64
}

// New creates a Base reading from dataDir and caching into c.
func New(dataDir string, c *cache.Cache, logger *logging.AppLogger) *Base {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Base{
		dataDir:     filepath.Clean(dataDir),
		cache:       c,
		logger:      logger,
		maxFileSize: DefaultMaxFileSize,
		generations: make(map[string]uint64),
	}
}

// DataDir returns the directory the base reads from
func (b *Base) DataDir() string { return b.dataDir }

// Cache returns the underlying resource cache
func (b *Base) Cache() *cache.Cache { return b.cache }

// Path resolves a data file name inside the data directory.
func (b *Base) Path(name string) (string, error) {
	if err := fileops.ValidatePathSecurity(name); err != nil {
		return "", fmt.Errorf("invalid data file name %q: %w", name, err)
	}
	return filepath.Join(b.dataDir, name), nil
}

// PreloadFiles warms the cache with the named data files. Names that fail
// validation are reported as failures alongside load errors.
func (b *Base) PreloadFiles(ctx context.Context, names []string, ttl time.Duration) cache.PreloadReport {
	paths := make([]string, 0, len(names))
	invalid := make(map[string]error)
	for _, name := range names {
		path, err := b.Path(name)
		if err != nil {
			b.logger.Warn("Skipping preload of invalid file name", "name", name, "error", err)
			invalid[name] = err
			continue
		}
		paths = append(paths, path)
	}

	report := b.cache.Preload(ctx, paths, ttl)
	for name, err := range invalid {
		report.Failed[name] = err
	}
	return report
}

// ControlsReference renders the full controls reference.
func (b *Base) ControlsReference(ctx context.Context) (string, error) {
	return b.load(ctx, ControlsFile, keyControls+"reference", func(ctx context.Context) (string, error) {
		data, err := b.controls(ctx)
		if err != nil {
			return "", err
		}
		return renderControlsReference(data), nil
	})
}

// Control renders the documentation of a single control. The lookup is
// case-insensitive.
func (b *Base) Control(ctx context.Context, name string) (string, error) {
	normalized, err := normalize(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}

	return b.load(ctx, ControlsFile, keyControl+normalized, func(ctx context.Context) (string, error) {
		data, err := b.controls(ctx)
		if err != nil {
			return "", err
		}
		for _, c := range data.Controls {
			if n, err := normalize(c.Name); err == nil && n == normalized {
				return renderControl(c), nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownControl, name)
	})
}

// ControlNames lists every control name in file order.
func (b *Base) ControlNames(ctx context.Context) ([]string, error) {
	data, err := b.controls(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data.Controls))
	for _, c := range data.Controls {
		names = append(names, c.Name)
	}
	return names, nil
}

// XamlPatterns renders every XAML pattern.
func (b *Base) XamlPatterns(ctx context.Context) (string, error) {
	return b.load(ctx, XamlPatternsFile, keyPatterns+"all", func(ctx context.Context) (string, error) {
		data, err := b.patterns(ctx)
		if err != nil {
			return "", err
		}
		return renderPatterns("XAML Patterns", data.Patterns), nil
	})
}

// SearchPatterns renders the patterns whose name, category or description
// contains query, ignoring case.
func (b *Base) SearchPatterns(ctx context.Context, query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", ErrEmptyQuery
	}

	return b.load(ctx, XamlPatternsFile, keyPatterns+"search:"+q, func(ctx context.Context) (string, error) {
		data, err := b.patterns(ctx)
		if err != nil {
			return "", err
		}

		var matches []Pattern
		for _, p := range data.Patterns {
			haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
			if strings.Contains(haystack, q) {
				matches = append(matches, p)
			}
		}
		if len(matches) == 0 {
			return fmt.Sprintf("No XAML patterns match %q.\n", query), nil
		}
		return renderPatterns(fmt.Sprintf("XAML Patterns matching %q", query), matches), nil
	})
}

// MigrationGuide renders the WPF to Avalonia migration guide.
func (b *Base) MigrationGuide(ctx context.Context) (string, error) {
	return b.load(ctx, MigrationGuideFile, keyMigration+"guide", func(ctx context.Context) (string, error) {
		doc, err := b.document(ctx, MigrationGuideFile)
		if err != nil {
			return "", err
		}
		var data MigrationData
		if err := doc.Decode(&data); err != nil {
			return "", &cache.ParseError{Path: MigrationGuideFile, Err: err}
		}
		return renderMigrationGuide(data), nil
	})
}

// Invalidate drops the raw and rendered cache entries derived from the data
// file name (a top-level file or anything below guides/). It returns how
// many entries were removed. Loads of the same source still in flight are
// not cached once they finish.
func (b *Base) Invalidate(name string) int {
	source, prefixes := sourceOf(name)
	if source != "" {
		b.genMu.Lock()
		b.generations[source]++
		b.genMu.Unlock()
	}

	removed := 0
	if path, err := b.Path(name); err == nil && b.cache.Remove(cache.StructuredKey(path)) {
		removed++
	}
	for _, key := range b.cache.Stats().Keys {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) && b.cache.Remove(key) {
				removed++
				break
			}
		}
	}

	b.logger.Debug("Invalidated cache entries", "file", name, "removed", removed)
	return removed
}

// sourceOf maps a changed data file to its source and the key prefixes
// rendered from it. Unknown files have no source.
func sourceOf(name string) (string, []string) {
	name = filepath.ToSlash(name)
	switch {
	case name == ControlsFile:
		return ControlsFile, []string{keyControls, keyControl}
	case name == XamlPatternsFile:
		return XamlPatternsFile, []string{keyPatterns}
	case name == MigrationGuideFile:
		return MigrationGuideFile, []string{keyMigration}
	case name == GuidesDir || strings.HasPrefix(name, GuidesDir+"/"):
		return GuidesDir, []string{keyGuide, keyGuides}
	}
	return "", nil
}

func (b *Base) generation(source string) uint64 {
	b.genMu.Lock()
	defer b.genMu.Unlock()
	return b.generations[source]
}

// load is cache.GetOrLoad for a key rendered from source. When source is
// invalidated while the load runs, the result is still returned but the
// entries it cached are dropped again.
func (b *Base) load(ctx context.Context, source, key string, loader cache.Loader) (string, error) {
	gen := b.generation(source)
	content, err := b.cache.GetOrLoad(ctx, key, loader)
	if err != nil || b.generation(source) == gen {
		return content, err
	}

	b.cache.Remove(key)
	if source != GuidesDir {
		if path, perr := b.Path(source); perr == nil {
			b.cache.Remove(cache.StructuredKey(path))
		}
	}
	b.logger.LogCacheEvent("stale-load", key)
	return content, nil
}

func (b *Base) document(ctx context.Context, name string) (cache.Document, error) {
	path, err := b.Path(name)
	if err != nil {
		return cache.Document{}, err
	}
	return b.cache.GetOrLoadStructured(ctx, path)
}

func (b *Base) controls(ctx context.Context) (ControlsData, error) {
	var data ControlsData
	doc, err := b.document(ctx, ControlsFile)
	if err != nil {
		return data, err
	}
	if err := doc.Decode(&data); err != nil {
		return data, &cache.ParseError{Path: ControlsFile, Err: err}
	}
	return data, nil
}

func (b *Base) patterns(ctx context.Context) (PatternsData, error) {
	var data PatternsData
	doc, err := b.document(ctx, XamlPatternsFile)
	if err != nil {
		return data, err
	}
	if err := doc.Decode(&data); err != nil {
		return data, &cache.ParseError{Path: XamlPatternsFile, Err: err}
	}
	return data, nil
}

// normalize lower-cases and sanitizes a name for use in cache keys
func normalize(name string) (string, error) {
	id, err := fileops.SanitizeIdentifier(name, maxIdentifierLength)
	if err != nil {
		return "", err
	}
	return strings.ToLower(id), nil
}
