package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// structuredKeyPrefix namespaces raw JSON file content in the cache
const structuredKeyPrefix = "json:"

// Document is a parsed JSON object loaded from a data file.
type Document struct {
	raw    string
	fields map[string]any
}

// Keys returns the top-level object keys, sorted.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the top-level value stored under key.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Raw returns the JSON text the document was parsed from.
func (d Document) Raw() string { return d.raw }

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	return json.UnmarshalFromString(d.raw, v)
}

// StructuredKey returns the cache key used for the JSON file at path.
func StructuredKey(path string) string {
	return structuredKeyPrefix + filepath.Clean(path)
}

// GetOrLoadStructured loads the JSON file at path through the cache with the
// default TTL and returns it parsed.
func (c *Cache) GetOrLoadStructured(ctx context.Context, path string) (Document, error) {
	return c.GetOrLoadStructuredTTL(ctx, path, c.defaultTTL)
}

// GetOrLoadStructuredTTL is GetOrLoadStructured with an explicit TTL. A
// missing file yields ErrNotFound and malformed JSON a *ParseError; neither
// is cached.
func (c *Cache) GetOrLoadStructuredTTL(ctx context.Context, path string, ttl time.Duration) (Document, error) {
	if path == "" {
		return Document{}, ErrEmptyKey
	}

	var loaded *Document
	raw, err := c.GetOrLoadTTL(ctx, StructuredKey(path), ttl, func(ctx context.Context) (string, error) {
		data, err := readFile(ctx, path)
		if err != nil {
			return "", err
		}
		doc, err := parseDocument(path, string(data))
		if err != nil {
			return "", err
		}
		loaded = &doc
		return doc.raw, nil
	})
	if err != nil {
		return Document{}, err
	}
	if loaded != nil {
		return *loaded, nil
	}

	return parseDocument(path, raw)
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func parseDocument(path, raw string) (Document, error) {
	if !json.Valid([]byte(raw)) {
		return Document{}, &ParseError{Path: path, Err: errors.New("invalid JSON")}
	}

	var fields map[string]any
	if err := json.UnmarshalFromString(raw, &fields); err != nil {
		return Document{}, &ParseError{Path: path, Err: err}
	}
	if fields == nil {
		return Document{}, &ParseError{Path: path, Err: errors.New("top-level value is not an object")}
	}
	return Document{raw: raw, fields: fields}, nil
}
