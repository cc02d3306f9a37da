package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the file behind a structured load does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrParse matches every *ParseError
	ErrParse = errors.New("resource could not be parsed")

	// ErrEmptyKey is returned for calls with an empty cache key
	ErrEmptyKey = errors.New("cache key cannot be empty")

	// ErrNilLoader is returned when GetOrLoad is called without a loader
	ErrNilLoader = errors.New("loader cannot be nil")
)

// ParseError reports content that loaded fine but is not a JSON object.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
