package domain

import (
	"errors"
	"fmt"
)

// ErrNoCachedData is returned when cache-only mode is active but no usable
// snapshot exists on disk.
var ErrNoCachedData = errors.New("cache-only mode is enabled but no cached dataset is available")

// RateLimitError reports that an upstream throttled the whole fetch
// (HTTP 429). Distinguished from FetchError so the caller can suggest
// waiting rather than retrying immediately.
type RateLimitError struct {
	Source string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: upstream rate limit (HTTP 429)", e.Source)
}

// FetchError reports a total network or parse failure of one source.
// Per-city and per-country problems are absorbed as table annotations and
// never surface as a FetchError.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StructuralError reports a fused or cached table that is missing its
// required shape (identity columns, records). The cache store treats such
// snapshots as absent; it never crashes the pipeline.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structurally invalid dataset: " + e.Reason
}
