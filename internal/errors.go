package internal

import "fmt"

// StorageError represents errors accessing the chunk store
type StorageError struct {
	Path string
	Op   string // "open", "query", "scan"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding a payload, envelope or chunk key
type ParseError struct {
	Source string // "payload", "envelope", "chunkKey"
	Key    string // uid, channel or storage key when known
	Err    error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("parse error [%s]: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CacheError represents errors reading or writing the snapshot cache
type CacheError struct {
	Op   string // "load", "save", "clear"
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
