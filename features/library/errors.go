package library

import "errors"

var (
	// ErrNotFound is returned when an image or folder id does not exist.
	ErrNotFound = errors.New("not found")
	ErrAmbiguousID = errors.New("ambiguous id prefix")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
