package types

import "errors"

// Domain errors shared across the indexing and search pipeline
var (
	// Index lifecycle errors
	ErrIndexNotFound   = errors.New("index not found")
	ErrCorruptIndex    = errors.New("corrupt index")
	ErrModelMismatch   = errors.New("embedding model mismatch")
	ErrBuildCancelled  = errors.New("index build cancelled")
	ErrBuildInProgress = errors.New("index build already in progress")

	// Input validation errors
	ErrEmptyModel        = errors.New("embedding model cannot be empty")
	ErrEmptyQuery        = errors.New("query cannot be empty")
	ErrInvalidTopK       = errors.New("top_k must be >= 1")
	ErrInvalidSimilarity = errors.New("similarity must be between -1 and 1")
	ErrMissingFile       = errors.New("snippet file path is required")
	ErrMissingName       = errors.New("snippet name is required")
	ErrEmptyContent      = errors.New("content cannot be empty")
)
