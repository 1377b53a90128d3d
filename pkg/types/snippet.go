package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// Snippet represents a unit of source text prepared for embedding and search
type Snippet struct {
	// Location
	File string `json:"file"` // Path of the originating source file

	// Identification
	Name string `json:"name"` // Function name or positional chunk label

	// Content
	Code string `json:"code"` // Snippet text, already trimmed to the token budget
}

// Validate checks if the snippet is well formed
func (s *Snippet) Validate() error {
	if s.File == "" {
		return ErrMissingFile
	}

	if s.Name == "" {
		return ErrMissingName
	}

	if s.Code == "" {
		return ErrEmptyContent
	}

	return nil
}

// Hash returns the SHA-256 hex digest of the snippet code, usable for
// deduplication and cache keys.
func (s *Snippet) Hash() string {
	sum := sha256.Sum256([]byte(s.Code))
	return hex.EncodeToString(sum[:])
}
