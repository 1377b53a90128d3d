package types

import "fmt"

// Index holds the aligned snippet and vector collections produced by a build,
// together with the identifier of the embedding model that produced the
// vectors. Vectors[i] is the embedding of Snippets[i].Code.
type Index struct {
	Snippets []Snippet   `json:"snippets"`
	Vectors  [][]float32 `json:"embeddings"`
	Model    string      `json:"model"`
}

// Len returns the number of indexed snippets.
func (idx *Index) Len() int {
	return len(idx.Snippets)
}

// Dimension returns the vector dimensionality, or 0 for an empty index.
func (idx *Index) Dimension() int {
	if len(idx.Vectors) == 0 {
		return 0
	}
	return len(idx.Vectors[0])
}

// Validate checks structural integrity: one vector per snippet and uniform
// vector dimensionality across all rows.
func (idx *Index) Validate() error {
	if len(idx.Snippets) != len(idx.Vectors) {
		return fmt.Errorf("%w: %d snippets but %d vectors",
			ErrCorruptIndex, len(idx.Snippets), len(idx.Vectors))
	}

	dim := idx.Dimension()
	for i, vec := range idx.Vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d",
				ErrCorruptIndex, i, len(vec), dim)
		}
	}

	return nil
}

// DegradedCount returns the number of zero-vector placeholder rows.
// Placeholders keep snippet/vector alignment when an individual embedding
// call fails; they score zero similarity against every query.
func (idx *Index) DegradedCount() int {
	count := 0
	for _, vec := range idx.Vectors {
		if IsZeroVector(vec) {
			count++
		}
	}
	return count
}

// IsZeroVector reports whether every component of vec is zero.
func IsZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
