package types

// SearchResult pairs a snippet with its cosine similarity to a query.
type SearchResult struct {
	Snippet    Snippet `json:"snippet"`
	Similarity float64 `json:"similarity"` // Cosine similarity in [-1, 1]
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if err := sr.Snippet.Validate(); err != nil {
		return err
	}

	if sr.Similarity < -1 || sr.Similarity > 1 {
		return ErrInvalidSimilarity
	}

	return nil
}
