package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// EncodingCL100K is the BPE encoding used by OpenAI text-embedding models.
const EncodingCL100K = "cl100k_base"

// DefaultMaxTokens is the per-snippet token budget enforced before any text
// is sent to an embedding provider.
const DefaultMaxTokens = 8000

// Tokenizer counts tokens and trims text to a token budget.
//
// Implementations guarantee Count(Truncate(text, n)) <= n for every n >= 0,
// and Truncate returns its input unchanged when the text is already within
// budget.
type Tokenizer interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// TikToken tokenizes with the cl100k_base BPE, matching what OpenAI
// embedding models see on the wire.
type TikToken struct {
	enc *tiktoken.Tiktoken
}

// NewTikToken loads the cl100k_base encoding. Loading can fail when the
// BPE data is unavailable (e.g. no network and no local cache); callers
// typically fall back to Heuristic in that case.
func NewTikToken() (*TikToken, error) {
	enc, err := tiktoken.GetEncoding(EncodingCL100K)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", EncodingCL100K, err)
	}
	return &TikToken{enc: enc}, nil
}

// Count returns the exact token count of text under cl100k_base.
func (t *TikToken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens by encoding, slicing the
// token sequence, and decoding the prefix.
func (t *TikToken) Truncate(text string, maxTokens int) string {
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}

	if maxTokens <= 0 {
		return ""
	}

	return t.enc.Decode(tokens[:maxTokens])
}

// runesPerToken mirrors the usual ~4 characters per code token average.
const runesPerToken = 4

// Heuristic estimates tokens as runes/4. It needs no BPE data, which makes
// it usable offline and in tests. The estimate is coarse: text counted at n
// tokens here may encode to more under a real BPE.
type Heuristic struct{}

// NewHeuristic returns the runes/4 estimator.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Count estimates the token count of text.
func (h *Heuristic) Count(text string) int {
	return len([]rune(text)) / runesPerToken
}

// Truncate keeps the first maxTokens*4 runes. Cutting on rune boundaries
// keeps the result valid UTF-8.
func (h *Heuristic) Truncate(text string, maxTokens int) string {
	if h.Count(text) <= maxTokens {
		return text
	}

	if maxTokens <= 0 {
		return ""
	}

	runes := []rune(text)
	return string(runes[:maxTokens*runesPerToken])
}
