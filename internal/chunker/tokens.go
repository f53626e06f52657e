// Package chunker splits watershed-plan text into token-budgeted, overlapping
// chunks for embedding and retrieval. Because the pipeline supports multiple
// embedding and generation backends with different tokenizers, it uses a
// character-based heuristic: 1 token ≈ 4 characters (English prose), rounding
// up so the estimate never undercounts a non-empty string to zero.
package chunker

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxTokens is the default per-chunk token budget, sized so a
	// handful of chunks fit comfortably in a generation context window.
	DefaultMaxTokens = 900

	// DefaultOverlapTokens is the default token budget carried over from the
	// end of one chunk into the start of the next.
	DefaultOverlapTokens = 180
)

// Estimate returns the approximate token count for s: ceil(len(s)/4).
// An empty string estimates to zero.
func Estimate(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}
