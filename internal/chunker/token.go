package chunker

import "strings"

// EstimateTokens gives a deterministic token count approximation. The same
// estimate is used when sizing chunks and when budgeting prompts, so the
// two stay consistent. Exact subword tokenization is not required.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	// Roughly 1.33 tokens per English word.
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}
