// Package chunker splits document text into token-bounded segments that fit
// an LLM context window.
package chunker

import "strings"

// DefaultTokenBudget is the per-chunk token ceiling used when the caller
// does not supply one.
const DefaultTokenBudget = 2000

// Split breaks text into chunks of at most maxTokens tokens, respecting
// paragraph (newline) boundaries. Paragraphs are never split: a single
// paragraph over the budget is emitted as one oversized chunk. Joining the
// chunks with newlines reconstructs the paragraph sequence, up to
// whitespace trimming at chunk boundaries.
func Split(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultTokenBudget
	}

	paragraphs := strings.Split(text, "\n")

	var chunks []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		if currentTokens+paraTokens > maxTokens && current.Len() > 0 {
			if c := strings.TrimSpace(current.String()); c != "" {
				chunks = append(chunks, c)
			}
			current.Reset()
			currentTokens = 0
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if c := strings.TrimSpace(current.String()); c != "" {
		chunks = append(chunks, c)
	}

	return chunks
}
