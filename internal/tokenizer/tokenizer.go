package tokenizer

import "strings"

// Count gives a deterministic token count for a piece of text using the
// ~1.33 tokens/word heuristic. Exact subword tokenization belongs to the
// embedding collaborator; chunk sizing only needs a stable estimate that is
// identical for identical input.
func Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
