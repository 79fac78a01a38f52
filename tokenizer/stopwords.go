package tokenizer

import (
	"fmt"
	"os"
	"strings"
)

// defaultStopwords is a compact English function-word list. Callers who
// need a different language or a larger list pass their own set via
// Options.Stopwords.
var defaultStopwords = []string{
	"a", "about", "after", "all", "also", "an", "and", "any", "are", "as",
	"at", "be", "because", "been", "but", "by", "can", "could", "did", "do",
	"does", "down", "each", "for", "from", "had", "has", "have", "he", "her",
	"here", "him", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"just", "me", "more", "most", "my", "no", "not", "now", "of", "on",
	"only", "or", "other", "our", "out", "over", "she", "so", "some", "such",
	"than", "that", "the", "their", "them", "then", "there", "these", "they",
	"this", "those", "through", "to", "under", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "why", "will",
	"with", "would", "you", "your",
}

// DefaultStopwords returns a copy of the built-in English stopword list.
func DefaultStopwords() []string {
	out := make([]string, len(defaultStopwords))
	copy(out, defaultStopwords)
	return out
}

// ReadStopwordsFile loads a whitespace- or newline-separated stopword list.
func ReadStopwordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stopwords file: %w", err)
	}
	return strings.Fields(string(data)), nil
}
