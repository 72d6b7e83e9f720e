package normalizer

import (
	"strings"

	"newscorpus/internal/models"
)

// Tokenize splits a sentence into whitespace-delimited surface tokens.
// Punctuation stays attached to the word it touches.
func Tokenize(sentence string) []*models.Token {
	fields := strings.Fields(sentence)
	tokens := make([]*models.Token, 0, len(fields))

	for _, f := range fields {
		tokens = append(tokens, models.NewToken(f))
	}

	return tokens
}
