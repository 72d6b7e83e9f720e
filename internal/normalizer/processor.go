// Package normalizer splits raw article text into sentences and tokens.
package normalizer

import (
	"fmt"

	"newscorpus/internal/models"
)

// Processor turns raw text into an ordered list of tokenized sentences.
type Processor struct {
	validator *Validator
	splitter  *Splitter
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator: NewValidator(),
		splitter:  NewSplitter(),
	}
}

// Process validates text and splits it into sentences numbered from 1.
func (p *Processor) Process(text string) ([]*models.Sentence, error) {
	if err := p.validator.Validate(text); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	raw := p.splitter.Split(text)
	sentences := make([]*models.Sentence, 0, len(raw))

	for i, s := range raw {
		sentences = append(sentences, models.NewSentence(i+1, s, Tokenize(s)))
	}

	return sentences, nil
}
