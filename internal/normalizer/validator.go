package normalizer

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Validation errors.
var (
	ErrEmptyText   = errors.New("text is empty")
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")
)

// Validator checks that raw article text can be segmented.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks if text meets requirements.
func (v *Validator) Validate(text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidUTF8
	}

	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	return nil
}
