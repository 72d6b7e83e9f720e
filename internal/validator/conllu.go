// Package validator checks annotated output before it is written.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validation errors.
var (
	ErrInvalidConllu    = errors.New("invalid CoNLL-U document")
	ErrColumnCount      = errors.New("token line must have 10 columns")
	ErrEmptyField       = errors.New("empty field, use _")
	ErrTokenID          = errors.New("token ids must run 1, 2, ...")
	ErrUnknownUPOS      = errors.New("unknown universal part of speech")
	ErrFeatureFormat    = errors.New("features must be sorted Name=Value pairs")
	ErrHead             = errors.New("head must be a token id or 0")
	ErrSentenceID       = errors.New("sent_id must run 1, 2, ...")
	ErrMissingText      = errors.New("sentence has no text comment")
	ErrEmptySentence    = errors.New("sentence has no tokens")
	ErrMissingBlankLine = errors.New("document must end with a blank line")
)

const columns = 10

var universalPOS = map[string]struct{}{
	"ADJ": {}, "ADP": {}, "ADV": {}, "AUX": {}, "CCONJ": {}, "DET": {}, "INTJ": {},
	"NOUN": {}, "NUM": {}, "PART": {}, "PRON": {}, "PROPN": {}, "PUNCT": {},
	"SCONJ": {}, "SYM": {}, "VERB": {}, "X": {}, "_": {},
}

var featurePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*(\[[a-z0-9]+\])?=[A-Z0-9][A-Za-z0-9]*(,[A-Z0-9][A-Za-z0-9]*)*$`)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Err   error
	Value string
	Line  int
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Value)
	}

	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	Sentences int
	Tokens    int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors  []ValidationError
	Stats   ValidationStats
	IsValid bool
}

// Err returns nil for a valid document, otherwise an error wrapping
// ErrInvalidConllu and every ValidationError found.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	errs := make([]error, 0, len(r.Errors)+1)
	errs = append(errs, ErrInvalidConllu)

	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

func (r *ValidationResult) add(line int, err error, value string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Line: line, Err: err, Value: value})
}

type sentenceState struct {
	start   int
	tokens  int
	hasText bool
}

// ValidateConllu checks the sentence blocks and token lines of doc.
func ValidateConllu(doc string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if doc == "" {
		return result
	}

	if !strings.HasSuffix(doc, "\n\n") {
		result.add(strings.Count(doc, "\n")+1, ErrMissingBlankLine, "")
	}

	lines := strings.Split(strings.TrimSuffix(doc, "\n"), "\n")

	var current *sentenceState

	closeSentence := func() {
		if current == nil {
			return
		}

		if !current.hasText {
			result.add(current.start, ErrMissingText, "")
		}

		if current.tokens == 0 {
			result.add(current.start, ErrEmptySentence, "")
		}

		current = nil
	}

	for i, line := range lines {
		lineNum := i + 1

		if line == "" {
			closeSentence()

			continue
		}

		if current == nil {
			current = &sentenceState{start: lineNum}
		}

		if strings.HasPrefix(line, "#") {
			validateComment(result, current, line, lineNum)

			continue
		}

		current.tokens++
		result.Stats.Tokens++
		validateToken(result, line, lineNum, current.tokens)
	}

	closeSentence()

	return result
}

func validateComment(result *ValidationResult, s *sentenceState, line string, lineNum int) {
	key, value, ok := strings.Cut(strings.TrimPrefix(line, "#"), "=")
	if !ok {
		return
	}

	switch strings.TrimSpace(key) {
	case "sent_id":
		result.Stats.Sentences++

		id := strings.TrimSpace(value)
		if id != strconv.Itoa(result.Stats.Sentences) {
			result.add(lineNum, ErrSentenceID, id)
		}
	case "text":
		s.hasText = true
	}
}

func validateToken(result *ValidationResult, line string, lineNum, want int) {
	fields := strings.Split(line, "\t")
	if len(fields) != columns {
		result.add(lineNum, ErrColumnCount, strconv.Itoa(len(fields)))

		return
	}

	for _, f := range fields {
		if f == "" {
			result.add(lineNum, ErrEmptyField, "")

			return
		}
	}

	if fields[0] != strconv.Itoa(want) {
		result.add(lineNum, ErrTokenID, fields[0])
	}

	if _, ok := universalPOS[fields[3]]; !ok {
		result.add(lineNum, ErrUnknownUPOS, fields[3])
	}

	if !validFeatures(fields[5]) {
		result.add(lineNum, ErrFeatureFormat, fields[5])
	}

	if head, err := strconv.Atoi(fields[6]); fields[6] != "_" && (err != nil || head < 0) {
		result.add(lineNum, ErrHead, fields[6])
	}
}

func validFeatures(feats string) bool {
	if feats == "_" {
		return true
	}

	prev := ""

	for _, pair := range strings.Split(feats, "|") {
		if !featurePattern.MatchString(pair) {
			return false
		}

		name, _, _ := strings.Cut(pair, "=")
		if strings.ToLower(name) <= strings.ToLower(prev) {
			return false
		}

		prev = name
	}

	return true
}
