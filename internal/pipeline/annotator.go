package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"newscorpus/internal/models"
	"newscorpus/internal/morph"
)

// UPOS values assigned without a tagger.
const (
	posPunct   = "PUNCT"
	posNum     = "NUM"
	posUnknown = "X"
)

// Annotator attaches morphology to tokens.
type Annotator interface {
	Name() string
	AnnotateTokens(ctx context.Context, tokens []*models.Token) error
}

// TokenFailure is a token whose tag could not be converted.
type TokenFailure struct {
	Err       error
	Annotator string
	Word      string
}

// AnnotationError collects token-level failures. The affected tokens keep
// whatever annotation they had; the rest of the text is annotated normally.
type AnnotationError struct {
	Failures []TokenFailure
}

func (e *AnnotationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s %q: %v", f.Annotator, f.Word, f.Err))
	}

	return fmt.Sprintf("%d tokens not annotated: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *AnnotationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}

// MorphAnnotator tags tokens with a Tagger and converts the native tags with
// a TagConverter.
type MorphAnnotator[T any] struct {
	tagger    morph.Tagger[T]
	converter morph.TagConverter[T]
}

// NewMorphAnnotator pairs a tagger with the converter for its tag type.
func NewMorphAnnotator[T any](tagger morph.Tagger[T], converter morph.TagConverter[T]) *MorphAnnotator[T] {
	return &MorphAnnotator[T]{tagger: tagger, converter: converter}
}

// Name identifies the underlying tagger.
func (a *MorphAnnotator[T]) Name() string {
	return a.tagger.Name()
}

// AnnotateTokens sends all word tokens to the tagger in one call. Tokens the
// tagger does not know are marked PUNCT, NUM or X unless they already carry
// an annotation. A tagger failure fails the whole call; a conversion failure
// leaves only that token untouched and is returned as *AnnotationError.
func (a *MorphAnnotator[T]) AnnotateTokens(ctx context.Context, tokens []*models.Token) error {
	words := make([]string, 0, len(tokens))
	index := make([]*models.Token, 0, len(tokens))

	for _, tok := range tokens {
		if tok.IsPunct() {
			if tok.Morph() == nil {
				tok.SetMorph(models.MorphParams{Lemma: tok.Text, POS: posPunct})
			}

			continue
		}

		words = append(words, tok.Cleaned())
		index = append(index, tok)
	}

	if len(words) == 0 {
		return nil
	}

	analyses, err := a.tagger.Analyze(ctx, words)
	if err != nil {
		return fmt.Errorf("%s: %w", a.tagger.Name(), err)
	}

	if len(analyses) != len(words) {
		return fmt.Errorf("%s: %w: %d analyses for %d words", a.tagger.Name(), morph.ErrTaggerOutput, len(analyses), len(words))
	}

	var failures []TokenFailure

	for i, tok := range index {
		analysis := analyses[i]

		if !analysis.Found {
			if tok.Morph() == nil {
				tok.SetMorph(fallback(words[i]))
			}

			continue
		}

		params, err := a.convert(analysis)
		if err != nil {
			failures = append(failures, TokenFailure{Annotator: a.Name(), Word: tok.Text, Err: err})

			continue
		}

		tok.SetMorph(params)
	}

	if len(failures) > 0 {
		return &AnnotationError{Failures: failures}
	}

	return nil
}

func (a *MorphAnnotator[T]) convert(analysis morph.Analysis[T]) (models.MorphParams, error) {
	pos, err := a.converter.ConvertPOS(analysis.Tag)
	if err != nil {
		return models.MorphParams{}, err
	}

	features, err := a.converter.ConvertFeatures(analysis.Tag)
	if err != nil {
		return models.MorphParams{}, err
	}

	params := models.MorphParams{Lemma: analysis.Lemma, POS: pos}
	if len(features) > 0 {
		params.Features = features.String()
	}

	if params.Lemma == "" {
		params.Lemma = analysis.Word
	}

	return params, nil
}

func fallback(word string) models.MorphParams {
	pos := posUnknown
	if isNumber(word) {
		pos = posNum
	}

	return models.MorphParams{Lemma: word, POS: pos}
}

func isNumber(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return word != ""
}

// backupAnnotator re-annotates selected tokens with a second annotator.
type backupAnnotator struct {
	primary Annotator
	backup  Annotator
	when    func(*models.Token) bool
}

// WithBackup annotates all tokens with primary, then passes the tokens for
// which when returns true to backup. Backup results replace the primary ones
// only where backup has an analysis.
func WithBackup(primary, backup Annotator, when func(*models.Token) bool) Annotator {
	return &backupAnnotator{primary: primary, backup: backup, when: when}
}

// IsNoun selects tokens the primary annotator tagged as NOUN.
func IsNoun(tok *models.Token) bool {
	m := tok.Morph()

	return m != nil && m.POS == "NOUN"
}

func (b *backupAnnotator) Name() string {
	return b.primary.Name() + "+" + b.backup.Name()
}

func (b *backupAnnotator) AnnotateTokens(ctx context.Context, tokens []*models.Token) error {
	var failures []TokenFailure

	if err := collect(b.primary.AnnotateTokens(ctx, tokens), &failures); err != nil {
		return err
	}

	var selected []*models.Token

	for _, tok := range tokens {
		if b.when(tok) {
			selected = append(selected, tok)
		}
	}

	if len(selected) > 0 {
		if err := collect(b.backup.AnnotateTokens(ctx, selected), &failures); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return &AnnotationError{Failures: failures}
	}

	return nil
}

// collect moves token failures out of err and returns any other error.
func collect(err error, failures *[]TokenFailure) error {
	var annErr *AnnotationError
	if errors.As(err, &annErr) {
		*failures = append(*failures, annErr.Failures...)

		return nil
	}

	return err
}
