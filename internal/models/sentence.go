package models

import (
	"fmt"
	"regexp"
	"strings"
)

// emptyField marks an absent CoNLL-U value.
const emptyField = "_"

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]+`)

// MorphParams holds the morphological attributes of a token.
type MorphParams struct {
	Lemma    string
	POS      string
	Features string
}

// Token is a whitespace-delimited surface form within a sentence.
type Token struct {
	morph *MorphParams
	Text  string
}

// NewToken creates an untagged token.
func NewToken(text string) *Token {
	return &Token{Text: text}
}

// Cleaned returns the lowercase form with punctuation removed.
func (t *Token) Cleaned() string {
	return strings.ToLower(nonWordPattern.ReplaceAllString(t.Text, ""))
}

// IsPunct reports whether the token has no word characters at all.
func (t *Token) IsPunct() bool {
	return t.Cleaned() == ""
}

// SetMorph attaches morphological attributes.
func (t *Token) SetMorph(p MorphParams) {
	t.morph = &p
}

// Morph returns the attached attributes, or nil before annotation.
func (t *Token) Morph() *MorphParams {
	return t.morph
}

// ConlluLine renders the token as a ten column CoNLL-U row.
func (t *Token) ConlluLine(position int, includeMorph bool) string {
	lemma := orEmpty(t.Cleaned())
	pos := emptyField
	feats := emptyField

	if t.morph != nil {
		lemma = orEmpty(t.morph.Lemma)
		pos = orEmpty(t.morph.POS)

		if includeMorph {
			feats = orEmpty(t.morph.Features)
		}
	}

	return strings.Join([]string{
		fmt.Sprint(position),
		t.Text,
		lemma,
		pos,
		emptyField,
		feats,
		"0",
		"root",
		emptyField,
		emptyField,
	}, "\t")
}

func orEmpty(s string) string {
	if s == "" {
		return emptyField
	}

	return s
}

// Sentence is an ordered run of tokens at a 1-based position in its article.
type Sentence struct {
	Text     string
	Tokens   []*Token
	Position int
}

// NewSentence creates a sentence with the given tokens.
func NewSentence(position int, text string, tokens []*Token) *Sentence {
	return &Sentence{Position: position, Text: text, Tokens: tokens}
}

// Cleaned joins the cleaned forms of all non-punctuation tokens.
func (s *Sentence) Cleaned() string {
	words := make([]string, 0, len(s.Tokens))
	for _, tok := range s.Tokens {
		if cleaned := tok.Cleaned(); cleaned != "" {
			words = append(words, cleaned)
		}
	}

	return strings.Join(words, " ")
}

// Conllu renders the sentence block including its comment header and the
// trailing blank line.
func (s *Sentence) Conllu(includeMorph bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# sent_id = %d\n", s.Position)
	fmt.Fprintf(&b, "# text = %s\n", s.Text)

	for i, tok := range s.Tokens {
		b.WriteString(tok.ConlluLine(i+1, includeMorph))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')

	return b.String()
}
