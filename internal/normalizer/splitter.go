package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"golang.org/x/text/unicode/norm"
)

// defaultAbbreviations end with a period without ending the sentence.
var defaultAbbreviations = []string{
	"г", "гг", "ул", "пр", "просп", "пер", "пл", "наб", "д", "кв", "корп", "стр",
	"обл", "р-н", "им", "св", "т.е", "т.к", "т.н", "см",
	"ср", "напр", "рис", "табл", "руб", "коп", "тыс", "млн", "млрд", "трлн",
	"проф", "акад", "доц", "ген", "зам", "нач", "ред", "гл", "ст", "вв", "н.э",
	"до н.э",
}

// Splitter divides text into sentences using Unicode sentence boundaries,
// then rejoins fragments that were cut after an abbreviation or an initial.
type Splitter struct {
	abbreviations map[string]struct{}
}

// NewSplitter creates a splitter with the built-in Russian abbreviation list.
func NewSplitter(extra ...string) *Splitter {
	s := &Splitter{abbreviations: make(map[string]struct{})}

	for _, a := range defaultAbbreviations {
		s.abbreviations[a] = struct{}{}
	}

	for _, a := range extra {
		s.abbreviations[strings.ToLower(strings.TrimSuffix(a, "."))] = struct{}{}
	}

	return s
}

// SplitSentences splits text with the default splitter.
func SplitSentences(text string) []string {
	return NewSplitter().Split(text)
}

// Split returns the sentences of text in order. Whitespace inside a sentence
// is collapsed to single spaces; blank segments are dropped.
func (s *Splitter) Split(text string) []string {
	text = norm.NFC.String(text)

	var (
		out      []string
		joinable bool
	)

	seg := sentences.FromString(text)
	for seg.Next() {
		raw := seg.Value()

		sentence := strings.Join(strings.Fields(raw), " ")
		if sentence == "" {
			continue
		}

		if joinable && len(out) > 0 {
			out[len(out)-1] += " " + sentence
		} else {
			out = append(out, sentence)
		}

		// A line break always ends a sentence.
		joinable = !strings.HasSuffix(strings.TrimRight(raw, " \t"), "\n") && s.endsWithAbbreviation(sentence)
	}

	return out
}

func (s *Splitter) endsWithAbbreviation(sentence string) bool {
	if !strings.HasSuffix(sentence, ".") || strings.HasSuffix(sentence, "..") {
		return false
	}

	fields := strings.Fields(sentence)
	last := strings.TrimSuffix(fields[len(fields)-1], ".")
	last = strings.TrimLeftFunc(last, func(r rune) bool {
		return unicode.IsPunct(r) && r != '-'
	})

	if last == "" {
		return false
	}

	if _, ok := s.abbreviations[strings.ToLower(last)]; ok {
		return true
	}

	if len(fields) > 1 {
		pair := strings.ToLower(fields[len(fields)-2] + " " + last)
		if _, ok := s.abbreviations[pair]; ok {
			return true
		}
	}

	// Initials: "А." or "А.С."
	return isInitials(last)
}

func isInitials(word string) bool {
	for _, part := range strings.Split(word, ".") {
		r, size := utf8.DecodeRuneInString(part)
		if size == 0 || size != len(part) || !unicode.IsUpper(r) {
			return false
		}
	}

	return true
}
