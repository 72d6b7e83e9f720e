package morph

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode"
)

// Tagger errors.
var (
	ErrTaggerFailed = errors.New("tagger failed")
	ErrTaggerOutput = errors.New("unexpected tagger output")
	ErrBadDictEntry = errors.New("malformed dictionary entry")
)

var (
	_ TagConverter[string]         = (*MystemConverter)(nil)
	_ TagConverter[OpenCorporaTag] = (*OpenCorporaConverter)(nil)
	_ Tagger[string]               = (*MystemTagger)(nil)
	_ Tagger[OpenCorporaTag]       = (*DictTagger)(nil)
)

// Analysis is the tagger's reading of one word. Found is false when the
// tagger has no analysis for it.
type Analysis[T any] struct {
	Tag   T
	Word  string
	Lemma string
	Found bool
}

// Tagger analyses words and returns one Analysis per input word, in order.
type Tagger[T any] interface {
	Name() string
	Analyze(ctx context.Context, words []string) ([]Analysis[T], error)
}

// MystemTagger runs the Yandex Mystem binary.
type MystemTagger struct {
	binary string
}

// NewMystemTagger creates a tagger for the mystem executable at binary.
func NewMystemTagger(binary string) *MystemTagger {
	if binary == "" {
		binary = "mystem"
	}

	return &MystemTagger{binary: binary}
}

// Name identifies the tagger.
func (t *MystemTagger) Name() string {
	return "mystem"
}

type mystemEntry struct {
	Analysis *[]struct {
		Lex string `json:"lex"`
		Gr  string `json:"gr"`
	} `json:"analysis"`
	Text string `json:"text"`
}

// Analyze sends every alphabetic word to one mystem process. Other words are
// returned without analysis.
func (t *MystemTagger) Analyze(ctx context.Context, words []string) ([]Analysis[string], error) {
	out := make([]Analysis[string], len(words))

	var (
		input []string
		index []int
	)

	for i, w := range words {
		out[i].Word = w

		if isAlphabetic(w) {
			input = append(input, w)
			index = append(index, i)
		}
	}

	if len(input) == 0 {
		return out, nil
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.binary, "-n", "-i", "-d", "--format", "json")
	cmd.Stdin = strings.NewReader(strings.Join(input, "\n") + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrTaggerFailed, err, strings.TrimSpace(stderr.String()))
	}

	dec := json.NewDecoder(&stdout)
	n := 0

	for {
		var e mystemEntry

		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTaggerOutput, err)
		}

		// Separators come back without an analysis field.
		if e.Analysis == nil {
			continue
		}

		if n >= len(input) || !strings.EqualFold(e.Text, input[n]) {
			return nil, fmt.Errorf("%w: token %q out of step with input", ErrTaggerOutput, e.Text)
		}

		if readings := *e.Analysis; len(readings) > 0 {
			a := &out[index[n]]
			a.Lemma = readings[0].Lex
			a.Tag = readings[0].Gr
			a.Found = true
		}

		n++
	}

	if n != len(input) {
		return nil, fmt.Errorf("%w: got %d analyses for %d words", ErrTaggerOutput, n, len(input))
	}

	return out, nil
}

func isAlphabetic(word string) bool {
	if word == "" {
		return false
	}

	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

type dictEntry struct {
	lemma string
	tag   OpenCorporaTag
}

// DictTagger looks words up in an OpenCorpora-style dictionary with lines
// "form<TAB>lemma<TAB>tag". The first entry for a form wins.
type DictTagger struct {
	entries map[string]dictEntry
}

// LoadDictTagger reads a dictionary file.
func LoadDictTagger(path string) (*DictTagger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	return NewDictTagger(f)
}

// NewDictTagger reads a dictionary from r.
func NewDictTagger(r io.Reader) (*DictTagger, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.LazyQuotes = true

	t := &DictTagger{entries: make(map[string]dictEntry)}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDictEntry, err)
		}

		form := strings.ToLower(strings.TrimSpace(record[0]))

		tag := ParseOpenCorporaTag(record[2])
		if form == "" || tag.POS == "" {
			line, _ := reader.FieldPos(0)

			return nil, fmt.Errorf("%w: line %d", ErrBadDictEntry, line)
		}

		if _, ok := t.entries[form]; !ok {
			t.entries[form] = dictEntry{lemma: strings.TrimSpace(record[1]), tag: tag}
		}
	}

	return t, nil
}

// Name identifies the tagger.
func (t *DictTagger) Name() string {
	return "opencorpora"
}

// Len returns the number of distinct forms.
func (t *DictTagger) Len() int {
	return len(t.entries)
}

// Analyze looks each word up by its lowercase form.
func (t *DictTagger) Analyze(ctx context.Context, words []string) ([]Analysis[OpenCorporaTag], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Analysis[OpenCorporaTag], len(words))

	for i, w := range words {
		out[i].Word = w

		if e, ok := t.entries[strings.ToLower(w)]; ok {
			out[i].Lemma = e.lemma
			out[i].Tag = e.tag
			out[i].Found = true
		}
	}

	return out, nil
}
