// Package storage reads and writes the on-disk corpus: raw text, metadata,
// cleaned text and CoNLL-U files, one set per article identifier.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"newscorpus/internal/models"
)

// File name suffixes. A file name is "<id><suffix>".
const (
	RawSuffix         = "_raw.txt"
	MetaSuffix        = "_meta.json"
	CleanedSuffix     = "_cleaned.txt"
	ConlluSuffix      = "_conllu.conllu"
	MorphConlluSuffix = "_morphological_conllu.conllu"
	DateLayout        = "2006-01-02 15:04:05"
	filePerm          = 0o644
	dirPerm           = 0o755
)

// Corpus file errors.
var (
	ErrBadFileName    = errors.New("file name does not carry an article id")
	ErrMetaIDMismatch = errors.New("meta id does not match the file name")
)

// meta is the JSON shape of a metadata file.
type meta struct {
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Date   string   `json:"date"`
	Topics []string `json:"topics"`
	ID     int      `json:"id"`
}

// PrepareEnvironment removes dir if it exists and creates it empty.
func PrepareEnvironment(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return nil
}

// FileName builds the corpus file name for an id and suffix.
func FileName(id int, suffix string) string {
	return strconv.Itoa(id) + suffix
}

// ParseID extracts the identifier from a corpus file name such as "12_raw.txt".
func ParseID(name, suffix string) (int, error) {
	prefix, ok := strings.CutSuffix(filepath.Base(name), suffix)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrBadFileName, name)
	}

	id, err := strconv.Atoi(prefix)
	if err != nil || id < 1 || strconv.Itoa(id) != prefix {
		return 0, fmt.Errorf("%w: %s", ErrBadFileName, name)
	}

	return id, nil
}

// Writer persists articles under a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the target directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteRaw stores the raw body text.
func (w *Writer) WriteRaw(a *models.Article) error {
	return w.write(a.ID, RawSuffix, []byte(a.Text))
}

// WriteMeta stores the metadata record.
func (w *Writer) WriteMeta(a *models.Article) error {
	m := meta{
		ID:     a.ID,
		URL:    a.URL,
		Title:  a.Title,
		Author: a.Author,
		Topics: a.Topics,
	}

	if m.Topics == nil {
		m.Topics = []string{}
	}

	if !a.Date.IsZero() {
		m.Date = a.Date.Format(DateLayout)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meta for article %d: %w", a.ID, err)
	}

	return w.write(a.ID, MetaSuffix, data)
}

// WriteCleaned stores the cleaned sentences.
func (w *Writer) WriteCleaned(a *models.Article) error {
	return w.write(a.ID, CleanedSuffix, []byte(a.CleanedText()))
}

// WriteConllu stores the CoNLL-U rendering. The morphological variant goes to
// a separate file name.
func (w *Writer) WriteConllu(a *models.Article, includeMorph bool) error {
	suffix := ConlluSuffix
	if includeMorph {
		suffix = MorphConlluSuffix
	}

	return w.write(a.ID, suffix, []byte(a.Conllu(includeMorph)))
}

func (w *Writer) write(id int, suffix string, data []byte) error {
	path := filepath.Join(w.dir, FileName(id, suffix))
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// ReadRaw loads the article body from a raw file. The identifier comes from
// the file name.
func ReadRaw(path string) (*models.Article, error) {
	id, err := ParseID(path, RawSuffix)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	a := models.NewArticle("", id)
	a.Text = string(data)

	return a, nil
}

// ReadMeta fills metadata fields of a from a meta file.
func ReadMeta(path string, a *models.Article) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if m.ID != 0 && m.ID != a.ID {
		return fmt.Errorf("%w: %s holds id %d", ErrMetaIDMismatch, path, m.ID)
	}

	a.URL = m.URL
	a.Title = m.Title
	a.Author = m.Author
	a.Topics = m.Topics

	if m.Date != "" {
		date, err := time.Parse(DateLayout, m.Date)
		if err != nil {
			return fmt.Errorf("failed to parse date in %s: %w", path, err)
		}

		a.Date = date
	}

	return nil
}
