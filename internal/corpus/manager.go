// Package corpus loads a harvested assets directory after checking that it
// forms a consistent dataset.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"newscorpus/internal/models"
	"newscorpus/internal/storage"
)

// Dataset errors.
var (
	ErrAssetsNotFound      = errors.New("assets directory does not exist")
	ErrNotADirectory       = errors.New("assets path is not a directory")
	ErrEmptyDirectory      = errors.New("assets directory is empty")
	ErrInconsistentDataset = errors.New("inconsistent dataset")
)

// Index maps article identifiers to articles. It is built once and then only
// read.
type Index struct {
	articles map[int]*models.Article
	ids      []int
}

// NewIndex builds an index from articles. Later articles replace earlier
// ones with the same identifier.
func NewIndex(articles ...*models.Article) *Index {
	idx := &Index{articles: make(map[int]*models.Article, len(articles))}

	for _, a := range articles {
		if _, ok := idx.articles[a.ID]; !ok {
			idx.ids = append(idx.ids, a.ID)
		}

		idx.articles[a.ID] = a
	}

	sort.Ints(idx.ids)

	return idx
}

// Get returns the article with identifier id.
func (i *Index) Get(id int) (*models.Article, bool) {
	a, ok := i.articles[id]

	return a, ok
}

// Len returns the number of articles.
func (i *Index) Len() int {
	return len(i.ids)
}

// IDs returns the identifiers in ascending order.
func (i *Index) IDs() []int {
	return append([]int(nil), i.ids...)
}

// Articles returns the articles in ascending identifier order.
func (i *Index) Articles() []*models.Article {
	out := make([]*models.Article, 0, len(i.ids))
	for _, id := range i.ids {
		out = append(out, i.articles[id])
	}

	return out
}

// Load validates dir and loads every raw/meta pair in it. Nothing is
// returned unless the whole directory passes validation.
func Load(dir string) (*Index, error) {
	raw, meta, err := scan(dir)
	if err != nil {
		return nil, err
	}

	if err := validate(raw, meta); err != nil {
		return nil, err
	}

	articles := make([]*models.Article, 0, len(raw))

	for id := 1; id <= len(raw); id++ {
		a, err := storage.ReadRaw(raw[id])
		if err != nil {
			return nil, err
		}

		if err := storage.ReadMeta(meta[id], a); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInconsistentDataset, err)
		}

		articles = append(articles, a)
	}

	return NewIndex(articles...), nil
}

// scan checks the directory itself and collects raw and meta files by id.
func scan(dir string) (raw, meta map[int]string, err error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrAssetsNotFound, dir)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyDirectory, dir)
	}

	raw = make(map[int]string)
	meta = make(map[int]string)

	for _, e := range entries {
		name := e.Name()

		var (
			target map[int]string
			suffix string
		)

		switch {
		case strings.HasSuffix(name, storage.RawSuffix):
			target, suffix = raw, storage.RawSuffix
		case strings.HasSuffix(name, storage.MetaSuffix):
			target, suffix = meta, storage.MetaSuffix
		default:
			continue
		}

		id, err := storage.ParseID(name, suffix)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInconsistentDataset, err)
		}

		if e.IsDir() {
			return nil, nil, fmt.Errorf("%w: %s is a directory", ErrInconsistentDataset, name)
		}

		target[id] = filepath.Join(dir, name)
	}

	if len(raw) == 0 && len(meta) == 0 {
		return nil, nil, fmt.Errorf("%w: no articles in %s", ErrEmptyDirectory, dir)
	}

	return raw, meta, nil
}

// validate enforces pairing, contiguous identifiers from 1 and non-empty raw
// files.
func validate(raw, meta map[int]string) error {
	if len(raw) != len(meta) {
		return fmt.Errorf("%w: %d raw files, %d meta files", ErrInconsistentDataset, len(raw), len(meta))
	}

	for id := 1; id <= len(raw); id++ {
		path, ok := raw[id]
		if !ok {
			return fmt.Errorf("%w: raw file %d missing", ErrInconsistentDataset, id)
		}

		if _, ok := meta[id]; !ok {
			return fmt.Errorf("%w: meta file %d missing", ErrInconsistentDataset, id)
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.Size() == 0 {
			return fmt.Errorf("%w: raw file %d is empty", ErrInconsistentDataset, id)
		}
	}

	return nil
}
