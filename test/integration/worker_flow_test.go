package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newscorpus/internal/corpus"
	"newscorpus/internal/pipeline"
	"newscorpus/internal/storage"
	"newscorpus/internal/validator"
)

func TestWorkerFlow_HarvestThenBasicPipeline(t *testing.T) {
	srv := newsSite(t, map[string]string{
		"/news/bridge/": articleHTML("Мост", "2023-04-12 14:30:00",
			"Мост через Урал открыли в среду.", "Движение начнётся в мае."),
		"/news/school/": articleHTML("Школа", "12.04.2023", "Новую школу построили за год."),
		"/news/park/":   articleHTML("Парк", "2023-04-10T09:00:00+05:00", "В парке высадили сто деревьев."),
	})

	dir := filepath.Join(t.TempDir(), "assets")

	// 1. Harvest
	saved := harvest(t, srv, 3, dir)
	if saved != 3 {
		t.Fatalf("Expected 3 saved articles, got %d", saved)
	}

	// 2. Load the corpus back from disk
	index, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if index.Len() != 3 {
		t.Fatalf("Expected 3 articles in index, got %d", index.Len())
	}

	for id := 1; id <= 3; id++ {
		a, ok := index.Get(id)
		if !ok {
			t.Fatalf("Article %d missing from index", id)
		}

		if !strings.HasPrefix(a.URL, srv.URL+"/news/") {
			t.Errorf("Article %d has unexpected URL %s", id, a.URL)
		}

		if a.Author != "Редакция" {
			t.Errorf("Article %d: expected author Редакция, got %q", id, a.Author)
		}
	}

	// 3. Process
	report, err := pipeline.New(index, storage.NewWriter(dir)).Run(t.Context())
	if err != nil {
		t.Fatalf("Pipeline failed: %v", err)
	}

	if report.Processed != 3 || len(report.Failed) != 0 {
		t.Fatalf("Expected 3 processed and no failures, got %d processed, %v", report.Processed, report.Failed)
	}

	// 4. Verify outputs
	for id := 1; id <= 3; id++ {
		cleaned := readAsset(t, dir, storage.FileName(id, storage.CleanedSuffix))
		if cleaned == "" || strings.ContainsAny(cleaned, ".,!?") {
			t.Errorf("Article %d: unexpected cleaned text %q", id, cleaned)
		}

		conllu := readAsset(t, dir, storage.FileName(id, storage.ConlluSuffix))
		if result := validator.ValidateConllu(conllu); !result.IsValid {
			t.Errorf("Article %d: invalid CoNLL-U: %v", id, result.Err())
		}

		if _, err := os.Stat(filepath.Join(dir, storage.FileName(id, storage.MorphConlluSuffix))); !os.IsNotExist(err) {
			t.Errorf("Article %d: basic run must not write a morphological file", id)
		}
	}

	bridge := findByTitle(t, index, "Мост")
	if got := readAsset(t, dir, storage.FileName(bridge, storage.CleanedSuffix)); got != "мост через урал открыли в среду\nдвижение начнётся в мае" {
		t.Errorf("Unexpected cleaned text for the bridge article: %q", got)
	}
}

func TestWorkerFlow_SkipsBrokenPages(t *testing.T) {
	srv := newsSite(t, map[string]string{
		"/news/ok/":      articleHTML("Новость", "2023-04-12", "Обычный текст."),
		"/news/empty/":   `<html><body><h1>Пусто</h1></body></html>`,
		"/news/missing/": "",
	})

	dir := filepath.Join(t.TempDir(), "assets")

	if saved := harvest(t, srv, 3, dir); saved != 1 {
		t.Fatalf("Expected 1 saved article, got %d", saved)
	}

	index, err := corpus.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	a, ok := index.Get(1)
	if !ok || a.Title != "Новость" {
		t.Fatalf("Expected the only article to be stored as 1, got %+v", a)
	}
}

func findByTitle(t *testing.T, index *corpus.Index, title string) int {
	t.Helper()

	for _, a := range index.Articles() {
		if a.Title == title {
			return a.ID
		}
	}

	t.Fatalf("No article titled %q", title)

	return 0
}
