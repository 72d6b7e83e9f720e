package integration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newscorpus/internal/config"
	"newscorpus/internal/crawler"
	"newscorpus/internal/logger"
	"newscorpus/internal/storage"
)

// newsSite serves a seed page at /news/ linking every path in articles.
// A path mapped to an empty body is linked but answers 404.
func newsSite(t *testing.T, articles map[string]string) *httptest.Server {
	t.Helper()

	var seed strings.Builder
	for path := range articles {
		seed.WriteString(`<a href="` + path + `">link</a>`)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		if r.URL.Path == "/news/" {
			_, _ = w.Write([]byte("<html><body>" + seed.String() + "</body></html>"))

			return
		}

		body := articles[r.URL.Path]
		if body == "" {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func articleHTML(title, date string, paragraphs ...string) string {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<p>" + p + "</p>")
	}

	return `<html><head><title>` + title + `</title></head><body>` +
		`<h1>` + title + `</h1>` +
		`<span itemprop="author">Редакция</span>` +
		`<time datetime="` + date + `">` + date + `</time>` +
		`<div itemprop="articleBody">` + body.String() + `</div>` +
		`</body></html>`
}

// harvest crawls srv into dir and returns the number of saved articles.
func harvest(t *testing.T, srv *httptest.Server, total int, dir string) int {
	t.Helper()

	cfg, err := config.New(config.Record{
		SeedURLs:          []string{srv.URL + "/news/"},
		NumArticles:       total,
		Headers:           map[string]string{"User-Agent": "newscorpus-test"},
		Encoding:          "utf-8",
		Timeout:           5,
		Workers:           2,
		VerifyCertificate: true,
	})
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}

	log := logger.NewNop()

	fetcher, err := crawler.NewFetcher(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create fetcher: %v", err)
	}

	site := crawler.DefaultSite()
	h := crawler.NewHarvester(cfg,
		crawler.NewCrawler(cfg, fetcher, site, log),
		crawler.NewArticleParser(fetcher, site, log),
		storage.NewWriter(dir),
		log,
	)

	report, err := h.Run(t.Context())
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}

	return report.Saved
}

func readAsset(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}

	return string(data)
}
