package crawler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"newscorpus/internal/config"
	"newscorpus/internal/logger"
)

func newTestConfig(t *testing.T, seeds []string, total int, mutate ...func(*config.Record)) *config.Config {
	t.Helper()

	rec := config.Record{
		SeedURLs:          seeds,
		NumArticles:       total,
		Headers:           map[string]string{"User-Agent": "newscorpus-test"},
		Encoding:          "utf-8",
		Timeout:           5,
		VerifyCertificate: true,
	}

	for _, m := range mutate {
		m(&rec)
	}

	cfg, err := config.New(rec)
	require.NoError(t, err)

	return cfg
}

func newTestFetcher(t *testing.T, cfg *config.Config) *Fetcher {
	t.Helper()

	f, err := NewFetcher(cfg, logger.NewNop())
	require.NoError(t, err)

	return f
}

// pages serves fixed HTML bodies by path and 404 for anything else.
func pages(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func articlePage(title, date string, paragraphs ...string) string {
	body := ""
	for _, p := range paragraphs {
		body += "<p>" + p + "</p>"
	}

	return `<html><head><title>` + title + ` | Orenday</title></head><body>` +
		`<h1>` + title + `</h1>` +
		`<time datetime="` + date + `">` + date + `</time>` +
		`<div itemprop="articleBody">` + body + `</div>` +
		`<a rel="tag" href="/tags/city/">город</a>` +
		`</body></html>`
}
