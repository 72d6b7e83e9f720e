package crawler

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscorpus/internal/config"
	"newscorpus/internal/logger"
)

func TestPathPrefixPredicate(t *testing.T) {
	t.Parallel()

	page, err := url.Parse("https://orenday.ru/news/")
	require.NoError(t, err)

	accept := PathPrefixPredicate("/news/")

	tests := []struct {
		href string
		want string
	}{
		{"/news/123-most/", "https://orenday.ru/news/123-most/"},
		{"https://orenday.ru/news/5/", "https://orenday.ru/news/5/"},
		{"item-7/", "https://orenday.ru/news/item-7/"},
		{"/news/", ""},
		{"/news", ""},
		{"/news/1/#comments", ""},
		{"/news/?page=2", ""},
		{"/about/", ""},
		{"https://other.ru/news/1/", ""},
		{"mailto:editor@orenday.ru", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got, ok := accept(page, tt.href)
		if tt.want == "" {
			assert.False(t, ok, tt.href)

			continue
		}

		require.True(t, ok, tt.href)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestCrawler_StopsAtTarget(t *testing.T) {
	t.Parallel()

	srv := pages(t, map[string]string{
		"/news/": `<html><body>
			<a href="/news/1/">one</a>
			<a href="/news/2/">two</a>
			<a href="/news/3/">three</a>
			<a href="/news/4/">four</a>
			<a href="/news/5/">five</a>
		</body></html>`,
	})

	cfg := newTestConfig(t, []string{srv.URL + "/news/"}, 3)
	c := NewCrawler(cfg, newTestFetcher(t, cfg), DefaultSite(), logger.NewNop())

	require.NoError(t, c.FindArticles(context.Background()))
	assert.Equal(t, []string{srv.URL + "/news/1/", srv.URL + "/news/2/", srv.URL + "/news/3/"}, c.URLs())
}

func TestCrawler_DeduplicatesAcrossSeeds(t *testing.T) {
	t.Parallel()

	srv := pages(t, map[string]string{
		"/news/":        `<a href="/news/1/">a</a><a href="/news/1/">again</a><a href="/news/2/">b</a>`,
		"/news/page-2/": `<a href="/news/2/">b</a><a href="/news/3/">c</a>`,
	})

	cfg := newTestConfig(t, []string{srv.URL + "/news/", srv.URL + "/news/page-2/"}, 10)
	c := NewCrawler(cfg, newTestFetcher(t, cfg), DefaultSite(), logger.NewNop())

	require.NoError(t, c.FindArticles(context.Background()))
	assert.Equal(t, []string{
		srv.URL + "/news/1/",
		srv.URL + "/news/2/",
		srv.URL + "/news/3/",
	}, c.URLs())
}

func TestCrawler_SkipsFailingSeed(t *testing.T) {
	t.Parallel()

	srv := pages(t, map[string]string{
		"/news/": `<a href="/news/9/">nine</a>`,
	})

	cfg := newTestConfig(t, []string{srv.URL + "/missing/", srv.URL + "/news/"}, 1)
	c := NewCrawler(cfg, newTestFetcher(t, cfg), DefaultSite(), logger.NewNop())

	require.NoError(t, c.FindArticles(context.Background()))
	assert.Equal(t, []string{srv.URL + "/news/9/"}, c.URLs())

	failed := c.SeedErrors()
	require.Len(t, failed, 1)
	assert.Equal(t, srv.URL+"/missing/", failed[0].URL)
	assert.Len(t, c.SeedResults(), 2)
}

func TestCrawler_DoesNotVisitSeedsAfterTarget(t *testing.T) {
	t.Parallel()

	srv := pages(t, map[string]string{
		"/news/": `<a href="/news/1/">one</a>`,
	})

	cfg := newTestConfig(t, []string{srv.URL + "/news/", srv.URL + "/never/"}, 1)
	c := NewCrawler(cfg, newTestFetcher(t, cfg), DefaultSite(), logger.NewNop())

	require.NoError(t, c.FindArticles(context.Background()))
	assert.Len(t, c.SeedResults(), 1)
	assert.Empty(t, c.SeedErrors())
}

func TestCrawler_RespectsRobots(t *testing.T) {
	t.Parallel()

	srv := pages(t, map[string]string{
		"/robots.txt": "User-agent: *\nDisallow: /news/private/\n",
		"/news/":      `<a href="/news/private/1/">hidden</a><a href="/news/2/">open</a>`,
	})

	cfg := newTestConfig(t, []string{srv.URL + "/news/"}, 5, func(r *config.Record) {
		r.RespectRobots = true
	})
	f := newTestFetcher(t, cfg)
	robots := NewRobotsChecker(f, f.UserAgent(), logger.NewNop())
	c := NewCrawler(cfg, f, DefaultSite(), logger.NewNop(), WithRobots(robots))

	require.NoError(t, c.FindArticles(context.Background()))
	assert.Equal(t, []string{srv.URL + "/news/2/"}, c.URLs())
}

func TestCrawler_CancelledContext(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, []string{"https://orenday.ru/news/"}, 1)
	c := NewCrawler(cfg, newTestFetcher(t, cfg), DefaultSite(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.FindArticles(ctx), context.Canceled)
}
