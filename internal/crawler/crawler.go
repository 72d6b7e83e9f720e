package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newscorpus/internal/config"
	"newscorpus/internal/logger"
)

// SeedResult records the outcome of visiting one seed page.
type SeedResult struct {
	Timestamp time.Time
	Err       error
	URL       string
	Found     int
	Duration  time.Duration
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithRobots makes the crawler skip article links disallowed by robots.txt.
func WithRobots(r *RobotsChecker) Option {
	return func(c *Crawler) {
		c.robots = r
	}
}

// Crawler collects article URLs from the configured seed pages.
type Crawler struct {
	fetcher PageFetcher
	robots  *RobotsChecker
	logger  *logger.Logger
	seen    map[string]struct{}
	site    Site
	seeds   []string
	urls    []string
	results []SeedResult
	target  int
}

// NewCrawler creates a crawler for the seeds and target count of cfg.
func NewCrawler(cfg *config.Config, fetcher PageFetcher, site Site, log *logger.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher: fetcher,
		logger:  log,
		seen:    make(map[string]struct{}),
		site:    site,
		seeds:   cfg.SeedURLs(),
		target:  cfg.NumArticles(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SeedURLs returns the configured seed pages.
func (c *Crawler) SeedURLs() []string {
	return append([]string(nil), c.seeds...)
}

// FindArticles visits seeds in order and collects article URLs in document
// order until the target count is reached. A seed that cannot be fetched or
// parsed is recorded and skipped. Only context cancellation is returned.
func (c *Crawler) FindArticles(ctx context.Context) error {
	for _, seed := range c.seeds {
		if len(c.urls) >= c.target {
			break
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		found, err := c.visitSeed(ctx, seed)

		c.results = append(c.results, SeedResult{
			Timestamp: start,
			URL:       seed,
			Found:     found,
			Err:       err,
			Duration:  time.Since(start),
		})

		if err != nil {
			c.logger.Warn("seed page failed", "url", seed, "error", err)

			continue
		}

		c.logger.Info("seed page visited", "url", seed, "found", found, "total", len(c.urls))
	}

	if len(c.urls) < c.target {
		c.logger.Warn("fewer articles found than requested", "found", len(c.urls), "requested", c.target)
	}

	return nil
}

func (c *Crawler) visitSeed(ctx context.Context, seed string) (int, error) {
	resp, err := c.fetcher.Get(ctx, seed)
	if err != nil {
		return 0, err
	}

	page, err := url.Parse(resp.URL)
	if err != nil {
		return 0, fmt.Errorf("invalid page url %q: %w", resp.URL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", seed, err)
	}

	found := 0

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")

		link, ok := c.site.AcceptLink(page, href)
		if !ok {
			return true
		}

		key := link.String()
		if _, dup := c.seen[key]; dup {
			return true
		}

		c.seen[key] = struct{}{}

		if c.robots != nil && !c.robots.Allowed(ctx, link) {
			c.logger.Debug("link disallowed by robots.txt", "url", key)

			return true
		}

		c.urls = append(c.urls, key)
		found++

		return len(c.urls) < c.target
	})

	return found, nil
}

// URLs returns the collected article URLs in discovery order.
func (c *Crawler) URLs() []string {
	return append([]string(nil), c.urls...)
}

// SeedResults returns one record per visited seed page.
func (c *Crawler) SeedResults() []SeedResult {
	return append([]SeedResult(nil), c.results...)
}

// SeedErrors returns the failures among visited seed pages.
func (c *Crawler) SeedErrors() []SeedResult {
	var failed []SeedResult

	for _, r := range c.results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}

	return failed
}
