package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"newscorpus/internal/config"
	"newscorpus/internal/logger"
	"newscorpus/internal/models"
	"newscorpus/internal/storage"
)

// ArticleError records an article that could not be harvested.
type ArticleError struct {
	Err error
	URL string
}

// Report summarises a harvest run.
type Report struct {
	Failed     []ArticleError
	SeedErrors []SeedResult
	Duration   time.Duration
	Discovered int
	Saved      int
}

// RetryPolicy controls how often a retryable article fetch is repeated.
type RetryPolicy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy retries a transient failure once.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       2,
		InitialDelay:      500 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

// Harvester runs a full crawl: discover links, parse articles, persist them.
type Harvester struct {
	crawler *Crawler
	parser  *ArticleParser
	writer  *storage.Writer
	logger  *logger.Logger
	retry   RetryPolicy
	workers int
}

// NewHarvester wires a crawler and parser to an output writer.
func NewHarvester(cfg *config.Config, c *Crawler, p *ArticleParser, w *storage.Writer, log *logger.Logger) *Harvester {
	return &Harvester{
		crawler: c,
		parser:  p,
		writer:  w,
		logger:  log,
		retry:   DefaultRetryPolicy(),
		workers: cfg.Workers(),
	}
}

// SetRetryPolicy replaces the default retry policy.
func (h *Harvester) SetRetryPolicy(p RetryPolicy) {
	h.retry = p
}

// Run clears the output directory, crawls, parses every discovered article
// and persists the successful ones with contiguous identifiers starting at 1.
func (h *Harvester) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := storage.PrepareEnvironment(h.writer.Dir()); err != nil {
		return nil, err
	}

	if err := h.crawler.FindArticles(ctx); err != nil {
		return nil, fmt.Errorf("crawl aborted: %w", err)
	}

	urls := h.crawler.URLs()
	report := &Report{
		Discovered: len(urls),
		SeedErrors: h.crawler.SeedErrors(),
	}

	articles := make([]*models.Article, len(urls))
	errs := make([]error, len(urls))

	var g errgroup.Group

	g.SetLimit(h.workers)

	for i, url := range urls {
		g.Go(func() error {
			articles[i], errs[i] = h.parseWithRetry(ctx, url, i+1)

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("harvest aborted: %w", err)
	}

	next := 1

	for i, article := range articles {
		if errs[i] != nil {
			h.logger.Error("failed to parse article", "url", urls[i], "error", errs[i])
			report.Failed = append(report.Failed, ArticleError{URL: urls[i], Err: errs[i]})

			continue
		}

		article.ID = next
		next++

		if err := h.writer.WriteRaw(article); err != nil {
			return nil, err
		}

		if err := h.writer.WriteMeta(article); err != nil {
			return nil, err
		}

		report.Saved++
	}

	report.Duration = time.Since(start)

	return report, nil
}

func (h *Harvester) parseWithRetry(ctx context.Context, url string, id int) (*models.Article, error) {
	delay := h.retry.InitialDelay

	for attempt := 1; ; attempt++ {
		article, err := h.parser.Parse(ctx, url, id)
		if err == nil || attempt >= h.retry.MaxAttempts || !isRetryable(err) {
			return article, err
		}

		h.logger.Warn("retrying article", "url", url, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * h.retry.BackoffMultiplier)
	}
}

func isRetryable(err error) bool {
	var fetchErr *FetchError

	return errors.As(err, &fetchErr) && fetchErr.Retryable()
}
