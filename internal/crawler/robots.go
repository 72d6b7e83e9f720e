package crawler

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"newscorpus/internal/logger"
)

// RobotsChecker answers whether a URL may be crawled, caching robots.txt per
// host for the lifetime of a run.
type RobotsChecker struct {
	fetcher   PageFetcher
	logger    *logger.Logger
	cache     map[string]*robotstxt.RobotsData
	userAgent string
	mu        sync.Mutex
}

// NewRobotsChecker creates a checker that downloads robots.txt through fetcher.
func NewRobotsChecker(fetcher PageFetcher, userAgent string, log *logger.Logger) *RobotsChecker {
	return &RobotsChecker{
		fetcher:   fetcher,
		logger:    log,
		cache:     make(map[string]*robotstxt.RobotsData),
		userAgent: userAgent,
	}
}

// Allowed reports whether u may be fetched. A robots.txt that cannot be
// retrieved or parsed allows everything.
func (r *RobotsChecker) Allowed(ctx context.Context, u *url.URL) bool {
	data := r.robotsFor(ctx, u)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return data.TestAgent(path, r.userAgent)
}

func (r *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[key]; ok {
		return data
	}

	data := r.fetch(ctx, key+"/robots.txt")
	r.cache[key] = data

	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	resp, err := r.fetcher.Get(ctx, robotsURL)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
			data, parseErr := robotstxt.FromStatusAndString(fetchErr.StatusCode, "")
			if parseErr == nil {
				return data
			}
		}

		r.logger.Debug("robots.txt unavailable", "url", robotsURL, "error", err)

		return nil
	}

	data, err := robotstxt.FromStatusAndString(resp.StatusCode, resp.Body)
	if err != nil {
		r.logger.Warn("failed to parse robots.txt", "url", robotsURL, "error", err)

		return nil
	}

	return data
}
