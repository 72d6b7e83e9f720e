// Package config provides configuration management for the article harvester.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

// Limits applied during validation.
const (
	MaxArticles       = 150
	MinTimeoutSec     = 1
	MaxTimeoutSec     = 60
	MaxWorkers        = 8
	MaxRequestDelayMs = 10000
)

// Configuration validation errors.
var (
	ErrIncorrectSeedURL           = errors.New("seed URL does not match standard pattern")
	ErrIncorrectNumberOfArticles  = errors.New("total number of articles to parse is not a positive integer")
	ErrNumberOfArticlesOutOfRange = errors.New("total number of articles is out of range")
	ErrIncorrectHeaders           = errors.New("headers are not a mapping of strings")
	ErrIncorrectEncoding          = errors.New("encoding must be a known encoding name")
	ErrIncorrectTimeout           = errors.New("timeout must be an integer within range")
	ErrIncorrectVerify            = errors.New("flag must be a boolean")
	ErrIncorrectWorkers           = errors.New("workers must be an integer within range")
	ErrIncorrectRequestDelay      = errors.New("request_delay_ms must be an integer within range")
	ErrMalformedDocument          = errors.New("configuration must be a single mapping")
)

var seedURLPattern = regexp.MustCompile(`^https?://[^\s/?#]+[^\s]*$`)

// Record is the on-disk shape of the harvester configuration.
type Record struct {
	Headers           map[string]string `yaml:"headers"`
	Encoding          string            `yaml:"encoding"`
	SeedURLs          []string          `yaml:"seed_urls"`
	NumArticles       int               `yaml:"total_articles_to_find_and_parse"`
	Timeout           int               `yaml:"timeout"`
	Workers           int               `yaml:"workers"`
	RequestDelayMs    int               `yaml:"request_delay_ms"`
	VerifyCertificate bool              `yaml:"should_verify_certificate"`
	HeadlessMode      bool              `yaml:"headless_mode"`
	RespectRobots     bool              `yaml:"respect_robots_txt"`
}

// Config is a validated, immutable configuration. It is built once and all
// accessors read from the cached record.
type Config struct {
	record Record
}

// Load reads, validates and caches configuration from a JSON or YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse validates raw configuration bytes. Each field is checked against the
// document tree, type first and then value, in file order, so a wrong-typed
// field reports the error of that field.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrMalformedDocument
	}

	root := doc.Content[0]
	if err := checkFields(root); err != nil {
		return nil, err
	}

	rec := Record{Workers: 1}
	if err := root.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return New(rec)
}

// New validates an in-memory record. Unset Workers defaults to 1.
func New(rec Record) (*Config, error) {
	if rec.Workers == 0 {
		rec.Workers = 1
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	rec.SeedURLs = slices.Clone(rec.SeedURLs)
	rec.Headers = maps.Clone(rec.Headers)

	return &Config{record: rec}, nil
}

// Validate checks value ranges in declaration order of the config file.
func (r *Record) Validate() error {
	checks := []func() error{
		func() error { return validateSeedURLs(r.SeedURLs) },
		func() error { return validateNumArticles(r.NumArticles) },
		func() error { return validateHeaders(r.Headers) },
		func() error { return validateEncoding(r.Encoding) },
		func() error { return validateTimeout(r.Timeout) },
		func() error { return validateWorkers(r.Workers) },
		func() error { return validateRequestDelay(r.RequestDelayMs) },
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func validateSeedURLs(seeds []string) error {
	if len(seeds) == 0 {
		return fmt.Errorf("%w: seed_urls is empty", ErrIncorrectSeedURL)
	}

	for i, seed := range seeds {
		if !isAbsoluteHTTPURL(seed) {
			return fmt.Errorf("%w: seed_urls[%d]=%q", ErrIncorrectSeedURL, i, seed)
		}
	}

	return nil
}

func validateNumArticles(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrIncorrectNumberOfArticles, n)
	}

	if n > MaxArticles {
		return fmt.Errorf("%w: %d > %d", ErrNumberOfArticlesOutOfRange, n, MaxArticles)
	}

	return nil
}

func validateHeaders(headers map[string]string) error {
	if headers == nil {
		return fmt.Errorf("%w: headers missing", ErrIncorrectHeaders)
	}

	return nil
}

func validateEncoding(name string) error {
	if _, err := htmlindex.Get(name); err != nil {
		return fmt.Errorf("%w: %q", ErrIncorrectEncoding, name)
	}

	return nil
}

func validateTimeout(sec int) error {
	if sec < MinTimeoutSec || sec > MaxTimeoutSec {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrIncorrectTimeout, sec, MinTimeoutSec, MaxTimeoutSec)
	}

	return nil
}

func validateWorkers(n int) error {
	if n < 1 || n > MaxWorkers {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrIncorrectWorkers, n, MaxWorkers)
	}

	return nil
}

func validateRequestDelay(ms int) error {
	if ms < 0 || ms > MaxRequestDelayMs {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIncorrectRequestDelay, ms, MaxRequestDelayMs)
	}

	return nil
}

func isAbsoluteHTTPURL(raw string) bool {
	if !seedURLPattern.MatchString(raw) {
		return false
	}

	u, err := url.Parse(raw)

	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https")
}

// SeedURLs returns a copy of the seed URL list.
func (c *Config) SeedURLs() []string {
	return slices.Clone(c.record.SeedURLs)
}

// NumArticles returns the number of articles to find and parse.
func (c *Config) NumArticles() int {
	return c.record.NumArticles
}

// Headers returns a copy of the request headers.
func (c *Config) Headers() map[string]string {
	return maps.Clone(c.record.Headers)
}

// Encoding returns the response encoding name.
func (c *Config) Encoding() string {
	return c.record.Encoding
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.record.Timeout) * time.Second
}

// VerifyCertificate reports whether TLS certificates are verified.
func (c *Config) VerifyCertificate() bool {
	return c.record.VerifyCertificate
}

// HeadlessMode reports whether headless fetching was requested.
func (c *Config) HeadlessMode() bool {
	return c.record.HeadlessMode
}

// Workers returns the article parsing fan-out.
func (c *Config) Workers() int {
	return c.record.Workers
}

// RequestDelay returns the minimum delay between two requests.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.record.RequestDelayMs) * time.Millisecond
}

// RespectRobots reports whether robots.txt rules are honoured.
func (c *Config) RespectRobots() bool {
	return c.record.RespectRobots
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Seeds: %d, Articles: %d, Encoding: %s, Timeout: %ds, Workers: %d}",
		len(c.record.SeedURLs),
		c.record.NumArticles,
		c.record.Encoding,
		c.record.Timeout,
		c.record.Workers,
	)
}
