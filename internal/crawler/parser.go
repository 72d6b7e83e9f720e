package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newscorpus/internal/logger"
	"newscorpus/internal/models"
)

// Article parser errors.
var (
	ErrPageUnreachable = errors.New("article page unreachable")
	ErrMissingBody     = errors.New("article body not found")
)

// ArticleParser turns an article page into a models.Article.
type ArticleParser struct {
	fetcher PageFetcher
	logger  *logger.Logger
	now     func() time.Time
	site    Site
}

// NewArticleParser creates a parser for pages laid out as site describes.
func NewArticleParser(fetcher PageFetcher, site Site, log *logger.Logger) *ArticleParser {
	return &ArticleParser{
		fetcher: fetcher,
		logger:  log,
		now:     time.Now,
		site:    site,
	}
}

// Parse fetches url and extracts the article with the given id.
func (p *ArticleParser) Parse(ctx context.Context, url string, id int) (*models.Article, error) {
	resp, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageUnreachable, err)
	}

	return p.ParseDocument(url, id, resp.Body)
}

// ParseDocument extracts the article from an already fetched page. Missing
// metadata is logged and left empty; a missing body is an error.
func (p *ArticleParser) ParseDocument(url string, id int, html string) (*models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	article := models.NewArticle(url, id)

	text, err := p.extractBody(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	article.Text = text
	article.Title = firstValue(doc, p.site.TitleSelectors)
	article.Author = firstValue(doc, p.site.AuthorSelectors)
	article.Topics = p.extractTopics(doc)

	if raw := firstValue(doc, p.site.DateSelectors); raw != "" {
		date, err := UnifyDate(raw, p.now())
		if err != nil {
			p.logger.Warn("failed to parse article date", "url", url, "raw", raw, "error", err)
		} else {
			article.Date = date
		}
	}

	if article.Title == "" {
		p.logger.Debug("article has no title", "url", url)
	}

	return article, nil
}

func (p *ArticleParser) extractBody(doc *goquery.Document) (string, error) {
	container := doc.Find(p.site.BodySelector).First()
	if container.Length() == 0 {
		return "", fmt.Errorf("%w: no %s", ErrMissingBody, p.site.BodySelector)
	}

	var paragraphs []string

	container.Find(p.site.ParagraphSelector).Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpaces(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return "", fmt.Errorf("%w: container has no paragraph text", ErrMissingBody)
	}

	return strings.Join(paragraphs, "\n"), nil
}

func (p *ArticleParser) extractTopics(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	topics := []string{}

	add := func(topic string) {
		topic = collapseSpaces(topic)
		if topic == "" {
			return
		}

		if _, ok := seen[topic]; ok {
			return
		}

		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	for _, selector := range p.site.TopicSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			add(nodeValue(s))
		})
	}

	if len(topics) == 0 {
		if keywords, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
			for _, k := range strings.Split(keywords, ",") {
				add(k)
			}
		}
	}

	return topics
}

// firstValue returns the first non-empty value matched by selectors, tried in order.
func firstValue(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var value string

		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			value = nodeValue(s)

			return value == ""
		})

		if value != "" {
			return value
		}
	}

	return ""
}

// nodeValue reads the machine-readable attribute of meta and time elements
// and the text of anything else.
func nodeValue(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "meta":
		v, _ := s.Attr("content")

		return collapseSpaces(v)
	case "time":
		if v, ok := s.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			return collapseSpaces(v)
		}
	}

	if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return collapseSpaces(v)
	}

	return collapseSpaces(s.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
