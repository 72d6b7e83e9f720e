package crawler

import (
	"net/url"
	"strings"
)

// LinkPredicate decides whether href, found on page, points to an article.
// It returns the absolute article URL when it does.
type LinkPredicate func(page *url.URL, href string) (*url.URL, bool)

// Site describes where a news site keeps its articles and how their pages
// are laid out.
type Site struct {
	AcceptLink        LinkPredicate
	Name              string
	BodySelector      string
	ParagraphSelector string
	TitleSelectors    []string
	AuthorSelectors   []string
	DateSelectors     []string
	TopicSelectors    []string
}

// DefaultSite returns the layout of orenday.ru.
func DefaultSite() Site {
	return Site{
		Name:              "orenday.ru",
		AcceptLink:        PathPrefixPredicate("/news/"),
		BodySelector:      `div[itemprop="articleBody"]`,
		ParagraphSelector: "p",
		TitleSelectors: []string{
			`h1[itemprop="headline"]`,
			"h1",
			`meta[property="og:title"]`,
			"title",
		},
		AuthorSelectors: []string{
			`[itemprop="author"] [itemprop="name"]`,
			`[itemprop="author"]`,
			`meta[name="author"]`,
			".article-author",
		},
		DateSelectors: []string{
			`meta[itemprop="datePublished"]`,
			`[itemprop="datePublished"]`,
			`meta[property="article:published_time"]`,
			"time[datetime]",
			".article-date",
		},
		TopicSelectors: []string{
			`a[rel="tag"]`,
			".tags a",
			`meta[property="article:tag"]`,
		},
	}
}

// PathPrefixPredicate accepts same-host links whose path continues past
// prefix. Links carrying a fragment or query are rejected.
func PathPrefixPredicate(prefix string) LinkPredicate {
	return func(page *url.URL, href string) (*url.URL, bool) {
		href = strings.TrimSpace(href)
		if href == "" || strings.ContainsAny(href, "#?") {
			return nil, false
		}

		ref, err := url.Parse(href)
		if err != nil {
			return nil, false
		}

		abs := page.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return nil, false
		}

		if !strings.EqualFold(abs.Hostname(), page.Hostname()) {
			return nil, false
		}

		if !strings.HasPrefix(abs.Path, prefix) || len(strings.Trim(abs.Path[len(prefix):], "/")) == 0 {
			return nil, false
		}

		return abs, true
	}
}
