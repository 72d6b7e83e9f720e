// Package models defines data structures shared by the harvester and the pipeline.
package models

import (
	"strings"
	"time"
)

// Article represents a news article harvested from the site.
type Article struct {
	Date      time.Time
	URL       string
	Title     string
	Author    string
	Text      string
	Topics    []string
	Sentences []*Sentence
	ID        int
}

// NewArticle creates an empty article for the given page.
func NewArticle(url string, id int) *Article {
	return &Article{URL: url, ID: id}
}

// SetSentences attaches the parsed sentence list.
func (a *Article) SetSentences(sentences []*Sentence) {
	a.Sentences = sentences
}

// CleanedText returns one cleaned sentence per line.
func (a *Article) CleanedText() string {
	lines := make([]string, 0, len(a.Sentences))
	for _, s := range a.Sentences {
		if cleaned := s.Cleaned(); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}

	return strings.Join(lines, "\n")
}

// Conllu serialises all sentences of the article.
func (a *Article) Conllu(includeMorph bool) string {
	var b strings.Builder
	for _, s := range a.Sentences {
		b.WriteString(s.Conllu(includeMorph))
	}

	return b.String()
}
