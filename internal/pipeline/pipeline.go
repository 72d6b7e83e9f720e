// Package pipeline turns a loaded corpus into cleaned text and CoNLL-U files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"newscorpus/internal/corpus"
	"newscorpus/internal/formatter"
	"newscorpus/internal/logger"
	"newscorpus/internal/models"
	"newscorpus/internal/normalizer"
	"newscorpus/internal/storage"
	"newscorpus/internal/validator"
)

// ErrInvalidOutput wraps a CoNLL-U rendering that failed validation.
var ErrInvalidOutput = errors.New("produced CoNLL-U is invalid")

// ArticleFailure records an article that was not written.
type ArticleFailure struct {
	Err error
	ID  int
}

// Report summarises a pipeline run.
type Report struct {
	Failed        []ArticleFailure
	TokenFailures []TokenFailure
	Duration      time.Duration
	Processed     int
	Sentences     int
	Tokens        int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAnnotator makes the pipeline tag every token and write the
// morphological CoNLL-U file.
func WithAnnotator(a Annotator) Option {
	return func(p *Pipeline) {
		p.annotator = a
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithPreview writes a token table for each processed article to w.
func WithPreview(w io.Writer) Option {
	return func(p *Pipeline) {
		p.preview = w
	}
}

// Pipeline processes every article of an index in identifier order.
type Pipeline struct {
	index     *corpus.Index
	writer    *storage.Writer
	processor *normalizer.Processor
	annotator Annotator
	logger    *logger.Logger
	preview   io.Writer
}

// New creates a basic pipeline unless WithAnnotator is given.
func New(index *corpus.Index, writer *storage.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{
		index:     index,
		writer:    writer,
		processor: normalizer.NewProcessor(),
		logger:    logger.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Advanced reports whether tokens are morphologically annotated.
func (p *Pipeline) Advanced() bool {
	return p.annotator != nil
}

// Process splits text into sentences and, in the advanced variant, annotates
// their tokens. An *AnnotationError comes back together with the sentences.
func (p *Pipeline) Process(ctx context.Context, text string) ([]*models.Sentence, error) {
	sentences, err := p.processor.Process(text)
	if err != nil {
		return nil, err
	}

	if p.annotator == nil {
		return sentences, nil
	}

	var tokens []*models.Token
	for _, s := range sentences {
		tokens = append(tokens, s.Tokens...)
	}

	if err := p.annotator.AnnotateTokens(ctx, tokens); err != nil {
		var annErr *AnnotationError
		if errors.As(err, &annErr) {
			return sentences, err
		}

		return nil, fmt.Errorf("annotation failed: %w", err)
	}

	return sentences, nil
}

// Run processes all articles. A failing article is recorded and skipped;
// only write errors and cancellation stop the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	advanced := p.Advanced()

	for _, article := range p.index.Articles() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := p.logger.With("article_id", article.ID)

		sentences, err := p.Process(ctx, article.Text)

		var annErr *AnnotationError

		switch {
		case errors.As(err, &annErr):
			log.Warn("some tokens were not annotated", "count", len(annErr.Failures), "error", err)
			report.TokenFailures = append(report.TokenFailures, annErr.Failures...)
		case err != nil:
			log.Error("failed to process article", "error", err)
			report.Failed = append(report.Failed, ArticleFailure{ID: article.ID, Err: err})

			continue
		}

		article.SetSentences(sentences)

		if err := validator.ValidateConllu(article.Conllu(advanced)).Err(); err != nil {
			log.Error("invalid CoNLL-U output", "error", err)
			report.Failed = append(report.Failed, ArticleFailure{ID: article.ID, Err: fmt.Errorf("%w: %w", ErrInvalidOutput, err)})

			continue
		}

		if err := p.writer.WriteCleaned(article); err != nil {
			return report, err
		}

		if err := p.writer.WriteConllu(article, advanced); err != nil {
			return report, err
		}

		if p.preview != nil {
			fmt.Fprintf(p.preview, "== article %d ==\n%s\n", article.ID, formatter.RenderSentences(sentences, advanced))
		}

		report.Processed++
		report.Sentences += len(sentences)

		for _, s := range sentences {
			report.Tokens += len(s.Tokens)
		}

		log.Debug("article processed", "sentences", len(sentences))
	}

	report.Duration = time.Since(start)

	return report, nil
}
