// Package main provides the pipeline command that turns a harvested corpus
// into cleaned text and CoNLL-U files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"newscorpus/internal/corpus"
	"newscorpus/internal/logger"
	"newscorpus/internal/morph"
	"newscorpus/internal/pipeline"
	"newscorpus/internal/storage"
)

const errorColumnWidth = 80

var errNoTagger = errors.New("advanced mode needs --mystem or --dict")

type options struct {
	assetsDir string
	mystem    string
	dict      string
	logLevel  string
	advanced  bool
	preview   bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "Split, clean and annotate a harvested corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.assetsDir, "assets", "tmp/articles", "directory holding the harvested corpus")
	cmd.Flags().BoolVar(&opts.advanced, "advanced", false, "annotate tokens and write morphological CoNLL-U")
	cmd.Flags().StringVar(&opts.mystem, "mystem", "mystem", "mystem binary; empty disables it")
	cmd.Flags().StringVar(&opts.dict, "dict", "", "OpenCorpora TSV dictionary used for nouns (or for all tokens without --mystem)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "print a token table for every article")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	log := logger.NewLogger(opts.logLevel).With("run_id", uuid.NewString(), "command", "pipeline")
	defer func() { _ = log.Sync() }()

	index, err := corpus.Load(opts.assetsDir)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	log.Info("corpus loaded", "dir", opts.assetsDir, "articles", index.Len())

	pipeOpts := []pipeline.Option{pipeline.WithLogger(log)}

	if opts.advanced {
		annotator, err := buildAnnotator(opts)
		if err != nil {
			return err
		}

		log.Info("morphological annotation enabled", "annotator", annotator.Name())

		pipeOpts = append(pipeOpts, pipeline.WithAnnotator(annotator))
	}

	if opts.preview {
		pipeOpts = append(pipeOpts, pipeline.WithPreview(out))
	}

	report, err := pipeline.New(index, storage.NewWriter(opts.assetsDir), pipeOpts...).Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	printReport(out, report)

	return nil
}

func buildAnnotator(opts *options) (pipeline.Annotator, error) {
	var dict pipeline.Annotator

	if opts.dict != "" {
		tagger, err := morph.LoadDictTagger(opts.dict)
		if err != nil {
			return nil, err
		}

		converter, err := morph.NewOpenCorporaConverter()
		if err != nil {
			return nil, err
		}

		dict = pipeline.NewMorphAnnotator[morph.OpenCorporaTag](tagger, converter)
	}

	if opts.mystem == "" {
		if dict == nil {
			return nil, errNoTagger
		}

		return dict, nil
	}

	converter, err := morph.NewMystemConverter()
	if err != nil {
		return nil, err
	}

	primary := pipeline.NewMorphAnnotator[string](morph.NewMystemTagger(opts.mystem), converter)
	if dict == nil {
		return primary, nil
	}

	return pipeline.WithBackup(primary, dict, pipeline.IsNoun), nil
}

func printReport(out io.Writer, report *pipeline.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Pipeline Summary")
	t.AppendRows([]table.Row{
		{"Processed", report.Processed},
		{"Sentences", report.Sentences},
		{"Tokens", report.Tokens},
		{"Untagged tokens", len(report.TokenFailures)},
		{"Duration", report.Duration.Round(time.Millisecond)},
	})
	t.Render()

	if len(report.Failed) == 0 {
		return
	}

	failures := table.NewWriter()
	failures.SetOutputMirror(out)
	failures.SetStyle(table.StyleRounded)
	failures.AppendHeader(table.Row{"Article", "Error"})
	failures.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: errorColumnWidth}})

	for _, f := range report.Failed {
		failures.AppendRow(table.Row{f.ID, f.Err})
	}

	failures.Render()
}
