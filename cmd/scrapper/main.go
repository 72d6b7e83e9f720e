// Package main provides the scrapper command that harvests news articles into
// an assets directory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"newscorpus/internal/config"
	"newscorpus/internal/crawler"
	"newscorpus/internal/logger"
	"newscorpus/internal/storage"
)

const errorColumnWidth = 80

type options struct {
	configPath string
	assetsDir  string
	logLevel   string
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
		Use:           "scrapper",
		Short:         "Harvest news articles into raw text and metadata files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "scrapper_config.json", "path to the crawler configuration (JSON or YAML)")
	cmd.Flags().StringVar(&opts.assetsDir, "assets", "tmp/articles", "directory the corpus is written to; cleared on start")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	log := logger.NewLogger(opts.logLevel).With("run_id", uuid.NewString(), "command", "scrapper")
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Info("configuration loaded", "path", opts.configPath, "config", cfg.String())

	fetcher, err := crawler.NewFetcher(cfg, log)
	if err != nil {
		return err
	}

	site := crawler.DefaultSite()

	var crawlOpts []crawler.Option
	if cfg.RespectRobots() {
		crawlOpts = append(crawlOpts, crawler.WithRobots(crawler.NewRobotsChecker(fetcher, fetcher.UserAgent(), log)))
	}

	harvester := crawler.NewHarvester(cfg,
		crawler.NewCrawler(cfg, fetcher, site, log, crawlOpts...),
		crawler.NewArticleParser(fetcher, site, log),
		storage.NewWriter(opts.assetsDir),
		log,
	)

	report, err := harvester.Run(ctx)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	printReport(out, report, opts.assetsDir)

	return nil
}

func printReport(out io.Writer, report *crawler.Report, dir string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Harvest Summary")
	t.AppendRows([]table.Row{
		{"Assets", dir},
		{"Discovered", report.Discovered},
		{"Saved", report.Saved},
		{"Duration", report.Duration.Round(time.Millisecond)},
	})
	t.Render()

	if len(report.SeedErrors) == 0 && len(report.Failed) == 0 {
		return
	}

	failures := table.NewWriter()
	failures.SetOutputMirror(out)
	failures.SetStyle(table.StyleRounded)
	failures.AppendHeader(table.Row{"Kind", "URL", "Error"})
	failures.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: errorColumnWidth}})

	for _, s := range report.SeedErrors {
		failures.AppendRow(table.Row{"seed", s.URL, s.Err})
	}

	for _, f := range report.Failed {
		failures.AppendRow(table.Row{"article", f.URL, f.Err})
	}

	failures.Render()
}
