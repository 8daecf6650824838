package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/internal/ai"
	"github.com/specwatch/specwatch/internal/alert"
	"github.com/specwatch/specwatch/internal/impact"
	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/output"
	"github.com/specwatch/specwatch/internal/poller"
	"github.com/specwatch/specwatch/internal/scanner"
	"github.com/specwatch/specwatch/internal/storage"
)

// app bundles the wired pipeline for one command invocation.
type app struct {
	store   *storage.LocalStore
	poller  *poller.Poller
	scans   *poller.ScanService
	log     logger.Logger
	metrics *metrics.Metrics
}

// newApp wires stores and services from the loaded configuration. The
// metrics registerer is optional; one-shot commands pass nil.
func newApp(ctx context.Context, m *metrics.Metrics) (*app, error) {
	log := logger.New(cfg.Logging.Level)

	store, err := storage.NewLocalStore(storage.Config{BaseDir: cfg.Storage.BaseDir})
	if err != nil {
		return nil, err
	}

	var artifacts storage.ArtifactStore
	if cfg.Storage.Backend == "s3" {
		artifacts, err = storage.NewS3ArtifactStore(ctx, cfg.Storage.S3.Bucket, cfg.Storage.S3.Prefix, cfg.Storage.S3.Region)
	} else {
		artifacts, err = storage.NewFileArtifactStore(cfg.Storage.BaseDir)
	}
	if err != nil {
		return nil, err
	}

	var summarizer ai.Summarizer = ai.NopSummarizer{}
	if cfg.HasAIFeatures() {
		summarizer, err = ai.NewClaudeSummarizer(cfg.Claude.APIKey, cfg.Claude.Model)
		if err != nil {
			return nil, err
		}
	}

	alerts := alert.NewService(
		alert.NewWebhookDispatcher(cfg.Alerts.WebhookURL, cfg.Alerts.Timeout),
		store, m, log,
	)
	analyzer := impact.NewAnalyzer(store, store, m, log)
	fetcher := poller.NewHTTPFetcher(cfg.Polling.FetchTimeout)

	walker := scanner.NewWalker(scanner.NewRegexScanner(), cfg.Scanning.Workers, log)
	scans := poller.NewScanService(store, store, walker, nil, cfg.Scanning.IntervalHours, m, log)

	return &app{
		store:   store,
		poller:  poller.New(store, artifacts, fetcher, analyzer, alerts, summarizer, m, log),
		scans:   scans,
		log:     log,
		metrics: m,
	}, nil
}

// formatter builds the output formatter from config.
func formatter() (output.Formatter, error) {
	return output.NewFormatter(cfg.Output.Format, cfg.Output.NoColor)
}

func printBytes(cmd *cobra.Command, b []byte) {
	cmd.OutOrStdout().Write(b)
}
