package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/piebru/llmstxt-crawler/internal/api"
	"github.com/piebru/llmstxt-crawler/internal/config"
	"github.com/piebru/llmstxt-crawler/internal/crawler"
	"github.com/piebru/llmstxt-crawler/internal/logging"
	"github.com/piebru/llmstxt-crawler/internal/output"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Starts the documentation crawl",
		Long: `Crawls the configured site breadth-first from the base URL, restricted
to the inclusion pattern, and writes the llms.txt index and llms-full.txt
content files. The crawl log doubles as resume state for --restart.`,
		RunE: runCrawlCommand,
	}

	flags := cmd.Flags()
	flags.String("base-url", "", "root URL of the documentation to crawl")
	flags.String("url-pattern", "", "regex a URL must match to be crawled")
	flags.String("output-dir", "", "directory for artifacts (default output/<host>)")
	flags.String("output-file", config.DefaultIndexFile, "name of the index file")
	flags.String("output-file-full", config.DefaultFullFile, "name of the full-content file")
	flags.String("output-type", "txt", "output type: txt, md, json, xml")
	flags.String("log-file", config.DefaultLogFile, "name of the crawl log file")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent header for all requests")
	flags.Int("request-delay", 1, "seconds between requests")
	flags.Int("max-pages", 1000, "maximum number of pages to crawl")
	flags.Int("retries", 3, "fetch retries after the first attempt")
	flags.StringArray("excluded-url", nil, "glob pattern to exclude (repeatable)")
	flags.String("site-title", "", "H1 title for the generated files")
	flags.String("site-summary", "", "blockquote summary for the generated files")
	flags.String("site-details", "", "optional details paragraph")
	flags.Bool("restart", false, "resume, skipping URLs already logged as successful")
	flags.Bool("skip-repetitive-paths", false, "drop URLs with >2 identical adjacent path segments")
	flags.String("metrics-addr", "", "serve /status and /metrics on this address (e.g. :9090)")
	flags.Bool("dev-log", false, "human-readable development logging")

	v := viper.GetViper()
	bind := map[string]string{
		"base_url":              "base-url",
		"url_pattern":           "url-pattern",
		"output.dir":            "output-dir",
		"output.file":           "output-file",
		"output.file_full":      "output-file-full",
		"output.type":           "output-type",
		"output.log_file":       "log-file",
		"user_agent":            "user-agent",
		"request_delay_seconds": "request-delay",
		"max_pages":             "max-pages",
		"retries":               "retries",
		"excluded_urls":         "excluded-url",
		"site.title":            "site-title",
		"site.summary":          "site-summary",
		"site.details":          "site-details",
		"restart":               "restart",
		"skip_repetitive_paths": "skip-repetitive-paths",
		"metrics_addr":          "metrics-addr",
		"logging.development":   "dev-log",
	}
	for key, flag := range bind {
		cobra.CheckErr(v.BindPFlag(key, flags.Lookup(flag)))
	}

	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := buildEngine(cfg, logger)

	if cfg.MetricsAddr != "" {
		srv := api.New(cfg.MetricsAddr, engine, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("status server shutdown", zap.Error(err))
			}
		}()
	}

	logger.Info("starting crawl",
		zap.String("base_url", cfg.BaseURL),
		zap.String("pattern", cfg.URLPattern),
		zap.Int("max_pages", cfg.MaxPages),
		zap.Bool("restart", cfg.Restart),
	)

	records, runErr := engine.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawl: %w", runErr)
	}

	// Partial results are still rendered after an interruption; the crawl
	// log already holds everything needed for --restart.
	opts := output.Options{
		SiteTitle:   cfg.Site.Title,
		SiteSummary: cfg.Site.Summary,
		Details:     cfg.Site.Details,
	}
	if err := output.WriteFile(cfg.IndexPath(), output.RenderIndex(opts, records)); err != nil {
		return err
	}
	if err := output.WriteFile(cfg.FullPath(), output.RenderFull(opts, records)); err != nil {
		return err
	}

	logger.Info("artifacts written",
		zap.String("index", cfg.IndexPath()),
		zap.String("full", cfg.FullPath()),
		zap.Int("pages", len(records)),
		zap.Bool("interrupted", runErr != nil),
	)
	return nil
}

func buildEngine(cfg config.Config, logger *zap.Logger) *crawler.Engine {
	norm := crawler.NewNormalizer(cfg.IncludePattern(), cfg.Exclusions(), cfg.SkipRepetitivePaths)
	fetcher := crawler.NewCollyFetcher(crawler.FetchConfig{
		UserAgent: cfg.UserAgent,
		Delay:     cfg.RequestDelay(),
		Retries:   cfg.Retries,
	}, logger)
	extractor := crawler.NewPageExtractor(crawler.NewTextDensityStrategy(), logger)
	discoverer := crawler.NewGoqueryDiscoverer(logger)

	return crawler.NewEngine(crawler.EngineConfig{
		BaseURL:  cfg.BaseURL,
		MaxPages: cfg.MaxPages,
		Restart:  cfg.Restart,
		LogPath:  cfg.LogPath(),
	}, norm, fetcher, extractor, discoverer, logger)
}
