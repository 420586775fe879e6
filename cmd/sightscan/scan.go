package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/sightscan/internal/config"
	"github.com/nao1215/sightscan/internal/crawler"
	"github.com/nao1215/sightscan/internal/database"
	"github.com/nao1215/sightscan/internal/detect"
	"github.com/nao1215/sightscan/internal/fetch"
	"github.com/nao1215/sightscan/internal/log"
	"github.com/nao1215/sightscan/internal/pipeline"
	"github.com/nao1215/sightscan/internal/progress"
	"github.com/nao1215/sightscan/internal/report"
	"github.com/nao1215/sightscan/internal/urlnorm"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Check websites for a SightMap embed",
		Long: `Scan checks each site for an embedded SightMap frame.

For every site it loads the home page and then each top-level page on the
same host that the home page links to, in order, until a page contains a
SightMap frame. A site that fails to load is recorded with its error and
the scan moves on to the next site.

Seeds are taken from the arguments, then from --list, then from the
"seeds" key of the configuration file.

Examples:
  # Check two sites
  sightscan scan https://example.com example.org

  # Check every site in a file (one per line, # starts a comment)
  sightscan scan --list sites.txt

  # Write an Excel workbook as well as the CSV file
  sightscan scan -l sites.txt -o results.csv -o results.xlsx

  # Use plain HTTP instead of Chrome for static sites
  sightscan scan --renderer http https://example.com

  # Keep results for 'sightscan history'
  sightscan scan --history -l sites.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Seed and output flags
	cmd.Flags().StringP("list", "l", "",
		"File with one site URL per line")
	cmd.Flags().StringArrayP("output", "o", nil,
		"Result file, rewritten after every site; repeatable (default \""+config.DefaultOutput+"\")")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sightscan in current or home directory)")

	// Renderer flags
	cmd.Flags().StringP("renderer", "r", config.RendererChrome,
		"Page renderer: chrome or http")
	cmd.Flags().Bool("headful", false,
		"Show the Chrome window")
	cmd.Flags().String("chrome-path", "",
		"Chrome executable (default: search PATH)")
	cmd.Flags().String("user-agent", "",
		"User-Agent header sent with every request")

	// Timing flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageLoadTimeout,
		"Page load timeout")
	cmd.Flags().Duration("ready-timeout", config.DefaultReadyTimeout,
		"Maximum wait for the page to finish loading")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after loading for scripts to add frames")

	// Crawl scope flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxPathDepth,
		"Maximum path depth of followed links")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum pages per site (0 means no limit)")
	cmd.Flags().String("normalization", urlnorm.StrategyLiteral,
		"Duplicate URL detection: literal or host")
	cmd.Flags().StringArray("ignore", nil,
		"Glob pattern of links to skip; repeatable")

	// History and display flags
	cmd.Flags().Bool("history", false,
		"Save every result to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-progress", false,
		"Print one line per site instead of a spinner")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON lines")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping after the current page")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and flags,
// in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// Seeds: arguments, then the list file, then the config file.
	cfg.Seeds = append(cfg.Seeds, args...)

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		seeds, err := config.LoadSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(cfg.Seeds, seeds...)
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyFlags copies flags the user set onto cfg.
//
// Design decision: Only changed flags are applied. Flag defaults mirror
// config defaults for help output, but must not override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var firstErr error
	set := func(name string, apply func() error) {
		if firstErr == nil && flags.Changed(name) {
			firstErr = apply()
		}
	}

	set("output", func() (err error) {
		cfg.Outputs, err = flags.GetStringArray("output")
		return err
	})
	set("renderer", func() (err error) {
		cfg.Renderer, err = flags.GetString("renderer")
		return err
	})
	set("headful", func() error {
		headful, err := flags.GetBool("headful")
		cfg.Headless = !headful
		return err
	})
	set("chrome-path", func() (err error) {
		cfg.ChromePath, err = flags.GetString("chrome-path")
		return err
	})
	set("user-agent", func() (err error) {
		cfg.UserAgent, err = flags.GetString("user-agent")
		return err
	})
	set("timeout", func() (err error) {
		cfg.PageLoadTimeout, err = flags.GetDuration("timeout")
		return err
	})
	set("ready-timeout", func() (err error) {
		cfg.ReadyTimeout, err = flags.GetDuration("ready-timeout")
		return err
	})
	set("settle-delay", func() (err error) {
		cfg.SettleDelay, err = flags.GetDuration("settle-delay")
		return err
	})
	set("depth", func() (err error) {
		cfg.MaxPathDepth, err = flags.GetInt("depth")
		return err
	})
	set("max-pages", func() (err error) {
		cfg.MaxPages, err = flags.GetInt("max-pages")
		return err
	})
	set("normalization", func() (err error) {
		cfg.Normalization, err = flags.GetString("normalization")
		return err
	})
	set("ignore", func() error {
		patterns, err := flags.GetStringArray("ignore")
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, patterns...)
		return err
	})
	set("history", func() (err error) {
		cfg.SaveHistory, err = flags.GetBool("history")
		return err
	})
	set("db-dir", func() (err error) {
		cfg.DBDir, err = flags.GetString("db-dir")
		return err
	})
	set("no-progress", func() (err error) {
		cfg.NoProgress, err = flags.GetBool("no-progress")
		return err
	})
	set("log-json", func() (err error) {
		cfg.JSONLog, err = flags.GetBool("log-json")
		return err
	})

	return firstErr
}

// setupLogger creates a structured logger based on the configuration.
// Sensitive values such as credentials in URLs are masked.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLog {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// pageFetcher is a Fetcher that holds a resource released by Close.
type pageFetcher interface {
	fetch.Fetcher
	Close() error
}

// newFetcher creates the page renderer selected by the configuration.
func newFetcher(cfg *config.Config, logger *slog.Logger) (pageFetcher, error) {
	if cfg.Renderer == config.RendererHTTP {
		return fetch.NewHTTPFetcher(
			fetch.WithHTTPTimeout(cfg.PageLoadTimeout),
			fetch.WithHTTPUserAgent(cfg.UserAgent),
			fetch.WithMaxBodySize(cfg.MaxBodySize),
		), nil
	}

	chrome, err := fetch.NewChromeFetcher(
		fetch.WithPageLoadTimeout(cfg.PageLoadTimeout),
		fetch.WithReadyTimeout(cfg.ReadyTimeout),
		fetch.WithSettleDelay(cfg.SettleDelay),
		fetch.WithHeadless(cfg.Headless),
		fetch.WithChromeUserAgent(cfg.UserAgent),
		fetch.WithExecPath(cfg.ChromePath),
		fetch.WithChromeLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return chrome, nil
}

// newProgress creates the progress display.
func newProgress(cfg *config.Config, w io.Writer) pipeline.Progress {
	if cfg.NoProgress {
		return progress.NewPlain(w)
	}
	return progress.NewSpinner(w)
}

// buildPipeline creates the steps run after every result: one per output
// file, plus the history database when enabled. The returned close
// function releases the database.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func() error, error) {
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	closeFn := func() error { return nil }

	for _, path := range cfg.Outputs {
		step, err := pipeline.NewFileStep(path)
		if err != nil {
			return nil, closeFn, fmt.Errorf("invalid output %q: %w", path, err)
		}
		p.AddStep(step)
	}

	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Info("history database opened", "path", db.Path())
		p.AddStep(pipeline.NewHistoryStep(db))
		closeFn = db.Close
	}

	return p, closeFn, nil
}

// runScan executes the scan and prints a summary to out.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) error {
	logger.Info("starting scan",
		"sites", len(cfg.Seeds),
		"renderer", cfg.Renderer,
		"outputs", cfg.Outputs,
		"history", cfg.SaveHistory,
	)

	// Outputs are checked before the browser starts.
	p, closeDB, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	// The browser is released once, whatever happened to individual sites.
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Error("failed to close renderer", "error", err)
		}
	}()

	detector := detect.New(
		detect.WithSignature(cfg.EmbedSignature),
		detect.WithAPIMarker(cfg.APIMarker),
	)

	spider := crawler.NewSpider(fetcher,
		crawler.WithDetector(detector),
		crawler.WithNormalizer(cfg.Normalizer()),
		crawler.WithMaxPathDepth(cfg.MaxPathDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithLogger(logger),
	)

	runner := pipeline.NewRunner(spider, p,
		pipeline.WithBatchLogger(logger),
		pipeline.WithProgress(newProgress(cfg, errOut)),
	)

	records, runErr := runner.Run(ctx, cfg.Seeds)

	if _, err := report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)).Write(records); err != nil {
		return err
	}
	for _, path := range cfg.Outputs {
		fmt.Fprintf(out, "Results written to %s\n", path)
	}

	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("scan interrupted after %d sites: %w", len(records), runErr)
	}
	return runErr
}
