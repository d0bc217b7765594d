package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/fetch"
	"sitecrawl/lib/restyutil"
	"sitecrawl/lib/runlog"
	"sitecrawl/lib/serviceutil"
	"sitecrawl/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	configPath string
	ledgerDsn  string
	verbose    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&outDir, "out", ".", "The directory every output file is written under.")
	flags.StringVar(&configPath, "config", "config.json5", "The config file, a config.local.json5 next to it overrides it.")
	flags.StringVar(&ledgerDsn, "ledger", "runs.db", "The run ledger, a sqlite file or a libsql:// url. Empty disables it.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs and dump http messages to .dev/resty.")
}

var rootCmd = &cobra.Command{
	Use:   "sitecrawl-cli",
	Short: "sitecrawl-cli crawls product listings and serialized fiction into local files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// restyOutput returns where http messages of site are dumped, or nil when
// not verbose.
func restyOutput(site string) restyutil.InstrumentOutput {
	if !verbose {
		return nil
	}
	output, err := restyutil.NewFilesystemOutput(filepath.Join(".dev", "resty", site))
	if err != nil {
		slog.Warn("failed to create http dump directory", "err", err)
		return nil
	}
	return output
}

func httpFetcher(cfg Config, site, userAgent string) fetch.HttpFetcher {
	if cfg.UserAgent != "" {
		userAgent = cfg.UserAgent
	}
	fetcher, err := fetch.NewHttpFetcher(fetch.HttpOptions{
		UserAgent:        userAgent,
		Timeout:          cfg.requestTimeout(),
		CloudflareBypass: cfg.CloudflareBypass,
		Output:           restyOutput(site),
	})
	if err != nil {
		serviceutil.Fatal("failed to create http fetcher", err)
	}
	return fetcher
}

func browserFetcher(ctx context.Context, cfg Config) *fetch.BrowserFetcher {
	fetcher, err := fetch.NewBrowserFetcher(ctx, fetch.BrowserOptions{
		Headless:  !cfg.Browser.ShowWindow,
		ExecPath:  cfg.Browser.ExecPath,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		serviceutil.Fatal("failed to start browser", err)
	}
	return fetcher
}

// track runs run, records it in the ledger and exits the process if it
// fails.
func track(ctx context.Context, cfg Config, site, target string, run func(ctx context.Context) (crawl.Stats, error)) crawl.Stats {
	var ledger *runlog.Ledger
	var runId string
	if ledgerDsn != "" {
		opened, err := runlog.Open(ctx, ledgerDsn, cfg.LedgerAuthToken)
		if err != nil {
			serviceutil.Fatal("failed to open run ledger", err)
		}
		defer opened.Close()
		ledger = &opened

		runId, err = ledger.Start(ctx, site, target)
		if err != nil {
			serviceutil.Fatal("failed to record run", err)
		}
	}

	start := time.Now()
	stats, err := run(ctx)
	elapsed := time.Since(start)

	if ledger != nil {
		// the run context may already be cancelled
		finishErr := ledger.Finish(context.WithoutCancel(ctx), runId, stats, err)
		if finishErr != nil {
			slog.WarnContext(ctx, "failed to record run result", "run", runId, "err", finishErr)
		}
	}
	if err != nil {
		serviceutil.Fatal(fmt.Sprintf("%s crawl failed", site), err)
	}

	slog.InfoContext(
		ctx, "crawl finished",
		"site", site,
		"target", target,
		"seconds", elapsed.Seconds(),
		"pages", stats.Pages,
		"records", stats.Records,
	)
	return stats
}
