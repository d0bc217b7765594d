package commands

import (
	"errors"

	"sitecrawl/lib/runlog"
	"sitecrawl/lib/serviceutil"
	"sitecrawl/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "The amount of runs to list.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--limit n]",
	Short: "Lists the most recent crawl runs.",
	Run: func(cmd *cobra.Command, args []string) {
		if ledgerDsn == "" {
			serviceutil.Fatal("no ledger to list", errors.New("--ledger is empty"))
		}
		cfg := loadConfig()
		loc, err := timezone.Load(cfg.Timezone)
		if err != nil {
			serviceutil.Fatal("failed to load timezone", err)
		}
		ledger, err := runlog.Open(cmd.Context(), ledgerDsn, cfg.LedgerAuthToken)
		if err != nil {
			serviceutil.Fatal("failed to open run ledger", err)
		}
		defer ledger.Close()

		runs, err := ledger.List(cmd.Context(), runsLimit)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Site", "Target", "Started", "Took", "Pages", "Records", "Duplicates", "Skipped", "Error"})
		for _, run := range runs {
			took := "running"
			if run.Done() {
				took = run.Finished.Sub(run.Started).String()
			}
			t.AppendRow(table.Row{
				run.Id,
				run.Site,
				run.Target,
				timezone.Format(run.Started, loc),
				took,
				run.Stats.Pages,
				run.Stats.Records,
				run.Stats.Duplicates,
				run.Stats.Skipped,
				run.Error,
			})
		}
		t.Render()
	},
}
