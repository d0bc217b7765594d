package commands

import (
	"context"
	"strings"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/csvsink"
	"sitecrawl/lib/sites/neptun"
	"sitecrawl/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var neptunOnly []string

func init() {
	neptunCmd.Flags().StringSliceVar(&neptunOnly, "only", nil, "Only walk the categories loosely matching these names.")
	rootCmd.AddCommand(neptunCmd)
}

var neptunCmd = &cobra.Command{
	Use:   "neptun [--only <name>]...",
	Short: "Walks the neptun.al catalog into one csv file per subcategory.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		browser := browserFetcher(cmd.Context(), cfg)
		defer browser.Close()

		walker := neptun.NewWalker(browser, csvsink.New(outDir), cfg.Neptun.timeouts(), cfg.MaxPages)
		target := "all"
		if len(neptunOnly) > 0 {
			target = strings.Join(neptunOnly, ",")
			walker.Filter = func(category string) bool {
				return textutil.MatchName(category, neptunOnly)
			}
		}

		stats := track(cmd.Context(), cfg, "neptun", target, func(ctx context.Context) (crawl.Stats, error) {
			return walker.Walk(ctx)
		})

		t := newTable()
		t.AppendHeader(table.Row{"Pages", "Records", "Duplicates", "Skipped"})
		t.AppendRow(table.Row{stats.Pages, stats.Records, stats.Duplicates, stats.Skipped})
		t.Render()
	},
}
