package commands

import (
	"context"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/sites/novelbin"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(novelbinCmd)
}

var novelbinCmd = &cobra.Command{
	Use:   "novelbin <book-slug>",
	Short: "Saves every chapter of a novelbin.com book as a text file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		slug := args[0]

		browser := browserFetcher(cmd.Context(), cfg)
		defer browser.Close()

		crawler := novelbin.NewCrawler(browser, browser, outDir, slug, cfg.MaxPages)
		track(cmd.Context(), cfg, "novelbin", slug, func(ctx context.Context) (crawl.Stats, error) {
			return crawler.Run(ctx, novelbin.BookAddress(slug))
		})
	},
}
