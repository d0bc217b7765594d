package commands

import (
	"context"
	"strings"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/sites/lightnovel"
	"sitecrawl/lib/textutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(novelCmd)
}

var novelCmd = &cobra.Command{
	Use:   "novel <name...>",
	Short: "Saves every chapter of a lightnovelworld.com novel as a text file.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		slug := textutil.Slug(strings.Join(args, " "))

		fetcher := httpFetcher(cfg, "lightnovel", lightnovel.UserAgent)
		crawler := lightnovel.NewCrawler(fetcher, outDir, slug, cfg.MaxPages)
		track(cmd.Context(), cfg, "lightnovel", slug, func(ctx context.Context) (crawl.Stats, error) {
			return crawler.Run(ctx, lightnovel.ChaptersAddress(lightnovel.BaseUrl, slug))
		})
	},
}
