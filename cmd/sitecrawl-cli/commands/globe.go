package commands

import (
	"context"
	"fmt"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/csvsink"
	"sitecrawl/lib/serviceutil"
	"sitecrawl/lib/sites/globe"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var globeCategories []string

func init() {
	globeCmd.Flags().StringSliceVar(&globeCategories, "category", nil, "Only crawl the categories with these slugs.")
	rootCmd.AddCommand(globeCmd)
}

// selectCategories keeps the categories whose slug is in slugs, all of
// them if slugs is empty.
func selectCategories(categories []globe.Category, slugs []string) ([]globe.Category, error) {
	if len(slugs) == 0 {
		return categories, nil
	}
	var selected []globe.Category
	for _, slug := range slugs {
		found := false
		for _, c := range categories {
			if c.Slug == slug {
				selected = append(selected, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown globe category %q", slug)
		}
	}
	return selected, nil
}

var globeCmd = &cobra.Command{
	Use:   "globe [--category <slug>]...",
	Short: "Crawls the product listings of globe.al categories into csv files.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		categories, err := selectCategories(cfg.Globe.Categories, globeCategories)
		if err != nil {
			serviceutil.Fatal("failed to select categories", err)
		}

		fetcher := httpFetcher(cfg, "globe", "")
		sink := csvsink.New(outDir)

		t := newTable()
		t.AppendHeader(table.Row{"Category", "Pages", "Records", "Duplicates"})
		for _, category := range categories {
			driver := globe.NewDriver(fetcher, sink, category, cfg.MaxPages)
			stats := track(cmd.Context(), cfg, "globe", category.Slug, func(ctx context.Context) (crawl.Stats, error) {
				return driver.Run(ctx, category.Address())
			})
			t.AppendRow(table.Row{category.Slug, stats.Pages, stats.Records, stats.Duplicates})
		}
		t.Render()
	},
}
