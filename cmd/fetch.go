package cmd

import (
	"fmt"

	"zillow-scraper/fetcher"
	"zillow-scraper/filter"
	"zillow-scraper/storage"

	"github.com/spf13/cobra"
)

var fetchOpts struct {
	url      string
	location string
	pages    int
	csv      string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch (--url <search url> | --location \"City, State\")",
	Short: "Fetches server-rendered search pages without a browser.",
	Long: "Fetches search results over plain HTTP and follows next-page links. Only the\n" +
		"cards present in the initial HTML are seen, so lazily loaded cards are missed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		searchURL, _, err := resolveSearch(fetchOpts.url, fetchOpts.location)
		if err != nil {
			return err
		}

		var f fetcher.Fetcher = fetcher.NewCollyFetcher(cfg)
		all, err := f.Fetch(cmd.Context(), searchURL, fetchOpts.pages)
		if err != nil {
			return err
		}
		listings := filter.NewFilter(&cfg.Filters).ApplyFilters(all)

		if path := firstNonEmpty(fetchOpts.csv, cfg.Output.CSV); path != "" {
			if err := storage.NewCSVWriter(path).WriteListings(listings); err != nil {
				return err
			}
		}

		w := cmd.OutOrStdout()
		printListings(w, listings)
		fmt.Fprintln(w, "---")
		fmt.Fprintf(w, "Listings: %d (%d before filtering)\n", len(listings), len(all))
		return nil
	},
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchOpts.url, "url", "", "Zillow search URL")
	f.StringVar(&fetchOpts.location, "location", "", `Search location, e.g. "Austin, TX"`)
	f.IntVar(&fetchOpts.pages, "pages", 5, "Maximum number of pages to fetch (0 for no limit)")
	f.StringVar(&fetchOpts.csv, "csv", "", "Write listings to this CSV file (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
