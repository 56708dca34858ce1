package cmd

import (
	"fmt"
	"os"

	"zillow-scraper/dedup"
	"zillow-scraper/filter"
	"zillow-scraper/models"
	"zillow-scraper/parser"
	"zillow-scraper/storage"

	"github.com/spf13/cobra"
)

var parseCSV string

var parseCmd = &cobra.Command{
	Use:   "parse <file.html>...",
	Short: "Extracts listings from saved search result pages.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		index := dedup.New()
		var all []models.Listing

		for _, path := range args {
			listings, err := parseFile(path)
			if err != nil {
				return err
			}
			unique := index.Unique(listings)
			fmt.Fprintf(w, "%s: %d cards, %d new\n", path, len(listings), len(unique))
			all = append(all, unique...)
		}

		listings := filter.NewFilter(&cfg.Filters).ApplyFilters(all)
		if path := firstNonEmpty(parseCSV, cfg.Output.CSV); path != "" {
			if err := storage.NewCSVWriter(path).WriteListings(listings); err != nil {
				return err
			}
		}

		printListings(w, listings)
		fmt.Fprintln(w, "---")
		fmt.Fprintf(w, "Listings: %d (%d before filtering)\n", len(listings), len(all))
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseCSV, "csv", "", "Write listings to this CSV file (default from config)")
	rootCmd.AddCommand(parseCmd)
}

func parseFile(path string) ([]models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	listings, err := parser.ParseReader(f, cfg.Selectors)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return listings, nil
}
