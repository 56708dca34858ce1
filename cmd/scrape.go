package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zillow-scraper/browser"
	"zillow-scraper/db"
	"zillow-scraper/filter"
	"zillow-scraper/notify"
	"zillow-scraper/scheduler"
	"zillow-scraper/scraper"
	"zillow-scraper/sheets"
	"zillow-scraper/storage"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	url            string
	location       string
	pages          int
	csv            string
	spreadsheetURL string
	credentials    string
	sheetMode      string
	saveDB         bool
	priceMin       int
	priceMax       int
	priceStep      int
	watch          time.Duration
}

var scrapeOpts scrapeOptions

var scrapeCmd = &cobra.Command{
	Use:   "scrape (--url <search url> | --location \"City, State\")",
	Short: "Scrapes search results with a headless browser.",
	Long: "Scrapes every results page of a search with a headless browser, scrolling each\n" +
		"page until all cards are loaded. Ctrl+C stops after the current step and keeps\n" +
		"what was collected.",
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeOpts.url, "url", "", "Zillow search URL")
	f.StringVar(&scrapeOpts.location, "location", "", `Search location, e.g. "Austin, TX"`)
	f.IntVar(&scrapeOpts.pages, "pages", 5, "Maximum number of pages to scrape per price band (0 for no limit)")
	f.StringVar(&scrapeOpts.csv, "csv", "", "Write listings to this CSV file (default from config)")
	f.StringVar(&scrapeOpts.spreadsheetURL, "spreadsheet", "", "Google Sheets URL to add a results tab to (default from config)")
	f.StringVar(&scrapeOpts.credentials, "credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	f.StringVar(&scrapeOpts.sheetMode, "sheet-mode", scheduler.SheetModeNew, "How to write the spreadsheet: new (tab per run), replace or append (first tab)")
	f.BoolVar(&scrapeOpts.saveDB, "db", false, "Save the run to Postgres (DATABASE_URL or DB_* variables)")
	f.IntVar(&scrapeOpts.priceMin, "price-min", 0, "Lowest price of the first price band")
	f.IntVar(&scrapeOpts.priceMax, "price-max", 0, "Split the search into price bands up to this price (0 disables splitting)")
	f.IntVar(&scrapeOpts.priceStep, "price-step", 0, "Width of each price band (default 100000)")
	f.DurationVar(&scrapeOpts.watch, "watch", 0, "Repeat the scrape at this interval until interrupted")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := scrapeOpts

	if !scheduler.ValidSheetMode(opts.sheetMode) {
		return fmt.Errorf("invalid --sheet-mode %q: want new, replace or append", opts.sheetMode)
	}
	searchURL, display, err := resolveSearch(opts.url, opts.location)
	if err != nil {
		return err
	}
	job := scheduler.Job{
		SearchURL: searchURL,
		Location:  display,
		MaxPages:  opts.pages,
		PriceMin:  opts.priceMin,
		PriceMax:  opts.priceMax,
		PriceStep: opts.priceStep,
	}

	sinks, cleanup, err := openSinks(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	reporters := []scraper.Reporter{scraper.LogReporter{}}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Warning: Telegram notifications disabled: %v", err)
		} else {
			defer tg.Close()
			reporters = append(reporters, tg)
			sinks.Notifier = tg
		}
	}

	driver := scraper.NewDriver(cfg, browser.NewRodLauncher(cfg.Browser), scraper.MultiReporter(reporters...))
	sched := scheduler.NewScheduler(driver, filter.NewFilter(&cfg.Filters), sinks)

	if opts.watch > 0 {
		err := sched.Watch(ctx, job, opts.watch)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	out, err := sched.Process(ctx, job)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printListings(w, out.Listings)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Pages scraped: %d\n", out.Pages)
	fmt.Fprintf(w, "Listings: %d (%d before filtering)\n", len(out.Listings), out.Scraped)
	if out.TotalExpected != nil {
		fmt.Fprintf(w, "Results reported by site: %d\n", *out.TotalExpected)
	}
	for _, b := range out.Bands {
		if b.Err != nil {
			fmt.Fprintf(w, "Band %s: failed: %v\n", b.Label, b.Err)
			continue
		}
		fmt.Fprintf(w, "Band %s: %d pages, stopped: %s\n", b.Label, b.Pages, b.Reason)
	}
	if out.SheetURL != "" {
		fmt.Fprintf(w, "View spreadsheet: %s\n", out.SheetURL)
	}
	return nil
}

// openSinks opens the outputs selected by flags and config
func openSinks(ctx context.Context, opts scrapeOptions) (scheduler.Sinks, func(), error) {
	var sinks scheduler.Sinks
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if path := firstNonEmpty(opts.csv, cfg.Output.CSV); path != "" {
		sinks.CSV = storage.NewCSVWriter(path)
	}

	if opts.saveDB || cfg.Output.DatabaseURL != "" {
		database, err := db.NewDB(cfg.Output.DatabaseURL)
		if err != nil {
			return sinks, cleanup, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() {
			if err := database.Close(); err != nil {
				log.Printf("Warning: Failed to close database: %v", err)
			}
		})
		sinks.DB = database
	}

	if spreadsheetURL := firstNonEmpty(opts.spreadsheetURL, cfg.Output.SpreadsheetURL); spreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
		writer, err := sheets.NewWriter(ctx, spreadsheetID,
			firstNonEmpty(opts.credentials, cfg.Output.CredentialsPath), cfg.Output.SheetsCredentials)
		if err != nil {
			cleanup()
			return sinks, func() {}, fmt.Errorf("failed to initialize Google Sheets writer: %w", err)
		}
		sinks.Sheets = writer
		sinks.SpreadsheetURL = spreadsheetURL
		sinks.SheetMode = opts.sheetMode
	}

	return sinks, cleanup, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
