// Package scheduler runs a search through every price band, applies the
// filters and hands the listings to the configured outputs, once or on a
// fixed interval.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zillow-scraper/db"
	"zillow-scraper/dedup"
	"zillow-scraper/filter"
	"zillow-scraper/models"
	"zillow-scraper/pricerange"
	"zillow-scraper/scraper"
	"zillow-scraper/sheets"
	"zillow-scraper/storage"

	log "github.com/sirupsen/logrus"
)

// Notifier sends a one-off message, e.g. to a chat
type Notifier interface {
	Send(text string) error
}

// How listings are written to the spreadsheet
const (
	// SheetModeNew adds a timestamped tab per run
	SheetModeNew = "new"
	// SheetModeReplace overwrites the first tab
	SheetModeReplace = "replace"
	// SheetModeAppend adds rows below the first tab's data
	SheetModeAppend = "append"
)

// Sinks are the optional outputs of a job. Nil fields are skipped.
type Sinks struct {
	CSV            *storage.CSVWriter
	DB             *db.DB
	Sheets         *sheets.Writer
	SpreadsheetURL string
	// SheetMode is one of the SheetMode constants; empty means SheetModeNew
	SheetMode string
	Notifier  Notifier
}

// Job describes one search to scrape
type Job struct {
	SearchURL string
	// Location is the display form of the search, e.g. "Austin, TX"
	Location  string
	MaxPages  int
	PriceMin  int
	PriceMax  int
	PriceStep int
}

// BandOutcome is the result of scraping one price band
type BandOutcome struct {
	Label    string
	Pages    int
	Listings int
	Reason   scraper.Reason
	Err      error
}

// Outcome is the result of a processed job
type Outcome struct {
	RunID int
	// Scraped counts unique listings before filtering
	Scraped  int
	Listings []models.Listing
	Pages    int
	// TotalExpected sums the reported result counts; nil if any band lacked one
	TotalExpected *int
	Bands         []BandOutcome
	SheetURL      string
	// NewSinceLastRun counts listings absent from the previous run of this
	// scheduler; nil on the first run or without a database
	NewSinceLastRun *int
}

// Summary is a one-line description of the outcome
func (o *Outcome) Summary() string {
	reasons := make([]string, 0, len(o.Bands))
	for _, b := range o.Bands {
		if b.Err != nil {
			reasons = append(reasons, b.Label+": failed")
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", b.Label, b.Reason))
	}
	summary := fmt.Sprintf("%d listings (%d before filters) from %d pages [%s]",
		len(o.Listings), o.Scraped, o.Pages, strings.Join(reasons, ", "))
	if o.NewSinceLastRun != nil {
		summary += fmt.Sprintf(", %d new since last run", *o.NewSinceLastRun)
	}
	return summary
}

// Scheduler processes jobs with one scraper
type Scheduler struct {
	scraper scraper.Scraper
	filter  *filter.Filter
	sinks   Sinks
	now     func() time.Time
	// lastRunID is the database run of the previous successful Process
	lastRunID int
}

// NewScheduler creates a new scheduler
func NewScheduler(s scraper.Scraper, f *filter.Filter, sinks Sinks) *Scheduler {
	return &Scheduler{
		scraper: s,
		filter:  f,
		sinks:   sinks,
		now:     time.Now,
	}
}

// Process scrapes every price band of job, dropping listings already seen in
// an earlier band, and writes the filtered result to the sinks. It fails only
// when no band could be scraped at all.
func (s *Scheduler) Process(ctx context.Context, job Job) (*Outcome, error) {
	bands, err := pricerange.Split(job.SearchURL, job.PriceMin, job.PriceMax, job.PriceStep)
	if err != nil {
		return nil, err
	}

	out := &Outcome{}
	if s.sinks.DB != nil {
		run, err := s.sinks.DB.CreateRun(job.SearchURL, job.Location)
		if err != nil {
			log.Printf("Warning: Failed to record run: %v", err)
		} else {
			out.RunID = run.ID
		}
	}

	all, err := s.scrapeBands(ctx, job, bands, out)
	if err != nil {
		s.fail(out, err)
		return nil, err
	}
	out.Scraped = len(all)
	out.Listings = s.filter.ApplyFilters(all)

	// An interrupt stops scraping; what was collected is still written
	if err := s.write(context.WithoutCancel(ctx), job, out); err != nil {
		s.fail(out, err)
		return nil, err
	}
	if out.RunID != 0 {
		s.lastRunID = out.RunID
	}

	s.notify(fmt.Sprintf("✅ %s\n%s", job.displayName(), out.Summary()))
	return out, nil
}

func (s *Scheduler) scrapeBands(ctx context.Context, job Job, bands []pricerange.Band, out *Outcome) ([]models.Listing, error) {
	index := dedup.New()
	var all []models.Listing
	total, totalKnown := 0, true
	var errs []error

	for i, band := range bands {
		if ctx.Err() != nil {
			break
		}
		log.WithFields(log.Fields{"band": band.Label, "url": band.URL}).
			Infof("Scraping price band %d/%d", i+1, len(bands))

		res, err := s.scraper.Run(ctx, band.URL, job.MaxPages)
		if err != nil {
			log.Printf("Warning: Price band %s failed: %v", band.Label, err)
			out.Bands = append(out.Bands, BandOutcome{Label: band.Label, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", band.Label, err))
			totalKnown = false
			continue
		}

		unique := index.Unique(res.Listings)
		all = append(all, unique...)
		out.Pages += res.Pages
		if res.TotalExpected != nil {
			total += *res.TotalExpected
		} else {
			totalKnown = false
		}
		out.Bands = append(out.Bands, BandOutcome{
			Label:    band.Label,
			Pages:    res.Pages,
			Listings: len(unique),
			Reason:   res.Reason,
		})
	}

	if len(errs) > 0 && len(errs) == len(out.Bands) {
		return nil, fmt.Errorf("scraping failed: %w", errors.Join(errs...))
	}
	if totalKnown && len(out.Bands) > 0 {
		out.TotalExpected = &total
	}
	return all, nil
}

func (s *Scheduler) write(ctx context.Context, job Job, out *Outcome) error {
	if s.sinks.CSV != nil {
		if err := s.sinks.CSV.WriteListings(out.Listings); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	}

	if s.sinks.DB != nil && out.RunID != 0 {
		if s.lastRunID != 0 {
			previous, err := s.sinks.DB.GetRunListings(s.lastRunID)
			if err != nil {
				log.Printf("Warning: Failed to load previous run %d: %v", s.lastRunID, err)
			} else {
				n := len(newListings(previous, out.Listings))
				out.NewSinceLastRun = &n
			}
		}
		if err := s.sinks.DB.SaveListings(out.RunID, out.Listings); err != nil {
			log.Printf("Warning: Failed to save listings to database: %v", err)
		}
		if err := s.sinks.DB.FinishRun(out.RunID, db.RunSummary{
			Status:        db.StatusDone,
			Reason:        out.lastReason(),
			ListingsCount: len(out.Listings),
			PagesCount:    out.Pages,
			TotalExpected: out.TotalExpected,
		}); err != nil {
			log.Printf("Error updating run status to done: %v", err)
		}
	}

	if s.sinks.Sheets != nil {
		if err := s.writeSheet(ctx, job, out); err != nil {
			return fmt.Errorf("failed to write to Google Sheets: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) writeSheet(ctx context.Context, job Job, out *Outcome) error {
	switch s.sinks.SheetMode {
	case SheetModeReplace:
		if err := s.sinks.Sheets.WriteListings(ctx, out.Listings, true); err != nil {
			return err
		}
		out.SheetURL = s.sinks.SpreadsheetURL
		return nil
	case SheetModeAppend:
		if err := s.sinks.Sheets.AppendListings(ctx, out.Listings); err != nil {
			return err
		}
		out.SheetURL = s.sinks.SpreadsheetURL
		return nil
	}

	sheetName := fmt.Sprintf("%s %s", job.displayName(), s.now().Format("20060102_150405"))
	createdSheetName, sheetID, err := s.sinks.Sheets.CreateSheetAndWriteListings(ctx, sheetName, out.Listings, job.SearchURL, out.Summary())
	if err != nil {
		return err
	}
	out.SheetURL = SheetURL(s.sinks.SpreadsheetURL, sheetID)

	if s.sinks.DB != nil && out.RunID != 0 {
		if err := s.sinks.DB.UpdateRunSheetName(out.RunID, createdSheetName); err != nil {
			log.Printf("Warning: Failed to update sheet name: %v", err)
		}
	}
	return nil
}

// ValidSheetMode reports whether mode names a known way of writing sheets
func ValidSheetMode(mode string) bool {
	switch mode {
	case "", SheetModeNew, SheetModeReplace, SheetModeAppend:
		return true
	}
	return false
}

// newListings returns the listings of current whose address and price did not
// appear in previous. Stored listings only keep the cleaned price, so that is
// the key on both sides.
func newListings(previous, current []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(previous))
	for _, l := range previous {
		seen[l.Address+"|"+l.Price] = struct{}{}
	}
	var fresh []models.Listing
	for _, l := range current {
		if _, ok := seen[l.Address+"|"+l.Price]; !ok {
			fresh = append(fresh, l)
		}
	}
	return fresh
}

func (s *Scheduler) fail(out *Outcome, err error) {
	if s.sinks.DB != nil && out.RunID != 0 {
		if updateErr := s.sinks.DB.FinishRun(out.RunID, db.RunSummary{
			Status:     db.StatusFailed,
			PagesCount: out.Pages,
		}); updateErr != nil {
			log.Printf("Error updating run status to failed: %v", updateErr)
		}
	}
	s.notify(fmt.Sprintf("❌ Error processing search: %v", err))
}

func (s *Scheduler) notify(text string) {
	if s.sinks.Notifier == nil {
		return
	}
	if err := s.sinks.Notifier.Send(text); err != nil {
		log.Printf("Error sending status update: %v", err)
	}
}

// Watch processes job immediately and then every interval until ctx is
// cancelled. A failed run is logged and retried at the next tick.
func (s *Scheduler) Watch(ctx context.Context, job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Process(ctx, job); err != nil {
			log.Printf("Error processing %s: %v", job.displayName(), err)
		}

		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SheetURL creates a URL that opens a specific sheet in the spreadsheet
func SheetURL(spreadsheetURL string, sheetID int64) string {
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		return spreadsheetURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

func (j Job) displayName() string {
	if j.Location != "" {
		return j.Location
	}
	return j.SearchURL
}

func (o *Outcome) lastReason() string {
	for i := len(o.Bands) - 1; i >= 0; i-- {
		if o.Bands[i].Err == nil {
			return string(o.Bands[i].Reason)
		}
	}
	return ""
}
