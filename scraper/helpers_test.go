package scraper

import (
	"zillow-scraper/config"
	"zillow-scraper/models"
)

// testConfig returns defaults with every settle delay removed and a small
// page size so scripted pages stay short.
func testConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Scraper.PageSize = 5
	cfg.Scraper.ScrollSettle = 0
	cfg.Scraper.RescanSettle = 0
	cfg.Scraper.ReloadSettle = 0
	cfg.Scraper.AdvanceSettle = 0
	return cfg
}

type recorder struct {
	events []Event
}

func (r *recorder) Report(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) ofKind(kind Kind) []Event {
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func addresses(listings []models.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Address
	}
	return out
}
