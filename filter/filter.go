package filter

import (
	"zillow-scraper/config"
	"zillow-scraper/models"
	"zillow-scraper/parser"
)

// Filter applies filter criteria to listings
type Filter struct {
	cfg *config.FilterConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.FilterConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// ApplyFilters filters listings based on the configuration
func (f *Filter) ApplyFilters(listings []models.Listing) []models.Listing {
	var filtered []models.Listing

	for _, listing := range listings {
		if f.matchesFilters(listing) {
			filtered = append(filtered, listing)
		}
	}

	return filtered
}

// matchesFilters checks if a listing matches all filter criteria.
// Values that could not be read ("N/A") never exclude a listing.
func (f *Filter) matchesFilters(listing models.Listing) bool {
	if price, err := parser.ParseNumber(listing.Price); err == nil {
		if price < f.cfg.MinPrice {
			return false
		}
		if f.cfg.MaxPrice > 0 && price > f.cfg.MaxPrice {
			return false
		}
	}

	if f.cfg.MinBeds > 0 {
		if beds, err := parser.ParseNumber(listing.Beds); err == nil && beds < f.cfg.MinBeds {
			return false
		}
	}

	return true
}
