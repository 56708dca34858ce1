// Package fetcher reads search results pages over plain HTTP, for pages the
// site renders on the server. It never scrolls or runs scripts.
package fetcher

import (
	"context"

	"zillow-scraper/models"
)

// Fetcher defines the contract for fetching implementations
type Fetcher interface {
	// Fetch retrieves the listings at url, following next-page links.
	// maxPages limits the number of pages; zero or less follows every link.
	Fetch(ctx context.Context, url string, maxPages int) ([]models.Listing, error)
}
