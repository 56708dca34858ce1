package cmd

import (
	"errors"
	"fmt"
	"io"

	"zillow-scraper/location"
	"zillow-scraper/models"

	log "github.com/sirupsen/logrus"
)

// resolveSearch returns the search URL and its display name from either an
// explicit URL or a "City, State" location.
func resolveSearch(searchURL, loc string) (string, string, error) {
	switch {
	case searchURL != "" && loc != "":
		return "", "", errors.New("use either --url or --location, not both")
	case searchURL != "":
		return searchURL, "", nil
	case loc != "":
		formatted, u, err := location.Validate(loc)
		if err != nil {
			return "", "", err
		}
		log.Printf("Searching %s", formatted)
		return u, formatted, nil
	}
	return "", "", errors.New("a search is required: pass --url or --location")
}

// printListings writes a numbered, human readable list of listings
func printListings(w io.Writer, listings []models.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings match the filter criteria.")
		return
	}
	for i, l := range listings {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, l.Address)
		fmt.Fprintf(w, "   Price: %s\n", displayPrice(l.Price))
		fmt.Fprintf(w, "   Beds: %s  Baths: %s  Area: %s sqft\n", l.Beds, l.Baths, l.Area)
	}
}

func displayPrice(price string) string {
	if price == models.NotAvailable {
		return "Not available"
	}
	return "$" + price
}
