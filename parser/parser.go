// Package parser turns Zillow property cards into listings, either from live
// browser element handles or from saved HTML.
package parser

import (
	"errors"
	"io"

	"zillow-scraper/config"
	"zillow-scraper/htmldom"
	"zillow-scraper/models"

	log "github.com/sirupsen/logrus"
)

// ParseHTML extracts every listing card from htmlContent in document order.
// Cards missing a required field are skipped.
func ParseHTML(htmlContent string, sel config.Selectors) ([]models.Listing, error) {
	doc, err := htmldom.Parse(htmlContent)
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, sel), nil
}

// ParseReader is ParseHTML over a reader
func ParseReader(r io.Reader, sel config.Selectors) ([]models.Listing, error) {
	doc, err := htmldom.ParseReader(r)
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, sel), nil
}

// ParseDocument extracts the listing cards of an already parsed document
func ParseDocument(doc *htmldom.Document, sel config.Selectors) []models.Listing {
	var listings []models.Listing
	for i, card := range doc.FindAll(sel.Card) {
		listing, err := ExtractCard(card, sel)
		if err != nil {
			var extractErr *ExtractError
			if errors.As(err, &extractErr) {
				log.Debugf("Skipping card %d: %v", i, err)
				continue
			}
			log.Printf("Warning: Failed to read card %d: %v", i, err)
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}
