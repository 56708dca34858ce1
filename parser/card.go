package parser

import (
	"errors"
	"fmt"
	"strings"

	"zillow-scraper/browser"
	"zillow-scraper/config"
	"zillow-scraper/models"
)

// ErrMissingField is wrapped by every ExtractError
var ErrMissingField = errors.New("missing required field")

// ExtractError reports a card that could not be turned into a listing
type ExtractError struct {
	Field string
	Err   error
}

func (e *ExtractError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to extract listing: %s: %v", e.Field, ErrMissingField)
	}
	return fmt.Sprintf("failed to extract listing: %s: %v: %v", e.Field, ErrMissingField, e.Err)
}

func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingField}
	}
	return []error{ErrMissingField, e.Err}
}

// ExtractCard builds a listing from a property card. Address and price are
// required; the detail fields default to "N/A".
func ExtractCard(card browser.Element, sel config.Selectors) (models.Listing, error) {
	address, err := requiredText(card, sel.Address, "address")
	if err != nil {
		return models.Listing{}, err
	}
	rawPrice, err := requiredText(card, sel.Price, "price")
	if err != nil {
		return models.Listing{}, err
	}

	beds, baths, area := models.NotAvailable, models.NotAvailable, models.NotAvailable
	if sel.Details != "" {
		items, err := card.FindAll(sel.Details)
		if err != nil {
			return models.Listing{}, &ExtractError{Field: "details", Err: err}
		}
		for _, item := range items {
			text, err := item.Text()
			if err != nil {
				return models.Listing{}, &ExtractError{Field: "details", Err: err}
			}
			text = normalizeWhitespace(text)
			if text == "" {
				continue
			}

			switch {
			case strings.Contains(text, "bd"):
				beds = detailValue(text)
			case strings.Contains(text, "ba"):
				baths = detailValue(text)
			case strings.Contains(text, "sqft"):
				area = detailValue(text)
			}
		}
	}

	return models.NewListing(address, rawPrice, NormalizePrice(rawPrice), beds, baths, area), nil
}

func requiredText(card browser.Element, selector, field string) (string, error) {
	el, err := card.Find(selector)
	if err != nil {
		return "", &ExtractError{Field: field, Err: err}
	}
	text, err := el.Text()
	if err != nil {
		return "", &ExtractError{Field: field, Err: err}
	}
	text = normalizeWhitespace(text)
	if text == "" {
		return "", &ExtractError{Field: field}
	}
	return text, nil
}

// NormalizePrice strips the currency symbol and thousands separators.
// Placeholder or empty prices become "N/A".
func NormalizePrice(raw string) string {
	price := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(raw))
	if price == "" || price == "--" {
		return models.NotAvailable
	}
	return price
}

// detailValue takes the leading token of a detail item such as "1,250 sqft"
func detailValue(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return models.NotAvailable
	}
	token := fields[0]
	if token == "--" {
		return models.NotAvailable
	}

	token = strings.ReplaceAll(token, ",", "")
	for _, unit := range []string{"sqft", "bds", "bd", "ba"} {
		token = strings.TrimSuffix(token, unit)
	}
	if token == "" {
		return models.NotAvailable
	}
	return token
}
