// Package location turns a "City, State" query into a Zillow search URL.
package location

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrEmptyQuery   = errors.New("search query cannot be empty")
	ErrMissingState = errors.New("please enter both city and state (e.g., 'Los Angeles, California')")
	ErrInvalidState = errors.New("invalid state: enter a full US state name or two-letter code")
)

var (
	spaces    = regexp.MustCompile(`\s+`)
	nonSlug   = regexp.MustCompile(`[^\w\s-]`)
	stateCode = map[string]string{
		"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA",
		"COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA",
		"HAWAII": "HI", "IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
		"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME", "MARYLAND": "MD",
		"MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN", "MISSISSIPPI": "MS", "MISSOURI": "MO",
		"MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV", "NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ",
		"NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH",
		"OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC",
		"SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT",
		"VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
	}
	validCodes = func() map[string]bool {
		codes := make(map[string]bool, len(stateCode))
		for _, code := range stateCode {
			codes[code] = true
		}
		return codes
	}()
)

// Validate normalizes a "City, State" query. It returns the display form
// ("Los Angeles, CA") and the search URL for it.
func Validate(query string) (formatted, searchURL string, err error) {
	cleaned := strings.TrimSpace(spaces.ReplaceAllString(query, " "))
	if cleaned == "" {
		return "", "", ErrEmptyQuery
	}

	parts := strings.Split(cleaned, ",")
	if len(parts) != 2 {
		return "", "", ErrMissingState
	}

	city := titleCase(strings.TrimSpace(parts[0]))
	if city == "" {
		return "", "", ErrMissingState
	}

	state := strings.ToUpper(strings.TrimSpace(parts[1]))
	switch {
	case len(state) > 2:
		code, ok := stateCode[state]
		if !ok {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidState, parts[1])
		}
		state = code
	case !validCodes[state]:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidState, parts[1])
	}

	formatted = city + ", " + state
	return formatted, FormatURL(formatted), nil
}

// FormatURL builds the search URL for a location such as "Austin, TX"
func FormatURL(location string) string {
	slug := strings.ToLower(strings.TrimSpace(location))
	slug = spaces.ReplaceAllString(slug, "-")
	slug = nonSlug.ReplaceAllString(slug, "")
	return fmt.Sprintf("https://www.zillow.com/homes/%s_rb/", slug)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
