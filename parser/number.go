package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"zillow-scraper/models"
)

var unicodeFractionMap = map[rune]float64{
	'¼': 0.25,
	'½': 0.5,
	'¾': 0.75,
	'⅓': 1.0 / 3.0,
	'⅔': 2.0 / 3.0,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

var (
	numericTokenPattern = regexp.MustCompile(`\d+(?:\.\d+)?[¼½¾⅓⅔⅛⅜⅝⅞]?|[¼½¾⅓⅔⅛⅜⅝⅞]`)
	suffixPattern       = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KkMm])$`)
)

func normalizeWhitespace(text string) string {
	// Replace non-breaking spaces and other unicode whitespace with regular spaces
	normalized := strings.Builder{}
	for _, r := range text {
		if unicode.IsSpace(r) {
			normalized.WriteRune(' ')
		} else {
			normalized.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(normalized.String()), " ")
}

// ParseNumber converts a cleaned listing value ("450000", "2.5", "2½", "1.2M")
// into a float. "N/A" and empty values are errors.
func ParseNumber(value string) (float64, error) {
	value = strings.ReplaceAll(normalizeWhitespace(value), ",", "")
	value = strings.TrimPrefix(value, "$")
	if value == "" || value == models.NotAvailable {
		return 0, fmt.Errorf("no numeric value in %q", value)
	}

	if m := suffixPattern.FindStringSubmatch(value); m != nil {
		base, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("unable to parse value: %s", value)
		}
		switch m[2] {
		case "K", "k":
			return base * 1e3, nil
		default:
			return base * 1e6, nil
		}
	}

	token := numericTokenPattern.FindString(value)
	if token == "" {
		return 0, fmt.Errorf("unable to parse value: %s", value)
	}

	last, size := lastRune(token)
	if fraction, ok := unicodeFractionMap[last]; ok {
		whole := 0.0
		if rest := token[:len(token)-size]; rest != "" {
			var err error
			whole, err = strconv.ParseFloat(rest, 64)
			if err != nil {
				return 0, fmt.Errorf("unable to parse value: %s", value)
			}
		}
		return whole + fraction, nil
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse value: %s", value)
	}
	return v, nil
}

func lastRune(s string) (rune, int) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, 0
	}
	last := r[len(r)-1]
	return last, len(string(last))
}
