// Package pricerange splits one search into price bands so each band stays
// under the number of results the site is willing to paginate through.
package pricerange

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultStep is the default price band width in dollars
const DefaultStep = 100000

var priceSegment = regexp.MustCompile(`/(\d+)-(\d+)_price/?$`)

// Band is a search URL restricted to a price band
type Band struct {
	URL   string
	Label string // e.g., "$0-$100000"
	Min   int
	Max   int
}

// Split takes a search URL and generates one URL per $step band between
// priceMin and priceMax. A zero priceMax returns the search URL unchanged.
func Split(searchURL string, priceMin, priceMax, step int) ([]Band, error) {
	if step <= 0 {
		step = DefaultStep
	}

	parsedURL, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid search URL: %s", searchURL)
	}

	if priceMax == 0 {
		return []Band{{URL: searchURL, Label: ExtractLabel(searchURL)}}, nil
	}
	if priceMin < 0 {
		priceMin = 0
	}
	if priceMax <= priceMin {
		return nil, fmt.Errorf("invalid price range: max %d must exceed min %d", priceMax, priceMin)
	}

	base := strings.TrimSuffix(priceSegment.ReplaceAllString(parsedURL.Path, "/"), "/")

	bands := make([]Band, 0, CountBands(priceMin, priceMax, step))
	for bandMin := priceMin; bandMin < priceMax; bandMin += step {
		bandMax := min(bandMin+step, priceMax)

		u := *parsedURL
		u.Path = fmt.Sprintf("%s/%d-%d_price/", base, bandMin, bandMax)
		bands = append(bands, Band{
			URL:   u.String(),
			Label: label(bandMin, bandMax),
			Min:   bandMin,
			Max:   bandMax,
		})
	}
	return bands, nil
}

// ExtractLabel returns the price band label of a search URL, or "all prices"
// when the URL has no band.
func ExtractLabel(searchURL string) string {
	parsedURL, err := url.Parse(searchURL)
	if err != nil {
		return ""
	}

	m := priceSegment.FindStringSubmatch(parsedURL.Path)
	if m == nil {
		return "all prices"
	}
	priceMin, _ := strconv.Atoi(m[1])
	priceMax, _ := strconv.Atoi(m[2])
	return label(priceMin, priceMax)
}

// CountBands returns how many $step bands fit between priceMin and priceMax
func CountBands(priceMin, priceMax, step int) int {
	if step <= 0 || priceMax <= priceMin {
		return 1
	}
	count := (priceMax - priceMin) / step
	if (priceMax-priceMin)%step != 0 {
		count++
	}
	return count
}

func label(priceMin, priceMax int) string {
	return fmt.Sprintf("$%d-$%d", priceMin, priceMax)
}
