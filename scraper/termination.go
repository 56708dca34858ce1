package scraper

import "zillow-scraper/models"

// Action is the outcome of a page termination check
type Action int

const (
	// Continue means the page showed new content and pagination may advance
	Continue Action = iota
	// Stop means the page repeated the previous page's trailing listing
	Stop
)

func (a Action) String() string {
	if a == Stop {
		return "stop"
	}
	return "continue"
}

// Decision is returned by Decide. Trailing is the fingerprint to remember
// for the next page and is only meaningful for Continue.
type Decision struct {
	Action   Action
	Trailing *models.Fingerprint
}

// Decide compares the last listing observed on a page with the one remembered
// from the previous page. A page that ends on the same listing as its
// predecessor means the site served the same content again.
func Decide(observed []models.Listing, previous *models.Fingerprint) Decision {
	var trailing *models.Fingerprint
	if len(observed) > 0 {
		fp := observed[len(observed)-1].Fingerprint()
		trailing = &fp
	}

	if trailing != nil && previous != nil && *trailing == *previous {
		return Decision{Action: Stop, Trailing: trailing}
	}
	return Decision{Action: Continue, Trailing: trailing}
}
