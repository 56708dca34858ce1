package models

// NotAvailable is stored in place of a missing or placeholder field value
const NotAvailable = "N/A"

// Fingerprint identifies a listing across scroll passes and pages.
// It is the address joined with the raw price text and is never displayed.
type Fingerprint string

// NewFingerprint builds the identity key for an address and its raw price text
func NewFingerprint(address, rawPrice string) Fingerprint {
	return Fingerprint(address + "|" + rawPrice)
}

// Listing represents a single property card from a search results page.
// All numeric-looking fields are cleaned strings so that "N/A" survives
// untouched into CSV and spreadsheet output.
type Listing struct {
	Address string
	Price   string
	Beds    string
	Baths   string
	Area    string // square feet

	fingerprint Fingerprint
}

// NewListing creates a listing; rawPrice is the price text as displayed on the
// card and only feeds the fingerprint.
func NewListing(address, rawPrice, price, beds, baths, area string) Listing {
	return Listing{
		Address:     address,
		Price:       price,
		Beds:        beds,
		Baths:       baths,
		Area:        area,
		fingerprint: NewFingerprint(address, rawPrice),
	}
}

// Fingerprint returns the identity key of the listing
func (l Listing) Fingerprint() Fingerprint {
	return l.fingerprint
}
