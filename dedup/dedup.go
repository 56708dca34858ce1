// Package dedup tracks which listing fingerprints have already been emitted
// during a scrape session.
package dedup

import "zillow-scraper/models"

// Index is a grow-only set of fingerprints. It is not safe for concurrent use;
// a session owns exactly one index.
type Index struct {
	seen map[models.Fingerprint]struct{}
}

// New creates an empty index
func New() *Index {
	return &Index{seen: make(map[models.Fingerprint]struct{})}
}

// Seen reports whether fp has been recorded
func (idx *Index) Seen(fp models.Fingerprint) bool {
	_, ok := idx.seen[fp]
	return ok
}

// Record adds fp to the index. Recording the same fingerprint twice is a no-op.
func (idx *Index) Record(fp models.Fingerprint) {
	idx.seen[fp] = struct{}{}
}

// Add records fp and reports whether it was new
func (idx *Index) Add(fp models.Fingerprint) bool {
	if idx.Seen(fp) {
		return false
	}
	idx.Record(fp)
	return true
}

// Len returns the number of distinct fingerprints recorded
func (idx *Index) Len() int {
	return len(idx.seen)
}

// Unique filters listings down to those whose fingerprint idx has not seen,
// recording each one it keeps. Order is preserved.
func (idx *Index) Unique(listings []models.Listing) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if idx.Add(l.Fingerprint()) {
			out = append(out, l)
		}
	}
	return out
}
