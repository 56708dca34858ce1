package scraper

import (
	"zillow-scraper/dedup"
	"zillow-scraper/models"
)

// session is the mutable state of one Run. Only the driver touches it, and
// only between page iterations.
type session struct {
	index         *dedup.Index
	records       []models.Listing
	page          int
	pagesScraped  int
	trailing      *models.Fingerprint
	totalExpected *int
	pageSize      int
}

func newSession(pageSize int) *session {
	return &session{
		index:    dedup.New(),
		page:     1,
		pageSize: pageSize,
	}
}

func (s *session) add(l models.Listing) {
	s.records = append(s.records, l)
}

func (s *session) setTotalExpected(total int) {
	s.totalExpected = &total
}

// expectedFor returns how many listings page should hold. Without a known
// total every page is assumed full.
func (s *session) expectedFor(page int) int {
	if s.totalExpected == nil {
		return s.pageSize
	}
	remaining := *s.totalExpected - (page-1)*s.pageSize
	return max(0, min(s.pageSize, remaining))
}

func (s *session) rememberTrailing(fp *models.Fingerprint) {
	s.trailing = fp
}

func (s *session) advance() {
	s.page++
}
