package scraper

import (
	"testing"

	"zillow-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(address, price string) models.Listing {
	return models.NewListing(address, price, price, models.NotAvailable, models.NotAvailable, models.NotAvailable)
}

func TestDecide(t *testing.T) {
	a := listing("1 Main St", "$1")
	b := listing("2 Main St", "$2")
	fpA := a.Fingerprint()
	fpB := b.Fingerprint()

	tests := []struct {
		name     string
		observed []models.Listing
		previous *models.Fingerprint
		action   Action
		trailing *models.Fingerprint
	}{
		{"first page", []models.Listing{a, b}, nil, Continue, &fpB},
		{"new trailing listing", []models.Listing{b, a}, &fpB, Continue, &fpA},
		{"same trailing listing", []models.Listing{a, b}, &fpB, Stop, &fpB},
		{"empty page", nil, &fpB, Continue, nil},
		{"empty first page", nil, nil, Continue, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.observed, tt.previous)
			assert.Equal(t, tt.action, got.Action)
			if tt.trailing == nil {
				assert.Nil(t, got.Trailing)
				return
			}
			require.NotNil(t, got.Trailing)
			assert.Equal(t, *tt.trailing, *got.Trailing)
		})
	}
}

func TestSession_ExpectedFor(t *testing.T) {
	s := newSession(41)
	assert.Equal(t, 41, s.expectedFor(1))
	assert.Equal(t, 41, s.expectedFor(7))

	s.setTotalExpected(100)
	assert.Equal(t, 41, s.expectedFor(1))
	assert.Equal(t, 41, s.expectedFor(2))
	assert.Equal(t, 18, s.expectedFor(3))
	assert.Equal(t, 0, s.expectedFor(4))
	assert.Equal(t, 0, s.expectedFor(9))
}
