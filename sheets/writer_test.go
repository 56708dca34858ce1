package sheets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zillow-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Austin, TX 2026/10/16", "Austin, TX 2026_10_16"},
		{"[draft]*?", "_draft___"},
		{`a\b`, "a_b"},
		{"   ", "Sheet1"},
		{strings.Repeat("x", 120), strings.Repeat("x", 100)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeSheetName(tt.in))
	}
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url, want string
	}{
		{"https://docs.google.com/spreadsheets/d/abc123/edit", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123?gid=0", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123#gid=0", "abc123"},
		{" abc123 ", "abc123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSpreadsheetID(tt.url), tt.url)
	}
}

func TestSheetValues(t *testing.T) {
	listings := []models.Listing{
		models.NewListing("1 Oak St", "$100,000", "100000", "3", "2", "1500"),
	}

	values := sheetValues(listings, "https://www.zillow.com/homes/austin-tx_rb/", "1 listings from 1 pages")
	require.Len(t, values, 3)
	assert.Equal(t, []interface{}{"URL", "https://www.zillow.com/homes/austin-tx_rb/", "Summary", "1 listings from 1 pages"}, values[0])
	assert.Equal(t, []interface{}{"Address", "Price", "Beds", "Baths", "Area (sqft)"}, values[1])
	assert.Equal(t, []interface{}{"1 Oak St", "100000", "3", "2", "1500"}, values[2])

	assert.Len(t, sheetValues(listings, "", ""), 2)
}

func TestReadCredentials(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))

		data, err := readCredentials(path, `{"type":"ignored"}`)
		require.NoError(t, err)
		assert.NoError(t, validateCredentials(data))
	})

	t.Run("inline", func(t *testing.T) {
		data, err := readCredentials("", " {\"type\":\"service_account\"}\n")
		require.NoError(t, err)
		assert.Equal(t, `{"type":"service_account"}`, string(data))
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CREDENTIALS", `{"type":"service_account"}`)

		_, err := readCredentials("", "")
		assert.ErrorContains(t, err, "credentials not found")
	})
}

func TestValidateCredentials(t *testing.T) {
	assert.ErrorContains(t, validateCredentials([]byte("{")), "invalid credentials JSON")
	assert.ErrorContains(t, validateCredentials([]byte(`{"type":"authorized_user"}`)), "service account")
}
