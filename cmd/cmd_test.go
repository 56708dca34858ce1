package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"zillow-scraper/models"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(address, price, beds string) string {
	return `<article data-test="property-card">
  <address>` + address + `</address>
  <span data-test="property-card-price">` + price + `</span>
  <ul><li>` + beds + ` bds</li><li>2 ba</li><li>1,200 sqft</li></ul>
</article>`
}

func writePage(t *testing.T, dir, name string, cards ...string) string {
	t.Helper()
	html := "<html><body>"
	for _, c := range cards {
		html += c
	}
	html += "</body></html>"
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	first := writePage(t, dir, "page1.html",
		card("1 Oak St", "$250,000", "3"),
		card("2 Oak St", "$275,000", "4"))
	second := writePage(t, dir, "page2.html",
		card("2 Oak St", "$275,000", "4"),
		card("3 Oak St", "$300,000", "2"))
	csvPath := filepath.Join(dir, "out.csv")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"parse", "--config", filepath.Join(dir, "missing.yaml"), "--log-level", "error",
		"--csv", csvPath, first, second,
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "page1.html: 2 cards, 2 new")
	assert.Contains(t, out.String(), "page2.html: 2 cards, 1 new")
	assert.Contains(t, out.String(), "3. 3 Oak St")
	assert.Contains(t, out.String(), "Listings: 3 (3 before filtering)")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t,
		"Address,Price,Beds,Baths,Area (sqft)\n"+
			"1 Oak St,250000,3,2,1200\n"+
			"2 Oak St,275000,4,2,1200\n"+
			"3 Oak St,300000,2,2,1200\n",
		string(data))
}

func TestExecute_ClosesLogFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "scraper.log")
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("log_file: "+logPath+"\n"), 0o644))
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"parse", "--config", configFile, "--log-level", "info", filepath.Join(dir, "missing.html")})
	err := execute(context.Background())
	require.Error(t, err)

	// A closed log file can no longer be written to
	_, werr := log.StandardLogger().Out.Write([]byte("after\n"))
	assert.ErrorIs(t, werr, os.ErrClosed)
	assert.FileExists(t, logPath)
}

func TestResolveSearch(t *testing.T) {
	u, display, err := resolveSearch("https://www.zillow.com/homes/x_rb/", "")
	require.NoError(t, err)
	assert.Equal(t, "https://www.zillow.com/homes/x_rb/", u)
	assert.Empty(t, display)

	u, display, err = resolveSearch("", "austin, texas")
	require.NoError(t, err)
	assert.Equal(t, "https://www.zillow.com/homes/austin-tx_rb/", u)
	assert.Equal(t, "Austin, TX", display)

	_, _, err = resolveSearch("", "")
	assert.Error(t, err)

	_, _, err = resolveSearch("https://www.zillow.com/", "Austin, TX")
	assert.Error(t, err)

	_, _, err = resolveSearch("", "Austin")
	assert.Error(t, err)
}

func TestPrintListings(t *testing.T) {
	var buf bytes.Buffer
	printListings(&buf, []models.Listing{
		models.NewListing("1 Oak St", "--", models.NotAvailable, "3", "2", "1500"),
	})
	assert.Equal(t, "\n1. 1 Oak St\n   Price: Not available\n   Beds: 3  Baths: 2  Area: 1500 sqft\n", buf.String())

	buf.Reset()
	printListings(&buf, nil)
	assert.Equal(t, "No listings match the filter criteria.\n", buf.String())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
