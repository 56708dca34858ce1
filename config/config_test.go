package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
scraper:
  page_size: 40
  scroll_settle: 150ms
  wait_timeout: 8s
browser:
  headless: false
filters:
  min_price: 100000
  min_beds: 2
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Scraper.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.Scraper.ScrollSettle)
	assert.Equal(t, 8*time.Second, cfg.Scraper.WaitTimeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 100000.0, cfg.Filters.MinPrice)
	assert.Equal(t, 2.0, cfg.Filters.MinBeds)

	// untouched keys keep their defaults
	assert.Equal(t, 900, cfg.Scraper.ScrollStep)
	assert.Equal(t, 15*time.Second, cfg.Scraper.URLChangeTimeout)
	assert.Equal(t, DefaultSelectors(), cfg.Selectors)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scraper: [1, 2"), 0644))
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/zillow")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SCRAPER_HEADLESS", "false")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS", `{"type":"service_account"}`)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost/zillow", cfg.Output.DatabaseURL)
	assert.Equal(t, "token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, `{"type":"service_account"}`, cfg.Output.SheetsCredentials)
	assert.Equal(t, 41, cfg.Scraper.PageSize)
}

func TestDefaultSelectors_NextPageOrder(t *testing.T) {
	sel := DefaultSelectors()
	require.Len(t, sel.NextPage, 3)
	assert.Equal(t, `a[rel="next"]`, sel.NextPage[0])
	assert.Equal(t, `a[title="Next page"]`, sel.NextPage[1])
	assert.Equal(t, ".search-pagination a:last-child", sel.NextPage[2])
}
