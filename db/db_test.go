package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnStringFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_SSLMODE", "require")

	assert.Equal(t,
		"host=db.internal port=5432 user=zillow_scraper password=secret dbname=zillow_scraper sslmode=require",
		ConnStringFromEnv())
}

func TestPriceValue(t *testing.T) {
	assert.Equal(t, sql.NullFloat64{Float64: 450000, Valid: true}, priceValue("450000"))
	assert.Equal(t, sql.NullFloat64{Float64: 1200, Valid: true}, priceValue("1200/mo"))
	assert.Equal(t, sql.NullFloat64{}, priceValue("N/A"))
}
