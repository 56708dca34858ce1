package db

import (
	"database/sql"
	"fmt"
	"time"

	"zillow-scraper/models"
	"zillow-scraper/parser"

	"github.com/lib/pq"
)

// Run statuses
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Run represents one scrape of a search URL
type Run struct {
	ID            int
	SearchURL     string
	Location      sql.NullString
	Status        string // "in_progress", "done", "failed"
	Reason        sql.NullString
	ListingsCount int
	PagesCount    int
	TotalExpected sql.NullInt64
	SheetName     sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RunSummary holds the outcome written when a run finishes
type RunSummary struct {
	Status        string
	Reason        string
	ListingsCount int
	PagesCount    int
	TotalExpected *int
}

const runColumns = `id, search_url, location, status, reason, listings_count, pages_count,
	total_expected, sheet_name, created_at, updated_at`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var run Run
	err := row.Scan(
		&run.ID, &run.SearchURL, &run.Location, &run.Status, &run.Reason,
		&run.ListingsCount, &run.PagesCount, &run.TotalExpected, &run.SheetName,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun records the start of a scrape
func (db *DB) CreateRun(searchURL, location string) (*Run, error) {
	var locationVal sql.NullString
	if location != "" {
		locationVal = sql.NullString{String: location, Valid: true}
	}

	return scanRun(db.conn.QueryRow(`
		INSERT INTO scrape_runs (search_url, location, status)
		VALUES ($1, $2, 'in_progress')
		RETURNING `+runColumns,
		searchURL, locationVal))
}

// FinishRun stores the final status and counts of a run
func (db *DB) FinishRun(runID int, summary RunSummary) error {
	var reasonVal sql.NullString
	if summary.Reason != "" {
		reasonVal = sql.NullString{String: summary.Reason, Valid: true}
	}
	var totalVal sql.NullInt64
	if summary.TotalExpected != nil {
		totalVal = sql.NullInt64{Int64: int64(*summary.TotalExpected), Valid: true}
	}

	_, err := db.conn.Exec(`
		UPDATE scrape_runs
		SET status = $1, reason = $2, listings_count = $3, pages_count = $4,
			total_expected = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
	`, summary.Status, reasonVal, summary.ListingsCount, summary.PagesCount, totalVal, runID)
	return err
}

// UpdateRunSheetName updates the sheet name for a run
func (db *DB) UpdateRunSheetName(runID int, sheetName string) error {
	_, err := db.conn.Exec(`
		UPDATE scrape_runs
		SET sheet_name = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, sheetName, runID)
	return err
}

// SaveListings bulk-loads the listings of a run in one transaction using
// COPY, keeping their scrape order in the position column.
func (db *DB) SaveListings(runID int, listings []models.Listing) (err error) {
	if len(listings) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(pq.CopyIn("listings",
		"run_id", "position", "address", "price", "price_value", "beds", "baths", "area"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}

	for i, l := range listings {
		if _, err = stmt.Exec(runID, i+1, l.Address, l.Price, priceValue(l.Price), l.Beds, l.Baths, l.Area); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy listing %d: %w", i+1, err)
		}
	}
	if _, err = stmt.Exec(); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listings: %w", err)
	}
	return nil
}

// GetRunListings returns the stored listings of a run in scrape order
func (db *DB) GetRunListings(runID int) ([]models.Listing, error) {
	rows, err := db.conn.Query(`
		SELECT address, price, beds, baths, area
		FROM listings
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var address, price, beds, baths, area string
		if err := rows.Scan(&address, &price, &beds, &baths, &area); err != nil {
			return nil, err
		}
		// The raw price text is not stored, so identity falls back to the cleaned price
		listings = append(listings, models.NewListing(address, price, price, beds, baths, area))
	}
	return listings, rows.Err()
}

func priceValue(price string) sql.NullFloat64 {
	v, err := parser.ParseNumber(price)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
