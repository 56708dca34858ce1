// Package storage writes scraped listings to local files.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"zillow-scraper/models"
)

// Header is the column order of every export
var Header = []string{"Address", "Price", "Beds", "Baths", "Area (sqft)"}

type CSVWriter struct {
	filename string
}

func NewCSVWriter(filename string) *CSVWriter {
	return &CSVWriter{filename: filename}
}

// Row returns the export columns of a listing
func Row(l models.Listing) []string {
	return []string{l.Address, l.Price, l.Beds, l.Baths, l.Area}
}

func (w *CSVWriter) WriteListings(listings []models.Listing) error {
	if dir := filepath.Dir(w.filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, listing := range listings {
		if err := writer.Write(Row(listing)); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return file.Close()
}
