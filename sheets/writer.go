package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"zillow-scraper/models"
	"zillow-scraper/storage"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer handles writing listings to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a new Google Sheets writer. Credentials are read from
// credentialsPath, or taken from credentialsJSON when the path is empty.
func NewWriter(ctx context.Context, spreadsheetID, credentialsPath, credentialsJSON string) (*Writer, error) {
	credsJSON, err := readCredentials(credentialsPath, credentialsJSON)
	if err != nil {
		return nil, err
	}
	if err := validateCredentials(credsJSON); err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewWriterWithService(service, spreadsheetID), nil
}

// NewWriterWithService wraps an already configured Sheets service
func NewWriterWithService(service *sheets.Service, spreadsheetID string) *Writer {
	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}
}

func readCredentials(credentialsPath, credentialsJSON string) ([]byte, error) {
	if credentialsPath != "" {
		credsJSON, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return credsJSON, nil
	}

	// Environment values often carry a trailing newline
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	if credentialsJSON == "" {
		return nil, fmt.Errorf("credentials not found: set a credentials file or GOOGLE_SHEETS_CREDENTIALS")
	}
	log.Debugf("Using inline Google Sheets credentials (%d bytes)", len(credentialsJSON))
	return []byte(credentialsJSON), nil
}

func validateCredentials(credsJSON []byte) error {
	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}
	return nil
}

// WriteListings writes listings with a header row to the first sheet.
// If clearFirst is true, clears existing data before writing
func (w *Writer) WriteListings(ctx context.Context, listings []models.Listing, clearFirst bool) error {
	if len(listings) == 0 {
		log.Println("No listings to write")
		return nil
	}

	range_ := "Sheet1!A1"

	if clearFirst {
		_, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, range_, &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		if err != nil {
			log.Printf("Warning: Failed to clear existing data: %v", err)
		}
	}

	values := append([][]interface{}{headerRow()}, listingRows(listings)...)
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	log.Printf("Successfully wrote %d listings to Google Sheets", len(listings))
	return nil
}

// AppendListings appends listings after the last used row of the first sheet
func (w *Writer) AppendListings(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		log.Println("No listings to append")
		return nil
	}

	resp, err := w.service.Spreadsheets.Values.Get(w.spreadsheetID, "Sheet1!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read existing data: %w", err)
	}
	nextRow := len(resp.Values) + 1

	updateRange := fmt.Sprintf("Sheet1!A%d", nextRow)
	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, updateRange, &sheets.ValueRange{Values: listingRows(listings)}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheets: %w", err)
	}

	log.Printf("Successfully appended %d listings to Google Sheets (starting at row %d)", len(listings), nextRow)
	return nil
}

// CreateSheetAndWriteListings creates a new sheet at the front of the
// spreadsheet and writes listings to it. When searchURL or summary is set, a
// metadata row precedes the header. Returns the sheet name and sheet ID (gid)
// that was created.
func (w *Writer) CreateSheetAndWriteListings(ctx context.Context, sheetName string, listings []models.Listing, searchURL string, summary string) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}
	log.Printf("Created sheet '%s' with ID %d", sheetName, sheetID)

	values := sheetValues(listings, searchURL, summary)
	range_ := fmt.Sprintf("'%s'!A1", strings.ReplaceAll(sheetName, "'", "''"))
	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	log.Printf("Successfully wrote %d listings to sheet '%s'", len(listings), sheetName)
	return sheetName, sheetID, nil
}

func sheetValues(listings []models.Listing, searchURL, summary string) [][]interface{} {
	var values [][]interface{}
	if searchURL != "" || summary != "" {
		metadataRow := []interface{}{"URL", searchURL}
		if summary != "" {
			metadataRow = append(metadataRow, "Summary", summary)
		}
		values = append(values, metadataRow)
	}
	values = append(values, headerRow())
	return append(values, listingRows(listings)...)
}

func headerRow() []interface{} {
	return toCells(storage.Header)
}

func listingRows(listings []models.Listing) [][]interface{} {
	rows := make([][]interface{}, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, toCells(storage.Row(l)))
	}
	return rows
}

func toCells(cols []string) []interface{} {
	cells := make([]interface{}, len(cols))
	for i, c := range cols {
		cells[i] = c
	}
	return cells
}

// sanitizeSheetName removes characters Google Sheets rejects in sheet names
// (/ \ ? * [ ]) and caps the length at 100.
func sanitizeSheetName(name string) string {
	result := strings.NewReplacer("/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(name)
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	if r := []rune(result); len(r) > 100 {
		result = string(r[:100])
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
// such as https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing.
// A value without "/d/" is returned as is, assuming it is already an ID.
func ExtractSpreadsheetID(url string) string {
	_, idPart, found := strings.Cut(url, "/d/")
	if !found {
		return strings.TrimSpace(url)
	}

	if idx := strings.IndexAny(idPart, "/?#"); idx != -1 {
		idPart = idPart[:idx]
	}
	return strings.TrimSpace(idPart)
}
