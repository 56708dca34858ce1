package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection. An empty connStr is built from
// the DB_* environment variables.
func NewDB(connStr string) (*DB, error) {
	if connStr == "" {
		connStr = ConnStringFromEnv()
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// ConnStringFromEnv builds a key/value connection string from DB_HOST,
// DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE.
func ConnStringFromEnv() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "zillow_scraper")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "zillow_scraper")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scrape_runs (
			id SERIAL PRIMARY KEY,
			search_url TEXT NOT NULL,
			location VARCHAR(255),
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			reason VARCHAR(40),
			listings_count INTEGER NOT NULL DEFAULT 0,
			pages_count INTEGER NOT NULL DEFAULT 0,
			total_expected INTEGER,
			sheet_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_run_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scrape_runs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			address TEXT NOT NULL,
			price TEXT NOT NULL,
			price_value DOUBLE PRECISION,
			beds TEXT NOT NULL,
			baths TEXT NOT NULL,
			area TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_listings_run_id ON listings(run_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on listings.run_id: %v", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_listings_price_value ON listings(price_value)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on listings.price_value: %v", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_scrape_runs_status ON scrape_runs(status)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on scrape_runs.status: %v", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
