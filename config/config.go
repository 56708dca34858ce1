package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration
type Config struct {
	Scraper   ScraperConfig  `yaml:"scraper"`
	Browser   BrowserConfig  `yaml:"browser"`
	Selectors Selectors      `yaml:"selectors"`
	Filters   FilterConfig   `yaml:"filters"`
	Output    OutputConfig   `yaml:"output"`
	Telegram  TelegramConfig `yaml:"telegram"`
	LogLevel  string         `yaml:"log_level"`
	LogFile   string         `yaml:"log_file"`
}

// ScraperConfig holds the pagination and scrolling parameters
type ScraperConfig struct {
	// PageSize is the site's maximum number of cards per results page
	PageSize         int           `yaml:"page_size"`
	ScrollStep       int           `yaml:"scroll_step"`
	ScrollSettle     time.Duration `yaml:"scroll_settle"`
	RescanSettle     time.Duration `yaml:"rescan_settle"`
	WaitTimeout      time.Duration `yaml:"wait_timeout"`
	ReloadSettle     time.Duration `yaml:"reload_settle"`
	URLChangeTimeout time.Duration `yaml:"url_change_timeout"`
	AdvanceSettle    time.Duration `yaml:"advance_settle"`
	ScreenshotDir    string        `yaml:"screenshot_dir"`
	// FetchDelay spaces requests made by the static fetcher
	FetchDelay time.Duration `yaml:"fetch_delay"`
}

// BrowserConfig controls how the headless browser is launched
type BrowserConfig struct {
	Headless     bool   `yaml:"headless"`
	UserAgent    string `yaml:"user_agent"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	Bin          string `yaml:"bin"`
	UserDataDir  string `yaml:"user_data_dir"`
	Stealth      bool   `yaml:"stealth"`
}

// Selectors are the CSS selectors for the search results page
type Selectors struct {
	Card         string   `yaml:"card"`
	Address      string   `yaml:"address"`
	Price        string   `yaml:"price"`
	Details      string   `yaml:"details"`
	ResultsCount string   `yaml:"results_count"`
	NextPage     []string `yaml:"next_page"`
	// DisabledAttribute marks the next-page control as inactive when "true"
	DisabledAttribute string `yaml:"disabled_attribute"`
}

// FilterConfig represents the filter criteria applied after scraping
type FilterConfig struct {
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`
	MinBeds  float64 `yaml:"min_beds"`
}

// OutputConfig lists the optional sinks for scraped listings
type OutputConfig struct {
	CSV               string `yaml:"csv"`
	DatabaseURL       string `yaml:"database_url"`
	SpreadsheetURL    string `yaml:"spreadsheet_url"`
	CredentialsPath   string `yaml:"credentials_path"`
	SheetsCredentials string `yaml:"-"`
}

// TelegramConfig enables relaying progress events to a chat
type TelegramConfig struct {
	Token  string `yaml:"-"`
	ChatID int64  `yaml:"chat_id"`
}

// env holds the overrides read from the environment
type env struct {
	DatabaseURL       string `envconfig:"DATABASE_URL"`
	SheetsCredentials string `envconfig:"GOOGLE_SHEETS_CREDENTIALS"`
	TelegramToken     string `envconfig:"TELEGRAM_TOKEN"`
	TelegramChatID    int64  `envconfig:"TELEGRAM_CHAT_ID"`
	Headless          *bool  `envconfig:"SCRAPER_HEADLESS"`
	ChromeBin         string `envconfig:"CHROME_BIN"`
	DataDir           string `envconfig:"BOT_DATA_DIR"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load returns the configuration at path (or the defaults when the file does
// not exist) with environment overrides applied.
func Load(path string) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("Config file %s not found. Using default configuration.", path)
		cfg = GetDefaultConfig()
	}

	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if e.DatabaseURL != "" {
		cfg.Output.DatabaseURL = e.DatabaseURL
	}
	if e.SheetsCredentials != "" {
		cfg.Output.SheetsCredentials = e.SheetsCredentials
	}
	if e.TelegramToken != "" {
		cfg.Telegram.Token = e.TelegramToken
	}
	if e.TelegramChatID != 0 {
		cfg.Telegram.ChatID = e.TelegramChatID
	}
	if e.Headless != nil {
		cfg.Browser.Headless = *e.Headless
	}
	if e.ChromeBin != "" {
		cfg.Browser.Bin = e.ChromeBin
	}
	if e.DataDir != "" {
		cfg.Browser.UserDataDir = e.DataDir
	}
	return nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			PageSize:         41,
			ScrollStep:       900,
			ScrollSettle:     300 * time.Millisecond,
			RescanSettle:     500 * time.Millisecond,
			WaitTimeout:      5 * time.Second,
			ReloadSettle:     time.Second,
			URLChangeTimeout: 15 * time.Second,
			AdvanceSettle:    500 * time.Millisecond,
			FetchDelay:       4 * time.Second,
		},
		Browser: BrowserConfig{
			Headless: true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:  960,
			WindowHeight: 720,
			Stealth:      true,
		},
		Selectors: DefaultSelectors(),
		Filters: FilterConfig{
			MaxPrice: 1000000000,
		},
		LogLevel: "info",
	}
}

// DefaultSelectors returns the selectors for the Zillow search results page
func DefaultSelectors() Selectors {
	return Selectors{
		Card:         `[data-test="property-card"]`,
		Address:      "address",
		Price:        `[data-test="property-card-price"]`,
		Details:      "ul li",
		ResultsCount: ".result-count",
		NextPage: []string{
			`a[rel="next"]`,
			`a[title="Next page"]`,
			".search-pagination a:last-child",
		},
		DisabledAttribute: "aria-disabled",
	}
}
