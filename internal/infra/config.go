package infra

import (
	"fmt"
	"os"

	"goldview/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds every application setting. Loaded from YAML, then
// overridden with environment variables where present.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			RestURL    string `yaml:"rest_url"`
			WSURL      string `yaml:"ws_url"`
			QuoteAsset string `yaml:"quote_asset"`
			BoardSize  int    `yaml:"board_size"`
			BookDepth  int    `yaml:"book_depth"`
		} `yaml:"binance"`
	} `yaml:"api"`

	View struct {
		DefaultSymbol   string `yaml:"default_symbol"`
		DefaultInterval string `yaml:"default_interval"`
		SeriesCapacity  int    `yaml:"series_capacity"`
		SMAPeriod       int    `yaml:"sma_period"`
	} `yaml:"view"`

	Chart struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`

	Poll struct {
		TickersIntervalSec int `yaml:"tickers_interval_sec"`
		BookIntervalMS     int `yaml:"book_interval_ms"`
	} `yaml:"poll"`

	Export struct {
		Dir        string `yaml:"dir"`
		Schedule   string `yaml:"schedule"`
		ThumbWidth int    `yaml:"thumb_width"`
	} `yaml:"export"`

	Account struct {
		Balance  decimal.Decimal `yaml:"balance"`
		Currency string          `yaml:"currency"`
	} `yaml:"account"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.Binance.RestURL == "" || (!hasPrefix(c.API.Binance.RestURL, "http://") && !hasPrefix(c.API.Binance.RestURL, "https://")) {
		return fmt.Errorf("invalid Binance REST URL: %s", c.API.Binance.RestURL)
	}
	if c.API.Binance.WSURL == "" || (!hasPrefix(c.API.Binance.WSURL, "ws://") && !hasPrefix(c.API.Binance.WSURL, "wss://")) {
		return fmt.Errorf("invalid Binance WS URL: %s", c.API.Binance.WSURL)
	}
	if c.API.Binance.QuoteAsset == "" {
		return fmt.Errorf("quote asset is required")
	}

	if c.View.DefaultSymbol == "" {
		return fmt.Errorf("default symbol is required")
	}
	if _, err := domain.ParseInterval(c.View.DefaultInterval); err != nil {
		return fmt.Errorf("default interval: %w", err)
	}

	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	if c.Poll.TickersIntervalSec <= 0 || c.Poll.BookIntervalMS <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv replaces values with environment variables when set.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("GOLDVIEW_REST_URL"); v != "" {
		cfg.API.Binance.RestURL = v
	}
	if v := os.Getenv("GOLDVIEW_WS_URL"); v != "" {
		cfg.API.Binance.WSURL = v
	}
	if v := os.Getenv("GOLDVIEW_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("GOLDVIEW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
