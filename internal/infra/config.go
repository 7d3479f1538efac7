package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	dateLayout = "2006-01-02"
)

// Config holds every application setting. Host-specific values can be
// overridden through environment variables after load.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Data struct {
		// ProviderURL is a template with one %s placeholder for the ticker.
		ProviderURL string   `yaml:"provider_url"`
		Symbols     []string `yaml:"symbols"`
		// Reference is the ticker whose trading calendar drives the clock.
		Reference string `yaml:"reference"`
	} `yaml:"data"`

	Simulation struct {
		Cash       decimal.Decimal `yaml:"cash"`
		Commission decimal.Decimal `yaml:"commission"`
		StartDate  string          `yaml:"start_date"` // YYYY-MM-DD, a trading day
		Adjusted   bool            `yaml:"adjusted"`
	} `yaml:"simulation"`

	Chart struct {
		OutputDir string `yaml:"output_dir"`
		Width     int    `yaml:"width"`
		Height    int    `yaml:"height"`
	} `yaml:"chart"`

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

// StartDay returns the parsed simulation start date.
func (c *Config) StartDay() time.Time {
	t, _ := time.Parse(dateLayout, c.Simulation.StartDate)
	return t
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Data.ProviderURL, "http://") && !strings.HasPrefix(c.Data.ProviderURL, "https://") {
		return fmt.Errorf("invalid provider URL: %s", c.Data.ProviderURL)
	}
	if !strings.Contains(c.Data.ProviderURL, "%s") {
		return fmt.Errorf("provider URL must contain a %%s ticker placeholder")
	}
	if len(c.Data.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if c.Data.Reference == "" {
		c.Data.Reference = c.Data.Symbols[0]
	}

	if c.Simulation.Cash.IsNegative() {
		return fmt.Errorf("starting cash must not be negative")
	}
	if c.Simulation.Commission.IsNegative() {
		return fmt.Errorf("commission must not be negative")
	}
	if _, err := time.Parse(dateLayout, c.Simulation.StartDate); err != nil {
		return fmt.Errorf("invalid start_date %q: %w", c.Simulation.StartDate, err)
	}

	if c.Chart.Width <= 0 {
		c.Chart.Width = 1280
	}
	if c.Chart.Height <= 0 {
		c.Chart.Height = 720
	}
	if c.Chart.OutputDir == "" {
		c.Chart.OutputDir = "charts"
	}

	return nil
}

// overrideWithEnv applies environment variable overrides when present.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("STOCK_PROVIDER_URL"); url != "" {
		cfg.Data.ProviderURL = url
	}
	if symbols := os.Getenv("STOCK_SYMBOLS"); symbols != "" {
		cfg.Data.Symbols = strings.Split(symbols, ",")
	}
	if level := os.Getenv("STOCK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
