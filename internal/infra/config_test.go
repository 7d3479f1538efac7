package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const validYAML = `
app:
  name: stock_go
  version: 1.0.0
data:
  provider_url: "https://example.com/history?s=%s"
  symbols: [AAPL, MSFT]
  reference: MSFT
simulation:
  cash: 10000
  commission: 9.99
  start_date: "2012-01-03"
  adjusted: true
chart:
  output_dir: out
logging:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Data.Reference != "MSFT" {
		t.Errorf("reference = %s, want MSFT", cfg.Data.Reference)
	}
	if !cfg.Simulation.Cash.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("cash = %s, want 10000", cfg.Simulation.Cash)
	}
	if !cfg.Simulation.Commission.Equal(decimal.NewFromFloat(9.99)) {
		t.Errorf("commission = %s, want 9.99", cfg.Simulation.Commission)
	}
	if !cfg.Simulation.Adjusted {
		t.Error("adjusted should be true")
	}

	want := time.Date(2012, time.January, 3, 0, 0, 0, 0, time.UTC)
	if !cfg.StartDay().Equal(want) {
		t.Errorf("StartDay = %v, want %v", cfg.StartDay(), want)
	}

	// Unset chart dimensions fall back to defaults.
	if cfg.Chart.Width != 1280 || cfg.Chart.Height != 720 {
		t.Errorf("chart size = %dx%d, want 1280x720", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Chart.OutputDir != "out" {
		t.Errorf("output dir = %s, want out", cfg.Chart.OutputDir)
	}
}

func TestLoadConfig_ReferenceDefaultsToFirstSymbol(t *testing.T) {
	yaml := `
data:
  provider_url: "https://example.com/history?s=%s"
  symbols: [AAPL, MSFT]
simulation:
  start_date: "2012-01-03"
`
	cfg, err := LoadConfig(writeConfig(t, yaml))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Data.Reference != "AAPL" {
		t.Errorf("reference = %s, want AAPL", cfg.Data.Reference)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STOCK_PROVIDER_URL", "https://other.example.com/?t=%s")
	t.Setenv("STOCK_SYMBOLS", "IBM,ORCL")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Data.ProviderURL != "https://other.example.com/?t=%s" {
		t.Errorf("provider URL = %s, want env override", cfg.Data.ProviderURL)
	}
	if len(cfg.Data.Symbols) != 2 || cfg.Data.Symbols[0] != "IBM" {
		t.Errorf("symbols = %v, want [IBM ORCL]", cfg.Data.Symbols)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"bad scheme", func(c *Config) { c.Data.ProviderURL = "ftp://example.com/%s" }},
		{"missing placeholder", func(c *Config) { c.Data.ProviderURL = "https://example.com/" }},
		{"no symbols", func(c *Config) { c.Data.Symbols = nil }},
		{"negative cash", func(c *Config) { c.Simulation.Cash = decimal.NewFromInt(-1) }},
		{"negative commission", func(c *Config) { c.Simulation.Commission = decimal.NewFromInt(-1) }},
		{"bad start date", func(c *Config) { c.Simulation.StartDate = "03/01/2012" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, validYAML))
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
