package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete simulator configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	SaveDir string        `json:"save_dir,omitempty" yaml:"save_dir,omitempty"`
}

// AccountConfig holds account initialization parameters.
type AccountConfig struct {
	Cash       float64 `json:"cash" yaml:"cash"`
	Commission float64 `json:"commission,omitempty" yaml:"commission,omitempty"`
}

// MarketConfig seeds the instrument set. A zero Seed means "seed from the
// clock"; tests and replays set it explicitly for reproducible paths.
type MarketConfig struct {
	Seed        int64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	Instruments []InstrumentConfig `json:"instruments" yaml:"instruments"`
}

type InstrumentConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Name   string  `json:"name" yaml:"name"`
	Price  float64 `json:"price" yaml:"price"`
	Vol    float64 `json:"vol" yaml:"vol"`
}

// JournalConfig selects the audit journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML when the path ends in
// .yaml/.yml, JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	if c.Account.Commission < 0 {
		return fmt.Errorf("account.commission must not be negative")
	}
	if len(c.Market.Instruments) == 0 {
		return fmt.Errorf("market.instruments must not be empty")
	}
	seen := map[string]bool{}
	for _, inst := range c.Market.Instruments {
		sym := strings.ToUpper(inst.Symbol)
		if sym == "" {
			return fmt.Errorf("instrument symbol is required")
		}
		if seen[sym] {
			return fmt.Errorf("duplicate instrument symbol: %s", sym)
		}
		seen[sym] = true
		if inst.Price <= 0 {
			return fmt.Errorf("instrument %s: price must be positive", sym)
		}
		if inst.Vol < 0 {
			return fmt.Errorf("instrument %s: vol must not be negative", sym)
		}
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns the stock simulator's out-of-the-box setup: the familiar
// seven tickers and the standard starting endowment.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Cash: 100_000.00,
		},
		Market: MarketConfig{
			Instruments: []InstrumentConfig{
				{Symbol: "AAPL", Name: "Apple Inc.", Price: 190.00, Vol: 0.015},
				{Symbol: "GOOG", Name: "Alphabet Inc.", Price: 135.00, Vol: 0.018},
				{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 340.00, Vol: 0.012},
				{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 140.00, Vol: 0.02},
				{Symbol: "TSLA", Name: "Tesla Inc.", Price: 250.00, Vol: 0.035},
				{Symbol: "NFLX", Name: "Netflix Inc.", Price: 450.00, Vol: 0.03},
				{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 900.00, Vol: 0.04},
			},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		SaveDir: "data",
	}
}
