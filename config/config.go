package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tailrisk/backtest"
	"github.com/rustyeddy/tailrisk/credit"
	"github.com/rustyeddy/tailrisk/dataset"
	"github.com/rustyeddy/tailrisk/risk"
)

// Config represents the complete run configuration
type Config struct {
	Run      RunConfig      `json:"run" yaml:"run"`
	Market   MarketConfig   `json:"market" yaml:"market"`
	Credit   CreditConfig   `json:"credit" yaml:"credit"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// RunConfig contains settings shared by every command
type RunConfig struct {
	Seed     uint64 `json:"seed" yaml:"seed"`
	Workers  int    `json:"workers" yaml:"workers"`
	LogLevel string `json:"log_level" yaml:"log_level"`
	Dev      bool   `json:"dev,omitempty" yaml:"dev,omitempty"`
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"` // e.g. "30s", "5m"
}

// ParseTimeout converts the timeout string to time.Duration. Empty means no limit.
func (rc RunConfig) ParseTimeout() (time.Duration, error) {
	if rc.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(rc.Timeout)
}

// MarketConfig contains market VaR parameters
type MarketConfig struct {
	ReturnsFile    string  `json:"returns_file,omitempty" yaml:"returns_file,omitempty"`
	ReturnKind     string  `json:"return_kind,omitempty" yaml:"return_kind,omitempty"` // "simple" or "log"
	Method         string  `json:"method" yaml:"method"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
	HoldingPeriod  int     `json:"holding_period" yaml:"holding_period"`
	NSims          int     `json:"n_sims" yaml:"n_sims"`
	PortfolioValue float64 `json:"portfolio_value" yaml:"portfolio_value"`
}

// CreditConfig contains credit portfolio simulation parameters
type CreditConfig struct {
	ExposuresFile string  `json:"exposures_file,omitempty" yaml:"exposures_file,omitempty"`
	Correlation   float64 `json:"asset_correlation" yaml:"asset_correlation"`
	NSims         int     `json:"n_sims" yaml:"n_sims"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
}

// BacktestConfig contains rolling backtest parameters
type BacktestConfig struct {
	Method     string  `json:"method" yaml:"method"`
	Window     int     `json:"window" yaml:"window"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	OrgDir     string  `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	BacktestsFile string `json:"backtests_file,omitempty" yaml:"backtests_file,omitempty"`
	CreditFile    string `json:"credit_file,omitempty" yaml:"credit_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, or JSON as a fallback).
// Fields missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func inUnit(x float64) bool { return x > 0 && x < 1 }

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Run.Workers < 0 {
		return fmt.Errorf("run.workers must not be negative")
	}
	if _, err := c.Run.ParseTimeout(); err != nil {
		return fmt.Errorf("run.timeout: %w", err)
	}

	if _, err := risk.ParseMethod(c.Market.Method); err != nil {
		return fmt.Errorf("market.method: %w", err)
	}
	if _, err := dataset.ParseReturnKind(c.Market.ReturnKind); err != nil {
		return fmt.Errorf("market.return_kind: %w", err)
	}
	if !inUnit(c.Market.Confidence) {
		return fmt.Errorf("market.confidence must be between 0 and 1")
	}
	if c.Market.HoldingPeriod < 1 {
		return fmt.Errorf("market.holding_period must be at least 1")
	}
	if c.Market.NSims <= 0 {
		return fmt.Errorf("market.n_sims must be positive")
	}
	if c.Market.PortfolioValue <= 0 {
		return fmt.Errorf("market.portfolio_value must be positive")
	}

	if c.Credit.Correlation < 0 || c.Credit.Correlation >= 1 {
		return fmt.Errorf("credit.asset_correlation must be in [0, 1)")
	}
	if c.Credit.NSims <= 0 {
		return fmt.Errorf("credit.n_sims must be positive")
	}
	if !inUnit(c.Credit.Confidence) {
		return fmt.Errorf("credit.confidence must be between 0 and 1")
	}

	if _, err := risk.ParseMethod(c.Backtest.Method); err != nil {
		return fmt.Errorf("backtest.method: %w", err)
	}
	if c.Backtest.Window <= 0 {
		return fmt.Errorf("backtest.window must be positive")
	}
	if !inUnit(c.Backtest.Confidence) {
		return fmt.Errorf("backtest.confidence must be between 0 and 1")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.BacktestsFile == "" || c.Journal.CreditFile == "" {
			return fmt.Errorf("journal backtests_file and credit_file required for CSV type")
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

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Seed:     42,
			LogLevel: "info",
		},
		Market: MarketConfig{
			ReturnKind:     dataset.Simple.String(),
			Method:         risk.MethodHistorical.String(),
			Confidence:     0.99,
			HoldingPeriod:  1,
			NSims:          10000,
			PortfolioValue: 1_000_000,
		},
		Credit: CreditConfig{
			Correlation: credit.DefaultCorrelation,
			NSims:       credit.DefaultNSims,
			Confidence:  credit.DefaultConfidence,
		},
		Backtest: BacktestConfig{
			Method:     risk.MethodHistorical.String(),
			Window:     backtest.DefaultWindow,
			Confidence: backtest.DefaultConfidence,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
