// Package config loads and validates run configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/risk"
	"github.com/rustyeddy/backtester/sim"
)

// dateLayout is the calendar-day format used in config files.
const dateLayout = "2006-01-02"

// Config represents a complete backtest run configuration.
type Config struct {
	Account   AccountConfig  `json:"account" yaml:"account"`
	Backtest  BacktestConfig `json:"backtest" yaml:"backtest"`
	Execution sim.ExecConfig `json:"execution" yaml:"execution"`
	Risk      risk.Config    `json:"risk" yaml:"risk"`
	Strategy  StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal   JournalConfig  `json:"journal" yaml:"journal"`

	// Allocations, when present, replaces the single Strategy section with
	// a capital split across several strategies.
	Allocations []AllocationConfig `json:"allocations,omitempty" yaml:"allocations,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	InitialCash float64 `json:"initial-cash" yaml:"initial-cash"`
}

// BacktestConfig names the symbols, date range and data source for the run.
type BacktestConfig struct {
	Symbols []string `json:"symbols" yaml:"symbols"`
	Start   string   `json:"start" yaml:"start"` // YYYY-MM-DD
	End     string   `json:"end" yaml:"end"`     // YYYY-MM-DD
	Data    string   `json:"data" yaml:"data"`   // path to a bar CSV (.csv, .csv.xz or .zip)
}

// StrategyConfig selects a strategy and its parameter overrides.
type StrategyConfig struct {
	Name   string             `json:"name" yaml:"name"`
	Params map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// AllocationConfig assigns a percentage of the capital to one strategy.
type AllocationConfig struct {
	Strategy string             `json:"strategy" yaml:"strategy"`
	Percent  float64            `json:"percent" yaml:"percent"`
	Params   map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Dates parses the run's start and end dates.
func (b BacktestConfig) Dates() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, b.Start)
	if err != nil {
		return start, end, fmt.Errorf("backtest.start: %w", err)
	}
	end, err = time.Parse(dateLayout, b.End)
	if err != nil {
		return start, end, fmt.Errorf("backtest.end: %w", err)
	}
	return start, end, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content), applies defaults for omitted sections and validates it.
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

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
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

// ApplyDefaults fills omitted sections with the standard values.
func (c *Config) ApplyDefaults() {
	if c.Account.InitialCash == 0 {
		c.Account.InitialCash = 100_000
	}
	if c.Execution == (sim.ExecConfig{}) {
		c.Execution = sim.DefaultExecConfig()
	}
	if c.Risk == (risk.Config{}) {
		c.Risk = risk.Default()
	}
	if c.Strategy.Name == "" && len(c.Allocations) == 0 {
		c.Strategy.Name = "buy-hold"
	}
	if c.Journal.Type == "" {
		c.Journal.Type = "none"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial-cash must be positive")
	}
	if len(c.Backtest.Symbols) == 0 {
		return fmt.Errorf("backtest.symbols is required")
	}
	start, end, err := c.Backtest.Dates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("backtest.end must not precede backtest.start")
	}
	if c.Backtest.Data == "" {
		return fmt.Errorf("backtest.data is required")
	}
	if c.Execution.CommissionRate < 0 || c.Execution.SlippageRate < 0 {
		return fmt.Errorf("execution rates must not be negative")
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.TakeProfitPct <= 0 {
		return fmt.Errorf("risk thresholds must be positive")
	}

	if len(c.Allocations) > 0 {
		total := 0.0
		for _, a := range c.Allocations {
			if a.Strategy == "" {
				return fmt.Errorf("allocation strategy name is required")
			}
			if a.Percent <= 0 {
				return fmt.Errorf("allocation percent for %s must be positive", a.Strategy)
			}
			total += a.Percent
		}
		if math.Abs(total-100) > 0.01 {
			return fmt.Errorf("allocation percents must sum to 100, got %.2f", total)
		}
	} else if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
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

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCash: 100_000,
		},
		Backtest: BacktestConfig{
			Symbols: []string{"AAPL"},
			Start:   "2024-01-01",
			End:     "2024-12-31",
			Data:    "./bars.csv",
		},
		Execution: sim.DefaultExecConfig(),
		Risk:      risk.Default(),
		Strategy: StrategyConfig{
			Name: "sma-cross",
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtests.sqlite",
		},
	}
}
