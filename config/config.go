package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Funding FundingConfig `json:"funding" yaml:"funding"`
	Series  SeriesConfig  `json:"series" yaml:"series"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Server  ServerConfig  `json:"server" yaml:"server"`

	// IndicesFile is the index registry (YAML or JSON).
	IndicesFile string `json:"indices_file" yaml:"indices_file"`
}

// AccountConfig contains session initialization parameters
type AccountConfig struct {
	Currency        string  `json:"currency" yaml:"currency"`
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
}

// TradingConfig contains order sizing parameters
type TradingConfig struct {
	MaxLeverage            int     `json:"max_leverage" yaml:"max_leverage"`
	FeeBps                 float64 `json:"fee_bps" yaml:"fee_bps"`
	MaintenanceMarginRatio float64 `json:"maintenance_margin_ratio" yaml:"maintenance_margin_ratio"`
	MinNotional            float64 `json:"min_notional" yaml:"min_notional"`
}

// FundingConfig contains funding-rate estimate parameters. ScaleHours is a
// display convention: each series sample is treated as one hour.
type FundingConfig struct {
	Lookback   int     `json:"lookback" yaml:"lookback"`
	K          float64 `json:"k" yaml:"k"`
	ScaleHours float64 `json:"scale_hours" yaml:"scale_hours"`
}

// SeriesConfig contains series loading parameters
type SeriesConfig struct {
	CacheTTL     string `json:"cache_ttl" yaml:"cache_ttl"`
	FetchTimeout string `json:"fetch_timeout" yaml:"fetch_timeout"`
}

// CacheTTLDuration parses the freshness window (e.g. "60s", "2m").
func (s SeriesConfig) CacheTTLDuration() (time.Duration, error) {
	if s.CacheTTL == "" {
		return 60 * time.Second, nil
	}
	return time.ParseDuration(s.CacheTTL)
}

// FetchTimeoutDuration parses the per-fetch timeout.
func (s SeriesConfig) FetchTimeoutDuration() (time.Duration, error) {
	if s.FetchTimeout == "" {
		return 15 * time.Second, nil
	}
	return time.ParseDuration(s.FetchTimeout)
}

// JournalConfig contains activity-log persistence parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	Port        int      `json:"port" yaml:"port"`
	AccessKey   string   `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML tried first, falling
// back to JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}
	if c.Trading.MaxLeverage < 1 {
		return fmt.Errorf("trading.max_leverage must be at least 1")
	}
	if c.Trading.FeeBps < 0 {
		return fmt.Errorf("trading.fee_bps must not be negative")
	}
	if c.Trading.MaintenanceMarginRatio < 0 || c.Trading.MaintenanceMarginRatio >= 1 {
		return fmt.Errorf("trading.maintenance_margin_ratio must be in [0, 1)")
	}
	if c.Funding.Lookback < 1 {
		return fmt.Errorf("funding.lookback must be at least 1")
	}
	if c.Funding.ScaleHours <= 0 {
		return fmt.Errorf("funding.scale_hours must be positive")
	}
	if _, err := c.Series.CacheTTLDuration(); err != nil {
		return fmt.Errorf("series.cache_ttl: %w", err)
	}
	if _, err := c.Series.FetchTimeoutDuration(); err != nil {
		return fmt.Errorf("series.fetch_timeout: %w", err)
	}
	if c.Journal.Type != "memory" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'memory' or 'sqlite'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for sqlite type")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port")
	}
	if c.IndicesFile == "" {
		return fmt.Errorf("indices_file is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency:        "USD",
			StartingBalance: 10000,
		},
		Trading: TradingConfig{
			MaxLeverage:            20,
			FeeBps:                 5,
			MaintenanceMarginRatio: 0.005,
			MinNotional:            10,
		},
		Funding: FundingConfig{
			Lookback:   30,
			K:          0.0005,
			ScaleHours: 24,
		},
		Series: SeriesConfig{
			CacheTTL:     "60s",
			FetchTimeout: "15s",
		},
		Journal: JournalConfig{
			Type: "memory",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		IndicesFile: "./indices.yaml",
	}
}
