// Package config loads server configuration from HCL.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Model  *ModelSettings  `hcl:"model,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// ModelSettings configures the remote text-generation endpoint used by
// deliberating seats.
type ModelSettings struct {
	BaseURL   string `hcl:"base_url,optional"`
	Name      string `hcl:"name,optional"`
	APIKeyEnv string `hcl:"api_key_env,optional"`
	TimeoutMs int    `hcl:"timeout_ms,optional"`
}

// TableConfig defines one poker table.
type TableConfig struct {
	Name           string       `hcl:"name,label"`
	SmallBlind     int          `hcl:"small_blind"`
	BigBlind       int          `hcl:"big_blind"`
	StartChips     int          `hcl:"start_chips,optional"`
	RebuyChips     int          `hcl:"rebuy_chips,optional"`
	MinThinkMs     int          `hcl:"min_think_ms,optional"`
	ShowdownHoldMs int          `hcl:"showdown_hold_ms,optional"`
	Seats          []SeatConfig `hcl:"seat,block"`
}

// SeatConfig defines one seat at a table. Automated seats pick a policy;
// human seats are driven through the action-submission API.
type SeatConfig struct {
	Name        string  `hcl:"name,label"`
	Auto        bool    `hcl:"auto,optional"`
	Policy      string  `hcl:"policy,optional"` // "rules" or "deliberate"
	Tightness   float64 `hcl:"tightness,optional"`
	Aggression  float64 `hcl:"aggression,optional"`
	BluffFreq   float64 `hcl:"bluff_freq,optional"`
	MistakeFreq float64 `hcl:"mistake_freq,optional"`
	BuyIn       int     `hcl:"buy_in,optional"`
}

// Default returns the default configuration: one table, three automated
// rule-based seats and one human seat.
func Default() *Config {
	cfg := baseDefault()
	applyDefaults(cfg)
	return cfg
}

func baseDefault() *Config {
	return &Config{
		Server: &ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Model: &ModelSettings{
			BaseURL:   "https://openrouter.ai/api/v1",
			Name:      "openai/gpt-4o-mini",
			APIKeyEnv: "OPENROUTER_API_KEY",
			TimeoutMs: 30000,
		},
		Tables: []TableConfig{
			{
				Name:       "main",
				SmallBlind: 5,
				BigBlind:   10,
				StartChips: 1000,
				Seats: []SeatConfig{
					{Name: "you"},
					{Name: "mona", Auto: true, Policy: "rules"},
					{Name: "ivan", Auto: true, Policy: "rules"},
					{Name: "ada", Auto: true, Policy: "deliberate"},
				},
			},
		},
	}
}

// Load parses an HCL configuration file, falling back to defaults when the
// file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %s", filename, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %s", filename, diags.Error())
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := baseDefault()
	if cfg.Server == nil {
		cfg.Server = def.Server
	}
	if cfg.Model == nil {
		cfg.Model = def.Model
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = def.Server.LogLevel
	}
	if cfg.Model.BaseURL == "" {
		cfg.Model.BaseURL = def.Model.BaseURL
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = def.Model.Name
	}
	if cfg.Model.APIKeyEnv == "" {
		cfg.Model.APIKeyEnv = def.Model.APIKeyEnv
	}
	if cfg.Model.TimeoutMs == 0 {
		cfg.Model.TimeoutMs = def.Model.TimeoutMs
	}

	for i := range cfg.Tables {
		t := &cfg.Tables[i]
		if t.StartChips == 0 {
			t.StartChips = t.BigBlind * 100
		}
		if t.MinThinkMs == 0 {
			t.MinThinkMs = 1500
		}
		if t.ShowdownHoldMs == 0 {
			t.ShowdownHoldMs = 6000
		}
		for j := range t.Seats {
			s := &t.Seats[j]
			if s.Auto && s.Policy == "" {
				s.Policy = "rules"
			}
			if s.Tightness == 0 {
				s.Tightness = 0.5
			}
			if s.Aggression == 0 {
				s.Aggression = 0.5
			}
			if s.BuyIn == 0 {
				s.BuyIn = t.StartChips
			}
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	for _, table := range c.Tables {
		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.Name)
		}
		if table.BigBlind <= table.SmallBlind {
			return fmt.Errorf("table %s: big blind must exceed small blind", table.Name)
		}
		if len(table.Seats) < 2 || len(table.Seats) > 10 {
			return fmt.Errorf("table %s: seat count must be between 2 and 10", table.Name)
		}
		for _, seat := range table.Seats {
			switch seat.Policy {
			case "", "rules", "deliberate":
			default:
				return fmt.Errorf("table %s seat %s: unknown policy %q", table.Name, seat.Name, seat.Policy)
			}
			if seat.BuyIn < table.BigBlind {
				return fmt.Errorf("table %s seat %s: buy-in below one big blind", table.Name, seat.Name)
			}
		}
	}
	return nil
}
