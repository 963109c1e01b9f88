// Package daemon holds the server process configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dealgrove/dealgrove/internal/domain"
)

// Config is the full server configuration, loaded from TOML.
type Config struct {
	API     APIConfig     `toml:"api"`
	Store   StoreConfig   `toml:"store"`
	Economy EconomyConfig `toml:"economy"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// StoreConfig configures the on-disk store.
type StoreConfig struct {
	// Path is the directory holding the database file.
	Path string `toml:"path"`
}

// EconomyConfig configures the reputation economy. Zero values fall back
// to the stock policy so a partial config file stays valid.
type EconomyConfig struct {
	InitialGrant         int64 `toml:"initial_grant"`
	MinPublishReputation int64 `toml:"min_publish_reputation"`
	PublishCost          int64 `toml:"publish_cost"`
	VoteCost             int64 `toml:"vote_cost"`
	ListLimit            int   `toml:"list_limit"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Metrics: true,
		},
		Store: StoreConfig{
			Path: defaultStoreDir(),
		},
		Economy: EconomyConfig{
			InitialGrant:         domain.DefaultInitialGrant,
			MinPublishReputation: domain.DefaultMinPublishReputation,
			PublishCost:          domain.DefaultPublishCost,
			VoteCost:             domain.DefaultVoteCost,
			ListLimit:            domain.DefaultListLimit,
		},
	}
}

// Load reads the TOML config at path, layered over the defaults.
// A missing file is not an error: the defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	return filepath.Join(defaultStoreDir(), "config.toml")
}

// Policy converts the economy section into a domain policy, substituting
// the stock value for anything left unset.
func (c EconomyConfig) Policy() domain.Policy {
	p := domain.DefaultPolicy()
	if c.InitialGrant > 0 {
		p.InitialGrant = c.InitialGrant
	}
	if c.MinPublishReputation > 0 {
		p.MinPublishReputation = c.MinPublishReputation
	}
	if c.PublishCost > 0 {
		p.PublishCost = c.PublishCost
	}
	if c.VoteCost > 0 {
		p.VoteCost = c.VoteCost
	}
	if c.ListLimit > 0 {
		p.ListLimit = c.ListLimit
	}
	return p
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultStoreDir() string {
	if env := os.Getenv("DEALGROVE_HOME"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dealgrove"
	}
	return filepath.Join(home, ".dealgrove")
}
