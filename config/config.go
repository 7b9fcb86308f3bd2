package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/storage"
)

type Config struct {
	DataDir             string    `toml:"DataDir"`
	Backend             string    `toml:"Backend"`
	AddressPrefix       string    `toml:"AddressPrefix"`
	NativeDenom         string    `toml:"NativeDenom"`
	Environment         string    `toml:"Environment"`
	ServiceName         string    `toml:"ServiceName"`
	LogLevel            string    `toml:"LogLevel"`
	MaxQueryDepth       int       `toml:"MaxQueryDepth"`
	AirdropAccountsFile string    `toml:"AirdropAccountsFile"`
	Telemetry           Telemetry `toml:"telemetry"`
	Genesis             Genesis   `toml:"genesis"`
}

const (
	DefaultServiceName   = "launchpad"
	DefaultEnvironment   = "local"
	DefaultMaxQueryDepth = 8
)

// Load loads the configuration from the given path. A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			// Contract init tables are free-form.
			if len(key) > 0 && key[0] == "genesis" && isInitKey(key) {
				continue
			}
			keys = append(keys, key.String())
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.applyDefaults(path)
	return cfg, nil
}

func isInitKey(key toml.Key) bool {
	for _, part := range key {
		if part == "init" {
			return true
		}
	}
	return false
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	return &Config{
		DataDir:       "./launchpad-data",
		Backend:       storage.BackendLevelDB,
		AddressPrefix: string(crypto.DefaultPrefix),
		NativeDenom:   types.DefaultDenom,
		Environment:   DefaultEnvironment,
		ServiceName:   DefaultServiceName,
		LogLevel:      "info",
		MaxQueryDepth: DefaultMaxQueryDepth,
		Genesis: Genesis{
			Balances:  []GenesisBalance{},
			Contracts: []GenesisContract{},
		},
	}
}

func (c *Config) applyDefaults(path string) {
	def := Default()
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = def.Backend
	}
	if strings.TrimSpace(c.AddressPrefix) == "" {
		c.AddressPrefix = def.AddressPrefix
	}
	if strings.TrimSpace(c.NativeDenom) == "" {
		c.NativeDenom = def.NativeDenom
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = def.Environment
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = def.ServiceName
	}
	if c.MaxQueryDepth <= 0 {
		c.MaxQueryDepth = def.MaxQueryDepth
	}
	if c.Genesis.Balances == nil {
		c.Genesis.Balances = []GenesisBalance{}
	}
	if c.Genesis.Contracts == nil {
		c.Genesis.Contracts = []GenesisContract{}
	}
	// Relative accounts files are resolved next to the config file.
	if f := strings.TrimSpace(c.AirdropAccountsFile); f != "" && !filepath.IsAbs(f) {
		c.AirdropAccountsFile = filepath.Join(filepath.Dir(path), f)
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
