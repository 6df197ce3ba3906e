// Package config loads the server's YAML configuration file into a flat
// struct with yaml tags and field defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds bind address, MOTD fields, and tuning knobs. No other
// file or environment variable is part of the core's contract.
type Config struct {
	BindAddress string `yaml:"bind_address"`

	Title           string `yaml:"title"`
	SubTitle        string `yaml:"sub_title"`
	VersionString   string `yaml:"version_string"`
	GameMode        string `yaml:"game_mode"`
	ProtocolVersion uint16 `yaml:"protocol_version"`

	MaxPlayers int `yaml:"max_players"`
	Online     int `yaml:"online"`
	Max        int `yaml:"max"`
}

// defaults applied to any field left unset after decode.
const (
	defaultBindAddress     = "0.0.0.0:19132"
	defaultProtocolVersion = 475
	defaultMaxPlayers      = 20
	defaultVersionString   = "1.20.0"
	defaultGameMode        = "Survival"
)

// Load opens path and decodes it into a Config, applying defaults for
// any field the file left at its zero value. A missing or invalid file
// is a fatal startup condition — the caller is expected to exit.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BindAddress == "" {
		cfg.BindAddress = defaultBindAddress
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = defaultProtocolVersion
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = defaultMaxPlayers
	}
	if cfg.VersionString == "" {
		cfg.VersionString = defaultVersionString
	}
	if cfg.GameMode == "" {
		cfg.GameMode = defaultGameMode
	}
	if cfg.Max == 0 {
		cfg.Max = cfg.MaxPlayers
	}
}
