package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Game   GameConfig   `yaml:"game"`
	Roster RosterConfig `yaml:"roster"`
	Relay  RelayConfig  `yaml:"relay"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
}

// GameConfig holds match pacing and economy settings
type GameConfig struct {
	WaitingSeconds  int64 `yaml:"waiting_seconds"`
	RunningSeconds  int64 `yaml:"running_seconds"`
	FinishedSeconds int64 `yaml:"finished_seconds"`
	CooldownSeconds int64 `yaml:"vote_cooldown_seconds"`
	PrizePoints     int64 `yaml:"prize_points"`
	MaxPlayers      int   `yaml:"max_players"`
	HistorySize     int   `yaml:"history_size"`
	ShopCapacity    int   `yaml:"shop_capacity"`
}

// RosterConfig holds the team roster source settings
type RosterConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RelayConfig holds the broadcast relay settings. An empty URL starts
// an embedded NATS server instead of connecting to an external one.
type RelayConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 9501
	}
	if c.Game.WaitingSeconds == 0 {
		c.Game.WaitingSeconds = 15
	}
	if c.Game.RunningSeconds == 0 {
		c.Game.RunningSeconds = 30
	}
	if c.Game.FinishedSeconds == 0 {
		c.Game.FinishedSeconds = 10
	}
	if c.Game.CooldownSeconds == 0 {
		c.Game.CooldownSeconds = 1
	}
	if c.Game.PrizePoints == 0 {
		c.Game.PrizePoints = 3
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = 1024
	}
	if c.Game.HistorySize == 0 {
		c.Game.HistorySize = 10
	}
	if c.Game.ShopCapacity == 0 {
		c.Game.ShopCapacity = 4096
	}
	if c.Roster.URL == "" {
		c.Roster.URL = "https://www.sofascore.com/api/v1/unique-tournament/325/season/72034/standings/total"
	}
	if c.Roster.TimeoutSeconds == 0 {
		c.Roster.TimeoutSeconds = 10
	}
	if c.Relay.SubjectPrefix == "" {
		c.Relay.SubjectPrefix = "torcida"
	}
}
