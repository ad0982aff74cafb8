package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Game struct {
		QuestionSet      string `yaml:"question_set"`
		AdvanceDelay     string `yaml:"advance_delay"`
		Shuffle          bool   `yaml:"shuffle"`
		SnapshotInterval string `yaml:"snapshot_interval"`
		QuestionsDir     string `yaml:"questions_dir"`
		ImagesDir        string `yaml:"images_dir"`
		PlayersFile      string `yaml:"players_file"`
	} `yaml:"game"`
	Admins []string `yaml:"admins"`
	Redis  struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Game.QuestionSet = "tokenimage"
	cfg.Game.AdvanceDelay = "60s"
	cfg.Game.Shuffle = true
	cfg.Game.SnapshotInterval = "1m"
	cfg.Game.QuestionsDir = "data"
	cfg.Game.ImagesDir = "data/tokenimage"
	cfg.Game.PlayersFile = "data/guessjoin.json"
	return cfg
}

// Load reads YAML config from path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
