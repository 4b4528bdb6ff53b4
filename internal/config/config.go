package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen        string    `yaml:"listen"`
	DatabaseURL   string    `yaml:"database_url"`
	JWTSecret     string    `yaml:"jwt_secret"`
	CacheCapacity int       `yaml:"cache_capacity"`
	BotID         string    `yaml:"bot_id"`
	LogLevel      string    `yaml:"log_level"`
	Channels      []Channel `yaml:"channels"`
}

type Channel struct {
	Type        string                 `yaml:"type"`
	Credentials map[string]interface{} `yaml:"credentials"`
}

// Load reads the YAML config file if present, then applies environment
// overrides. A missing file is not an error; a missing database URL or
// JWT secret is.
func Load(path string) (Config, error) {
	cfg := Config{
		Listen:        ":8080",
		CacheCapacity: 1024,
		BotID:         "autoreply",
		LogLevel:      "info",
	}
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("database_url is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, fmt.Errorf("jwt_secret is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if value := os.Getenv("AUTOREPLY_LISTEN"); value != "" {
		cfg.Listen = value
	}
	if value := os.Getenv("AUTOREPLY_DATABASE_URL"); value != "" {
		cfg.DatabaseURL = value
	}
	if value := os.Getenv("AUTOREPLY_JWT_SECRET"); value != "" {
		cfg.JWTSecret = value
	}
	if value := os.Getenv("AUTOREPLY_BOT_ID"); value != "" {
		cfg.BotID = value
	}
	if value := os.Getenv("AUTOREPLY_LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	if value := os.Getenv("AUTOREPLY_CACHE_CAPACITY"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			cfg.CacheCapacity = parsed
		}
	}
}
