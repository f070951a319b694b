// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

// Config holds all server configuration.
type Config struct {
	Addr     string // Listen address
	DBPath   string // SQLite file; empty disables persistence
	AdminKey string // Bearer token for admin endpoints; empty disables them
	Debug    bool   // Log every request and panic on world invariant violations

	CORSOrigins []string // Extra browser origins allowed to call the API

	Game engine.Config // Defaults for new games

	MaxGames      int           // Games held in memory at once
	CreateLimit   int           // Game creations per client per hour
	AutosaveEvery time.Duration // Housekeeping interval
	IdleTTL       time.Duration // Finished games are evicted after this long untouched
}

// Load reads the SETTLERS_* environment variables, applying defaults.
func Load() (*Config, error) {
	tokens, err := world.ParseTokenMode(os.Getenv("SETTLERS_TOKENS"))
	if err != nil {
		return nil, fmt.Errorf("SETTLERS_TOKENS: %w", err)
	}

	game := engine.DefaultConfig()
	game.Seed = int64(envIntOrDefault("SETTLERS_SEED", 0))
	game.Board.Tokens = tokens
	game.Board.Rotate = envBoolOrDefault("SETTLERS_ROTATE", true)
	game.Board.MaxPortShuffles = envIntOrDefault("SETTLERS_PORT_SHUFFLES", game.Board.MaxPortShuffles)

	cfg := &Config{
		Addr:          envOrDefault("SETTLERS_ADDR", ":8080"),
		DBPath:        envOrDefault("SETTLERS_DB", "data/settlers.db"),
		AdminKey:      os.Getenv("SETTLERS_ADMIN_KEY"),
		Debug:         envBoolOrDefault("SETTLERS_DEBUG", false),
		Game:          game,
		MaxGames:      envIntOrDefault("SETTLERS_MAX_GAMES", 64),
		CreateLimit:   envIntOrDefault("SETTLERS_CREATE_LIMIT", 30),
		AutosaveEvery: time.Duration(envIntOrDefault("SETTLERS_AUTOSAVE_SECONDS", 60)) * time.Second,
		IdleTTL:       time.Duration(envIntOrDefault("SETTLERS_IDLE_MINUTES", 120)) * time.Minute,
		CORSOrigins:   envListOrDefault("SETTLERS_CORS_ORIGINS", nil),
	}
	if os.Getenv("SETTLERS_DB") == "-" {
		cfg.DBPath = ""
	}
	if cfg.MaxGames <= 0 {
		return nil, fmt.Errorf("SETTLERS_MAX_GAMES must be positive, got %d", cfg.MaxGames)
	}
	if cfg.AutosaveEvery <= 0 {
		return nil, fmt.Errorf("SETTLERS_AUTOSAVE_SECONDS must be positive, got %v", cfg.AutosaveEvery)
	}
	if cfg.IdleTTL < 0 {
		return nil, fmt.Errorf("SETTLERS_IDLE_MINUTES must not be negative, got %v", cfg.IdleTTL)
	}
	if cfg.CreateLimit < 0 {
		return nil, fmt.Errorf("SETTLERS_CREATE_LIMIT must not be negative, got %d", cfg.CreateLimit)
	}
	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// envListOrDefault splits a comma-separated value, dropping blank entries.
func envListOrDefault(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
