package config

import (
	"testing"
	"time"

	"github.com/talgya/hexsettlers/internal/world"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"SETTLERS_ADDR", "SETTLERS_DB", "SETTLERS_ADMIN_KEY", "SETTLERS_SEED",
		"SETTLERS_TOKENS", "SETTLERS_ROTATE", "SETTLERS_MAX_GAMES",
	} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "data/settlers.db" || cfg.AdminKey != "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Game.Seed != 0 || !cfg.Game.Board.Rotate || cfg.Game.Board.Tokens != world.TokensSpiral {
		t.Errorf("game defaults = %+v", cfg.Game)
	}
	if cfg.MaxGames != 64 || cfg.AutosaveEvery != time.Minute {
		t.Errorf("limits = %d games, autosave %v", cfg.MaxGames, cfg.AutosaveEvery)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SETTLERS_ADDR", "127.0.0.1:9000")
	t.Setenv("SETTLERS_DB", "-")
	t.Setenv("SETTLERS_SEED", "99")
	t.Setenv("SETTLERS_TOKENS", "shuffled")
	t.Setenv("SETTLERS_ROTATE", "false")
	t.Setenv("SETTLERS_MAX_GAMES", "3")
	t.Setenv("SETTLERS_AUTOSAVE_SECONDS", "5")
	t.Setenv("SETTLERS_DEBUG", "true")
	t.Setenv("SETTLERS_CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.DBPath != "" {
		t.Errorf("addr %q db %q", cfg.Addr, cfg.DBPath)
	}
	if cfg.Game.Seed != 99 || cfg.Game.Board.Rotate || cfg.Game.Board.Tokens != world.TokensShuffled {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.MaxGames != 3 || cfg.AutosaveEvery != 5*time.Second {
		t.Errorf("limits = %d games, autosave %v", cfg.MaxGames, cfg.AutosaveEvery)
	}
	if !cfg.Debug {
		t.Error("debug not enabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %q", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SETTLERS_TOKENS", "random")
	if _, err := Load(); err == nil {
		t.Error("unknown token mode accepted")
	}

	t.Setenv("SETTLERS_TOKENS", "")
	t.Setenv("SETTLERS_MAX_GAMES", "0")
	if _, err := Load(); err == nil {
		t.Error("zero game limit accepted")
	}
	t.Setenv("SETTLERS_MAX_GAMES", "")

	for _, tc := range []struct{ key, val string }{
		{"SETTLERS_AUTOSAVE_SECONDS", "0"},
		{"SETTLERS_AUTOSAVE_SECONDS", "-5"},
		{"SETTLERS_IDLE_MINUTES", "-1"},
		{"SETTLERS_CREATE_LIMIT", "-3"},
	} {
		t.Setenv(tc.key, tc.val)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%s accepted", tc.key, tc.val)
		}
		t.Setenv(tc.key, "")
	}
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SETTLERS_TEST_INT", "many")
	if got := envIntOrDefault("SETTLERS_TEST_INT", 7); got != 7 {
		t.Errorf("envIntOrDefault = %d", got)
	}
}
