// Command settlers hosts hex-board settlement games over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/hexsettlers/internal/api"
	"github.com/talgya/hexsettlers/internal/config"
	"github.com/talgya/hexsettlers/internal/persistence"
	"github.com/talgya/hexsettlers/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	world.StrictInvariants = cfg.Debug

	slog.Info("hexsettlers starting",
		"addr", cfg.Addr,
		"tokens", cfg.Game.Board.Tokens,
		"rotate", cfg.Game.Board.Rotate,
		"max_games", cfg.MaxGames,
		"strict_invariants", world.StrictInvariants,
	)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			slog.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		boots := 0
		if v, err := db.GetMeta("boots"); err == nil {
			boots, _ = strconv.Atoi(v)
		}
		boots++
		if err := db.SaveMeta("boots", strconv.Itoa(boots)); err != nil {
			slog.Warn("failed to record boot", "error", err)
		}
		db.SaveMeta("last_start", time.Now().UTC().Format(time.RFC3339))

		saved, err := db.ListGames()
		if err != nil {
			slog.Warn("failed to list saved games", "error", err)
		}
		slog.Info("database opened", "path", cfg.DBPath, "saved_games", len(saved), "boot", boots)
	} else {
		slog.Warn("SETTLERS_DB disabled: games live in memory only")
	}

	if cfg.AdminKey == "" {
		slog.Warn("SETTLERS_ADMIN_KEY not set: save, grant and delete endpoints are disabled")
	}

	// ── Games and HTTP API ───────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games := api.NewRegistry(cfg.MaxGames)
	server := api.NewServer(games, db, cfg.Addr, cfg.AdminKey, cfg.Game, cfg.CreateLimit)
	server.CORSOrigins = cfg.CORSOrigins
	server.Start(ctx)

	var store api.Saver
	if db != nil {
		store = db
	}
	keeper := api.NewHousekeeper(games, store, cfg.AutosaveEvery, cfg.IdleTTL)
	done := make(chan struct{})
	go func() {
		keeper.Run(ctx)
		close(done)
	}()

	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.Addr)

	<-ctx.Done()
	slog.Info("received signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// The housekeeper saves every changed game on its way out.
	<-done
	fmt.Println("Server stopped. Games saved.")
}
