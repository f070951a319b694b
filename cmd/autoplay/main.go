// Command autoplay plays seats of a hosted game through the HTTP API.
// With no AUTOPLAY_GAME it creates a game and plays every seat.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/talgya/hexsettlers/internal/autoplay"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("AUTOPLAY_API_URL", "http://localhost:8080")
	gameID := os.Getenv("AUTOPLAY_GAME")
	players := strings.Split(envOrDefault("AUTOPLAY_PLAYERS", "North,East,South,West"), ",")
	seats := parseSeats(os.Getenv("AUTOPLAY_SEATS"))
	delay := time.Duration(envIntOrDefault("AUTOPLAY_DELAY_MS", 250)) * time.Millisecond
	maxTurns := envIntOrDefault("AUTOPLAY_MAX_TURNS", 500)

	slog.Info("autoplay starting", "api_url", apiURL, "game", gameID, "delay", delay)

	slog.Info("waiting for settlers API...")
	waitForAPI(apiURL)

	if gameID == "" {
		snap, err := autoplay.NewActor(apiURL, "").CreateGame(players, int64(envIntOrDefault("AUTOPLAY_SEED", 0)))
		if err != nil {
			slog.Error("create game failed", "error", err)
			os.Exit(1)
		}
		gameID = snap.ID
		slog.Info("game created", "id", gameID, "players", len(snap.Players), "seed", snap.Seed)
		fmt.Printf("Watch: %s/api/v1/games/%s/board.svg\n", apiURL, gameID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := autoplay.NewBot(apiURL, gameID, seats)
	bot.Delay = delay
	bot.MaxTurns = maxTurns

	out, err := bot.Run(ctx)
	switch {
	case err == nil:
		fmt.Printf("Seat %d won on turn %d. Scores: %v\n", *out.Winner, out.Turn, out.Scores)
	case errors.Is(err, context.Canceled):
		fmt.Println("Autoplay stopped.")
	case errors.Is(err, autoplay.ErrTurnLimit):
		fmt.Printf("No winner after %d turns. Scores: %v\n", out.Turn, out.Scores)
	default:
		slog.Error("autoplay failed", "error", err, "steps", bot.Steps, "rejected", bot.Failures)
		os.Exit(1)
	}
}

// parseSeats reads a comma-separated seat list. Empty means every seat.
func parseSeats(s string) map[int]bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	seats := make(map[int]bool)
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			slog.Warn("ignoring seat", "value", f)
			continue
		}
		seats[n] = true
	}
	return seats
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

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 2 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := time.Second
	maxBackoff := 15 * time.Second
	deadline := time.Now().Add(2 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				slog.Info("settlers API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("settlers API did not become ready within 2 minutes")
			os.Exit(1)
		}
		slog.Info("settlers API not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
