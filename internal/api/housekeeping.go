package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/talgya/hexsettlers/internal/engine"
)

// Saver persists a game. *persistence.DB satisfies it.
type Saver interface {
	SaveGame(g *engine.Game) error
}

// Housekeeper periodically saves changed games and evicts finished games
// nobody has touched for a while.
type Housekeeper struct {
	Games    *Registry
	Store    Saver         // nil disables autosave
	Interval time.Duration // Time between passes
	IdleTTL  time.Duration // Finished games idle this long are evicted
	Tick     uint64        // Passes completed

	now func() time.Time
}

// NewHousekeeper creates a housekeeper with the given pass interval.
func NewHousekeeper(games *Registry, store Saver, interval, idleTTL time.Duration) *Housekeeper {
	return &Housekeeper{
		Games:    games,
		Store:    store,
		Interval: interval,
		IdleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Run performs a pass every Interval until ctx is done, then a final save.
func (h *Housekeeper) Run(ctx context.Context) {
	slog.Info("housekeeping started", "interval", h.Interval, "idle_ttl", h.IdleTTL)
	t := time.NewTicker(h.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.SaveAll()
			slog.Info("housekeeping stopped", "passes", h.Tick)
			return
		case <-t.C:
			h.Step()
		}
	}
}

// Step runs one pass: save dirty games, then evict idle finished ones.
func (h *Housekeeper) Step() {
	h.Tick++
	saved := h.SaveAll()

	evicted := 0
	now := h.now()
	for _, s := range h.Games.List() {
		idle, ended := s.Idle(now)
		if !ended || idle < h.IdleTTL {
			continue
		}
		if h.Games.Remove(s.ID()) {
			evicted++
		}
	}
	if saved > 0 || evicted > 0 {
		slog.Info("housekeeping pass", "tick", h.Tick, "saved", saved, "evicted", evicted, "games", h.Games.Len())
	}
}

// SaveAll writes every game changed since its last save and returns how many
// were written.
func (h *Housekeeper) SaveAll() int {
	if h.Store == nil {
		return 0
	}
	saved := 0
	for _, s := range h.Games.List() {
		ok, err := s.Flush(h.Store.SaveGame)
		if err != nil {
			slog.Error("autosave failed", "id", s.ID(), "error", err)
			continue
		}
		if ok {
			saved++
		}
	}
	return saved
}
