package api

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexsettlers/internal/engine"
)

// ErrRegistryFull is returned when the game limit is reached.
var ErrRegistryFull = errors.New("too many games in progress")

// Session is one live game plus the clients watching it. The game itself is
// single-threaded; every access goes through the session lock.
type Session struct {
	mu      sync.Mutex
	sendMu  sync.Mutex // Held while pushing a snapshot; taken before mu is released
	game    *engine.Game
	touched time.Time
	dirty   bool

	Hub *Hub
}

func newSession(g *engine.Game) *Session {
	return &Session{game: g, touched: time.Now(), dirty: true, Hub: NewHub()}
}

// ID returns the game's identifier.
func (s *Session) ID() uuid.UUID {
	return s.game.ID
}

// Do runs fn with exclusive access to the game. When fn succeeds the game is
// marked dirty and the new snapshot is pushed to stream clients. Pushes
// reach clients in the order the changes were made.
func (s *Session) Do(fn func(g *engine.Game) error) (engine.Snapshot, error) {
	s.mu.Lock()
	err := fn(s.game)
	s.touched = time.Now()
	snap := s.game.Snapshot()
	if err != nil {
		s.mu.Unlock()
		return snap, err
	}
	s.dirty = true

	s.sendMu.Lock()
	s.mu.Unlock()
	defer s.sendMu.Unlock()
	s.Hub.BroadcastJSON(snap)
	return snap, nil
}

// View runs fn with exclusive read access to the game.
func (s *Session) View(fn func(g *engine.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

// Snapshot returns the current game state.
func (s *Session) Snapshot() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// Flush calls save with the game if it changed since the last flush.
func (s *Session) Flush(save func(g *engine.Game) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return false, nil
	}
	if err := save(s.game); err != nil {
		return false, err
	}
	s.dirty = false
	return true, nil
}

// Idle reports how long the session has gone untouched and whether its game
// has ended.
func (s *Session) Idle(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.touched), s.game.Phase == engine.PhaseEnded
}

// Registry holds the games in memory.
type Registry struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Session
	max   int
}

// NewRegistry creates a registry holding at most max games.
func NewRegistry(max int) *Registry {
	return &Registry{games: make(map[uuid.UUID]*Session), max: max}
}

// Add registers g and returns its session.
func (r *Registry) Add(g *engine.Game) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.games[g.ID]; ok {
		return s, nil
	}
	if len(r.games) >= r.max {
		return nil, ErrRegistryFull
	}
	s := newSession(g)
	r.games[g.ID] = s
	return s, nil
}

// Get returns the session for id, or nil.
func (r *Registry) Get(id uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[id]
}

// Remove drops id from the registry and disconnects its watchers.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()
	if ok {
		s.Hub.CloseAll()
	}
	return ok
}

// List returns every session ordered by game ID.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.games))
	for _, s := range r.games {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// Len returns the number of games held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}
