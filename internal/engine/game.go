// Package engine provides the game state machine: setup placement order,
// turns, dice, resource production and building.
//
// A Game is single-threaded. Callers that share one across goroutines must
// serialize access themselves.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/hexsettlers/internal/entropy"
	"github.com/talgya/hexsettlers/internal/world"
)

// Phase is the top-level game phase.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseEnded
)

var phaseNames = [...]string{"setup", "playing", "ended"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Config holds new-game parameters.
type Config struct {
	Seed  int64 // 0 = crypto-random
	Board world.GenConfig
}

// DefaultConfig returns the standard game setup.
func DefaultConfig() Config {
	return Config{Board: world.DefaultGenConfig()}
}

// Game holds the complete state of one game.
type Game struct {
	ID      uuid.UUID
	Seed    int64
	Board   *world.Board
	Players []*Player
	Current int // Index into Players
	Phase   Phase
	Setup   SetupPhase
	Dice    int  // Last roll, 0 before the first
	Rolled  bool // Current player has rolled this turn
	Turn    int  // Completed turns since play began

	// LastSettlement is the settlement just placed during setup; the
	// following road must leave it.
	LastSettlement *world.VertexKey

	Winner *world.PlayerID
	Events []Event

	rng *rand.Rand
}

// NewGame creates a game for 2–4 players and generates its board. A nil rng
// is replaced by one seeded from cfg.Seed.
func NewGame(cfg Config, names []string, rng *rand.Rand) (*Game, error) {
	if len(names) < 2 || len(names) > len(colorNames) {
		return nil, fmt.Errorf("need 2-%d players, got %d: %w", len(colorNames), len(names), world.ErrInvalidArgument)
	}

	seed := cfg.Seed
	if rng == nil {
		if seed == 0 {
			seed = entropy.NewSeed()
		}
		rng = entropy.NewRand(seed)
	}

	g := &Game{
		ID:      uuid.New(),
		Seed:    seed,
		Board:   world.Generate(cfg.Board, rng),
		Players: make([]*Player, len(names)),
		Phase:   PhaseSetup,
		Setup:   PlacingFirstSettlement,
		rng:     rng,
	}
	for i, name := range names {
		g.Players[i] = NewPlayer(world.PlayerID(i), name, Color(i))
	}

	slog.Info("new game",
		"id", g.ID,
		"players", len(names),
		"seed", seed,
		"tokens", cfg.Board.Tokens,
	)
	g.record(CategorySetup, "%d players sit down", len(names))
	return g, nil
}

// Restore rebuilds a game from stored parts. Used by persistence.
func Restore(id uuid.UUID, seed int64, board *world.Board, players []*Player) *Game {
	return &Game{
		ID:      id,
		Seed:    seed,
		Board:   board,
		Players: players,
		rng:     entropy.NewRand(0),
	}
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.Current]
}

// Player returns the player with the given ID, or nil.
func (g *Game) Player(id world.PlayerID) *Player {
	if int(id) < 0 || int(id) >= len(g.Players) {
		return nil
	}
	return g.Players[id]
}

// CanPlaceSettlement reports whether the current player may settle on v.
func (g *Game) CanPlaceSettlement(v world.VertexKey, initial bool) bool {
	return g.Board.CanPlaceSettlement(v, g.CurrentPlayer().ID, initial)
}

// CanPlaceRoad reports whether the current player may build on e.
func (g *Game) CanPlaceRoad(e world.EdgeKey) bool {
	return g.Board.CanPlaceRoad(e, g.CurrentPlayer().ID)
}

// PlaceSettlement puts p's settlement on v and books the piece and point.
// It does not check legality; call CanPlaceSettlement first.
func (g *Game) PlaceSettlement(v world.VertexKey, p *Player) {
	g.Board.PlaceSettlement(v, p.ID)
	p.Settlements--
	p.VictoryPoints++
}

// PlaceRoad puts p's road on e and books the piece. It does not check
// legality; call CanPlaceRoad first.
func (g *Game) PlaceRoad(e world.EdgeKey, p *Player) {
	g.Board.PlaceRoad(e, p.ID)
	p.Roads--
}

// UpgradeToCity turns the settlement on v into a city: one more point, a
// city piece used and the settlement piece returned. It does nothing when v
// holds no plain settlement.
func (g *Game) UpgradeToCity(v world.VertexKey) {
	s := g.Board.UpgradeToCity(v)
	if s == nil {
		return
	}
	owner := g.Player(s.Owner)
	owner.Settlements++
	owner.Cities--
	owner.VictoryPoints++
}

// CheckWinner returns the first player, in seat order, with at least
// WinningPoints victory points, or nil.
func (g *Game) CheckWinner() *Player {
	for _, p := range g.Players {
		if p.VictoryPoints >= WinningPoints {
			return p
		}
	}
	return nil
}

// checkEnd moves the game to PhaseEnded once someone has won.
func (g *Game) checkEnd() {
	w := g.CheckWinner()
	if w == nil {
		return
	}
	id := w.ID
	g.Winner = &id
	g.Phase = PhaseEnded
	slog.Info("game won", "id", g.ID, "winner", w.Name, "points", w.VictoryPoints)
	g.record(CategoryGame, "%s wins with %d points", w.Name, w.VictoryPoints)
}
