package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexsettlers/internal/entropy"
	"github.com/talgya/hexsettlers/internal/world"
)

// playing checks that the game accepts normal-turn intents.
func (g *Game) playing(action string) error {
	switch g.Phase {
	case PhaseEnded:
		return fmt.Errorf("%s: %w", action, ErrGameOver)
	case PhasePlaying:
		return nil
	}
	return fmt.Errorf("%s during %s: %w", action, g.Phase, ErrWrongPhase)
}

// RollDice rolls two dice for the current player, pays out production and
// returns the total. Each player rolls once per turn.
func (g *Game) RollDice() (int, error) {
	if err := g.playing("roll"); err != nil {
		return 0, err
	}
	if g.Rolled {
		return 0, fmt.Errorf("already rolled: %w", ErrWrongPhase)
	}

	a, b := entropy.RollD6(g.rng), entropy.RollD6(g.rng)
	g.Dice = a + b
	g.Rolled = true
	slog.Debug("dice rolled", "id", g.ID, "player", g.CurrentPlayer().Name, "roll", g.Dice)
	g.record(CategoryDice, "%s rolls %d", g.CurrentPlayer().Name, g.Dice)

	g.DistributeResources(g.Dice)
	g.checkEnd()
	return g.Dice, nil
}

// EndTurn passes play to the next seat.
func (g *Game) EndTurn() error {
	if err := g.playing("end turn"); err != nil {
		return err
	}
	if !g.Rolled {
		return fmt.Errorf("end turn before rolling: %w", ErrWrongPhase)
	}
	g.NextTurn()
	return nil
}

// NextTurn moves to the next seat without any checks.
func (g *Game) NextTurn() {
	g.Current = (g.Current + 1) % len(g.Players)
	g.Rolled = false
	g.Turn++
}

// buildable checks the common preconditions of a paid build.
func (g *Game) buildable(action string, cost Cost, piecesLeft int) error {
	if err := g.playing(action); err != nil {
		return err
	}
	if !g.Rolled {
		return fmt.Errorf("%s before rolling: %w", action, ErrWrongPhase)
	}
	if piecesLeft <= 0 {
		return fmt.Errorf("%s: %w", action, ErrNoPiecesLeft)
	}
	if !g.CurrentPlayer().CanAfford(cost) {
		return fmt.Errorf("%s: %w", action, ErrInsufficientResources)
	}
	return nil
}

// BuildRoad pays for and places a road for the current player.
func (g *Game) BuildRoad(e world.EdgeKey) error {
	p := g.CurrentPlayer()
	if err := g.buildable("build road", RoadCost, p.Roads); err != nil {
		return err
	}
	if !g.CanPlaceRoad(e) {
		return fmt.Errorf("road at %v: %w", e.Canonical(), ErrIllegalMove)
	}
	p.Spend(RoadCost)
	g.PlaceRoad(e, p)
	g.record(CategoryBuild, "%s builds a road at %v", p.Name, e.Canonical())
	return nil
}

// BuildSettlement pays for and places a settlement for the current player.
func (g *Game) BuildSettlement(v world.VertexKey) error {
	p := g.CurrentPlayer()
	if err := g.buildable("build settlement", SettlementCost, p.Settlements); err != nil {
		return err
	}
	if !g.CanPlaceSettlement(v, false) {
		return fmt.Errorf("settlement at %v: %w", v.Canonical(), ErrIllegalMove)
	}
	p.Spend(SettlementCost)
	g.PlaceSettlement(v, p)
	g.record(CategoryBuild, "%s builds a settlement at %v", p.Name, v.Canonical())
	g.checkEnd()
	return nil
}

// BuildCity pays for and upgrades one of the current player's settlements.
func (g *Game) BuildCity(v world.VertexKey) error {
	p := g.CurrentPlayer()
	if err := g.buildable("build city", CityCost, p.Cities); err != nil {
		return err
	}
	if !g.Board.CanUpgradeToCity(v, p.ID) {
		return fmt.Errorf("city at %v: %w", v.Canonical(), ErrIllegalMove)
	}
	p.Spend(CityCost)
	g.UpgradeToCity(v)
	g.record(CategoryBuild, "%s builds a city at %v", p.Name, v.Canonical())
	g.checkEnd()
	return nil
}
