package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexsettlers/internal/world"
)

// SetupPhase is the step within the initial placement rounds.
type SetupPhase uint8

const (
	PlacingFirstSettlement SetupPhase = iota
	PlacingFirstRoad
	PlacingSecondSettlement
	PlacingSecondRoad
	SetupCompleted
)

var setupNames = [...]string{
	"placing_first_settlement",
	"placing_first_road",
	"placing_second_settlement",
	"placing_second_road",
	"completed",
}

func (s SetupPhase) String() string {
	if int(s) < len(setupNames) {
		return setupNames[s]
	}
	return fmt.Sprintf("setup(%d)", s)
}

// round returns 1 or 2 for the placement round of s.
func (s SetupPhase) round() int {
	if s >= PlacingSecondSettlement {
		return 2
	}
	return 1
}

// PlacingSettlement reports whether the setup step expects a settlement.
func (s SetupPhase) PlacingSettlement() bool {
	return s == PlacingFirstSettlement || s == PlacingSecondSettlement
}

// PlacingRoad reports whether the setup step expects a road.
func (s SetupPhase) PlacingRoad() bool {
	return s == PlacingFirstRoad || s == PlacingSecondRoad
}

// OnSettlementPlacedInSetup advances from a settlement step to its road step.
func (g *Game) OnSettlementPlacedInSetup() {
	switch g.Setup {
	case PlacingFirstSettlement:
		g.Setup = PlacingFirstRoad
	case PlacingSecondSettlement:
		g.Setup = PlacingSecondRoad
	}
}

// OnRoadPlacedInSetup advances the snake order: the first round runs forward
// through the seats, the last seat then starts the second round, which runs
// backward. When seat 0 finishes its second road play begins with seat 0.
func (g *Game) OnRoadPlacedInSetup() {
	last := len(g.Players) - 1
	switch g.Setup {
	case PlacingFirstRoad:
		if g.Current < last {
			g.Current++
			g.Setup = PlacingFirstSettlement
		} else {
			g.Setup = PlacingSecondSettlement
		}
	case PlacingSecondRoad:
		if g.Current > 0 {
			g.Current--
			g.Setup = PlacingSecondSettlement
		} else {
			g.Setup = SetupCompleted
			g.Phase = PhasePlaying
			g.Current = 0
			slog.Info("setup complete", "id", g.ID)
			g.record(CategoryGame, "setup complete, %s starts", g.CurrentPlayer().Name)
		}
	}
}

// SetupPlaceSettlement is the checked setup intent for the current player.
// After the second-round settlement the player collects one card from every
// producing tile around it.
func (g *Game) SetupPlaceSettlement(v world.VertexKey) error {
	if g.Phase != PhaseSetup || !g.Setup.PlacingSettlement() {
		return fmt.Errorf("setup settlement during %s/%s: %w", g.Phase, g.Setup, ErrWrongPhase)
	}
	v = v.Canonical()
	p := g.CurrentPlayer()
	if !g.CanPlaceSettlement(v, true) {
		return fmt.Errorf("settlement at %v: %w", v, ErrIllegalMove)
	}

	round := g.Setup.round()
	g.PlaceSettlement(v, p)
	g.LastSettlement = &v
	g.OnSettlementPlacedInSetup()
	g.record(CategorySetup, "%s placed %s settlement at %v", p.Name, humanize.Ordinal(round), v)

	if g.Setup == PlacingSecondRoad {
		g.GrantInitialResources(v, p)
	}
	return nil
}

// SetupPlaceRoad is the checked setup intent for the current player. The
// road must touch the settlement placed just before it.
func (g *Game) SetupPlaceRoad(e world.EdgeKey) error {
	if g.Phase != PhaseSetup || !g.Setup.PlacingRoad() {
		return fmt.Errorf("setup road during %s/%s: %w", g.Phase, g.Setup, ErrWrongPhase)
	}
	if g.LastSettlement == nil {
		return fmt.Errorf("setup road without settlement: %w", ErrWrongPhase)
	}
	e = e.Canonical()
	allowed := false
	for _, c := range g.Board.SetupRoadEdges(*g.LastSettlement) {
		if c == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("road at %v: %w", e, ErrIllegalMove)
	}

	p := g.CurrentPlayer()
	round := g.Setup.round()
	g.PlaceRoad(e, p)
	g.LastSettlement = nil
	g.record(CategorySetup, "%s placed %s road at %v", p.Name, humanize.Ordinal(round), e)
	g.OnRoadPlacedInSetup()
	return nil
}

// SetupRoadOptions lists where the current setup road may go.
func (g *Game) SetupRoadOptions() []world.EdgeKey {
	if g.Phase != PhaseSetup || !g.Setup.PlacingRoad() || g.LastSettlement == nil {
		return nil
	}
	return g.Board.SetupRoadEdges(*g.LastSettlement)
}

// GrantInitialResources gives p one card per producing tile around v.
func (g *Game) GrantInitialResources(v world.VertexKey, p *Player) map[world.Resource]int {
	gained := make(map[world.Resource]int)
	for _, t := range g.Board.TilesAtVertex(v) {
		if t.Resource == world.ResourceDesert {
			continue
		}
		p.AddResource(t.Resource, 1)
		gained[t.Resource]++
	}
	if len(gained) > 0 {
		g.record(CategoryProduction, "%s collects %s", p.Name, describeCards(gained))
	}
	return gained
}
