package autoplay

import (
	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

// Assessment holds signals derived from an observation. Deterministic and
// free: no requests are made.
type Assessment struct {
	Setup       bool
	Playing     bool
	Ended       bool
	Rolled      bool
	CanRoad     bool // Affordable, a piece left and a legal edge
	CanSettle   bool
	CanCity     bool
	HandSize    int
	Missing     []string // Resources the seat holds none of
	Leader      int      // Seat with the most victory points
	LeaderScore int
}

// Assess computes an Assessment from the observation.
func Assess(obs *Observation) *Assessment {
	g := obs.Game
	a := &Assessment{
		Setup:   g.Phase == engine.PhaseSetup.String(),
		Playing: g.Phase == engine.PhasePlaying.String(),
		Ended:   g.Phase == engine.PhaseEnded.String(),
		Rolled:  g.Rolled,
	}
	if len(g.Players) == 0 {
		return a
	}

	me := obs.Current()
	a.HandSize = lo.Sum(lo.Values(me.Resources))
	a.Missing = lo.FilterMap(world.TradeResources, func(r world.Resource, _ int) (string, bool) {
		return r.String(), me.Resources[r.String()] == 0
	})
	leader := lo.MaxBy(g.Players, func(x, y engine.PlayerView) bool { return x.VictoryPoints > y.VictoryPoints })
	a.Leader, a.LeaderScore = int(leader.ID), leader.VictoryPoints

	if a.Playing && a.Rolled {
		a.CanRoad = me.Roads > 0 && len(obs.Roads) > 0 && affords(me, engine.RoadCost)
		a.CanSettle = me.Settlements > 0 && len(obs.Settlements) > 0 && affords(me, engine.SettlementCost)
		a.CanCity = me.Cities > 0 && len(obs.Cities) > 0 && affords(me, engine.CityCost)
	}
	return a
}

func affords(p engine.PlayerView, c engine.Cost) bool {
	return lo.EveryBy(lo.Keys(c), func(r world.Resource) bool {
		return p.Resources[r.String()] >= c[r]
	})
}
