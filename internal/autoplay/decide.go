package autoplay

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

// Action names an intent the bot can post.
type Action string

const (
	ActionNone    Action = "none"
	ActionSettle  Action = "settlement"
	ActionRoad    Action = "road"
	ActionCity    Action = "city"
	ActionRoll    Action = "roll"
	ActionEndTurn Action = "end_turn"
)

// Target addresses a corner or edge in any of its encodings.
type Target struct {
	Q   int `json:"q"`
	R   int `json:"r"`
	Dir int `json:"dir"`
}

func vertexTarget(v world.VertexKey) *Target { return &Target{v.Q, v.R, int(v.Dir)} }
func edgeTarget(e world.EdgeKey) *Target     { return &Target{e.Q, e.R, int(e.Dir)} }

// Decision is the outcome of one decide step.
type Decision struct {
	Action    Action
	Target    *Target
	Rationale string
}

// Decide picks the next intent for the seat to move.
// Order of preference once rolled: city, settlement, road toward the best
// open corner, end turn.
func Decide(obs *Observation, mem *Memory) Decision {
	a := Assess(obs)
	switch {
	case a.Ended:
		return Decision{Action: ActionNone, Rationale: "game over"}
	case a.Setup:
		return decideSetup(obs)
	case !a.Rolled:
		return Decision{Action: ActionRoll, Rationale: "start of turn"}
	}

	if a.CanCity {
		v := bestCity(obs)
		if !mem.Failed(ActionCity, v) {
			return Decision{Action: ActionCity, Target: v, Rationale: "upgrade the most productive settlement"}
		}
	}
	if a.CanSettle && len(obs.Suggestions) > 0 {
		best := obs.Suggestions[0]
		v := vertexTarget(best.Vertex)
		if !mem.Failed(ActionSettle, v) {
			return Decision{
				Action:    ActionSettle,
				Target:    v,
				Rationale: fmt.Sprintf("best open corner, %d pips", best.Pips),
			}
		}
	}
	// Only extend the network when there is nowhere to settle yet.
	if a.CanRoad && len(obs.Settlements) == 0 {
		e := edgeTarget(obs.Roads[0])
		if !mem.Failed(ActionRoad, e) {
			return Decision{Action: ActionRoad, Target: e, Rationale: "extend toward open land"}
		}
	}

	slog.Debug("nothing to build", "seat", obs.Game.Current, "hand", a.HandSize, "missing", a.Missing)
	return Decision{Action: ActionEndTurn, Rationale: "nothing affordable"}
}

func decideSetup(obs *Observation) Decision {
	if len(obs.Suggestions) > 0 {
		best := obs.Suggestions[0]
		return Decision{
			Action:    ActionSettle,
			Target:    vertexTarget(best.Vertex),
			Rationale: fmt.Sprintf("opening on %d pips", best.Pips),
		}
	}
	if len(obs.Roads) > 0 {
		return Decision{Action: ActionRoad, Target: edgeTarget(obs.Roads[0]), Rationale: "setup road"}
	}
	return Decision{Action: ActionNone, Rationale: "no setup target offered"}
}

// bestCity picks the settlement sitting on the most pips, ignoring the tile
// under the robber.
func bestCity(obs *Observation) *Target {
	pips := lo.SliceToMap(obs.Game.Tiles, func(t engine.TileView) (world.TileCoord, int) {
		if t.Robber {
			return world.TileCoord{Q: t.Q, R: t.R}, 0
		}
		return world.TileCoord{Q: t.Q, R: t.R}, t.Pips
	})
	best := lo.MaxBy(obs.Cities, func(x, y world.VertexKey) bool {
		return cornerPips(x, pips) > cornerPips(y, pips)
	})
	return vertexTarget(best)
}

func cornerPips(v world.VertexKey, pips map[world.TileCoord]int) int {
	tiles := v.Tiles()
	return lo.SumBy(tiles[:], func(c world.TileCoord) int { return pips[c] })
}
