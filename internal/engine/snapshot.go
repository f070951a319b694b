package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/world"
)

// TileView is a tile as clients see it.
type TileView struct {
	Q        int    `json:"q"`
	R        int    `json:"r"`
	Resource string `json:"resource"`
	Token    *int   `json:"token,omitempty"`
	Pips     int    `json:"pips"`
	Robber   bool   `json:"robber"`
}

// PortView is a harbour as clients see it.
type PortView struct {
	Edge  world.EdgeKey `json:"edge"`
	Type  string        `json:"type"`
	Ratio int           `json:"ratio"`
}

// PlayerView is a seat as clients see it.
type PlayerView struct {
	ID            world.PlayerID `json:"id"`
	Name          string         `json:"name"`
	Color         string         `json:"color"`
	Resources     map[string]int `json:"resources"`
	Cards         int            `json:"cards"`
	Settlements   int            `json:"settlements_left"`
	Cities        int            `json:"cities_left"`
	Roads         int            `json:"roads_left"`
	VictoryPoints int            `json:"victory_points"`
}

// Snapshot is the serializable state of a game.
type Snapshot struct {
	ID          string             `json:"id"`
	Seed        int64              `json:"seed"`
	Phase       string             `json:"phase"`
	Setup       string             `json:"setup"`
	Current     int                `json:"current"`
	Turn        int                `json:"turn"`
	Dice        int                `json:"dice"`
	Rolled      bool               `json:"rolled"`
	Winner      *world.PlayerID    `json:"winner,omitempty"`
	Tiles       []TileView         `json:"tiles"`
	Ports       []PortView         `json:"ports"`
	Players     []PlayerView       `json:"players"`
	Settlements []world.Settlement `json:"settlements"`
	Roads       []world.Road       `json:"roads"`
	Events      []Event            `json:"events"`
}

// Snapshot captures the game for clients. It shares no mutable state with
// g. Pieces are listed in key order.
func (g *Game) Snapshot() Snapshot {
	settlements := lo.MapToSlice(g.Board.Settlements, func(_ world.VertexKey, s *world.Settlement) world.Settlement {
		return *s
	})
	sortSettlements(settlements)
	roads := lo.MapToSlice(g.Board.Roads, func(_ world.EdgeKey, r *world.Road) world.Road {
		return *r
	})
	sortRoads(roads)

	var winner *world.PlayerID
	if g.Winner != nil {
		w := *g.Winner
		winner = &w
	}
	recent := g.RecentEvents(50)
	events := make([]Event, len(recent))
	copy(events, recent)

	return Snapshot{
		ID:      g.ID.String(),
		Seed:    g.Seed,
		Phase:   g.Phase.String(),
		Setup:   g.Setup.String(),
		Current: g.Current,
		Turn:    g.Turn,
		Dice:    g.Dice,
		Rolled:  g.Rolled,
		Winner:  winner,
		Tiles: lo.Map(g.Board.TileList(), func(t *world.Tile, _ int) TileView {
			var token *int
			if t.Token != nil {
				n := *t.Token
				token = &n
			}
			return TileView{
				Q:        t.Coord.Q,
				R:        t.Coord.R,
				Resource: t.Resource.String(),
				Token:    token,
				Pips:     t.Pips(),
				Robber:   t.Robber,
			}
		}),
		Ports: lo.Map(g.Board.Ports, func(p world.Port, _ int) PortView {
			return PortView{Edge: p.Edge(), Type: p.Type.String(), Ratio: p.Type.Ratio()}
		}),
		Players:     lo.Map(g.Players, func(p *Player, _ int) PlayerView { return p.View() }),
		Settlements: settlements,
		Roads:       roads,
		Events:      events,
	}
}

// View returns the client-facing form of p.
func (p *Player) View() PlayerView {
	return PlayerView{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color.String(),
		Resources: lo.MapKeys(p.Resources, func(_ int, r world.Resource) string {
			return r.String()
		}),
		Cards:         p.TotalResources(),
		Settlements:   p.Settlements,
		Cities:        p.Cities,
		Roads:         p.Roads,
		VictoryPoints: p.VictoryPoints,
	}
}

func sortSettlements(s []world.Settlement) {
	sort.Slice(s, func(i, j int) bool { return s[i].Vertex.Less(s[j].Vertex) })
}

func sortRoads(r []world.Road) {
	sort.Slice(r, func(i, j int) bool { return r[i].Edge.Less(r[j].Edge) })
}
