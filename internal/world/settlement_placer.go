// Settlement placement advice: scores open corners so hints and automated
// seats can pick a spot.
package world

import (
	"sort"
)

// VertexScore is a candidate corner with its desirability.
type VertexScore struct {
	Vertex VertexKey `json:"vertex"`
	Pips   int       `json:"pips"`  // Expected production per 36 rolls
	Score  float64   `json:"score"` // Pips plus diversity and port bonuses
}

// RankSettlementVertices scores every legal corner for owner, best first.
// Prefers: high production, varied resources, access to a port.
func RankSettlementVertices(b *Board, owner PlayerID, initial bool) []VertexScore {
	portCorners := make(map[VertexKey]PortType)
	for _, p := range b.Ports {
		for _, v := range p.Vertices() {
			portCorners[v] = p.Type
		}
	}

	var out []VertexScore
	for _, v := range b.LegalSettlementVertices(owner, initial) {
		out = append(out, scoreVertex(b, v, portCorners))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Vertex.Less(out[j].Vertex)
	})
	return out
}

func scoreVertex(b *Board, v VertexKey, portCorners map[VertexKey]PortType) VertexScore {
	pips := 0
	kinds := make(map[Resource]bool)
	for _, t := range b.TilesAtVertex(v) {
		if t.Robber {
			continue
		}
		pips += t.Pips()
		if t.Resource != ResourceDesert {
			kinds[t.Resource] = true
		}
	}

	score := float64(pips)
	// Bonus for resource diversity.
	score += float64(len(kinds)) * 0.5

	// Bonus for harbour access.
	if pt, ok := portCorners[v]; ok {
		if pt == PortGeneric {
			score += 0.5
		} else {
			score += 1.0
		}
	}

	return VertexScore{Vertex: v, Pips: pips, Score: score}
}
