// Dice-driven production: every tile whose token matches the roll pays out
// to the buildings on its corners.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/hexsettlers/internal/world"
)

// RobberRoll is the dice total that produces nothing.
const RobberRoll = 7

// Yield is what one player receives from one roll.
type Yield map[world.Resource]int

// DistributeResources pays out for roll. A 7 pays nothing. Tiles under the
// robber are skipped. Each adjacent settlement earns one card of the tile's
// resource, each city two. Returns the cards gained per player.
func (g *Game) DistributeResources(roll int) map[world.PlayerID]Yield {
	gains := make(map[world.PlayerID]Yield)
	if roll == RobberRoll {
		return gains
	}

	for _, t := range g.Board.TilesWithToken(roll) {
		if t.Robber {
			continue
		}
		for _, s := range g.Board.SettlementsOnTile(t.Coord) {
			amount := 1
			if s.City {
				amount = 2
			}
			owner := g.Player(s.Owner)
			if owner == nil {
				continue
			}
			owner.AddResource(t.Resource, amount)
			if gains[s.Owner] == nil {
				gains[s.Owner] = make(Yield)
			}
			gains[s.Owner][t.Resource] += amount
		}
	}

	for _, p := range g.Players {
		if y := gains[p.ID]; len(y) > 0 {
			g.record(CategoryProduction, "%s collects %s", p.Name, describeCards(y))
		}
	}
	return gains
}

// describeCards renders a card bundle as "2 ore, 1 wheat", sorted by resource.
func describeCards(cards map[world.Resource]int) string {
	kinds := make([]world.Resource, 0, len(cards))
	for r := range cards {
		kinds = append(kinds, r)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := make([]string, 0, len(kinds))
	for _, r := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", cards[r], r))
	}
	return strings.Join(parts, ", ")
}
