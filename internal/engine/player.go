package engine

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/world"
)

// Piece allowances per player.
const (
	MaxSettlements = 5
	MaxCities      = 4
	MaxRoads       = 15
)

// WinningPoints is the victory point total that ends the game.
const WinningPoints = 10

// Color is a player's piece colour.
type Color uint8

const (
	ColorRed Color = iota
	ColorBlue
	ColorWhite
	ColorOrange
)

var colorNames = [...]string{"red", "blue", "white", "orange"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", c)
}

// DevCardType enumerates development cards. Cards are held but have no
// effect in this engine.
type DevCardType uint8

const (
	DevKnight DevCardType = iota
	DevVictoryPoint
	DevRoadBuilding
	DevYearOfPlenty
	DevMonopoly
)

// DevelopmentCard is one card in a player's hand.
type DevelopmentCard struct {
	Type   DevCardType `json:"type"`
	Played bool        `json:"played"`
}

// Cost is a bundle of resources.
type Cost map[world.Resource]int

// Build costs.
var (
	RoadCost       = Cost{world.ResourceWood: 1, world.ResourceBrick: 1}
	SettlementCost = Cost{world.ResourceWood: 1, world.ResourceBrick: 1, world.ResourceSheep: 1, world.ResourceWheat: 1}
	CityCost       = Cost{world.ResourceWheat: 2, world.ResourceOre: 3}
)

// Player is one seat at the table.
type Player struct {
	ID    world.PlayerID `json:"id"`
	Name  string         `json:"name"`
	Color Color          `json:"color"`

	// Resource cards held, never negative.
	Resources map[world.Resource]int `json:"resources"`

	// Pieces left in the box.
	Settlements int `json:"settlements"`
	Cities      int `json:"cities"`
	Roads       int `json:"roads"`

	VictoryPoints int               `json:"victory_points"`
	DevCards      []DevelopmentCard `json:"dev_cards,omitempty"`
}

// NewPlayer creates a player with a full box of pieces and no cards.
func NewPlayer(id world.PlayerID, name string, color Color) *Player {
	res := make(map[world.Resource]int, len(world.TradeResources))
	for _, r := range world.TradeResources {
		res[r] = 0
	}
	return &Player{
		ID:          id,
		Name:        name,
		Color:       color,
		Resources:   res,
		Settlements: MaxSettlements,
		Cities:      MaxCities,
		Roads:       MaxRoads,
	}
}

// AddResource gives the player n cards of r. The desert yields nothing.
func (p *Player) AddResource(r world.Resource, n int) {
	if r == world.ResourceDesert || n <= 0 {
		return
	}
	p.Resources[r] += n
}

// CanAfford reports whether the player holds every card in c.
func (p *Player) CanAfford(c Cost) bool {
	return lo.EveryBy(lo.Keys(c), func(r world.Resource) bool {
		return p.Resources[r] >= c[r]
	})
}

// Spend removes c from the player's hand. Callers check CanAfford first.
func (p *Player) Spend(c Cost) {
	for r, n := range c {
		p.Resources[r] -= n
	}
}

// TotalResources returns the number of resource cards held.
func (p *Player) TotalResources() int {
	return lo.Sum(lo.Values(p.Resources))
}
