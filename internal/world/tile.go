package world

import "fmt"

// Resource enumerates what a tile produces.
type Resource uint8

const (
	ResourceWood   Resource = iota // Forest
	ResourceBrick                  // Hills
	ResourceSheep                  // Pasture
	ResourceWheat                  // Fields
	ResourceOre                    // Mountains
	ResourceDesert                 // Produces nothing, starts with the robber
)

// TradeResources lists every resource a player can hold, in display order.
var TradeResources = []Resource{ResourceWood, ResourceBrick, ResourceSheep, ResourceWheat, ResourceOre}

var resourceNames = [...]string{"wood", "brick", "sheep", "wheat", "ore", "desert"}

func (r Resource) String() string {
	if int(r) < len(resourceNames) {
		return resourceNames[r]
	}
	return fmt.Sprintf("resource(%d)", r)
}

// ParseResource maps a name back to a Resource.
func ParseResource(s string) (Resource, error) {
	for i, n := range resourceNames {
		if n == s {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("resource %q: %w", s, ErrInvalidArgument)
}

// Tile is one hex of the board.
type Tile struct {
	Coord    TileCoord `json:"coord"`
	Resource Resource  `json:"resource"`
	Token    *int      `json:"token,omitempty"` // nil iff desert
	Robber   bool      `json:"robber"`
}

// NewTile creates a tile. The robber starts on the desert.
func NewTile(c TileCoord, res Resource, token *int) *Tile {
	return &Tile{
		Coord:    c,
		Resource: res,
		Token:    token,
		Robber:   res == ResourceDesert,
	}
}

// HasToken reports whether the tile produces on roll n.
func (t *Tile) HasToken(n int) bool {
	return t.Token != nil && *t.Token == n
}

// Pips returns the number of two-dice combinations that roll the tile's token.
func (t *Tile) Pips() int {
	if t.Token == nil {
		return 0
	}
	return Pips(*t.Token)
}

// Pips returns how many of the 36 two-dice outcomes sum to n.
func Pips(n int) int {
	if n < 2 || n > 12 || n == 7 {
		return 0
	}
	return 6 - abs(7-n)
}

// PortType is the kind of harbour on a boundary edge.
type PortType uint8

const (
	PortGeneric PortType = iota // 3:1 any resource
	PortWood
	PortBrick
	PortSheep
	PortWheat
	PortOre
)

var portNames = [...]string{"generic", "wood", "brick", "sheep", "wheat", "ore"}

func (p PortType) String() string {
	if int(p) < len(portNames) {
		return portNames[p]
	}
	return fmt.Sprintf("port(%d)", p)
}

// Ratio returns how many cards of one kind trade for one card at this port.
func (p PortType) Ratio() int {
	if p == PortGeneric {
		return 3
	}
	return 2
}

// Resource returns the resource a specific port trades, and false for generic
// ports.
func (p PortType) Resource() (Resource, bool) {
	if p == PortGeneric || p > PortOre {
		return 0, false
	}
	return Resource(p - 1), true
}

// Port is a harbour on one boundary edge, named from the on-board tile.
type Port struct {
	Coord TileCoord `json:"coord"`
	Dir   Direction `json:"dir"`
	Type  PortType  `json:"type"`
}

// Edge returns the canonical edge the port sits on.
func (p Port) Edge() EdgeKey {
	return edgeOn(p.Coord, p.Dir).Canonical()
}

// Vertices returns the two corners from which the port can be used.
func (p Port) Vertices() [2]VertexKey {
	return p.Edge().Endpoints()
}
