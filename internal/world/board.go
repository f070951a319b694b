package world

import (
	"fmt"
	"math"
	"sort"
)

// PlayerID identifies a seat at the table. It is the player's index in the
// game's turn order.
type PlayerID int

// Settlement is a settlement or city on a canonical vertex.
type Settlement struct {
	Vertex VertexKey `json:"vertex"`
	Owner  PlayerID  `json:"owner"`
	City   bool      `json:"city"`
}

// VictoryPoints returns 2 for a city, 1 otherwise.
func (s *Settlement) VictoryPoints() int {
	if s.City {
		return 2
	}
	return 1
}

// Road is a road on a canonical edge.
type Road struct {
	Edge  EdgeKey  `json:"edge"`
	Owner PlayerID `json:"owner"`
}

// Board holds the tiles, ports and every piece placed on them.
// Settlement and road maps are keyed by canonical keys only; every accessor
// canonicalizes its argument first.
type Board struct {
	Tiles       map[TileCoord]*Tile
	Order       []TileCoord // Layout order, outer ring first
	Ports       []Port
	Settlements map[VertexKey]*Settlement
	Roads       map[EdgeKey]*Road
}

// NewBoard creates an empty board over the given tiles.
func NewBoard(tiles []*Tile) *Board {
	b := &Board{
		Tiles:       make(map[TileCoord]*Tile, len(tiles)),
		Order:       make([]TileCoord, 0, len(tiles)),
		Settlements: make(map[VertexKey]*Settlement),
		Roads:       make(map[EdgeKey]*Road),
	}
	for _, t := range tiles {
		b.Tiles[t.Coord] = t
		b.Order = append(b.Order, t.Coord)
	}
	return b
}

// Get returns the tile at c, or nil if c is off the board.
func (b *Board) Get(c TileCoord) *Tile {
	return b.Tiles[c]
}

// OnBoard reports whether c is a tile of this board.
func (b *Board) OnBoard(c TileCoord) bool {
	_, ok := b.Tiles[c]
	return ok
}

// TileList returns the tiles in layout order.
func (b *Board) TileList() []*Tile {
	out := make([]*Tile, 0, len(b.Order))
	for _, c := range b.Order {
		out = append(out, b.Tiles[c])
	}
	return out
}

// TilesAtVertex returns the on-board tiles touching v: three for interior
// corners, fewer on the coast.
func (b *Board) TilesAtVertex(v VertexKey) []*Tile {
	var out []*Tile
	for _, c := range v.Tiles() {
		if t := b.Tiles[c]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// TilesAtEdge returns the on-board tiles on either side of e.
func (b *Board) TilesAtEdge(e EdgeKey) []*Tile {
	var out []*Tile
	for _, c := range e.Tiles() {
		if t := b.Tiles[c]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// HasVertex reports whether v touches at least one tile of the board.
func (b *Board) HasVertex(v VertexKey) bool {
	for _, c := range v.Tiles() {
		if b.OnBoard(c) {
			return true
		}
	}
	return false
}

// HasEdge reports whether e borders at least one tile of the board.
func (b *Board) HasEdge(e EdgeKey) bool {
	for _, c := range e.Tiles() {
		if b.OnBoard(c) {
			return true
		}
	}
	return false
}

// IsBoundaryEdge reports whether exactly one side of e is on the board.
func (b *Board) IsBoundaryEdge(e EdgeKey) bool {
	t := e.Tiles()
	return b.OnBoard(t[0]) != b.OnBoard(t[1])
}

// Vertices returns every canonical vertex of the board, sorted.
func (b *Board) Vertices() []VertexKey {
	seen := make(map[VertexKey]bool)
	var out []VertexKey
	for _, c := range b.Order {
		for d := Direction(0); d < 6; d++ {
			v := vertexOn(c, d).Canonical()
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Edges returns every canonical edge of the board, sorted.
func (b *Board) Edges() []EdgeKey {
	seen := make(map[EdgeKey]bool)
	var out []EdgeKey
	for _, c := range b.Order {
		for d := Direction(0); d < 6; d++ {
			e := edgeOn(c, d).Canonical()
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// BoundaryEdges returns the coastline as (on-board tile, direction) pairs in
// clockwise order, starting with the first edge clockwise from straight up.
func (b *Board) BoundaryEdges() []EdgeKey {
	type entry struct {
		edge  EdgeKey
		angle float64
	}
	var coast []entry
	for _, c := range b.Order {
		for d := Direction(0); d < 6; d++ {
			if b.OnBoard(c.Neighbor(d)) {
				continue
			}
			coast = append(coast, entry{edge: edgeOn(c, d), angle: edgeAngle(c, d)})
		}
	}
	sort.Slice(coast, func(i, j int) bool { return coast[i].angle < coast[j].angle })
	out := make([]EdgeKey, len(coast))
	for i, c := range coast {
		out[i] = c.edge
	}
	return out
}

// edgeAngle returns the clockwise screen angle of the midpoint of edge d of
// tile c, measured from straight up, in [0, 2π).
func edgeAngle(c TileCoord, d Direction) float64 {
	// Flat-top centre: x = 3/2 q, y = √3 (r + q/2). Edge normals sit at
	// 30° + 60°·d, clockwise from the +x axis.
	x := 1.5 * float64(c.Q)
	y := math.Sqrt(3) * (float64(c.R) + float64(c.Q)/2)
	normal := (30 + 60*float64(d)) * math.Pi / 180
	apothem := math.Sqrt(3) / 2
	mx := x + apothem*math.Cos(normal)
	my := y + apothem*math.Sin(normal)
	a := math.Atan2(my, mx) + math.Pi/2
	if a < 0 {
		a += 2 * math.Pi
	}
	// Snap float noise around straight up back to zero.
	if a >= 2*math.Pi-1e-9 {
		a = 0
	}
	return a
}

// SettlementAt returns the settlement on v, or nil.
func (b *Board) SettlementAt(v VertexKey) *Settlement {
	return b.Settlements[v.Canonical()]
}

// RoadAt returns the road on e, or nil.
func (b *Board) RoadAt(e EdgeKey) *Road {
	return b.Roads[e.Canonical()]
}

// SettlementsOnTile returns the settlements and cities on the corners of c,
// in corner direction order.
func (b *Board) SettlementsOnTile(c TileCoord) []*Settlement {
	var out []*Settlement
	for d := Direction(0); d < 6; d++ {
		if s := b.Settlements[vertexOn(c, d).Canonical()]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// TilesWithToken returns the tiles carrying number token n, in layout order.
func (b *Board) TilesWithToken(n int) []*Tile {
	var out []*Tile
	for _, c := range b.Order {
		if t := b.Tiles[c]; t.HasToken(n) {
			out = append(out, t)
		}
	}
	return out
}

// RobberTile returns the tile the robber is on, or nil.
func (b *Board) RobberTile() *Tile {
	for _, c := range b.Order {
		if t := b.Tiles[c]; t.Robber {
			return t
		}
	}
	return nil
}

// PortsFor returns the ports touching any settlement or city owned by owner.
func (b *Board) PortsFor(owner PlayerID) []Port {
	var out []Port
	for _, p := range b.Ports {
		for _, v := range p.Vertices() {
			if s := b.Settlements[v]; s != nil && s.Owner == owner {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// String returns a summary of the board.
func (b *Board) String() string {
	return fmt.Sprintf("Board(tiles=%d, ports=%d, settlements=%d, roads=%d)",
		len(b.Tiles), len(b.Ports), len(b.Settlements), len(b.Roads))
}
