package world

import "fmt"

// EdgeKey names a tile side as (tile, edge direction). Every side is shared by
// two tiles and so has two encodings.
type EdgeKey struct {
	Q   int       `json:"q"`
	R   int       `json:"r"`
	Dir Direction `json:"dir"`
}

// NewEdgeKey builds an edge key, rejecting directions outside [0,6).
func NewEdgeKey(q, r, dir int) (EdgeKey, error) {
	d, err := ParseDirection(dir)
	if err != nil {
		return EdgeKey{}, fmt.Errorf("edge: %w", err)
	}
	return EdgeKey{Q: q, R: r, Dir: d}, nil
}

// Tile returns the home tile of this encoding.
func (e EdgeKey) Tile() TileCoord {
	return TileCoord{Q: e.Q, R: e.R}
}

func (e EdgeKey) String() string {
	return fmt.Sprintf("e(%d,%d,%d)", e.Q, e.R, e.Dir)
}

// Less orders keys by q, then r, then direction.
func (e EdgeKey) Less(o EdgeKey) bool {
	if e.Q != o.Q {
		return e.Q < o.Q
	}
	if e.R != o.R {
		return e.R < o.R
	}
	return e.Dir < o.Dir
}

func edgeOn(c TileCoord, d Direction) EdgeKey {
	return EdgeKey{Q: c.Q, R: c.R, Dir: d}
}

// Equivalents returns both encodings of the side: e itself and the opposite
// side of the tile across it.
func (e EdgeKey) Equivalents() [2]EdgeKey {
	if !e.Dir.Valid() {
		panic(fmt.Sprintf("world: %v has invalid direction", e))
	}
	return [2]EdgeKey{
		e,
		edgeOn(e.Tile().Neighbor(e.Dir), e.Dir.Opposite()),
	}
}

// Canonical returns the lexicographically smaller of the two encodings.
func (e EdgeKey) Canonical() EdgeKey {
	eq := e.Equivalents()
	if eq[1].Less(eq[0]) {
		return eq[1]
	}
	return eq[0]
}

// IsCanonical reports whether e is already in canonical form.
func (e EdgeKey) IsCanonical() bool {
	return e.Dir.Valid() && e.Canonical() == e
}
