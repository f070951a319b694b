package world

import "fmt"

// VertexKey names a tile corner as (tile, vertex direction). Every interior
// corner is shared by three tiles and so has three encodings; Canonical picks
// the one used for identity.
type VertexKey struct {
	Q   int       `json:"q"`
	R   int       `json:"r"`
	Dir Direction `json:"dir"`
}

// NewVertexKey builds a vertex key, rejecting directions outside [0,6).
func NewVertexKey(q, r, dir int) (VertexKey, error) {
	d, err := ParseDirection(dir)
	if err != nil {
		return VertexKey{}, fmt.Errorf("vertex: %w", err)
	}
	return VertexKey{Q: q, R: r, Dir: d}, nil
}

// Tile returns the home tile of this encoding.
func (v VertexKey) Tile() TileCoord {
	return TileCoord{Q: v.Q, R: v.R}
}

func (v VertexKey) String() string {
	return fmt.Sprintf("v(%d,%d,%d)", v.Q, v.R, v.Dir)
}

// Less orders keys by q, then r, then direction.
func (v VertexKey) Less(o VertexKey) bool {
	if v.Q != o.Q {
		return v.Q < o.Q
	}
	if v.R != o.R {
		return v.R < o.R
	}
	return v.Dir < o.Dir
}

func vertexOn(c TileCoord, d Direction) VertexKey {
	return VertexKey{Q: c.Q, R: c.R, Dir: d}
}

// Equivalents returns the three encodings of the same corner: v itself, the
// tile across edge d-1 (where the corner is at d+2) and the tile across edge d
// (where it is at d+4).
func (v VertexKey) Equivalents() [3]VertexKey {
	if !v.Dir.Valid() {
		panic(fmt.Sprintf("world: %v has invalid direction", v))
	}
	home := v.Tile()
	return [3]VertexKey{
		v,
		vertexOn(home.Neighbor(v.Dir.Prev()), v.Dir.Add(2)),
		vertexOn(home.Neighbor(v.Dir), v.Dir.Add(4)),
	}
}

// Canonical returns the lexicographically smallest equivalent encoding.
func (v VertexKey) Canonical() VertexKey {
	eq := v.Equivalents()
	best := eq[0]
	for _, c := range eq[1:] {
		if c.Less(best) {
			best = c
		}
	}
	return best
}

// IsCanonical reports whether v is already in canonical form.
func (v VertexKey) IsCanonical() bool {
	return v.Dir.Valid() && v.Canonical() == v
}
