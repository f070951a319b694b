// Package world provides the hex board, its vertex/edge coordinate model, and
// placement legality. Uses axial coordinates (q, r) for tiles.
//
// Hexes are flat-topped. Screen y grows downward, the q axis points to the
// lower right and the r axis points straight down.
package world

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a malformed direction or coordinate.
var ErrInvalidArgument = errors.New("invalid argument")

// TileCoord represents a tile position using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type TileCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (c TileCoord) S() int {
	return -c.Q - c.R
}

func (c TileCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// Less orders coordinates by q, then r.
func (c TileCoord) Less(o TileCoord) bool {
	if c.Q != o.Q {
		return c.Q < o.Q
	}
	return c.R < o.R
}

// Direction indexes the six edges or six vertices of a tile, clockwise.
//
// Edges:    0=lower-right 1=bottom 2=lower-left 3=upper-left 4=top 5=upper-right
// Vertices: 0=right 1=lower-right 2=lower-left 3=left 4=upper-left 5=upper-right
//
// Vertex d sits between edge d-1 and edge d, so edge d runs from vertex d to
// vertex d+1.
type Direction int

// Valid reports whether d is in [0,6).
func (d Direction) Valid() bool {
	return d >= 0 && d < 6
}

// Next returns the direction one step clockwise.
func (d Direction) Next() Direction {
	return (d + 1) % 6
}

// Prev returns the direction one step counter-clockwise.
func (d Direction) Prev() Direction {
	return (d + 5) % 6
}

// Opposite returns the direction rotated by 180 degrees.
func (d Direction) Opposite() Direction {
	return (d + 3) % 6
}

// Add returns d rotated clockwise by n steps. n may be negative.
func (d Direction) Add(n int) Direction {
	return Direction(((int(d)+n)%6 + 6) % 6)
}

// ParseDirection validates a raw direction value.
func ParseDirection(n int) (Direction, error) {
	d := Direction(n)
	if !d.Valid() {
		return 0, fmt.Errorf("direction %d: %w", n, ErrInvalidArgument)
	}
	return d, nil
}

// EdgeOffsets gives the tile across each edge direction. It is the single
// topology table: vertex equivalents, adjacency and boundary detection are all
// derived from it.
var EdgeOffsets = [6]TileCoord{
	{Q: 1, R: 0},  // lower-right
	{Q: 0, R: 1},  // bottom
	{Q: -1, R: 1}, // lower-left
	{Q: -1, R: 0}, // upper-left
	{Q: 0, R: -1}, // top
	{Q: 1, R: -1}, // upper-right
}

// Neighbor returns the tile across edge d.
func (c TileCoord) Neighbor(d Direction) TileCoord {
	off := EdgeOffsets[d]
	return TileCoord{Q: c.Q + off.Q, R: c.R + off.R}
}

// Neighbors returns the six adjacent tile coordinates in edge order.
func (c TileCoord) Neighbors() [6]TileCoord {
	var result [6]TileCoord
	for d := Direction(0); d < 6; d++ {
		result[d] = c.Neighbor(d)
	}
	return result
}

// Rotate60 rotates c clockwise around the origin by k sixths of a turn.
func (c TileCoord) Rotate60(k int) TileCoord {
	k = ((k % 6) + 6) % 6
	q, r, s := c.Q, c.R, c.S()
	for i := 0; i < k; i++ {
		q, r, s = -r, -s, -q
	}
	return TileCoord{Q: q, R: r}
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b TileCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
