package world

import (
	"math/rand"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	StrictInvariants = true
	os.Exit(m.Run())
}

// fixedBoard returns an unrotated board with spiral tokens from a fixed seed.
func fixedBoard(t *testing.T) *Board {
	t.Helper()
	cfg := DefaultGenConfig()
	cfg.Rotate = false
	return Generate(cfg, rand.New(rand.NewSource(7)))
}

// sweep visits every (tile, direction) pair within radius 4 of the origin.
func sweep(fn func(q, r int, d Direction)) {
	for q := -4; q <= 4; q++ {
		for r := -4; r <= 4; r++ {
			for d := Direction(0); d < 6; d++ {
				fn(q, r, d)
			}
		}
	}
}

func TestDirectionArithmetic(t *testing.T) {
	for d := Direction(0); d < 6; d++ {
		if d.Next().Prev() != d {
			t.Errorf("Next/Prev of %d not inverse", d)
		}
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite of %d not an involution", d)
		}
		if d.Add(-7) != d.Prev() {
			t.Errorf("Add(-7) of %d = %d, want %d", d, d.Add(-7), d.Prev())
		}
	}
}

func TestParseDirectionRejectsOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 6, 42} {
		if _, err := ParseDirection(n); err == nil {
			t.Errorf("ParseDirection(%d) succeeded, want error", n)
		}
		if _, err := NewVertexKey(0, 0, n); err == nil {
			t.Errorf("NewVertexKey(0,0,%d) succeeded, want error", n)
		}
		if _, err := NewEdgeKey(0, 0, n); err == nil {
			t.Errorf("NewEdgeKey(0,0,%d) succeeded, want error", n)
		}
	}
	if _, err := NewVertexKey(1, -1, 5); err != nil {
		t.Errorf("NewVertexKey valid direction: %v", err)
	}
}

func TestEdgeOffsetsAreOpposite(t *testing.T) {
	for d := Direction(0); d < 6; d++ {
		a, b := EdgeOffsets[d], EdgeOffsets[d.Opposite()]
		if a.Q+b.Q != 0 || a.R+b.R != 0 {
			t.Errorf("offset %d and its opposite do not cancel: %v %v", d, a, b)
		}
		if Distance(TileCoord{}, a) != 1 {
			t.Errorf("offset %d is not a unit step", d)
		}
	}
}

func TestRotate60(t *testing.T) {
	c := TileCoord{Q: 0, R: -2}
	if got := c.Rotate60(1); got != (TileCoord{Q: 2, R: -2}) {
		t.Errorf("Rotate60(1) of top corner = %v, want (2,-2)", got)
	}
	if got := c.Rotate60(6); got != c {
		t.Errorf("Rotate60(6) = %v, want identity", got)
	}
	if got := c.Rotate60(-1); got != c.Rotate60(5) {
		t.Errorf("Rotate60(-1) = %v, want %v", got, c.Rotate60(5))
	}
	if Distance(TileCoord{}, c.Rotate60(3)) != 2 {
		t.Error("rotation changed the ring")
	}
}

func TestVertexCanonicalKnownValues(t *testing.T) {
	tests := []struct {
		in, want VertexKey
	}{
		{VertexKey{0, 0, 0}, VertexKey{0, 0, 0}},
		{VertexKey{1, -1, 2}, VertexKey{0, 0, 0}},
		{VertexKey{1, 0, 4}, VertexKey{0, 0, 0}},
		{VertexKey{0, 0, 3}, VertexKey{-1, 0, 1}},
		{VertexKey{-1, 1, 5}, VertexKey{-1, 0, 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Canonical(); got != tt.want {
			t.Errorf("%v.Canonical() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEdgeCanonicalKnownValues(t *testing.T) {
	tests := []struct {
		in, want EdgeKey
	}{
		{EdgeKey{0, 0, 0}, EdgeKey{0, 0, 0}},
		{EdgeKey{1, 0, 3}, EdgeKey{0, 0, 0}},
		{EdgeKey{0, 0, 3}, EdgeKey{-1, 0, 0}},
		{EdgeKey{0, -1, 1}, EdgeKey{0, -1, 1}},
		{EdgeKey{0, 0, 4}, EdgeKey{0, -1, 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Canonical(); got != tt.want {
			t.Errorf("%v.Canonical() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalIdempotentAndEncodingIndependent(t *testing.T) {
	sweep(func(q, r int, d Direction) {
		v := VertexKey{q, r, d}
		c := v.Canonical()
		if c.Canonical() != c {
			t.Errorf("vertex %v: canonical %v not idempotent", v, c)
		}
		if !c.IsCanonical() {
			t.Errorf("vertex %v: IsCanonical false for %v", v, c)
		}
		for _, eq := range v.Equivalents() {
			if eq.Canonical() != c {
				t.Errorf("vertex %v: equivalent %v canonicalizes to %v, want %v", v, eq, eq.Canonical(), c)
			}
		}
		if err := VerifyVertex(v); err != nil {
			t.Error(err)
		}

		e := EdgeKey{q, r, d}
		ce := e.Canonical()
		if ce.Canonical() != ce {
			t.Errorf("edge %v: canonical %v not idempotent", e, ce)
		}
		for _, eq := range e.Equivalents() {
			if eq.Canonical() != ce {
				t.Errorf("edge %v: equivalent %v canonicalizes to %v, want %v", e, eq, eq.Canonical(), ce)
			}
		}
		if err := VerifyEdge(e); err != nil {
			t.Error(err)
		}
	})
}

func TestEquivalentsAreDistinct(t *testing.T) {
	v := VertexKey{2, -1, 4}
	seen := make(map[VertexKey]bool)
	for _, eq := range v.Equivalents() {
		seen[eq] = true
	}
	if len(seen) != 3 {
		t.Errorf("vertex has %d distinct encodings, want 3", len(seen))
	}
	e := EdgeKey{2, -1, 4}
	if eq := e.Equivalents(); eq[0] == eq[1] {
		t.Error("edge encodings collapse")
	}
}

func TestInvalidDirectionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Canonical on invalid direction did not panic")
		}
	}()
	VertexKey{0, 0, 9}.Canonical()
}

func TestBoardEnumeration(t *testing.T) {
	b := fixedBoard(t)
	if n := len(b.Vertices()); n != 54 {
		t.Errorf("board has %d vertices, want 54", n)
	}
	if n := len(b.Edges()); n != 72 {
		t.Errorf("board has %d edges, want 72", n)
	}
	coast := b.BoundaryEdges()
	if len(coast) != 30 {
		t.Fatalf("board has %d coast edges, want 30", len(coast))
	}
	if coast[0] != (EdgeKey{0, -2, 4}) {
		t.Errorf("coast starts at %v, want top edge of (0,-2)", coast[0])
	}
	seen := make(map[EdgeKey]bool)
	for _, e := range coast {
		if !b.IsBoundaryEdge(e) {
			t.Errorf("%v is not a boundary edge", e)
		}
		if !b.OnBoard(e.Tile()) {
			t.Errorf("%v is not named from its on-board tile", e)
		}
		if seen[e.Canonical()] {
			t.Errorf("%v listed twice", e)
		}
		seen[e.Canonical()] = true
	}
}

func TestStrictInvariantsPanic(t *testing.T) {
	err := &InvariantError{Key: "(0,0)/0", Detail: "test"}

	StrictInvariants = false
	reportInvariant(err) // logged only
	StrictInvariants = true

	defer func() {
		if recover() == nil {
			t.Error("strict mode did not panic")
		}
	}()
	reportInvariant(err)
}
