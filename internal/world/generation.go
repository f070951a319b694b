// Board generation: fixed spiral layout, shuffled resources, number tokens
// and ports.
package world

import (
	"fmt"
	"log/slog"
	"math/rand"
)

// TokenMode selects how number tokens are dealt.
type TokenMode uint8

const (
	TokensSpiral   TokenMode = iota // Fixed sequence along the spiral, skipping the desert
	TokensShuffled                  // Random permutation of the same tokens
)

func (m TokenMode) String() string {
	if m == TokensShuffled {
		return "shuffled"
	}
	return "spiral"
}

// ParseTokenMode maps "spiral" or "shuffled" to a TokenMode.
func ParseTokenMode(s string) (TokenMode, error) {
	switch s {
	case "spiral", "":
		return TokensSpiral, nil
	case "shuffled":
		return TokensShuffled, nil
	}
	return 0, fmt.Errorf("token mode %q: %w", s, ErrInvalidArgument)
}

// GenConfig holds board generation parameters.
type GenConfig struct {
	Seed            int64     // Random seed (0 = random), used when no rng is injected
	Rotate          bool      // Start the spiral at a random corner
	Tokens          TokenMode // Number token dealing
	MaxPortShuffles int       // Reshuffles before the port repair pass
}

// DefaultGenConfig returns the standard setup.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:            0,
		Rotate:          true,
		Tokens:          TokensSpiral,
		MaxPortShuffles: 100,
	}
}

// SpiralLayout lists the 19 tile addresses: the outer ring clockwise from the
// top corner, the inner ring, then the centre.
var SpiralLayout = [19]TileCoord{
	{Q: 0, R: -2}, {Q: 1, R: -2}, {Q: 2, R: -2}, {Q: 2, R: -1},
	{Q: 2, R: 0}, {Q: 1, R: 1}, {Q: 0, R: 2}, {Q: -1, R: 2},
	{Q: -2, R: 2}, {Q: -2, R: 1}, {Q: -2, R: 0}, {Q: -1, R: -1},
	{Q: 0, R: -1}, {Q: 1, R: -1}, {Q: 1, R: 0},
	{Q: 0, R: 1}, {Q: -1, R: 1}, {Q: -1, R: 0},
	{Q: 0, R: 0},
}

// ResourceDeck is the resource multiset dealt onto the 19 tiles.
var ResourceDeck = [19]Resource{
	ResourceWood, ResourceWood, ResourceWood, ResourceWood,
	ResourceBrick, ResourceBrick, ResourceBrick,
	ResourceSheep, ResourceSheep, ResourceSheep, ResourceSheep,
	ResourceWheat, ResourceWheat, ResourceWheat, ResourceWheat,
	ResourceOre, ResourceOre, ResourceOre,
	ResourceDesert,
}

// TokenSequence is dealt along the spiral, skipping the desert.
var TokenSequence = [18]int{5, 2, 6, 3, 8, 10, 9, 12, 11, 4, 8, 10, 9, 4, 5, 6, 3, 11}

// Generate builds a new board. rng may be nil, in which case one is seeded
// from cfg.Seed.
func Generate(cfg GenConfig, rng *rand.Rand) *Board {
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	layout := SpiralLayout
	if cfg.Rotate {
		k := rng.Intn(6)
		for i, c := range layout {
			layout[i] = c.Rotate60(k)
		}
		slog.Debug("board rotated", "sixths", k)
	}

	resources := ResourceDeck
	rng.Shuffle(len(resources), func(i, j int) {
		resources[i], resources[j] = resources[j], resources[i]
	})

	tokens := TokenSequence
	if cfg.Tokens == TokensShuffled {
		rng.Shuffle(len(tokens), func(i, j int) {
			tokens[i], tokens[j] = tokens[j], tokens[i]
		})
	}

	tiles := make([]*Tile, 0, len(layout))
	next := 0
	for i, c := range layout {
		var token *int
		if resources[i] != ResourceDesert {
			n := tokens[next]
			token = &n
			next++
		}
		tiles = append(tiles, NewTile(c, resources[i], token))
	}

	b := NewBoard(tiles)
	b.Ports = PlacePorts(b, rng, cfg.MaxPortShuffles)
	return b
}
