package world

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func TestGenerateTileComposition(t *testing.T) {
	b := Generate(DefaultGenConfig(), rand.New(rand.NewSource(1)))
	if len(b.Tiles) != 19 {
		t.Fatalf("got %d tiles, want 19", len(b.Tiles))
	}
	for _, c := range SpiralLayout {
		if !b.OnBoard(c) {
			t.Errorf("layout address %v missing", c)
		}
	}

	counts := make(map[Resource]int)
	var tokens []int
	for _, tile := range b.TileList() {
		counts[tile.Resource]++
		if tile.Resource == ResourceDesert {
			if tile.Token != nil {
				t.Error("desert carries a token")
			}
			if !tile.Robber {
				t.Error("robber not on the desert")
			}
			continue
		}
		if tile.Token == nil {
			t.Errorf("%v %s has no token", tile.Coord, tile.Resource)
			continue
		}
		if tile.Robber {
			t.Errorf("robber on %v", tile.Coord)
		}
		tokens = append(tokens, *tile.Token)
	}

	want := map[Resource]int{
		ResourceWood: 4, ResourceBrick: 3, ResourceSheep: 4,
		ResourceWheat: 4, ResourceOre: 3, ResourceDesert: 1,
	}
	for r, n := range want {
		if counts[r] != n {
			t.Errorf("%s: got %d tiles, want %d", r, counts[r], n)
		}
	}

	sort.Ints(tokens)
	wantTokens := []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}
	if len(tokens) != len(wantTokens) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(wantTokens))
	}
	for i := range tokens {
		if tokens[i] != wantTokens[i] {
			t.Fatalf("tokens = %v, want %v", tokens, wantTokens)
		}
	}
}

func TestSpiralTokensFollowSequence(t *testing.T) {
	b := fixedBoard(t)
	next := 0
	for i, c := range b.Order {
		if c != SpiralLayout[i] {
			t.Fatalf("unrotated order[%d] = %v, want %v", i, c, SpiralLayout[i])
		}
		tile := b.Get(c)
		if tile.Token == nil {
			continue
		}
		if *tile.Token != TokenSequence[next] {
			t.Errorf("tile %v token %d, want %d", c, *tile.Token, TokenSequence[next])
		}
		next++
	}
}

func TestShuffledTokensKeepMultiset(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Tokens = TokensShuffled
	b := Generate(cfg, rand.New(rand.NewSource(99)))
	sum := 0
	for _, tile := range b.TileList() {
		if tile.Token != nil {
			sum += *tile.Token
		}
	}
	want := 0
	for _, n := range TokenSequence {
		want += n
	}
	if sum != want {
		t.Errorf("token sum %d, want %d", sum, want)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(DefaultGenConfig(), rand.New(rand.NewSource(5)))
	b := Generate(DefaultGenConfig(), rand.New(rand.NewSource(5)))
	for i := range a.Order {
		if a.Order[i] != b.Order[i] || a.Get(a.Order[i]).Resource != b.Get(b.Order[i]).Resource {
			t.Fatalf("boards differ at %d", i)
		}
	}
	for i := range a.Ports {
		if a.Ports[i] != b.Ports[i] {
			t.Fatalf("ports differ at %d: %v vs %v", i, a.Ports[i], b.Ports[i])
		}
	}
}

func TestPortBalance(t *testing.T) {
	for _, shuffles := range []int{100, 0} {
		cfg := DefaultGenConfig()
		cfg.MaxPortShuffles = shuffles
		rng := rand.New(rand.NewSource(int64(1000 + shuffles)))
		for i := 0; i < 1000; i++ {
			b := Generate(cfg, rng)
			if err := ValidatePorts(b.Ports); err != nil {
				t.Fatalf("shuffles=%d board %d: %v", shuffles, i, err)
			}
			seen := make(map[EdgeKey]bool)
			for _, p := range b.Ports {
				if !b.IsBoundaryEdge(p.Edge()) {
					t.Fatalf("port %v is not on the coast", p)
				}
				if seen[p.Edge()] {
					t.Fatalf("two ports on %v", p.Edge())
				}
				seen[p.Edge()] = true
			}
		}
	}
}

func TestPortSlotsSpacing(t *testing.T) {
	b := fixedBoard(t)
	coast := b.BoundaryEdges()
	index := make(map[EdgeKey]int)
	for i, e := range coast {
		index[e] = i
	}
	slots := PortSlots(b)
	if len(slots) != 9 {
		t.Fatalf("got %d slots, want 9", len(slots))
	}
	for i := range slots {
		gap := (index[slots[(i+1)%9]] - index[slots[i]] + 30) % 30
		if gap != PortSkips[i] {
			t.Errorf("gap after slot %d = %d, want %d", i, gap, PortSkips[i])
		}
	}
}

func TestRepairPortsBreaksRuns(t *testing.T) {
	G := PortGeneric
	cases := [][]PortType{
		{G, G, G, G, PortWood, PortBrick, PortSheep, PortWheat, PortOre},
		{PortWood, PortBrick, PortSheep, PortWheat, PortOre, G, G, G, G},
		{G, PortWood, PortBrick, PortSheep, PortWheat, PortOre, G, G, G},
		{G, G, PortWood, PortBrick, PortSheep, PortWheat, PortOre, G, G},
	}
	for _, types := range cases {
		before := make(map[PortType]int)
		for _, p := range types {
			before[p]++
		}
		repairPorts(types)
		if i := genericRun(types); i >= 0 {
			t.Errorf("run left at %d: %v", i, types)
		}
		after := make(map[PortType]int)
		for _, p := range types {
			after[p]++
		}
		for k, n := range before {
			if after[k] != n {
				t.Errorf("repair changed the deck: %v", types)
			}
		}
	}
}

func TestValidatePortsRejects(t *testing.T) {
	ports := make([]Port, 9)
	for i := range ports {
		ports[i].Type = PortDeck[i]
	}
	if err := ValidatePorts(ports); !errors.Is(err, ErrPortLayout) {
		t.Errorf("four generic in a row: err = %v, want ErrPortLayout", err)
	}
	if err := ValidatePorts(ports[:8]); !errors.Is(err, ErrPortLayout) {
		t.Errorf("eight ports: err = %v, want ErrPortLayout", err)
	}
}

func TestParseTokenMode(t *testing.T) {
	if m, err := ParseTokenMode("shuffled"); err != nil || m != TokensShuffled {
		t.Errorf("ParseTokenMode(shuffled) = %v, %v", m, err)
	}
	if _, err := ParseTokenMode("bogus"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseTokenMode(bogus) err = %v", err)
	}
}
