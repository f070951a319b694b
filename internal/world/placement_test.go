package world

import "testing"

func TestDistanceRule(t *testing.T) {
	b := fixedBoard(t)
	v := VertexKey{0, 0, 0}
	if !b.CanPlaceSettlement(v, 0, true) {
		t.Fatal("empty interior vertex rejected")
	}
	b.PlaceSettlement(v, 0)

	if b.CanPlaceSettlement(VertexKey{1, -1, 2}, 1, true) {
		t.Error("occupied vertex accepted through another encoding")
	}
	for _, n := range v.NeighborVertices() {
		for _, eq := range n.Equivalents() {
			if b.CanPlaceSettlement(eq, 1, true) {
				t.Errorf("neighbour %v accepted next to %v", eq, v)
			}
		}
	}
	for _, far := range []VertexKey{{0, 0, 2}, {0, 0, 3}, {0, 0, 4}, {1, 0, 1}} {
		if !b.CanPlaceSettlement(far, 1, true) {
			t.Errorf("vertex %v two steps away rejected", far)
		}
	}
}

func TestSettlementNeedsRoadAfterSetup(t *testing.T) {
	b := fixedBoard(t)
	v := VertexKey{0, 0, 0}
	b.PlaceSettlement(v, 0)

	target := VertexKey{0, 0, 2}
	if b.CanPlaceSettlement(target, 0, false) {
		t.Fatal("settlement without a road accepted")
	}

	first := EdgeKey{0, 0, 0}
	if !b.CanPlaceRoad(first, 0) {
		t.Fatal("road from own settlement rejected")
	}
	if b.CanPlaceRoad(first, 1) {
		t.Error("road from another player's settlement accepted")
	}
	b.PlaceRoad(first, 0)
	if b.CanPlaceRoad(EdgeKey{1, 0, 3}, 0) {
		t.Error("occupied edge accepted through its other encoding")
	}

	second := EdgeKey{0, 0, 1}
	if !b.CanPlaceRoad(second, 0) {
		t.Fatal("road continuing own road rejected")
	}
	if b.CanPlaceRoad(second, 1) {
		t.Error("road continuing another player's road accepted")
	}
	b.PlaceRoad(EdgeKey{0, 1, 4}, 0) // same edge as second, other encoding
	if b.RoadAt(second) == nil {
		t.Fatal("road not stored under canonical key")
	}

	if !b.CanPlaceSettlement(target, 0, false) {
		t.Error("connected settlement rejected")
	}
	if b.CanPlaceSettlement(target, 1, false) {
		t.Error("settlement on another player's road accepted")
	}
}

func TestRoadRequiresConnection(t *testing.T) {
	b := fixedBoard(t)
	if b.CanPlaceRoad(EdgeKey{0, 0, 0}, 0) {
		t.Error("unconnected road accepted")
	}
	if b.CanPlaceRoad(EdgeKey{7, 7, 0}, 0) {
		t.Error("off-board road accepted")
	}
	if b.CanPlaceSettlement(VertexKey{7, 7, 0}, 0, true) {
		t.Error("off-board settlement accepted")
	}
}

func TestUpgradeToCity(t *testing.T) {
	b := fixedBoard(t)
	v := VertexKey{1, 0, 4}
	if b.CanUpgradeToCity(v, 0) {
		t.Error("upgrade of empty vertex allowed")
	}
	b.PlaceSettlement(v, 0)
	if got := b.LegalCityVertices(0); len(got) != 1 || got[0] != v.Canonical() {
		t.Errorf("city targets = %v", got)
	}
	if len(b.LegalCityVertices(1)) != 0 {
		t.Error("city targets offered to another player")
	}
	if b.CanUpgradeToCity(v, 1) {
		t.Error("upgrade of another player's settlement allowed")
	}
	if !b.CanUpgradeToCity(VertexKey{0, 0, 0}, 0) {
		t.Fatal("upgrade through another encoding refused")
	}
	s := b.UpgradeToCity(v)
	if s == nil || !s.City || s.VictoryPoints() != 2 {
		t.Fatalf("upgrade result %+v", s)
	}
	if b.UpgradeToCity(v) != nil {
		t.Error("city upgraded twice")
	}
	if b.CanUpgradeToCity(v, 0) {
		t.Error("city reported upgradable")
	}
	if len(b.LegalCityVertices(0)) != 0 {
		t.Error("city offered as a city target")
	}
}

func TestSettlementsOnTile(t *testing.T) {
	b := fixedBoard(t)
	b.PlaceSettlement(VertexKey{0, 0, 0}, 2)
	for _, c := range []TileCoord{{0, 0}, {1, -1}, {1, 0}} {
		got := b.SettlementsOnTile(c)
		if len(got) != 1 || got[0].Owner != 2 {
			t.Errorf("tile %v settlements = %v", c, got)
		}
	}
	if got := b.SettlementsOnTile(TileCoord{-1, 0}); len(got) != 0 {
		t.Errorf("unrelated tile has %d settlements", len(got))
	}
}

func TestLegalTargetsShrink(t *testing.T) {
	b := fixedBoard(t)
	all := b.LegalSettlementVertices(0, true)
	if len(all) != 54 {
		t.Fatalf("empty board offers %d vertices, want 54", len(all))
	}
	v := VertexKey{0, 0, 0}
	b.PlaceSettlement(v, 0)
	if got := len(b.LegalSettlementVertices(1, true)); got != 50 {
		t.Errorf("after one settlement %d vertices offered, want 50", got)
	}
	if got := len(b.SetupRoadEdges(v)); got != 3 {
		t.Errorf("setup road options = %d, want 3", got)
	}
	if got := len(b.LegalRoadEdges(0)); got != 3 {
		t.Errorf("legal roads = %d, want 3", got)
	}
	if got := len(b.LegalRoadEdges(1)); got != 0 {
		t.Errorf("legal roads for player without pieces = %d", got)
	}
}

func TestPortsFor(t *testing.T) {
	b := fixedBoard(t)
	p := b.Ports[0]
	corner := p.Vertices()[0]
	b.PlaceSettlement(corner, 3)
	got := b.PortsFor(3)
	if len(got) != 1 || got[0] != p {
		t.Errorf("PortsFor = %v, want [%v]", got, p)
	}
	if len(b.PortsFor(0)) != 0 {
		t.Error("player without buildings has ports")
	}
}

func TestRankSettlementVertices(t *testing.T) {
	b := fixedBoard(t)
	ranked := RankSettlementVertices(b, 0, true)
	if len(ranked) != 54 {
		t.Fatalf("ranked %d vertices, want 54", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
	if ranked[0].Pips == 0 {
		t.Error("best vertex produces nothing")
	}
}

func TestPips(t *testing.T) {
	tests := map[int]int{2: 1, 3: 2, 6: 5, 7: 0, 8: 5, 12: 1, 13: 0}
	for n, want := range tests {
		if got := Pips(n); got != want {
			t.Errorf("Pips(%d) = %d, want %d", n, got, want)
		}
	}
}
