package world

import "sort"

// Legality queries return plain booleans: an illegal target is simply not
// offered to the player. The Place* mutations do not re-validate; callers must
// check the matching Can* query first or the board will be corrupted silently.

// CanPlaceSettlement reports whether owner may build a settlement on v.
// Outside the initial placement round the owner needs one of their roads on a
// side of v. The distance rule always applies: no neighbouring corner may hold
// a settlement or city.
func (b *Board) CanPlaceSettlement(v VertexKey, owner PlayerID, initial bool) bool {
	v = v.Canonical()
	if _, taken := b.Settlements[v]; taken {
		return false
	}
	if !b.HasVertex(v) {
		return false
	}

	if !initial {
		connected := false
		for _, e := range v.NeighborEdges() {
			if r := b.Roads[e]; r != nil && r.Owner == owner {
				connected = true
				break
			}
		}
		if !connected {
			return false
		}
	}

	for _, n := range v.NeighborVertices() {
		if _, taken := b.Settlements[n]; taken {
			return false
		}
	}
	return true
}

// CanPlaceRoad reports whether owner may build a road on e: the side must be
// free and touch the owner's settlement or continue one of their roads.
func (b *Board) CanPlaceRoad(e EdgeKey, owner PlayerID) bool {
	e = e.Canonical()
	if _, taken := b.Roads[e]; taken {
		return false
	}
	if !b.HasEdge(e) {
		return false
	}

	for _, v := range e.Endpoints() {
		if s := b.Settlements[v]; s != nil && s.Owner == owner {
			return true
		}
	}
	for _, n := range e.NeighborEdges() {
		if r := b.Roads[n]; r != nil && r.Owner == owner {
			return true
		}
	}
	return false
}

// CanUpgradeToCity reports whether v holds a plain settlement owned by owner.
func (b *Board) CanUpgradeToCity(v VertexKey, owner PlayerID) bool {
	s := b.Settlements[v.Canonical()]
	return s != nil && !s.City && s.Owner == owner
}

// PlaceSettlement puts a settlement on v without checking legality.
func (b *Board) PlaceSettlement(v VertexKey, owner PlayerID) *Settlement {
	v = v.Canonical()
	s := &Settlement{Vertex: v, Owner: owner}
	b.Settlements[v] = s
	return s
}

// PlaceRoad puts a road on e without checking legality.
func (b *Board) PlaceRoad(e EdgeKey, owner PlayerID) *Road {
	e = e.Canonical()
	r := &Road{Edge: e, Owner: owner}
	b.Roads[e] = r
	return r
}

// UpgradeToCity converts the settlement on v in place. It returns the
// upgraded settlement, or nil when v holds no plain settlement.
func (b *Board) UpgradeToCity(v VertexKey) *Settlement {
	s := b.Settlements[v.Canonical()]
	if s == nil || s.City {
		return nil
	}
	s.City = true
	return s
}

// LegalSettlementVertices lists every vertex where owner may build, sorted.
func (b *Board) LegalSettlementVertices(owner PlayerID, initial bool) []VertexKey {
	var out []VertexKey
	for _, v := range b.Vertices() {
		if b.CanPlaceSettlement(v, owner, initial) {
			out = append(out, v)
		}
	}
	return out
}

// LegalRoadEdges lists every edge where owner may build a road, sorted.
func (b *Board) LegalRoadEdges(owner PlayerID) []EdgeKey {
	var out []EdgeKey
	for _, e := range b.Edges() {
		if b.CanPlaceRoad(e, owner) {
			out = append(out, e)
		}
	}
	return out
}

// LegalCityVertices lists owner's plain settlements, sorted.
func (b *Board) LegalCityVertices(owner PlayerID) []VertexKey {
	var out []VertexKey
	for v, s := range b.Settlements {
		if s.Owner == owner && !s.City {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SetupRoadEdges lists the free on-board sides of v. During setup the road
// must leave the settlement that was just placed.
func (b *Board) SetupRoadEdges(v VertexKey) []EdgeKey {
	var out []EdgeKey
	for _, e := range v.NeighborEdges() {
		if _, taken := b.Roads[e]; taken {
			continue
		}
		if b.HasEdge(e) {
			out = append(out, e)
		}
	}
	return out
}
