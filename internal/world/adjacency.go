package world

// Adjacency is derived from EdgeOffsets and the direction arithmetic alone;
// there is no stored mesh. Inputs are canonicalized first and every result is
// canonical, so callers get the same answer whichever encoding they start from.

// NeighborVertices returns the three corners one edge away from v.
func (v VertexKey) NeighborVertices() [3]VertexKey {
	v = v.Canonical()
	home := v.Tile()
	return [3]VertexKey{
		vertexOn(home, v.Dir.Next()).Canonical(),
		vertexOn(home, v.Dir.Prev()).Canonical(),
		vertexOn(home.Neighbor(v.Dir.Prev()), v.Dir.Next()).Canonical(),
	}
}

// NeighborEdges returns the three sides meeting at v.
func (v VertexKey) NeighborEdges() [3]EdgeKey {
	v = v.Canonical()
	home := v.Tile()
	return [3]EdgeKey{
		edgeOn(home, v.Dir).Canonical(),
		edgeOn(home, v.Dir.Prev()).Canonical(),
		edgeOn(home.Neighbor(v.Dir.Prev()), v.Dir.Next()).Canonical(),
	}
}

// Tiles returns the three tile addresses meeting at v. Some may lie off the
// board; Board.TilesAtVertex filters them.
func (v VertexKey) Tiles() [3]TileCoord {
	v = v.Canonical()
	home := v.Tile()
	return [3]TileCoord{
		home,
		home.Neighbor(v.Dir.Prev()),
		home.Neighbor(v.Dir),
	}
}

// Endpoints returns the two corners of e.
func (e EdgeKey) Endpoints() [2]VertexKey {
	e = e.Canonical()
	home := e.Tile()
	return [2]VertexKey{
		vertexOn(home, e.Dir).Canonical(),
		vertexOn(home, e.Dir.Next()).Canonical(),
	}
}

// NeighborEdges returns the sides next to e on its home tile. The sides on the
// tile across e are not included; road continuity reaches them through the
// shared corner.
func (e EdgeKey) NeighborEdges() [2]EdgeKey {
	e = e.Canonical()
	home := e.Tile()
	return [2]EdgeKey{
		edgeOn(home, e.Dir.Next()).Canonical(),
		edgeOn(home, e.Dir.Prev()).Canonical(),
	}
}

// Tiles returns the home tile of e and the tile across it. The second may be
// off the board.
func (e EdgeKey) Tiles() [2]TileCoord {
	e = e.Canonical()
	home := e.Tile()
	return [2]TileCoord{home, home.Neighbor(e.Dir)}
}
