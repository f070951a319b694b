// Package render draws boards as SVG.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"

	"github.com/talgya/hexsettlers/internal/world"
)

// HexSize is the circumradius of a tile in pixels.
const HexSize = 60

var resourceFill = map[world.Resource]string{
	world.ResourceWood:   "#2e7d32",
	world.ResourceBrick:  "#c1440e",
	world.ResourceSheep:  "#9ccc65",
	world.ResourceWheat:  "#f9c74f",
	world.ResourceOre:    "#8d99ae",
	world.ResourceDesert: "#e9d8a6",
}

// DefaultPalette colours players by seat.
var DefaultPalette = []string{"red", "blue", "white", "orange"}

// Options controls what is drawn.
type Options struct {
	Title   string
	Palette func(world.PlayerID) string // nil uses DefaultPalette
	Targets []world.VertexKey           // Highlighted corners, e.g. legal placements
}

type point struct{ x, y float64 }

// layout maps board geometry to canvas pixels.
type layout struct {
	size   float64
	origin point
}

func (l layout) centre(c world.TileCoord) point {
	return point{
		x: l.origin.x + l.size*1.5*float64(c.Q),
		y: l.origin.y + l.size*math.Sqrt(3)*(float64(c.R)+float64(c.Q)/2),
	}
}

// corner returns corner d of tile c. Corner d sits at 60°·d clockwise from +x.
func (l layout) corner(c world.TileCoord, d world.Direction) point {
	p := l.centre(c)
	a := float64(d) * math.Pi / 3
	return point{p.x + l.size*math.Cos(a), p.y + l.size*math.Sin(a)}
}

func (l layout) vertex(v world.VertexKey) point {
	return l.corner(v.Tile(), v.Dir)
}

func (l layout) edge(e world.EdgeKey) (point, point) {
	return l.corner(e.Tile(), e.Dir), l.corner(e.Tile(), e.Dir.Next())
}

// Board writes an SVG drawing of b to w.
func Board(w io.Writer, b *world.Board, opts Options) {
	palette := opts.Palette
	if palette == nil {
		palette = func(id world.PlayerID) string {
			return DefaultPalette[int(id)%len(DefaultPalette)]
		}
	}

	width, height := 11*HexSize, 11*HexSize
	l := layout{size: HexSize, origin: point{float64(width) / 2, float64(height) / 2}}

	canvas := svg.New(w)
	canvas.Start(width, height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, width, height, "fill:#4a90c2")

	for _, c := range b.Order {
		drawTile(canvas, l, b.Tiles[c])
	}
	if t := b.RobberTile(); t != nil {
		c := l.centre(t.Coord)
		canvas.Circle(int(c.x), int(c.y)+28, 8, robberStyle)
	}
	for _, p := range b.Ports {
		drawPort(canvas, l, p)
	}

	roads := make([]*world.Road, 0, len(b.Roads))
	for _, r := range b.Roads {
		roads = append(roads, r)
	}
	sort.Slice(roads, func(i, j int) bool { return roads[i].Edge.Less(roads[j].Edge) })
	for _, r := range roads {
		a, z := l.edge(r.Edge)
		// Pull the ends in so corners stay visible.
		a, z = lerp(a, z, 0.15), lerp(a, z, 0.85)
		canvas.Line(int(a.x), int(a.y), int(z.x), int(z.y),
			fmt.Sprintf("stroke:%s;stroke-width:8;stroke-linecap:round", palette(r.Owner)))
	}

	settlements := make([]*world.Settlement, 0, len(b.Settlements))
	for _, s := range b.Settlements {
		settlements = append(settlements, s)
	}
	sort.Slice(settlements, func(i, j int) bool { return settlements[i].Vertex.Less(settlements[j].Vertex) })
	for _, s := range settlements {
		p := l.vertex(s.Vertex)
		half := 8
		if s.City {
			half = 12
		}
		canvas.Rect(int(p.x)-half, int(p.y)-half, 2*half, 2*half,
			fmt.Sprintf("fill:%s;stroke:black;stroke-width:2", palette(s.Owner)))
	}

	for _, v := range opts.Targets {
		p := l.vertex(v)
		canvas.Circle(int(p.x), int(p.y), 6, "fill:none;stroke:yellow;stroke-width:3")
	}
	canvas.End()
}

const robberStyle = "fill:#263238"

func drawTile(canvas *svg.SVG, l layout, t *world.Tile) {
	xs := make([]int, 6)
	ys := make([]int, 6)
	for d := world.Direction(0); d < 6; d++ {
		p := l.corner(t.Coord, d)
		xs[d], ys[d] = int(math.Round(p.x)), int(math.Round(p.y))
	}
	canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:#5d4037;stroke-width:3", resourceFill[t.Resource]))

	c := l.centre(t.Coord)
	cx, cy := int(c.x), int(c.y)
	if t.Token != nil {
		ink := "black"
		if t.Pips() == 5 {
			ink = "#c62828"
		}
		canvas.Circle(cx, cy, 18, "fill:#fdf6e3;stroke:#5d4037")
		canvas.Text(cx, cy+6, fmt.Sprint(*t.Token),
			fmt.Sprintf("text-anchor:middle;font-size:18px;font-family:sans-serif;font-weight:bold;fill:%s", ink))
	}
}

func drawPort(canvas *svg.SVG, l layout, p world.Port) {
	a, z := l.corner(p.Coord, p.Dir), l.corner(p.Coord, p.Dir.Next())
	mid := lerp(a, z, 0.5)
	centre := l.centre(p.Coord)
	// Push the marker out past the coast.
	out := point{centre.x + (mid.x-centre.x)*1.45, centre.y + (mid.y-centre.y)*1.45}

	style := "stroke:#fdf6e3;stroke-width:3;stroke-dasharray:4,3"
	canvas.Line(int(out.x), int(out.y), int(a.x), int(a.y), style)
	canvas.Line(int(out.x), int(out.y), int(z.x), int(z.y), style)
	canvas.Circle(int(out.x), int(out.y), 16, "fill:#fdf6e3;stroke:#5d4037")

	label := fmt.Sprintf("%d:1", p.Type.Ratio())
	if r, ok := p.Type.Resource(); ok {
		label = fmt.Sprintf("%d:1 %s", p.Type.Ratio(), r)
	}
	canvas.Text(int(out.x), int(out.y)+4, label, "text-anchor:middle;font-size:9px;font-family:sans-serif")
}

func lerp(a, b point, t float64) point {
	return point{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t}
}
