// Command boardgen generates boards and prints their layout and statistics.
// With -svg it also writes one drawing per board.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/entropy"
	"github.com/talgya/hexsettlers/internal/render"
	"github.com/talgya/hexsettlers/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	seed := flag.Int64("seed", 0, "first seed (0 = random)")
	n := flag.Int("n", 1, "number of boards")
	tokens := flag.String("tokens", "spiral", "token dealing: spiral or shuffled")
	rotate := flag.Bool("rotate", true, "start the spiral at a random corner")
	svgDir := flag.String("svg", "", "directory for SVG drawings")
	quiet := flag.Bool("q", false, "only print the summary")
	flag.Parse()

	mode, err := world.ParseTokenMode(*tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *seed == 0 {
		*seed = entropy.NewSeed()
	}
	if *svgDir != "" {
		if err := os.MkdirAll(*svgDir, 0755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	cfg := world.DefaultGenConfig()
	cfg.Tokens = mode
	cfg.Rotate = *rotate

	var stats summary
	for i := 0; i < *n; i++ {
		s := *seed + int64(i)
		b := world.Generate(cfg, entropy.NewRand(s))
		stats.add(b)

		if !*quiet {
			printBoard(s, b)
		}
		if *svgDir != "" {
			if err := writeSVG(filepath.Join(*svgDir, fmt.Sprintf("board-%d.svg", s)), s, b); err != nil {
				slog.Error("write svg", "seed", s, "error", err)
				os.Exit(1)
			}
		}
	}
	stats.print()
}

func printBoard(seed int64, b *world.Board) {
	fmt.Printf("seed %d: %s\n", seed, b)
	for _, t := range b.TileList() {
		token := "--"
		if t.Token != nil {
			token = fmt.Sprintf("%2d", *t.Token)
		}
		fmt.Printf("  (%2d,%2d) %-6s %s\n", t.Coord.Q, t.Coord.R, t.Resource, token)
	}
	ports := lo.Map(b.Ports, func(p world.Port, _ int) string { return p.Type.String() })
	fmt.Printf("  ports: %s\n", strings.Join(ports, " "))
	if best := world.RankSettlementVertices(b, 0, true); len(best) > 0 {
		fmt.Printf("  best opening: %s (%d pips, score %.1f)\n", best[0].Vertex, best[0].Pips, best[0].Score)
	}
}

func writeSVG(path string, seed int64, b *world.Board) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	render.Board(f, b, render.Options{Title: fmt.Sprintf("seed %d", seed)})
	return f.Close()
}

// summary aggregates statistics over many boards.
type summary struct {
	boards      int
	hotNeighbor int // Boards with two 6/8 tiles side by side
	portRuns    int // Boards with three generic ports in a row
	pips        map[world.Resource]int
	bestPips    []int
}

func (s *summary) add(b *world.Board) {
	if s.pips == nil {
		s.pips = make(map[world.Resource]int)
	}
	s.boards++
	for _, t := range b.TileList() {
		s.pips[t.Resource] += t.Pips()
	}
	if hasHotNeighbors(b) {
		s.hotNeighbor++
	}
	if world.ValidatePorts(b.Ports) != nil {
		s.portRuns++
	}
	if best := world.RankSettlementVertices(b, 0, true); len(best) > 0 {
		s.bestPips = append(s.bestPips, best[0].Pips)
	}
}

func hasHotNeighbors(b *world.Board) bool {
	for _, t := range b.TileList() {
		if t.Pips() != 5 {
			continue
		}
		for _, c := range t.Coord.Neighbors() {
			if o := b.Get(c); o != nil && o.Pips() == 5 {
				return true
			}
		}
	}
	return false
}

func (s *summary) print() {
	if s.boards == 0 {
		return
	}
	fmt.Printf("\n%s boards generated\n", humanize.Comma(int64(s.boards)))
	fmt.Printf("  adjacent 6/8 tiles: %s of boards\n", percent(s.hotNeighbor, s.boards))
	fmt.Printf("  generic port runs:  %s of boards\n", percent(s.portRuns, s.boards))
	fmt.Printf("  best opening pips:  min %d, max %d, mean %.2f\n",
		lo.Min(s.bestPips), lo.Max(s.bestPips), float64(lo.Sum(s.bestPips))/float64(len(s.bestPips)))
	for _, r := range world.TradeResources {
		fmt.Printf("  %-6s mean pips %.2f\n", r, float64(s.pips[r])/float64(s.boards))
	}
}

func percent(n, total int) string {
	return humanize.FtoaWithDigits(100*float64(n)/float64(total), 2) + "%"
}
