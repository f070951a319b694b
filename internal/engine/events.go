package engine

import "fmt"

// Event categories.
const (
	CategorySetup      = "setup"
	CategoryBuild      = "build"
	CategoryDice       = "dice"
	CategoryProduction = "production"
	CategoryGame       = "game"
)

// maxEvents bounds the in-memory log; older entries are dropped.
const maxEvents = 500

// Event is a notable occurrence in a game.
type Event struct {
	Turn        int    `json:"turn" db:"turn"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
}

func (g *Game) record(category, format string, args ...any) {
	g.Events = append(g.Events, Event{
		Turn:        g.Turn,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
	if len(g.Events) > maxEvents {
		g.Events = g.Events[len(g.Events)-maxEvents:]
	}
}

// RecentEvents returns up to n of the latest events, oldest first.
func (g *Game) RecentEvents(n int) []Event {
	if n <= 0 || n >= len(g.Events) {
		return g.Events
	}
	return g.Events[len(g.Events)-n:]
}
