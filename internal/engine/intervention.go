package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexsettlers/internal/world"
)

// Category for moderator actions.
const CategoryModerator = "moderator"

// GrantResources hands quantity cards of the named resource to a player.
// It is a moderator correction, outside normal play, and works in any phase
// except after the game has ended.
func (g *Game) GrantResources(id world.PlayerID, resourceName string, quantity int) (string, error) {
	if g.Phase == PhaseEnded {
		return "", fmt.Errorf("grant: %w", ErrGameOver)
	}
	p := g.Player(id)
	if p == nil {
		return "", fmt.Errorf("player %d not found: %w", id, world.ErrInvalidArgument)
	}
	r, err := world.ParseResource(resourceName)
	if err != nil {
		return "", err
	}
	if r == world.ResourceDesert {
		return "", fmt.Errorf("desert is not a resource card: %w", world.ErrInvalidArgument)
	}
	if quantity <= 0 {
		return "", fmt.Errorf("quantity %d: %w", quantity, world.ErrInvalidArgument)
	}

	p.AddResource(r, quantity)
	desc := fmt.Sprintf("The moderator hands %s %s", p.Name, describeCards(map[world.Resource]int{r: quantity}))
	g.record(CategoryModerator, "%s", desc)

	slog.Info("grant intervention", "id", g.ID, "player", p.Name, "resource", r, "quantity", quantity)
	return desc, nil
}
