// Package autoplay drives seats of a hosted game through the HTTP API.
// Each step observes the game, decides on one intent and posts it.
package autoplay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

// Observation holds everything fetched for one decision.
type Observation struct {
	Game        engine.Snapshot
	Settlements []world.VertexKey   // Legal corners for the current seat
	Suggestions []world.VertexScore // Same corners, best first
	Roads       []world.EdgeKey
	Cities      []world.VertexKey
}

// Current returns the view of the seat to move.
func (o *Observation) Current() engine.PlayerView {
	return o.Game.Players[o.Game.Current]
}

// targetList mirrors the legal-target endpoints.
type targetList[T any] struct {
	Player world.PlayerID `json:"player"`
	Items  []T            `json:"targets"`
}

// Observer fetches game state from the API.
type Observer struct {
	BaseURL    string
	GameID     string
	HTTPClient *http.Client
}

// NewObserver creates an Observer for one game.
func NewObserver(baseURL, gameID string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		GameID:  gameID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the snapshot and the target lists relevant to its phase.
func (o *Observer) Observe() (*Observation, error) {
	obs := &Observation{}
	base := "/api/v1/games/" + o.GameID

	if err := o.fetchJSON(base, &obs.Game); err != nil {
		return nil, fmt.Errorf("fetch game: %w", err)
	}
	if obs.Game.Phase == engine.PhaseEnded.String() {
		return obs, nil
	}

	var settlements targetList[world.VertexKey]
	if err := o.fetchJSON(base+"/legal/settlements", &settlements); err != nil {
		return nil, fmt.Errorf("fetch legal settlements: %w", err)
	}
	obs.Settlements = settlements.Items

	if len(obs.Settlements) > 0 {
		var ranked targetList[world.VertexScore]
		if err := o.fetchJSON(base+"/suggest/settlements", &ranked); err != nil {
			return nil, fmt.Errorf("fetch suggestions: %w", err)
		}
		obs.Suggestions = ranked.Items
	}

	var roads targetList[world.EdgeKey]
	if err := o.fetchJSON(base+"/legal/roads", &roads); err != nil {
		return nil, fmt.Errorf("fetch legal roads: %w", err)
	}
	obs.Roads = roads.Items

	var cities targetList[world.VertexKey]
	if err := o.fetchJSON(base+"/legal/cities", &cities); err != nil {
		return nil, fmt.Errorf("fetch legal cities: %w", err)
	}
	obs.Cities = cities.Items

	return obs, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
