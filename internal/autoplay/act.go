package autoplay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hexsettlers/internal/engine"
)

// Actor posts intents to the API.
type Actor struct {
	BaseURL    string
	GameID     string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL, gameID string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		GameID:  gameID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateGame opens a new game and points the actor at it.
func (a *Actor) CreateGame(players []string, seed int64) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	body := map[string]any{"players": players, "seed": seed}
	if err := a.post("/api/v1/games", body, http.StatusCreated, &snap); err != nil {
		return nil, err
	}
	a.GameID = snap.ID
	return &snap, nil
}

// Act posts the decision and returns the resulting game state.
func (a *Actor) Act(d Decision) (*engine.Snapshot, error) {
	base := "/api/v1/games/" + a.GameID
	var snap engine.Snapshot
	var err error
	switch d.Action {
	case ActionSettle:
		err = a.post(base+"/settlements", d.Target, http.StatusOK, &snap)
	case ActionRoad:
		err = a.post(base+"/roads", d.Target, http.StatusOK, &snap)
	case ActionCity:
		err = a.post(base+"/cities", d.Target, http.StatusOK, &snap)
	case ActionEndTurn:
		err = a.post(base+"/end-turn", nil, http.StatusOK, &snap)
	case ActionRoll:
		var rolled struct {
			Roll int             `json:"roll"`
			Game engine.Snapshot `json:"game"`
		}
		err = a.post(base+"/roll", nil, http.StatusOK, &rolled)
		snap = rolled.Game
	default:
		return nil, fmt.Errorf("unknown action %q", d.Action)
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (a *Actor) post(path string, payload any, want int, target any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest("POST", a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
