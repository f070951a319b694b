package autoplay

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talgya/hexsettlers/internal/api"
	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

func newAPI(t *testing.T) string {
	t.Helper()
	defaults := engine.DefaultConfig()
	defaults.Board.Rotate = false
	s := api.NewServer(api.NewRegistry(4), nil, "", "", defaults, 100)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func playingObservation() *Observation {
	return &Observation{
		Game: engine.Snapshot{
			Phase:  "playing",
			Rolled: true,
			Players: []engine.PlayerView{{
				ID:          0,
				Resources:   map[string]int{},
				Settlements: 3,
				Cities:      4,
				Roads:       13,
			}},
			Tiles: []engine.TileView{
				{Q: 0, R: 0, Pips: 5},
				{Q: 1, R: -1, Pips: 4},
				{Q: 1, R: 0, Pips: 1},
				{Q: -1, R: 0, Pips: 2},
				{Q: -1, R: 1, Pips: 2, Robber: true},
			},
		},
	}
}

func TestDecideRollsFirst(t *testing.T) {
	obs := playingObservation()
	obs.Game.Rolled = false
	if d := Decide(obs, nil); d.Action != ActionRoll {
		t.Errorf("decided %s before rolling", d.Action)
	}
}

func TestDecideEndsTurnWhenBroke(t *testing.T) {
	obs := playingObservation()
	obs.Cities = []world.VertexKey{{Q: 0, R: 0, Dir: 0}}
	obs.Roads = []world.EdgeKey{{Q: 0, R: 0, Dir: 0}}
	if d := Decide(obs, nil); d.Action != ActionEndTurn {
		t.Errorf("decided %s with an empty hand", d.Action)
	}
}

func TestDecidePrefersRichestCity(t *testing.T) {
	obs := playingObservation()
	obs.Game.Players[0].Resources = map[string]int{"ore": 3, "wheat": 2}
	// (0,0,0) touches pips 5+4+1; (0,0,3) touches 5+2 and the robbed tile.
	obs.Cities = []world.VertexKey{{Q: 0, R: 0, Dir: 3}, {Q: 0, R: 0, Dir: 0}}

	d := Decide(obs, nil)
	if d.Action != ActionCity || *d.Target != (Target{0, 0, 0}) {
		t.Fatalf("decided %s on %+v", d.Action, d.Target)
	}

	var mem Memory
	mem.Add(Record{Turn: 0, Action: ActionCity, Target: &Target{0, 0, 0}, Error: "rejected"})
	if d := Decide(obs, &mem); d.Action != ActionEndTurn {
		t.Errorf("retried a rejected city: %s", d.Action)
	}
}

func TestDecideSettlesBeforeRoads(t *testing.T) {
	obs := playingObservation()
	obs.Game.Players[0].Resources = map[string]int{"wood": 2, "brick": 2, "sheep": 1, "wheat": 1}
	obs.Settlements = []world.VertexKey{{Q: 0, R: 0, Dir: 1}}
	obs.Suggestions = []world.VertexScore{{Vertex: world.VertexKey{Q: 0, R: 0, Dir: 1}, Pips: 7}}
	obs.Roads = []world.EdgeKey{{Q: 0, R: 0, Dir: 2}}

	if d := Decide(obs, nil); d.Action != ActionSettle || *d.Target != (Target{0, 0, 1}) {
		t.Fatalf("decided %s on %+v", d.Action, d.Target)
	}

	obs.Settlements, obs.Suggestions = nil, nil
	if d := Decide(obs, nil); d.Action != ActionRoad {
		t.Errorf("with nowhere to settle decided %s", d.Action)
	}
}

func TestDecideEnded(t *testing.T) {
	obs := playingObservation()
	obs.Game.Phase = "ended"
	if d := Decide(obs, nil); d.Action != ActionNone {
		t.Errorf("decided %s after the game ended", d.Action)
	}
}

func TestMemoryCapAndTurnScope(t *testing.T) {
	var mem Memory
	for i := 0; i < maxRecords+5; i++ {
		mem.Add(Record{Turn: i})
	}
	if len(mem.Records) != maxRecords || mem.Records[0].Turn != 5 {
		t.Fatalf("kept %d records starting at turn %d", len(mem.Records), mem.Records[0].Turn)
	}

	road := &Target{1, 0, 2}
	mem.Add(Record{Turn: 50, Action: ActionRoad, Target: road, Error: "illegal"})
	if !mem.Failed(ActionRoad, &Target{1, 0, 2}) {
		t.Error("rejection forgotten within the turn")
	}
	if mem.Failed(ActionRoad, &Target{1, 0, 3}) || mem.Failed(ActionCity, road) {
		t.Error("rejection matched a different intent")
	}
	mem.Add(Record{Turn: 51, Action: ActionRoll})
	if mem.Failed(ActionRoad, road) {
		t.Error("rejection carried into the next turn")
	}
	if mem.Failures() != 1 {
		t.Errorf("failures = %d", mem.Failures())
	}
}

func TestBotPlaysAgainstServer(t *testing.T) {
	url := newAPI(t)
	creator := NewActor(url, "")
	snap, err := creator.CreateGame([]string{"North", "South", "East"}, 77)
	if err != nil {
		t.Fatal(err)
	}

	bot := NewBot(url, snap.ID, nil)
	bot.MaxTurns = 60
	out, err := bot.Run(context.Background())
	if err != nil && !errors.Is(err, ErrTurnLimit) {
		t.Fatal(err)
	}
	if bot.Failures != 0 {
		t.Errorf("%d intents rejected: %+v", bot.Failures, bot.Memory.Records)
	}
	if len(out.Scores) != 3 {
		t.Fatalf("scores = %v", out.Scores)
	}
	for seat, vp := range out.Scores {
		if vp < 2 {
			t.Errorf("seat %d finished with %d points", seat, vp)
		}
	}
	if err == nil && (out.Winner == nil || out.Scores[*out.Winner] < engine.WinningPoints) {
		t.Errorf("ended without a winner: %+v", out)
	}
}

func TestBotWaitsForOtherSeats(t *testing.T) {
	url := newAPI(t)
	snap, err := NewActor(url, "").CreateGame([]string{"Bot", "Human"}, 5)
	if err != nil {
		t.Fatal(err)
	}

	bot := NewBot(url, snap.ID, map[int]bool{0: true})
	bot.Delay = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if _, err := bot.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run = %v", err)
	}

	obs, err := bot.Observer.Observe()
	if err != nil {
		t.Fatal(err)
	}
	if len(obs.Game.Settlements) != 1 || len(obs.Game.Roads) != 1 || obs.Game.Current != 1 {
		t.Errorf("bot placed %d settlements, %d roads; seat %d to move",
			len(obs.Game.Settlements), len(obs.Game.Roads), obs.Game.Current)
	}
}
