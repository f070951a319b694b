package api

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talgya/hexsettlers/internal/engine"
)

type countingSaver struct {
	saved []string
	fail  bool
}

func (c *countingSaver) SaveGame(g *engine.Game) error {
	if c.fail {
		return errors.New("disk full")
	}
	c.saved = append(c.saved, g.ID.String())
	return nil
}

func newRegistryGame(t *testing.T, reg *Registry) *Session {
	t.Helper()
	g, err := engine.NewGame(engine.Config{Seed: 3, Board: engine.DefaultConfig().Board}, []string{"A", "B"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := reg.Add(g)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRegistryAddGetRemove(t *testing.T) {
	reg := NewRegistry(2)
	a := newRegistryGame(t, reg)
	b := newRegistryGame(t, reg)

	if reg.Get(a.ID()) != a || reg.Len() != 2 {
		t.Fatalf("registry lost a game")
	}
	again, err := reg.Add(a.game)
	if err != nil || again != a {
		t.Errorf("re-adding a held game: %v, %v", again, err)
	}

	g, _ := engine.NewGame(engine.DefaultConfig(), []string{"C", "D"}, nil)
	if _, err := reg.Add(g); !errors.Is(err, ErrRegistryFull) {
		t.Errorf("third game: %v", err)
	}

	list := reg.List()
	if len(list) != 2 || list[0].ID().String() > list[1].ID().String() {
		t.Errorf("list not ordered: %v, %v", list[0].ID(), list[1].ID())
	}

	if !reg.Remove(b.ID()) || reg.Remove(b.ID()) {
		t.Error("remove should succeed exactly once")
	}
	if reg.Get(b.ID()) != nil {
		t.Error("removed game still held")
	}
}

func TestSessionDoMarksDirty(t *testing.T) {
	reg := NewRegistry(1)
	s := newRegistryGame(t, reg)
	saver := &countingSaver{}

	if ok, _ := s.Flush(saver.SaveGame); !ok {
		t.Fatal("new game should be dirty")
	}
	if ok, _ := s.Flush(saver.SaveGame); ok {
		t.Fatal("flush after flush should be a no-op")
	}

	if _, err := s.Do((*engine.Game).EndTurn); err == nil {
		t.Fatal("end turn during setup succeeded")
	}
	if ok, _ := s.Flush(saver.SaveGame); ok {
		t.Error("failed intent marked the game dirty")
	}

	snap, err := s.Do(func(g *engine.Game) error {
		return g.SetupPlaceSettlement(g.Board.LegalSettlementVertices(0, true)[0])
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Settlements) != 1 {
		t.Errorf("snapshot has %d settlements", len(snap.Settlements))
	}
	if ok, _ := s.Flush(saver.SaveGame); !ok {
		t.Error("successful intent did not mark the game dirty")
	}
	if len(saver.saved) != 2 {
		t.Errorf("saved %d times", len(saver.saved))
	}
}

func TestHousekeeperSavesDirtyGames(t *testing.T) {
	reg := NewRegistry(4)
	newRegistryGame(t, reg)
	newRegistryGame(t, reg)
	saver := &countingSaver{}
	h := NewHousekeeper(reg, saver, time.Minute, time.Hour)

	h.Step()
	if len(saver.saved) != 2 || h.Tick != 1 {
		t.Fatalf("first pass saved %d, tick %d", len(saver.saved), h.Tick)
	}
	h.Step()
	if len(saver.saved) != 2 {
		t.Errorf("clean games saved again: %d", len(saver.saved))
	}
}

func TestHousekeeperKeepsDirtyOnFailure(t *testing.T) {
	reg := NewRegistry(1)
	newRegistryGame(t, reg)
	saver := &countingSaver{fail: true}
	h := NewHousekeeper(reg, saver, time.Minute, time.Hour)

	if n := h.SaveAll(); n != 0 {
		t.Fatalf("saved %d with a failing store", n)
	}
	saver.fail = false
	if n := h.SaveAll(); n != 1 {
		t.Errorf("retry saved %d", n)
	}
}

func TestHousekeeperEvictsIdleEndedGames(t *testing.T) {
	reg := NewRegistry(4)
	live := newRegistryGame(t, reg)
	done := newRegistryGame(t, reg)
	done.View(func(g *engine.Game) { g.Phase = engine.PhaseEnded })

	h := NewHousekeeper(reg, nil, time.Minute, time.Hour)
	h.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	h.Step()
	if reg.Len() != 2 {
		t.Fatalf("evicted before the idle limit: %d left", reg.Len())
	}

	h.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	h.Step()
	if reg.Get(done.ID()) != nil {
		t.Error("idle finished game kept")
	}
	if reg.Get(live.ID()) == nil {
		t.Error("unfinished game evicted")
	}
}

func TestRateLimiterWindow(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests rejected")
	}
	if rl.Allow("a") {
		t.Fatal("third request allowed")
	}
	if !rl.Allow("b") {
		t.Error("other client shares the bucket")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("retry after = %d", got)
	}

	clock = clock.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("window did not reset")
	}

	clock = clock.Add(3 * time.Minute)
	rl.cleanup()
	if len(rl.buckets) != 0 {
		t.Errorf("%d stale buckets kept", len(rl.buckets))
	}
}

func TestRateLimiterZeroDisallows(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	if rl.Allow("a") {
		t.Error("zero limit allowed a request")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.7:4000"
	if got := clientIP(r); got != "192.0.2.7" {
		t.Errorf("remote addr: %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Errorf("forwarded: %q", got)
	}
}
