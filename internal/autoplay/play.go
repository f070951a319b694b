package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// maxStreak consecutive rejections stop the bot.
const maxStreak = 8

// ErrTurnLimit is returned by Run when the game outlasts MaxTurns.
var ErrTurnLimit = errors.New("turn limit reached")

// Bot runs the observe, decide, act loop for a set of seats.
type Bot struct {
	Observer *Observer
	Actor    *Actor
	Seats    map[int]bool  // Seats to play; nil plays every seat
	Delay    time.Duration // Pause between intents, and between polls while waiting
	MaxTurns int           // 0 = unlimited

	Memory   Memory
	Steps    int // Intents posted
	Failures int // Intents the server rejected

	streak int // Consecutive rejections
}

// NewBot creates a bot for one game.
func NewBot(baseURL, gameID string, seats map[int]bool) *Bot {
	return &Bot{
		Observer: NewObserver(baseURL, gameID),
		Actor:    NewActor(baseURL, gameID),
		Seats:    seats,
	}
}

// Outcome reports the state Run stopped in.
type Outcome struct {
	Turn   int
	Winner *int
	Scores []int
}

// Run plays until the game ends, ctx is cancelled or MaxTurns is exceeded.
func (b *Bot) Run(ctx context.Context) (Outcome, error) {
	for {
		obs, err := b.Observer.Observe()
		if err != nil {
			return Outcome{}, err
		}
		out := outcome(obs)
		if Assess(obs).Ended {
			slog.Info("game over", "turn", out.Turn, "scores", out.Scores)
			return out, nil
		}
		if b.MaxTurns > 0 && obs.Game.Turn >= b.MaxTurns {
			return out, ErrTurnLimit
		}

		if !b.plays(obs.Game.Current) {
			// Another client holds this seat.
			if err := b.pause(ctx); err != nil {
				return out, err
			}
			continue
		}

		b.step(obs)
		if b.streak >= maxStreak {
			return out, fmt.Errorf("%d intents rejected in a row: %s", b.streak, b.Memory.Records[len(b.Memory.Records)-1].Error)
		}
		if err := b.pause(ctx); err != nil {
			return out, err
		}
	}
}

// step decides and posts one intent for the seat to move.
func (b *Bot) step(obs *Observation) {
	d := Decide(obs, &b.Memory)
	if d.Action == ActionNone {
		return
	}
	rec := Record{Turn: obs.Game.Turn, Seat: obs.Game.Current, Action: d.Action, Target: d.Target}
	b.Steps++

	if _, err := b.Actor.Act(d); err != nil {
		b.Failures++
		b.streak++
		rec.Error = err.Error()
		slog.Warn("intent rejected", "seat", rec.Seat, "action", d.Action, "error", err)
	} else {
		b.streak = 0
		slog.Debug("intent applied", "seat", rec.Seat, "action", d.Action, "rationale", d.Rationale)
	}
	b.Memory.Add(rec)
}

func (b *Bot) plays(seat int) bool {
	return b.Seats == nil || b.Seats[seat]
}

func (b *Bot) pause(ctx context.Context) error {
	if b.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func outcome(obs *Observation) Outcome {
	out := Outcome{Turn: obs.Game.Turn}
	for _, p := range obs.Game.Players {
		out.Scores = append(out.Scores, p.VictoryPoints)
	}
	if obs.Game.Winner != nil {
		w := int(*obs.Game.Winner)
		out.Winner = &w
	}
	return out
}
