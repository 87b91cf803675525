// Package orchestrator drives a table forward one tick at a time. Nothing
// progresses between ticks; each external poll calls Tick, which compares
// the clock against its deadlines and performs at most one step of work.
package orchestrator

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/seatpool"
)

// Config sets the orchestrator's pacing.
type Config struct {
	// ShowdownHold is how long a finished hand stays on display before the
	// next hand starts.
	ShowdownHold time.Duration
	// MinThink is the minimum think time before an automated seat's
	// decision is requested, simulating human response latency.
	MinThink time.Duration
	// RebuyChips tops up any zero-stack seat between hands; 0 disables
	// rebuys and busted seats sit out.
	RebuyChips int
}

// DefaultConfig returns standard pacing.
func DefaultConfig() Config {
	return Config{
		ShowdownHold: 6 * time.Second,
		MinThink:     1500 * time.Millisecond,
		RebuyChips:   0,
	}
}

// Orchestrator is the single logical writer for one table. The tick path
// and the human action path share one mutex, so no two mutations of the
// same table ever interleave; separate tables are fully independent.
type Orchestrator struct {
	mu     sync.Mutex
	game   *engine.Game
	pool   *seatpool.Pool
	clock  quartz.Clock
	rng    *rand.Rand
	config Config
	logger *log.Logger

	showdownUntil time.Time
	thinkingSince time.Time
	thinkingSeat  int
}

// New creates an orchestrator for one table.
func New(logger *log.Logger, game *engine.Game, pool *seatpool.Pool, clock quartz.Clock, rng *rand.Rand, config Config) *Orchestrator {
	return &Orchestrator{
		game:         game,
		pool:         pool,
		clock:        clock,
		rng:          rng,
		config:       config,
		logger:       logger.WithPrefix("orchestrator").With("game", game.ID),
		thinkingSeat: -1,
	}
}

// Game returns the table this orchestrator drives.
func (o *Orchestrator) Game() *engine.Game {
	return o.game
}

// Tick advances the table by at most one step. It is idempotent with
// respect to real elapsed time: calling it repeatedly without time passing
// does no extra work. Priority order: hold at showdown, start the next
// hand, then service the automated seat to act.
func (o *Orchestrator) Tick() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Now()

	switch o.game.Phase {
	case engine.Showdown:
		if o.showdownUntil.IsZero() {
			o.showdownUntil = now.Add(o.config.ShowdownHold)
			return nil
		}
		if now.Before(o.showdownUntil) {
			return nil
		}
		return o.startHand()

	case engine.Waiting:
		return o.startHand()
	}

	return o.serviceAutomatedSeat(now)
}

// startHand rebuys busted seats if configured and deals the next hand.
func (o *Orchestrator) startHand() error {
	if o.config.RebuyChips > 0 {
		for _, p := range o.game.Players {
			if p.Chips == 0 {
				p.Chips = o.config.RebuyChips
				o.logger.Info("rebuy", "seat", p.Seat, "chips", p.Chips)
			}
		}
	}
	if !o.game.CanStartHand() {
		return nil
	}

	o.showdownUntil = time.Time{}
	o.clearThinking()
	if err := o.game.StartHand(o.rng); err != nil {
		return err
	}
	o.logger.Info("hand started", "hand", o.game.HandNum, "button", o.game.Button)
	return nil
}

// serviceAutomatedSeat requests, polls, or applies the decision for the
// automated seat to act.
func (o *Orchestrator) serviceAutomatedSeat(now time.Time) error {
	seat := o.game.Active
	if seat < 0 || !o.game.Players[seat].Auto {
		return nil
	}

	// Pace the seat: the first tick that sees it to act starts the think
	// clock, and the decision request only goes out once the minimum
	// think time has elapsed.
	if o.thinkingSeat != seat {
		o.thinkingSeat = seat
		o.thinkingSince = now
		return nil
	}
	if now.Sub(o.thinkingSince) < o.config.MinThink {
		return nil
	}

	view := o.game.ViewFor(o.game.Players[seat].ID)
	dec, resolved, err := o.pool.RequestDecision(o.game.ID, seat, view)
	if err != nil {
		return err
	}
	if !resolved {
		return nil
	}

	action := dec.Action
	if err := o.game.Apply(seat, action); err != nil {
		// The pool already clamped against the view it was given; a stale
		// view can still slip through, so degrade rather than stall.
		o.logger.Warn("automated action rejected, applying safest", "seat", seat, "err", err)
		action = safestFor(o.game, seat)
		if err := o.game.Apply(seat, action); err != nil {
			return err
		}
	}

	o.logger.Info("automated action",
		"seat", seat, "action", action.Type, "amount", action.Amount, "reason", dec.Reasoning)
	o.clearThinking()
	return nil
}

// SubmitAction applies a human action through the same validated path the
// engine exposes, bypassing think-time pacing. The next tick resumes
// automated play.
func (o *Orchestrator) SubmitAction(playerID string, action engine.Action) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	ok := o.game.SubmitAction(playerID, action)
	if ok {
		o.clearThinking()
	}
	return ok
}

// ViewFor returns the sanitized view for a player under the table lock.
func (o *Orchestrator) ViewFor(playerID string) engine.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.game.ViewFor(playerID)
}

func (o *Orchestrator) clearThinking() {
	o.thinkingSeat = -1
	o.thinkingSince = time.Time{}
}

func safestFor(g *engine.Game, seat int) engine.Action {
	opts := g.ValidActions(seat)
	for _, t := range []engine.ActionType{engine.Check, engine.Call, engine.Fold} {
		for _, opt := range opts {
			if opt.Type == t {
				return engine.Action{Type: t, Amount: opt.Min}
			}
		}
	}
	for _, opt := range opts {
		if opt.Type == engine.AllIn {
			return engine.Action{Type: engine.AllIn, Amount: opt.Min}
		}
	}
	return engine.Action{Type: engine.Fold}
}
