// Package policy decides actions for automated seats.
package policy

import (
	"context"

	"github.com/hackur/holdemd/internal/engine"
)

// Decision is a chosen action with its rationale.
type Decision struct {
	Action     engine.Action
	Reasoning  string
	Confidence float64
}

// Policy produces a decision for the player to move, given that player's
// sanitized view (which carries the legal action set).
type Policy interface {
	Decide(ctx context.Context, view engine.View) (Decision, error)
}

// Clamp forces an action into the legal set, adjusting amounts into range.
// An illegal or malformed action degrades to the safest available option in
// the order check > call > fold; the hand always progresses.
func Clamp(action engine.Action, opts []engine.ActionOption) engine.Action {
	for _, opt := range opts {
		if opt.Type != action.Type {
			continue
		}
		amount := action.Amount
		if amount < opt.Min {
			amount = opt.Min
		}
		if amount > opt.Max {
			amount = opt.Max
		}
		return engine.Action{Type: opt.Type, Amount: amount}
	}

	// A raise request in an unopened pot becomes a bet and vice versa.
	if action.Type == engine.Raise || action.Type == engine.Bet {
		for _, t := range []engine.ActionType{engine.Bet, engine.Raise, engine.AllIn} {
			if opt, ok := option(opts, t); ok {
				amount := action.Amount
				if amount < opt.Min {
					amount = opt.Min
				}
				if amount > opt.Max {
					amount = opt.Max
				}
				return engine.Action{Type: t, Amount: amount}
			}
		}
	}

	// An all-in request where deep stacks keep the full raise range legal
	// becomes a maximum bet or raise, the same chips under the legal label.
	if action.Type == engine.AllIn {
		for _, t := range []engine.ActionType{engine.Raise, engine.Bet} {
			if opt, ok := option(opts, t); ok {
				return engine.Action{Type: t, Amount: opt.Max}
			}
		}
	}

	return Safest(opts)
}

// Safest returns the most conservative legal action: check, then call,
// then fold.
func Safest(opts []engine.ActionOption) engine.Action {
	for _, t := range []engine.ActionType{engine.Check, engine.Call, engine.Fold} {
		if opt, ok := option(opts, t); ok {
			return engine.Action{Type: t, Amount: opt.Min}
		}
	}
	// Forced all-in is the only remaining possibility.
	if opt, ok := option(opts, engine.AllIn); ok {
		return engine.Action{Type: engine.AllIn, Amount: opt.Min}
	}
	return engine.Action{Type: engine.Fold}
}

func option(opts []engine.ActionOption, t engine.ActionType) (engine.ActionOption, bool) {
	for _, o := range opts {
		if o.Type == t {
			return o, true
		}
	}
	return engine.ActionOption{}, false
}
