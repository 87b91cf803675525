package engine

import "fmt"

// ActionType is a player action kind
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

// String returns the wire name of the action
func (a ActionType) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "all_in"}[a]
}

// ParseActionType maps a wire name back to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	case "all_in", "allin", "all-in":
		return AllIn, nil
	}
	return Fold, fmt.Errorf("unknown action %q", s)
}

// Action is a submitted action. Amount is the number of chips moved from
// the stack by this action; it is ignored for fold/check/call/all_in.
type Action struct {
	Type   ActionType `json:"type"`
	Amount int        `json:"amount,omitempty"`
}

// ActionOption describes one legal action for the seat to act, with its
// permitted amount range. Min equals Max for fixed-amount actions.
type ActionOption struct {
	Type ActionType `json:"type"`
	Min  int        `json:"min"`
	Max  int        `json:"max"`
}

// ValidActions computes the legal actions for the given seat. It returns
// nil when the seat is not the one to act.
func (g *Game) ValidActions(seat int) []ActionOption {
	if g.Active != seat || seat < 0 || seat >= len(g.Players) {
		return nil
	}
	p := g.Players[seat]
	if !p.CanAct() {
		return nil
	}

	toCall := g.CurrentBet - p.Bet
	var opts []ActionOption

	if toCall > 0 {
		opts = append(opts, ActionOption{Type: Fold})
	} else {
		opts = append(opts, ActionOption{Type: Check})
	}

	if toCall > 0 && toCall < p.Chips {
		opts = append(opts, ActionOption{Type: Call, Min: toCall, Max: toCall})
	}

	canRaise := p.ActedAtBet < g.LastFullBet

	if g.CurrentBet == 0 && p.Chips > 0 && canRaise {
		lo := min(g.BigBlind, p.Chips)
		opts = append(opts, ActionOption{Type: Bet, Min: lo, Max: p.Chips})
	}

	if g.CurrentBet > 0 && p.Chips > toCall && canRaise {
		minRaiseAmount := (g.CurrentBet + g.MinRaise) - p.Bet
		if p.Chips >= minRaiseAmount {
			opts = append(opts, ActionOption{Type: Raise, Min: minRaiseAmount, Max: p.Chips})
		} else {
			// Short all-in raise: beyond the call but below a full raise.
			opts = append(opts, ActionOption{Type: AllIn, Min: p.Chips, Max: p.Chips})
		}
	}

	if toCall >= p.Chips && p.Chips > 0 {
		opts = append(opts, ActionOption{Type: AllIn, Min: p.Chips, Max: p.Chips})
	}

	return opts
}

// findOption returns the option for the given type, if legal.
func findOption(opts []ActionOption, t ActionType) (ActionOption, bool) {
	for _, o := range opts {
		if o.Type == t {
			return o, true
		}
	}
	return ActionOption{}, false
}
