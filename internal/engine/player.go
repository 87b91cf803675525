package engine

import "github.com/hackur/holdemd/internal/deck"

// Player is one seat at the table. Seat index is fixed for the life of the
// game; per-hand fields are reset between hands.
type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Seat      int         `json:"seat"`
	Chips     int         `json:"chips"`
	HoleCards []deck.Card `json:"hole_cards,omitempty"`
	Bet       int         `json:"bet"`       // chips wagered this street
	TotalBet  int         `json:"total_bet"` // chips wagered this hand
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"all_in"`
	Acted     bool        `json:"acted"`
	// ActedAtBet is the table bet level the seat last acted at, -1 before
	// acting. A seat may only raise when the level of the last full raise
	// exceeds it; this is what keeps a short all-in from reopening betting.
	ActedAtBet int `json:"acted_at_bet"`

	// Automated seats carry a conversational session reference.
	Auto      bool   `json:"auto"`
	SessionID string `json:"session_id,omitempty"`
}

// CanAct returns true if the seat can still take actions this street.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// HasCards returns true while the seat holds live hole cards.
func (p *Player) HasCards() bool {
	return len(p.HoleCards) > 0 && !p.Folded
}

// commit moves amount chips from the stack into the current street bet.
// The transfer is atomic with respect to the stack/bet/total invariant.
func (p *Player) commit(amount int) {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}

// resetForHand clears per-hand state while preserving the stack.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Bet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.Acted = false
	p.ActedAtBet = -1
}
