package engine

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/hackur/holdemd/internal/deck"
	"github.com/hackur/holdemd/internal/eval"
)

// Phase is the lifecycle stage of the current hand.
type Phase int

const (
	Waiting Phase = iota
	Dealing
	Preflop
	Flop
	Turn
	River
	Showdown
)

// String returns the phase name
func (p Phase) String() string {
	return [...]string{"waiting", "dealing", "preflop", "flop", "turn", "river", "showdown"}[p]
}

// Winner records one pot payout at settlement.
type Winner struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
	Amount   int    `json:"amount"`
	HandName string `json:"hand_name,omitempty"`
}

// SeatConfig describes one seat when creating a game.
type SeatConfig struct {
	ID        string
	Name      string
	Chips     int
	Auto      bool
	SessionID string
}

// Game is the authoritative state of one table. It is created once per
// table and mutated in place; a new hand resets per-hand fields but
// preserves stacks and seat order. Every field is serializable so the
// whole game can be snapshotted and restored.
type Game struct {
	ID         string      `json:"id"`
	Players    []*Player   `json:"players"`
	Deck       deck.Deck   `json:"deck"`
	Community  []deck.Card `json:"community"`
	SmallBlind int         `json:"small_blind"`
	BigBlind   int         `json:"big_blind"`
	Phase      Phase       `json:"phase"`
	Button     int         `json:"button"`
	Active     int         `json:"active"` // seat to act, -1 for none
	CurrentBet int         `json:"current_bet"`
	MinRaise   int         `json:"min_raise"`
	// LastFullBet is the bet level set by the last full bet or raise this
	// street. Seats that already acted at this level may not raise again
	// until it moves, which enforces the no-reopen rule for short all-ins.
	LastFullBet int      `json:"last_full_bet"`
	HandNum     int      `json:"hand_num"`
	Pots        []Pot    `json:"pots"`
	Winners     []Winner `json:"winners,omitempty"`
	Settled     bool     `json:"settled"`
}

// NewGame creates a table in the waiting phase.
func NewGame(id string, seats []SeatConfig, smallBlind, bigBlind int) (*Game, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least 2 seats, got %d", len(seats))
	}
	if smallBlind <= 0 || bigBlind <= smallBlind {
		return nil, fmt.Errorf("invalid blinds %d/%d", smallBlind, bigBlind)
	}

	g := &Game{
		ID:         id,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Phase:      Waiting,
		Active:     -1,
		Button:     -1,
	}
	for i, s := range seats {
		g.Players = append(g.Players, &Player{
			ID:         s.ID,
			Name:       s.Name,
			Seat:       i,
			Chips:      s.Chips,
			Auto:       s.Auto,
			SessionID:  s.SessionID,
			ActedAtBet: -1,
		})
	}
	return g, nil
}

// CanStartHand reports whether enough funded seats remain for a hand.
func (g *Game) CanStartHand() bool {
	if g.Phase != Waiting && g.Phase != Showdown {
		return false
	}
	funded := 0
	for _, p := range g.Players {
		if p.Chips > 0 {
			funded++
		}
	}
	return funded >= 2
}

// StartHand shuffles, deals, posts blinds, and moves to preflop. Seats with
// no chips sit out the hand.
func (g *Game) StartHand(rng *rand.Rand) error {
	if !g.CanStartHand() {
		return fmt.Errorf("cannot start hand in phase %s", g.Phase)
	}

	g.Phase = Dealing
	g.HandNum++
	g.Community = nil
	g.Pots = nil
	g.Winners = nil
	g.Settled = false
	for _, p := range g.Players {
		p.resetForHand()
		if p.Chips == 0 {
			p.Folded = true // sitting out
		}
	}

	g.Button = g.nextFundedSeat(g.Button + 1)

	g.Deck = deck.NewShuffled(rng)
	for _, p := range g.Players {
		if !p.Folded {
			p.HoleCards = g.Deck.Deal(2)
		}
	}

	sb, bb := g.blindSeats()
	g.Players[sb].commit(min(g.SmallBlind, g.Players[sb].Chips))
	g.Players[bb].commit(min(g.BigBlind, g.Players[bb].Chips))

	g.CurrentBet = g.BigBlind
	g.MinRaise = g.BigBlind
	g.LastFullBet = g.BigBlind
	g.Phase = Preflop
	g.Active = g.nextActingSeat(bb + 1)
	return nil
}

// blindSeats returns the small and big blind seats for this hand. Heads-up
// the button posts the small blind.
func (g *Game) blindSeats() (int, int) {
	if g.fundedCount() == 2 {
		return g.Button, g.nextFundedSeat(g.Button + 1)
	}
	sb := g.nextFundedSeat(g.Button + 1)
	return sb, g.nextFundedSeat(sb + 1)
}

func (g *Game) fundedCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// nextFundedSeat returns the first non-sitting-out seat at or after from.
func (g *Game) nextFundedSeat(from int) int {
	n := len(g.Players)
	for i := 0; i < n; i++ {
		seat := ((from + i) % n + n) % n
		if !g.Players[seat].Folded {
			return seat
		}
	}
	return -1
}

// nextActingSeat returns the first seat at or after from that can act.
func (g *Game) nextActingSeat(from int) int {
	n := len(g.Players)
	for i := 0; i < n; i++ {
		seat := ((from + i) % n + n) % n
		if g.Players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

func (g *Game) countCanAct() int {
	n := 0
	for _, p := range g.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

func (g *Game) countNonFolded() int {
	n := 0
	for _, p := range g.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// SubmitAction applies an action for the identified player. It returns
// false, with no state change, if the submitter is not the seat to act or
// the action is illegal.
func (g *Game) SubmitAction(playerID string, action Action) bool {
	seat := -1
	for _, p := range g.Players {
		if p.ID == playerID {
			seat = p.Seat
			break
		}
	}
	if seat == -1 || seat != g.Active {
		return false
	}
	return g.Apply(seat, action) == nil
}

// Apply validates and applies an action for the seat to act, then advances
// the turn and, when the betting round closes, the street.
func (g *Game) Apply(seat int, action Action) error {
	if g.Phase < Preflop || g.Phase >= Showdown {
		return fmt.Errorf("no betting in phase %s", g.Phase)
	}
	if seat != g.Active {
		return fmt.Errorf("seat %d is not the seat to act", seat)
	}
	p := g.Players[seat]

	opts := g.ValidActions(seat)
	opt, ok := findOption(opts, action.Type)
	if !ok {
		return fmt.Errorf("action %s is not legal for seat %d", action.Type, seat)
	}

	switch action.Type {
	case Fold:
		p.Folded = true

	case Check:
		// No chips move.

	case Call:
		p.commit(opt.Min)

	case Bet:
		if action.Amount < opt.Min || action.Amount > opt.Max {
			return fmt.Errorf("bet of %d outside [%d, %d]", action.Amount, opt.Min, opt.Max)
		}
		p.commit(action.Amount)
		g.CurrentBet = p.Bet
		// An all-in bet below the big blind is not a full bet and leaves
		// raising closed for seats that already checked.
		if p.Bet >= g.BigBlind {
			g.MinRaise = p.Bet
			g.LastFullBet = p.Bet
		}
		g.reopenResponses(seat)

	case Raise:
		if action.Amount < opt.Min || action.Amount > opt.Max {
			return fmt.Errorf("raise of %d outside [%d, %d]", action.Amount, opt.Min, opt.Max)
		}
		previous := g.CurrentBet
		p.commit(action.Amount)
		g.MinRaise = p.Bet - previous
		g.CurrentBet = p.Bet
		g.LastFullBet = p.Bet
		g.reopenResponses(seat)

	case AllIn:
		previous := g.CurrentBet
		p.commit(p.Chips)
		if p.Bet > previous {
			increment := p.Bet - previous
			// A full-sized all-in raise reopens betting; a short one does
			// not move LastFullBet, so prior actors keep only call/fold.
			if increment >= g.MinRaise {
				g.MinRaise = increment
				g.LastFullBet = p.Bet
			}
			g.CurrentBet = p.Bet
			g.reopenResponses(seat)
		}
	}

	p.Acted = true
	p.ActedAtBet = g.CurrentBet

	return g.advanceTurn(seat)
}

// reopenResponses clears the acted flag of every other live seat so they
// must respond to the new bet level.
func (g *Game) reopenResponses(aggressor int) {
	for _, other := range g.Players {
		if other.Seat != aggressor && other.CanAct() {
			other.Acted = false
		}
	}
}

// advanceTurn moves the action to the next seat or closes the round.
func (g *Game) advanceTurn(from int) error {
	if g.countNonFolded() <= 1 {
		return g.settleFoldWin()
	}

	if g.roundClosed() {
		return g.advanceStreet()
	}

	g.Active = g.nextActingSeat(from + 1)
	if g.Active == -1 {
		return g.advanceStreet()
	}
	return nil
}

// roundClosed reports whether every seat that can still act has acted and
// matched the table bet.
func (g *Game) roundClosed() bool {
	for _, p := range g.Players {
		if p.CanAct() && (!p.Acted || p.Bet != g.CurrentBet) {
			return false
		}
	}
	return true
}

// advanceStreet collects street bets into pots, deals the next community
// cards, and selects the first seat to act. When one or zero seats can
// still act it keeps advancing with no betting until the river, then
// settles.
func (g *Game) advanceStreet() error {
	g.Pots = buildPots(g.Players)
	for _, p := range g.Players {
		p.Bet = 0
		p.Acted = false
		p.ActedAtBet = -1
	}
	g.CurrentBet = 0
	g.MinRaise = g.BigBlind
	g.LastFullBet = 0
	g.Active = -1

	switch g.Phase {
	case Preflop:
		g.Phase = Flop
		g.Deck.Burn()
		g.Community = append(g.Community, g.Deck.Deal(3)...)
	case Flop:
		g.Phase = Turn
		g.Deck.Burn()
		g.Community = append(g.Community, g.Deck.Deal(1)...)
	case Turn:
		g.Phase = River
		g.Deck.Burn()
		g.Community = append(g.Community, g.Deck.Deal(1)...)
	case River:
		return g.settleShowdown()
	default:
		return fmt.Errorf("cannot advance street from phase %s", g.Phase)
	}

	if g.countCanAct() <= 1 {
		return g.advanceStreet()
	}

	g.Active = g.nextActingSeat(g.Button + 1)
	return nil
}

// settleFoldWin awards the entire wagered total to the last seat standing
// without evaluating hands.
func (g *Game) settleFoldWin() error {
	var winner *Player
	for _, p := range g.Players {
		if !p.Folded {
			winner = p
			break
		}
	}
	if winner == nil {
		return fmt.Errorf("no non-folded seat at settlement")
	}

	g.Pots = buildPots(g.Players)
	total := potTotal(g.Pots)
	winner.Chips += total
	g.Winners = []Winner{{Seat: winner.Seat, PlayerID: winner.ID, Amount: total}}
	g.finishHand()
	return nil
}

// settleShowdown evaluates every pot independently, splits each among the
// tied best hands by integer division, and gives any odd chip to the first
// co-winner in evaluation order.
func (g *Game) settleShowdown() error {
	g.Pots = buildPots(g.Players)

	results := map[int]eval.Result{}
	for _, p := range g.Players {
		if p.Folded {
			continue
		}
		cards := append(append([]deck.Card{}, p.HoleCards...), g.Community...)
		r, err := eval.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("evaluating seat %d: %w", p.Seat, err)
		}
		results[p.Seat] = r
	}

	paid := 0
	for _, pot := range g.Pots {
		var best []int
		for _, seat := range pot.Eligible {
			r, ok := results[seat]
			if !ok {
				continue
			}
			if len(best) == 0 {
				best = []int{seat}
				continue
			}
			switch eval.Compare(r, results[best[0]]) {
			case 1:
				best = []int{seat}
			case 0:
				best = append(best, seat)
			}
		}
		if len(best) == 0 {
			return fmt.Errorf("pot of %d has no eligible winner", pot.Amount)
		}

		share := pot.Amount / len(best)
		remainder := pot.Amount % len(best)
		for i, seat := range best {
			amount := share
			if i == 0 {
				amount += remainder
			}
			g.Players[seat].Chips += amount
			paid += amount
			g.Winners = append(g.Winners, Winner{
				Seat:     seat,
				PlayerID: g.Players[seat].ID,
				Amount:   amount,
				HandName: results[seat].Category.String(),
			})
		}
	}

	if paid != potTotal(g.Pots) {
		return fmt.Errorf("settlement paid %d of %d potted chips", paid, potTotal(g.Pots))
	}
	g.finishHand()
	return nil
}

func (g *Game) finishHand() {
	g.Phase = Showdown
	g.Settled = true
	g.Active = -1
	for _, p := range g.Players {
		p.Bet = 0
	}
}

// LivePots returns the current pot partition including uncollected street
// bets. Before settlement the amounts always sum to every seat's total bet.
func (g *Game) LivePots() []Pot {
	if g.Settled {
		return g.Pots
	}
	if g.Phase < Preflop {
		return nil
	}
	return buildPots(g.Players)
}
