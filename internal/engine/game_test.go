package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackur/holdemd/internal/deck"
	"github.com/hackur/holdemd/internal/randutil"
)

// newTestGame creates a game with one seat per stack, blinds 5/10.
func newTestGame(t *testing.T, stacks ...int) *Game {
	t.Helper()
	seats := make([]SeatConfig, len(stacks))
	for i, chips := range stacks {
		seats[i] = SeatConfig{
			ID:    fmt.Sprintf("p%d", i),
			Name:  fmt.Sprintf("player-%d", i),
			Chips: chips,
		}
	}
	g, err := NewGame("test", seats, 5, 10)
	require.NoError(t, err)
	return g
}

func startHand(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.StartHand(randutil.New(1)))
}

func apply(t *testing.T, g *Game, seat int, action Action) {
	t.Helper()
	require.NoError(t, g.Apply(seat, action), "seat %d %s", seat, action.Type)
}

func totalChips(g *Game) int {
	total := potTotal(g.LivePots())
	for _, p := range g.Players {
		total += p.Chips
	}
	return total
}

func TestNewGameValidation(t *testing.T) {
	t.Parallel()
	_, err := NewGame("t", []SeatConfig{{ID: "a", Chips: 100}}, 5, 10)
	require.Error(t, err)

	seats := []SeatConfig{{ID: "a", Chips: 100}, {ID: "b", Chips: 100}}
	_, err = NewGame("t", seats, 10, 10)
	require.Error(t, err)
	_, err = NewGame("t", seats, 0, 10)
	require.Error(t, err)
}

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	require.Equal(t, Preflop, g.Phase)
	require.Equal(t, 0, g.Button)
	require.Equal(t, 5, g.Players[1].Bet, "small blind")
	require.Equal(t, 10, g.Players[2].Bet, "big blind")
	require.Equal(t, 10, g.CurrentBet)
	require.Equal(t, 10, g.MinRaise)
	require.Equal(t, 0, g.Active, "first to act is left of the big blind")

	for _, p := range g.Players {
		require.Len(t, p.HoleCards, 2)
	}
	require.Equal(t, 3000, totalChips(g))
}

func TestHeadsUpButtonPostsSmallBlindAndActsFirst(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000)
	startHand(t, g)

	require.Equal(t, 0, g.Button)
	require.Equal(t, 5, g.Players[0].Bet, "button posts the small blind heads-up")
	require.Equal(t, 10, g.Players[1].Bet)
	require.Equal(t, 0, g.Active, "button acts first preflop heads-up")

	// Postflop the non-button seat acts first.
	apply(t, g, 0, Action{Type: Call})
	apply(t, g, 1, Action{Type: Check})
	require.Equal(t, Flop, g.Phase)
	require.Equal(t, 1, g.Active)
}

func TestZeroChipSeatSitsOut(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 0, 1000)
	startHand(t, g)

	require.True(t, g.Players[1].Folded)
	require.Empty(t, g.Players[1].HoleCards)
	// Two funded seats play heads-up: button posts small blind.
	require.Equal(t, 5, g.Players[0].Bet)
	require.Equal(t, 10, g.Players[2].Bet)
}

func TestButtonRotatesBetweenHands(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)
	require.Equal(t, 0, g.Button)

	// Fold around so the hand ends, then start the next one.
	apply(t, g, 0, Action{Type: Fold})
	apply(t, g, 1, Action{Type: Fold})
	require.Equal(t, Showdown, g.Phase)

	startHand(t, g)
	require.Equal(t, 1, g.Button)
}

func TestValidActionsFacingBet(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	opts := g.ValidActions(0)
	byType := map[ActionType]ActionOption{}
	for _, o := range opts {
		byType[o.Type] = o
	}

	require.Contains(t, byType, Fold)
	require.NotContains(t, byType, Check, "cannot check facing the big blind")
	require.Equal(t, ActionOption{Type: Call, Min: 10, Max: 10}, byType[Call])
	require.Equal(t, ActionOption{Type: Raise, Min: 20, Max: 1000}, byType[Raise])
}

func TestValidActionsOnlyForActiveSeat(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	require.Nil(t, g.ValidActions(1))
	require.Nil(t, g.ValidActions(-1))
	require.Nil(t, g.ValidActions(99))
}

func TestBigBlindGetsOption(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Call})
	apply(t, g, 1, Action{Type: Call})
	require.Equal(t, Preflop, g.Phase, "big blind still owed an option")
	require.Equal(t, 2, g.Active)

	opts := g.ValidActions(2)
	var hasCheck, hasRaise bool
	for _, o := range opts {
		hasCheck = hasCheck || o.Type == Check
		hasRaise = hasRaise || o.Type == Raise
	}
	require.True(t, hasCheck)
	require.True(t, hasRaise)

	apply(t, g, 2, Action{Type: Check})
	require.Equal(t, Flop, g.Phase)
	require.Len(t, g.Community, 3)
}

func TestMinRaiseEnforced(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	// Raise to 15 total is below the minimum raise to 20.
	require.Error(t, g.Apply(0, Action{Type: Raise, Amount: 15}))
	require.Equal(t, 0, g.Players[0].Bet, "rejected action must not move chips")

	apply(t, g, 0, Action{Type: Raise, Amount: 30})
	require.Equal(t, 30, g.CurrentBet)
	require.Equal(t, 20, g.MinRaise, "raise increment becomes the new minimum")
}

func TestBetBelowBigBlindRejectedPostflop(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Call})
	apply(t, g, 1, Action{Type: Call})
	apply(t, g, 2, Action{Type: Check})
	require.Equal(t, Flop, g.Phase)
	require.Equal(t, 1, g.Active)

	require.Error(t, g.Apply(1, Action{Type: Bet, Amount: 4}))
	apply(t, g, 1, Action{Type: Bet, Amount: 10})
	require.Equal(t, 10, g.CurrentBet)
}

func TestShortAllInDoesNotReopenBetting(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 47)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Raise, Amount: 30})
	apply(t, g, 1, Action{Type: Call})

	// Seat 2 has 37 behind after the big blind; a full raise needs 40, so
	// only the short all-in is offered.
	opts := g.ValidActions(2)
	var allIn *ActionOption
	for i, o := range opts {
		require.NotEqual(t, Raise, o.Type)
		if o.Type == AllIn {
			allIn = &opts[i]
		}
	}
	require.NotNil(t, allIn)

	apply(t, g, 2, Action{Type: AllIn})
	require.Equal(t, 47, g.CurrentBet)

	// The short all-in does not reopen raising for seats that already
	// acted at the last full bet; they may only call or fold.
	for _, o := range g.ValidActions(0) {
		require.NotEqual(t, Raise, o.Type)
		require.NotEqual(t, AllIn, o.Type)
	}

	apply(t, g, 0, Action{Type: Call})
	apply(t, g, 1, Action{Type: Call})
	require.Equal(t, Flop, g.Phase)
}

func TestFullAllInRaiseReopensBetting(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 60)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Raise, Amount: 30})
	apply(t, g, 1, Action{Type: Call})

	// Seat 2 has 50 behind; raising all-in to 60 is a full raise.
	apply(t, g, 2, Action{Type: Raise, Amount: 50})
	require.Equal(t, 60, g.CurrentBet)
	require.True(t, g.Players[2].AllIn)

	var hasRaise bool
	for _, o := range g.ValidActions(0) {
		hasRaise = hasRaise || o.Type == Raise
	}
	require.True(t, hasRaise, "a full all-in raise reopens the betting")
}

func TestFoldWinSkipsShowdown(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Fold})
	apply(t, g, 1, Action{Type: Fold})

	require.Equal(t, Showdown, g.Phase)
	require.True(t, g.Settled)
	require.Len(t, g.Winners, 1)
	require.Equal(t, 2, g.Winners[0].Seat)
	require.Equal(t, 15, g.Winners[0].Amount)
	require.Empty(t, g.Winners[0].HandName, "no hands revealed on a fold win")
	require.Equal(t, 1005, g.Players[2].Chips)
	require.Equal(t, 3000, totalChips(g))
}

func TestAllInRunoutAutoAdvancesToShowdown(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 500, 500)
	startHand(t, g)

	apply(t, g, 0, Action{Type: Raise, Amount: 495}) // all-in over the blind
	require.True(t, g.Players[0].AllIn)

	apply(t, g, 1, Action{Type: AllIn})

	require.Equal(t, Showdown, g.Phase)
	require.True(t, g.Settled)
	require.Len(t, g.Community, 5, "board runs out with nobody able to act")
	require.NotEmpty(t, g.Winners)
	require.Equal(t, 1000, totalChips(g))
}

func TestPotConservationThroughFullHand(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 800, 1200)
	startHand(t, g)
	require.Equal(t, 3000, totalChips(g))

	apply(t, g, 0, Action{Type: Call})
	apply(t, g, 1, Action{Type: Call})
	apply(t, g, 2, Action{Type: Check})
	require.Equal(t, 3000, totalChips(g))

	apply(t, g, 1, Action{Type: Bet, Amount: 40})
	apply(t, g, 2, Action{Type: Call})
	apply(t, g, 0, Action{Type: Fold})
	require.Equal(t, Turn, g.Phase)
	require.Equal(t, 3000, totalChips(g))

	apply(t, g, 1, Action{Type: Check})
	apply(t, g, 2, Action{Type: Check})
	require.Equal(t, River, g.Phase)

	apply(t, g, 1, Action{Type: Check})
	apply(t, g, 2, Action{Type: Check})

	require.Equal(t, Showdown, g.Phase)
	require.True(t, g.Settled)
	require.Equal(t, 3000, totalChips(g))

	paid := 0
	for _, w := range g.Winners {
		paid += w.Amount
	}
	require.Equal(t, 130, paid, "winners receive exactly the potted chips")
}

func TestSidePotsPaidIndependently(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 200, 100, 200)
	startHand(t, g)

	// Seat 0 raises all-in to 200; seat 1 calls for their last 95; seat 2
	// calls the full 200.
	apply(t, g, 0, Action{Type: Raise, Amount: 200})
	apply(t, g, 1, Action{Type: AllIn})
	apply(t, g, 2, Action{Type: AllIn})

	require.Equal(t, Showdown, g.Phase)
	require.True(t, g.Settled)
	require.Len(t, g.Pots, 2)
	require.Equal(t, 300, g.Pots[0].Amount)
	require.Equal(t, []int{0, 1, 2}, g.Pots[0].Eligible)
	require.Equal(t, 200, g.Pots[1].Amount)
	require.Equal(t, []int{0, 2}, g.Pots[1].Eligible)
	require.Equal(t, 500, totalChips(g))
}

func TestSplitPotOddChipGoesToFirstWinner(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 100, 100, 100)

	// Board plays for both live seats; seat 2 folded a chip into the pot,
	// leaving 15 to split two ways.
	g.Players[0].HoleCards = cards("2h", "3h")
	g.Players[0].TotalBet = 7
	g.Players[0].Chips = 93
	g.Players[1].HoleCards = cards("2d", "3c")
	g.Players[1].TotalBet = 7
	g.Players[1].Chips = 93
	g.Players[2].Folded = true
	g.Players[2].TotalBet = 1
	g.Players[2].Chips = 99
	g.Community = cards("As", "Ks", "Qs", "Js", "Ts")
	g.Phase = River

	require.NoError(t, g.settleShowdown())

	require.Equal(t, 101, g.Players[0].Chips, "odd chip goes to the first co-winner")
	require.Equal(t, 100, g.Players[1].Chips)
	require.Len(t, g.Winners, 2)
	require.Equal(t, "Royal Flush", g.Winners[0].HandName)
}

func TestSubmitActionRejectsOutOfTurn(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	require.False(t, g.SubmitAction("p1", Action{Type: Fold}), "seat 1 is not the seat to act")
	require.False(t, g.SubmitAction("nobody", Action{Type: Fold}))
	require.False(t, g.Players[1].Folded)

	require.True(t, g.SubmitAction("p0", Action{Type: Fold}))
	require.True(t, g.Players[0].Folded)
}

func TestSubmitActionRejectsIllegalType(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000, 1000)
	startHand(t, g)

	require.False(t, g.SubmitAction("p0", Action{Type: Check}), "cannot check facing a bet")
	require.Equal(t, 0, g.Active, "state unchanged after rejection")
}

func TestCannotActOutsideBettingPhases(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 1000)
	require.Error(t, g.Apply(0, Action{Type: Check}), "no betting before the hand starts")

	startHand(t, g)
	apply(t, g, 0, Action{Type: Fold})
	require.Equal(t, Showdown, g.Phase)
	require.Error(t, g.Apply(1, Action{Type: Check}))
}

func TestCanStartHandRequiresTwoFundedSeats(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, 1000, 0, 0)
	require.False(t, g.CanStartHand())

	g.Players[1].Chips = 50
	require.True(t, g.CanStartHand())
}

// cards builds a hand from two-character strings.
func cards(strs ...string) []deck.Card {
	out := make([]deck.Card, len(strs))
	for i, s := range strs {
		out[i] = deck.MustParseCard(s)
	}
	return out
}
