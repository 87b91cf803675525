package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackur/holdemd/internal/engine"
)

func TestClampAdjustsAmountIntoRange(t *testing.T) {
	t.Parallel()
	opts := []engine.ActionOption{
		{Type: engine.Fold},
		{Type: engine.Call, Min: 20, Max: 20},
		{Type: engine.Raise, Min: 40, Max: 500},
	}

	got := Clamp(engine.Action{Type: engine.Raise, Amount: 10}, opts)
	require.Equal(t, engine.Action{Type: engine.Raise, Amount: 40}, got)

	got = Clamp(engine.Action{Type: engine.Raise, Amount: 9999}, opts)
	require.Equal(t, engine.Action{Type: engine.Raise, Amount: 500}, got)

	got = Clamp(engine.Action{Type: engine.Raise, Amount: 100}, opts)
	require.Equal(t, engine.Action{Type: engine.Raise, Amount: 100}, got)
}

func TestClampSwapsBetAndRaise(t *testing.T) {
	t.Parallel()
	// Unopened pot: a requested raise becomes a bet.
	opts := []engine.ActionOption{
		{Type: engine.Check},
		{Type: engine.Bet, Min: 10, Max: 300},
	}
	got := Clamp(engine.Action{Type: engine.Raise, Amount: 60}, opts)
	require.Equal(t, engine.Action{Type: engine.Bet, Amount: 60}, got)

	// Opened pot: a requested bet becomes a raise.
	opts = []engine.ActionOption{
		{Type: engine.Fold},
		{Type: engine.Call, Min: 20, Max: 20},
		{Type: engine.Raise, Min: 40, Max: 300},
	}
	got = Clamp(engine.Action{Type: engine.Bet, Amount: 60}, opts)
	require.Equal(t, engine.Action{Type: engine.Raise, Amount: 60}, got)
}

func TestClampAggressionDegradesToShortAllIn(t *testing.T) {
	t.Parallel()
	// Only a short all-in is available for more chips in the middle.
	opts := []engine.ActionOption{
		{Type: engine.Fold},
		{Type: engine.Call, Min: 20, Max: 20},
		{Type: engine.AllIn, Min: 35, Max: 35},
	}
	got := Clamp(engine.Action{Type: engine.Raise, Amount: 100}, opts)
	require.Equal(t, engine.Action{Type: engine.AllIn, Amount: 35}, got)
}

func TestClampAllInBecomesMaxRaise(t *testing.T) {
	t.Parallel()
	// Deep stacks: the legal set carries the full raise range and no all_in
	// option, so a shove request lands as a maximum raise.
	opts := []engine.ActionOption{
		{Type: engine.Fold},
		{Type: engine.Call, Min: 20, Max: 20},
		{Type: engine.Raise, Min: 40, Max: 980},
	}
	got := Clamp(engine.Action{Type: engine.AllIn}, opts)
	require.Equal(t, engine.Action{Type: engine.Raise, Amount: 980}, got)

	// Unopened pot: the shove becomes a maximum bet.
	opts = []engine.ActionOption{
		{Type: engine.Check},
		{Type: engine.Bet, Min: 10, Max: 1000},
	}
	got = Clamp(engine.Action{Type: engine.AllIn}, opts)
	require.Equal(t, engine.Action{Type: engine.Bet, Amount: 1000}, got)
}

func TestClampIllegalTypeDegradesSafely(t *testing.T) {
	t.Parallel()
	opts := []engine.ActionOption{
		{Type: engine.Fold},
		{Type: engine.Call, Min: 20, Max: 20},
	}
	got := Clamp(engine.Action{Type: engine.Check}, opts)
	require.Equal(t, engine.Action{Type: engine.Call, Amount: 20}, got)
}

func TestSafestPrefersCheckThenCallThenFold(t *testing.T) {
	t.Parallel()
	require.Equal(t, engine.Check,
		Safest([]engine.ActionOption{{Type: engine.Check}, {Type: engine.Bet, Min: 10, Max: 100}}).Type)

	require.Equal(t, engine.Call,
		Safest([]engine.ActionOption{{Type: engine.Fold}, {Type: engine.Call, Min: 20, Max: 20}}).Type)

	require.Equal(t, engine.Fold,
		Safest([]engine.ActionOption{{Type: engine.Fold}}).Type)
}

func TestSafestForcedAllIn(t *testing.T) {
	t.Parallel()
	// Fold is still offered facing an all-in, so it wins over all_in.
	got := Safest([]engine.ActionOption{{Type: engine.Fold}, {Type: engine.AllIn, Min: 50, Max: 50}})
	require.Equal(t, engine.Fold, got.Type)

	got = Safest([]engine.ActionOption{{Type: engine.AllIn, Min: 50, Max: 50}})
	require.Equal(t, engine.Action{Type: engine.AllIn, Amount: 50}, got)
}
