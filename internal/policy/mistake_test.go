package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/randutil"
)

func TestMistakeInjectorDisabledAtZeroFrequency(t *testing.T) {
	t.Parallel()
	inj := NewMistakeInjector(0, 1, randutil.New(1))
	view := facingBetView("As", "Ad")
	dec := Decision{Action: engine.Action{Type: engine.Fold}, Reasoning: "original"}

	for i := 0; i < 50; i++ {
		got := inj.Apply(dec, view.ValidActions)
		require.Equal(t, dec, got)
	}
}

func TestMistakeInjectorHeroCall(t *testing.T) {
	t.Parallel()
	inj := NewMistakeInjector(1, 1, randutil.New(1))
	view := facingBetView("7h", "4d")

	got := inj.Apply(Decision{Action: engine.Action{Type: engine.Fold}}, view.ValidActions)
	require.Equal(t, engine.Call, got.Action.Type)
	require.Equal(t, 50, got.Action.Amount)
}

func TestMistakeInjectorScaredFold(t *testing.T) {
	t.Parallel()
	inj := NewMistakeInjector(1, 1, randutil.New(1))
	view := facingBetView("As", "Ad")

	got := inj.Apply(Decision{Action: engine.Action{Type: engine.Call, Amount: 50}}, view.ValidActions)
	require.Equal(t, engine.Fold, got.Action.Type)
}

func TestMistakeInjectorNeverFoldsWithoutFoldOption(t *testing.T) {
	t.Parallel()
	view := freeCheckView("As", "Ad")
	for seed := int64(0); seed < 30; seed++ {
		inj := NewMistakeInjector(1, 1, randutil.New(seed))
		got := inj.Apply(Decision{Action: engine.Action{Type: engine.Check}}, view.ValidActions)
		require.NotEqual(t, engine.Fold, got.Action.Type, "seed %d", seed)
	}
}

func TestMistakeInjectorKeepsAggressionLegal(t *testing.T) {
	t.Parallel()
	view := facingBetView("As", "Ad")
	dec := Decision{Action: engine.Action{Type: engine.Raise, Amount: 300}}
	for seed := int64(0); seed < 50; seed++ {
		inj := NewMistakeInjector(1, 0.8, randutil.New(seed))
		got := inj.Apply(dec, view.ValidActions)
		legal(t, got, view.ValidActions)
	}
}

func TestWithMistakesWrapsPolicy(t *testing.T) {
	t.Parallel()
	view := facingBetView("7h", "4d")
	inj := NewMistakeInjector(1, 1, randutil.New(1))
	pol := WithMistakes(fixedPolicy{engine.Action{Type: engine.Fold}}, inj)

	dec, err := pol.Decide(context.Background(), view)
	require.NoError(t, err)
	require.Equal(t, engine.Call, dec.Action.Type, "the wrapper applies the injector")
}

type fixedPolicy struct {
	action engine.Action
}

func (f fixedPolicy) Decide(context.Context, engine.View) (Decision, error) {
	return Decision{Action: f.action}, nil
}
