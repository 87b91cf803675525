package policy

import (
	"context"
	rand "math/rand/v2"

	"github.com/hackur/holdemd/internal/engine"
)

// MistakeInjector occasionally swaps a chosen action for a plausible
// human-like error: a hero call where a fold was right, a scared fold, a
// mis-sized bet, or a slow-played monster. The swapped action never leaves
// the legal set.
type MistakeInjector struct {
	Frequency float64 // chance per decision of injecting a mistake
	Severity  float64 // how far the mistake strays, in [0,1]
	rng       *rand.Rand
}

// NewMistakeInjector creates an injector; frequency 0 disables it.
func NewMistakeInjector(frequency, severity float64, rng *rand.Rand) *MistakeInjector {
	return &MistakeInjector{Frequency: frequency, Severity: severity, rng: rng}
}

// Apply possibly replaces dec with a mistake, clamped to opts.
func (m *MistakeInjector) Apply(dec Decision, opts []engine.ActionOption) Decision {
	if m == nil || m.Frequency <= 0 || m.rng.Float64() >= m.Frequency {
		return dec
	}

	switch dec.Action.Type {
	case engine.Fold:
		// Hero call.
		if opt, ok := option(opts, engine.Call); ok {
			dec.Action = engine.Action{Type: engine.Call, Amount: opt.Min}
			dec.Reasoning = "something feels off, calling anyway"
		}

	case engine.Call, engine.Check:
		// Scared fold, only where folding is actually offered.
		if _, ok := option(opts, engine.Fold); ok && m.rng.Float64() < m.Severity {
			dec.Action = engine.Action{Type: engine.Fold}
			dec.Reasoning = "talked myself out of it"
		}

	case engine.Bet, engine.Raise:
		if m.rng.Float64() < 0.5 {
			// Mis-sized bet: shrink or balloon by severity.
			if opt, ok := option(opts, dec.Action.Type); ok {
				factor := 1 - m.Severity
				if m.rng.Float64() < 0.5 {
					factor = 1 + 2*m.Severity
				}
				amount := int(float64(dec.Action.Amount) * factor)
				dec.Action = Clamp(engine.Action{Type: opt.Type, Amount: amount}, opts)
				dec.Reasoning = "eyeballing the sizing"
			}
		} else {
			// Slow-play.
			dec.Action = Safest(opts)
			dec.Reasoning = "keeping the pot small for now"
		}
	}

	return dec
}

// WithMistakes wraps inner so every decision passes through the injector.
func WithMistakes(inner Policy, inj *MistakeInjector) Policy {
	return &mistakePolicy{inner: inner, inj: inj}
}

type mistakePolicy struct {
	inner Policy
	inj   *MistakeInjector
}

func (mp *mistakePolicy) Decide(ctx context.Context, view engine.View) (Decision, error) {
	dec, err := mp.inner.Decide(ctx, view)
	if err != nil {
		return dec, err
	}
	return mp.inj.Apply(dec, view.ValidActions), nil
}
