package policy

import (
	"context"
	"fmt"
	rand "math/rand/v2"

	"github.com/hackur/holdemd/internal/deck"
	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/eval"
)

// Traits shape a rule-based seat's personality. All values are in [0,1].
type Traits struct {
	Tightness  float64 // higher folds more marginal hands
	Aggression float64 // higher sizes bets larger
	BluffFreq  float64 // chance of betting a weak hand
}

// DefaultTraits returns a middle-of-the-road personality.
func DefaultTraits() Traits {
	return Traits{Tightness: 0.5, Aggression: 0.5, BluffFreq: 0.08}
}

// RulePolicy is the synchronous heuristic policy. It is always available
// as the fallback when a remote decision fails.
type RulePolicy struct {
	traits Traits
	rng    *rand.Rand
}

// NewRulePolicy creates a rule-based policy with the given personality.
func NewRulePolicy(traits Traits, rng *rand.Rand) *RulePolicy {
	return &RulePolicy{traits: traits, rng: rng}
}

// Decide estimates hand strength, applies personality jitter, and picks
// raise/call/fold against thresholds and pot odds.
func (rp *RulePolicy) Decide(_ context.Context, view engine.View) (Decision, error) {
	opts := view.ValidActions
	if len(opts) == 0 {
		return Decision{}, fmt.Errorf("no legal actions for seat %d", view.YourSeat)
	}

	strength := rp.estimateStrength(view)

	// Personality jitter: up to +/-10%, larger for looser players.
	jitter := (rp.rng.Float64()*2 - 1) * 0.1 / (0.5 + rp.traits.Tightness)
	strength = clamp01(strength + jitter)

	toCall := view.ToCall()
	potBefore := view.PotTotal()
	potOdds := 0.0
	if toCall > 0 {
		potOdds = float64(potBefore) / float64(potBefore+toCall)
	}

	raiseAt := 0.55 + 0.25*rp.traits.Tightness
	callAt := 0.25 + 0.20*rp.traits.Tightness

	bluffing := rp.rng.Float64() < rp.traits.BluffFreq*(1-strength)

	if strength >= raiseAt || bluffing {
		if dec, ok := rp.aggressive(view, opts, strength, bluffing); ok {
			return dec, nil
		}
	}

	if toCall == 0 {
		return Decision{
			Action:     Safest(opts),
			Reasoning:  fmt.Sprintf("checking with strength %.2f", strength),
			Confidence: strength,
		}, nil
	}

	// Call when the hand clears the threshold or the price is right.
	if strength >= callAt || strength >= 1-potOdds {
		if opt, ok := option(opts, engine.Call); ok {
			return Decision{
				Action:     engine.Action{Type: engine.Call, Amount: opt.Min},
				Reasoning:  fmt.Sprintf("calling: strength %.2f, pot odds %.2f", strength, potOdds),
				Confidence: strength,
			}, nil
		}
		// Facing an all-in-or-fold spot with a strong enough hand.
		if strength >= raiseAt {
			if opt, ok := option(opts, engine.AllIn); ok {
				return Decision{
					Action:     engine.Action{Type: engine.AllIn, Amount: opt.Min},
					Reasoning:  fmt.Sprintf("committed with strength %.2f", strength),
					Confidence: strength,
				}, nil
			}
		}
	}

	return Decision{
		Action:     engine.Action{Type: engine.Fold},
		Reasoning:  fmt.Sprintf("folding: strength %.2f below threshold %.2f", strength, callAt),
		Confidence: 1 - strength,
	}, nil
}

// aggressive tries a bet or raise sized between the legal bounds by
// strength and aggression.
func (rp *RulePolicy) aggressive(view engine.View, opts []engine.ActionOption, strength float64, bluffing bool) (Decision, bool) {
	for _, t := range []engine.ActionType{engine.Bet, engine.Raise} {
		opt, ok := option(opts, t)
		if !ok {
			continue
		}
		scale := clamp01(strength * (0.4 + 0.9*rp.traits.Aggression))
		amount := opt.Min + int(float64(opt.Max-opt.Min)*scale)
		reason := fmt.Sprintf("value %s with strength %.2f", t, strength)
		if bluffing {
			amount = opt.Min
			reason = "taking a stab at the pot"
		}
		return Decision{
			Action:     engine.Action{Type: t, Amount: amount},
			Reasoning:  reason,
			Confidence: strength,
		}, true
	}
	if !bluffing && strength > 0.8 {
		if opt, ok := option(opts, engine.AllIn); ok {
			return Decision{
				Action:     engine.Action{Type: engine.AllIn, Amount: opt.Min},
				Reasoning:  fmt.Sprintf("shoving with strength %.2f", strength),
				Confidence: strength,
			}, true
		}
	}
	return Decision{}, false
}

// estimateStrength maps the viewing player's hand to [0,1].
func (rp *RulePolicy) estimateStrength(view engine.View) float64 {
	if len(view.HoleCards) != 2 {
		return 0
	}
	if len(view.Community) == 0 {
		return preflopStrength(view.HoleCards)
	}
	return postflopStrength(view.HoleCards, view.Community)
}

// preflopStrength is a closed-form estimate from rank sum, suitedness,
// connectedness, and a pair bonus.
func preflopStrength(hole []deck.Card) float64 {
	a, b := hole[0], hole[1]
	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}

	// Rank sum spans 4 (2-2) to 28 (A-A).
	s := float64(int(hi)+int(lo)-4) / 24.0 * 0.5

	if hi == lo {
		s += 0.30
	}
	if a.Suit == b.Suit {
		s += 0.07
	}
	switch int(hi) - int(lo) {
	case 1:
		s += 0.06
	case 2:
		s += 0.03
	}
	return clamp01(s)
}

// strengthByCategory maps hand categories to a base strength.
var strengthByCategory = map[eval.Category]float64{
	eval.HighCard:      0.10,
	eval.Pair:          0.30,
	eval.TwoPair:       0.55,
	eval.ThreeOfAKind:  0.70,
	eval.Straight:      0.80,
	eval.Flush:         0.85,
	eval.FullHouse:     0.92,
	eval.FourOfAKind:   0.97,
	eval.StraightFlush: 1.00,
	eval.RoyalFlush:    1.00,
}

// postflopStrength maps the made hand's category to a base strength plus a
// kicker-scaled bonus.
func postflopStrength(hole, community []deck.Card) float64 {
	cards := append(append([]deck.Card{}, hole...), community...)
	result, err := eval.Evaluate(cards)
	if err != nil {
		return 0
	}

	s := strengthByCategory[result.Category]
	if len(result.Tiebreaks) > 0 {
		s += float64(result.Tiebreaks[0]) / float64(deck.Ace) * 0.05
	}
	return clamp01(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
