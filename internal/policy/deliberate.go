package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hackur/holdemd/internal/deck"
	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/llm"
)

// Asker is the conversational surface a deliberation runs against. Each
// call sees the answers to earlier calls as context.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// DeliberationConfig bounds the multi-step protocol.
type DeliberationConfig struct {
	// Steps are the self-questioning prompts issued before the final
	// action prompt, in order.
	Steps       []string
	MaxSteps    int
	StepTimeout time.Duration
}

// DefaultDeliberationConfig returns the standard question sequence.
func DefaultDeliberationConfig() DeliberationConfig {
	return DeliberationConfig{
		Steps: []string{
			"How strong is your hand right now, and how might it improve?",
			"Given the action so far, what range of hands do your opponents likely hold?",
			"What are your pot odds, and do they justify continuing?",
			"Does your table image suggest playing this straightforwardly or deceptively?",
		},
		MaxSteps:    4,
		StepTimeout: 15 * time.Second,
	}
}

// DeliberatePolicy asks a remote model a fixed sequence of questions about
// the spot, then demands a structured action. Trivial decisions take a
// quick path with no deliberation steps. Replies are parsed permissively
// and always clamped to the legal action set; any failure falls back to
// the rule-based policy so the hand never stalls.
type DeliberatePolicy struct {
	session  Asker
	config   DeliberationConfig
	fallback Policy
	logger   *log.Logger
}

// NewDeliberatePolicy creates a deliberation policy bound to one
// conversational session.
func NewDeliberatePolicy(logger *log.Logger, session Asker, config DeliberationConfig, fallback Policy) *DeliberatePolicy {
	if config.MaxSteps <= 0 || config.MaxSteps > len(config.Steps) {
		config.MaxSteps = len(config.Steps)
	}
	if config.StepTimeout <= 0 {
		config.StepTimeout = 15 * time.Second
	}
	return &DeliberatePolicy{
		session:  session,
		config:   config,
		fallback: fallback,
		logger:   logger.WithPrefix("deliberate"),
	}
}

// Decide runs the deliberation protocol and returns a legal action.
func (dp *DeliberatePolicy) Decide(ctx context.Context, view engine.View) (Decision, error) {
	situation := describeSituation(view)

	if !quickSpot(view) {
		for i, question := range dp.config.Steps {
			if i >= dp.config.MaxSteps {
				break
			}
			prompt := question
			if i == 0 {
				prompt = situation + "\n\n" + question
			}
			if _, err := dp.ask(ctx, prompt); err != nil {
				dp.logger.Warn("deliberation step failed, falling back", "step", i, "err", err)
				return dp.fallbackDecision(ctx, view, err)
			}
		}
	}

	reply, err := dp.ask(ctx, situation+"\n\n"+finalPrompt(view))
	if err != nil {
		dp.logger.Warn("final decision request failed, falling back", "err", err)
		return dp.fallbackDecision(ctx, view, err)
	}

	parsed := llm.ParseDecision(reply)
	if parsed.Kind == llm.ParseFailed {
		dp.logger.Warn("unparseable model reply, degrading to safest action")
		return Decision{
			Action:     Safest(view.ValidActions),
			Reasoning:  "model reply not understood",
			Confidence: 0,
		}, nil
	}

	action := engine.Action{Amount: parsed.Amount}
	if t, err := engine.ParseActionType(parsed.Action); err == nil {
		action.Type = t
	} else {
		return Decision{Action: Safest(view.ValidActions), Reasoning: "model chose unknown action"}, nil
	}

	return Decision{
		Action:     Clamp(action, view.ValidActions),
		Reasoning:  parsed.Reasoning,
		Confidence: parsed.Confidence,
	}, nil
}

func (dp *DeliberatePolicy) ask(ctx context.Context, prompt string) (string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, dp.config.StepTimeout)
	defer cancel()
	return dp.session.Ask(stepCtx, prompt)
}

func (dp *DeliberatePolicy) fallbackDecision(ctx context.Context, view engine.View, cause error) (Decision, error) {
	if dp.fallback == nil {
		return Decision{Action: Safest(view.ValidActions), Reasoning: "remote decision unavailable"}, nil
	}
	dec, err := dp.fallback.Decide(ctx, view)
	if err != nil {
		return Decision{Action: Safest(view.ValidActions), Reasoning: "remote decision unavailable"}, nil
	}
	dec.Reasoning = fmt.Sprintf("fallback after remote failure (%v): %s", cause, dec.Reasoning)
	return dec, nil
}

// quickSpot reports whether the decision is trivial enough to skip the
// deliberation steps: a free check, or a heads-up preflop spot.
func quickSpot(view engine.View) bool {
	if view.ToCall() == 0 {
		for _, opt := range view.ValidActions {
			if opt.Type == engine.Check {
				return true
			}
		}
	}
	return view.Phase == engine.Preflop.String() && view.LiveOpponents() == 1
}

// describeSituation renders the spot the way a player would see it.
func describeSituation(view engine.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing Texas Hold'em. Street: %s.\n", view.Phase)
	fmt.Fprintf(&b, "Your hole cards: %s\n", cardList(view.HoleCards))
	if len(view.Community) > 0 {
		fmt.Fprintf(&b, "Board: %s\n", cardList(view.Community))
	}
	fmt.Fprintf(&b, "Pot: %d. Your stack: %d. To call: %d.\n",
		view.PotTotal(), view.Players[view.YourSeat].Chips, view.ToCall())
	fmt.Fprintf(&b, "Your position: seat %d of %d, dealer at seat %d. Opponents still in: %d.\n",
		view.YourSeat, len(view.Players), view.Button, view.LiveOpponents())
	fmt.Fprintf(&b, "Legal actions: %s.", actionList(view.ValidActions))
	return b.String()
}

func finalPrompt(view engine.View) string {
	return fmt.Sprintf(`Commit to your action now. Reply with a JSON object:
{"action": "<%s>", "amount": <chips, for bet/raise>, "reasoning": "<one sentence>", "confidence": <0.0-1.0>}`,
		actionList(view.ValidActions))
}

func cardList(cards []deck.Card) string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.String()
	}
	return strings.Join(names, " ")
}

func actionList(opts []engine.ActionOption) string {
	names := make([]string, len(opts))
	for i, opt := range opts {
		if opt.Type == engine.Bet || opt.Type == engine.Raise {
			names[i] = fmt.Sprintf("%s (%d-%d)", opt.Type, opt.Min, opt.Max)
		} else {
			names[i] = opt.Type.String()
		}
	}
	return strings.Join(names, ", ")
}
