package llm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseKind distinguishes how a model reply was understood. Provider reply
// shapes vary, so every reply funnels through one normalization into this
// tagged union rather than being trusted as a fixed schema.
type ParseKind int

const (
	ParsedStructured ParseKind = iota
	ParsedText
	ParseFailed
)

// ParsedDecision is the normalized outcome of parsing a model reply.
// Action is one of the engine wire names; Amount is in chips. The fields
// are advisory until the caller clamps them against the legal action set.
type ParsedDecision struct {
	Kind       ParseKind
	Action     string
	Amount     int
	Reasoning  string
	Confidence float64
}

type structuredReply struct {
	Action     string  `json:"action"`
	Amount     int     `json:"amount"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// ParseDecision extracts an action from raw model output: structured JSON
// first, then a free-text keyword scan. It never panics on garbage.
func ParseDecision(raw string) ParsedDecision {
	if d, ok := parseStructured(raw); ok {
		return d
	}
	if d, ok := parseKeywords(raw); ok {
		return d
	}
	return ParsedDecision{Kind: ParseFailed, Reasoning: strings.TrimSpace(raw)}
}

// parseStructured looks for the first JSON object in the reply, including
// inside markdown fences, and decodes it.
func parseStructured(raw string) (ParsedDecision, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ParsedDecision{}, false
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return ParsedDecision{}, false
	}
	action := normalizeAction(reply.Action)
	if action == "" {
		return ParsedDecision{}, false
	}
	return ParsedDecision{
		Kind:       ParsedStructured,
		Action:     action,
		Amount:     reply.Amount,
		Reasoning:  reply.Reasoning,
		Confidence: reply.Confidence,
	}, true
}

// parseKeywords scans free text for an action word, taking a trailing
// number as the amount for bets and raises.
func parseKeywords(raw string) (ParsedDecision, bool) {
	text := strings.ToLower(raw)

	for _, kw := range []string{"all_in", "all-in", "all in", "allin"} {
		if strings.Contains(text, kw) {
			return ParsedDecision{Kind: ParsedText, Action: "all_in", Reasoning: strings.TrimSpace(raw)}, true
		}
	}

	for _, kw := range []string{"raise", "bet"} {
		if idx := strings.Index(text, kw); idx >= 0 {
			action := "raise"
			if kw == "bet" {
				action = "bet"
			}
			amount := firstNumberAfter(text[idx+len(kw):])
			return ParsedDecision{Kind: ParsedText, Action: action, Amount: amount, Reasoning: strings.TrimSpace(raw)}, true
		}
	}

	for _, kw := range []string{"check", "call", "fold"} {
		if strings.Contains(text, kw) {
			return ParsedDecision{Kind: ParsedText, Action: kw, Reasoning: strings.TrimSpace(raw)}, true
		}
	}

	return ParsedDecision{}, false
}

func firstNumberAfter(text string) int {
	for _, field := range strings.Fields(text) {
		field = strings.Trim(field, "$.,:;()")
		if n, err := strconv.Atoi(field); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func normalizeAction(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return "fold"
	case "check":
		return "check"
	case "call":
		return "call"
	case "bet":
		return "bet"
	case "raise":
		return "raise"
	case "all_in", "all-in", "allin", "all in":
		return "all_in"
	}
	return ""
}
