package server

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/hackur/holdemd/internal/config"
	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/llm"
	"github.com/hackur/holdemd/internal/orchestrator"
	"github.com/hackur/holdemd/internal/policy"
	"github.com/hackur/holdemd/internal/randutil"
	"github.com/hackur/holdemd/internal/seatpool"
)

// Table pairs an orchestrator with its identity for the HTTP layer.
type Table struct {
	ID   string
	Name string
	Orch *orchestrator.Orchestrator
}

// Manager owns every table on the server and the shared decision pool.
// Tables are assembled once from configuration; players are addressed by
// their seat name.
type Manager struct {
	mu       sync.RWMutex
	tables   map[string]*Table
	pool     *seatpool.Pool
	registry *llm.Registry
	logger   *log.Logger
}

// NewManager builds all configured tables, binding a decision worker for
// every automated seat.
func NewManager(logger *log.Logger, cfg *config.Config, clock quartz.Clock, seed uint64) (*Manager, error) {
	m := &Manager{
		tables: make(map[string]*Table),
		logger: logger.WithPrefix("manager"),
	}

	m.pool = seatpool.NewPool(logger, seatpool.Options{
		Fallback: func(view engine.View) policy.Policy {
			return policy.NewRulePolicy(policy.DefaultTraits(), randutil.New(int64(seed ^ 0xfa11bac)))
		},
	})

	if needsModel(cfg) {
		client := llm.NewClient(logger, llm.Options{
			BaseURL: cfg.Model.BaseURL,
			APIKey:  os.Getenv(cfg.Model.APIKeyEnv),
			Model:   cfg.Model.Name,
			Timeout: time.Duration(cfg.Model.TimeoutMs) * time.Millisecond,
		})
		m.registry = llm.NewRegistry(client)
	}

	for i, tc := range cfg.Tables {
		if err := m.addTable(tc, clock, seed+uint64(i)); err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
	}
	return m, nil
}

func needsModel(cfg *config.Config) bool {
	for _, tc := range cfg.Tables {
		for _, sc := range tc.Seats {
			if sc.Auto && sc.Policy == "deliberate" {
				return true
			}
		}
	}
	return false
}

func (m *Manager) addTable(tc config.TableConfig, clock quartz.Clock, seed uint64) error {
	seats := make([]engine.SeatConfig, 0, len(tc.Seats))
	seen := make(map[string]bool)
	for _, sc := range tc.Seats {
		if seen[sc.Name] {
			return fmt.Errorf("duplicate seat name %q", sc.Name)
		}
		seen[sc.Name] = true
		seats = append(seats, engine.SeatConfig{
			ID:    sc.Name,
			Name:  sc.Name,
			Chips: sc.BuyIn,
			Auto:  sc.Auto,
		})
	}

	game, err := engine.NewGame(tc.Name, seats, tc.SmallBlind, tc.BigBlind)
	if err != nil {
		return err
	}

	orch := orchestrator.New(m.logger, game, m.pool, clock, randutil.New(int64(seed)), orchestrator.Config{
		ShowdownHold: time.Duration(tc.ShowdownHoldMs) * time.Millisecond,
		MinThink:     time.Duration(tc.MinThinkMs) * time.Millisecond,
		RebuyChips:   tc.RebuyChips,
	})

	for i, sc := range tc.Seats {
		if !sc.Auto {
			continue
		}
		pol, sessionID, err := m.buildPolicy(sc, seed+uint64(i)*7919)
		if err != nil {
			return err
		}
		m.pool.Bind(tc.Name, i, sessionID, pol)
	}

	m.tables[tc.Name] = &Table{ID: tc.Name, Name: tc.Name, Orch: orch}
	m.logger.Info("table ready", "table", tc.Name, "seats", len(tc.Seats))
	return nil
}

func (m *Manager) buildPolicy(sc config.SeatConfig, seed uint64) (policy.Policy, string, error) {
	rng := randutil.New(int64(seed))
	traits := policy.Traits{
		Tightness:  sc.Tightness,
		Aggression: sc.Aggression,
		BluffFreq:  sc.BluffFreq,
	}
	rules := policy.NewRulePolicy(traits, rng)

	var pol policy.Policy = rules
	switch sc.Policy {
	case "", "rules":
	case "deliberate":
		if m.registry == nil {
			return nil, "", fmt.Errorf("seat %s: no model configured", sc.Name)
		}
		session := m.registry.Create(systemPrompt(sc.Name))
		dp := policy.NewDeliberatePolicy(m.logger, session, policy.DefaultDeliberationConfig(), rules)
		m.logger.Info("deliberate seat", "seat", sc.Name, "session", session.ID)
		return withMistakes(dp, sc, rng), session.ID, nil
	default:
		return nil, "", fmt.Errorf("seat %s: unknown policy %q", sc.Name, sc.Policy)
	}
	return withMistakes(pol, sc, rng), "", nil
}

func withMistakes(pol policy.Policy, sc config.SeatConfig, rng *rand.Rand) policy.Policy {
	if sc.MistakeFreq <= 0 {
		return pol
	}
	return policy.WithMistakes(pol, policy.NewMistakeInjector(sc.MistakeFreq, 0.5, rng))
}

func systemPrompt(name string) string {
	return fmt.Sprintf("You are %s, a poker player in a no-limit Texas Hold'em cash game. "+
		"Reason about each hand step by step when asked, then commit to a single action.", name)
}

// Table returns the table with the given id.
func (m *Manager) Table(id string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	return t, ok
}

// Tables returns every table, for listings.
func (m *Manager) Tables() []*Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	return out
}

// RunTicker drives every table's orchestrator until ctx is cancelled.
// The HTTP poll endpoints also tick on demand; this keeps automated seats
// moving while no client is polling.
func (m *Manager) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range m.Tables() {
				if err := t.Orch.Tick(); err != nil {
					m.logger.Error("tick failed", "table", t.ID, "error", err)
				}
			}
		}
	}
}
