package main

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/orchestrator"
	"github.com/hackur/holdemd/internal/policy"
	"github.com/hackur/holdemd/internal/randutil"
	"github.com/hackur/holdemd/internal/seatpool"
)

// SimulateCmd plays hands between rule-based seats with no server and no
// pacing, for tuning traits and sanity-checking the engine at volume.
type SimulateCmd struct {
	Tables     int    `kong:"default='4',help='Number of tables to run in parallel'"`
	Seats      int    `kong:"default='6',help='Seats per table'"`
	Hands      int    `kong:"default='100',help='Hands to play per table'"`
	SmallBlind int    `kong:"default='5',help='Small blind amount'"`
	BigBlind   int    `kong:"default='10',help='Big blind amount'"`
	StartChips int    `kong:"default='1000',help='Starting chip count'"`
	Seed       uint64 `kong:"default='1',help='Shuffle seed; table index is mixed in'"`
	LogLevel   string `kong:"default='warn',help='Log level: debug, info, warn, error'"`
}

func (c *SimulateCmd) Run() error {
	if c.Seats < 2 || c.Seats > 10 {
		return fmt.Errorf("seats must be between 2 and 10, got %d", c.Seats)
	}
	logger := setupLogger(c.LogLevel)

	start := time.Now()
	var g errgroup.Group
	results := make([]tableResult, c.Tables)
	for i := 0; i < c.Tables; i++ {
		g.Go(func() error {
			res, err := c.runTable(i)
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var hands int
	for i, res := range results {
		hands += res.hands
		logger.Info("table finished", "table", i, "hands", res.hands, "chip_leader", res.leader)
	}
	elapsed := time.Since(start)
	fmt.Printf("played %d hands across %d tables in %s (%.0f hands/sec)\n",
		hands, c.Tables, elapsed.Round(time.Millisecond), float64(hands)/elapsed.Seconds())
	return nil
}

type tableResult struct {
	hands  int
	leader string
}

func (c *SimulateCmd) runTable(index int) (tableResult, error) {
	seed := c.Seed + uint64(index)*0x9e3779b9
	rng := randutil.New(int64(seed))
	logger := setupLogger(c.LogLevel)

	seats := make([]engine.SeatConfig, c.Seats)
	for i := range seats {
		name := fmt.Sprintf("sim-%d-%d", index, i)
		seats[i] = engine.SeatConfig{ID: name, Name: name, Chips: c.StartChips, Auto: true}
	}
	game, err := engine.NewGame(fmt.Sprintf("sim-%d", index), seats, c.SmallBlind, c.BigBlind)
	if err != nil {
		return tableResult{}, err
	}

	pool := seatpool.NewPool(logger, seatpool.Options{})
	for i := range seats {
		traits := policy.Traits{
			Tightness:  0.3 + 0.4*rng.Float64(),
			Aggression: 0.3 + 0.4*rng.Float64(),
			BluffFreq:  0.05 + 0.1*rng.Float64(),
		}
		pool.Bind(game.ID, i, "", policy.NewRulePolicy(traits, randutil.New(int64(seed+uint64(i)+1))))
	}

	orch := orchestrator.New(logger, game, pool, quartz.NewReal(), rng, orchestrator.Config{
		RebuyChips: c.StartChips,
	})

	// Rule policies resolve synchronously, so each tick makes progress.
	// The step bound guards against a stalled table.
	maxSteps := c.Hands * 1000
	for step := 0; step < maxSteps; step++ {
		if game.HandNum >= c.Hands && game.Settled {
			break
		}
		if err := orch.Tick(); err != nil {
			return tableResult{}, err
		}
	}

	leader := ""
	best := -1
	for _, p := range game.Players {
		if p.Chips > best {
			best = p.Chips
			leader = p.Name
		}
	}
	return tableResult{hands: game.HandNum, leader: leader}, nil
}
