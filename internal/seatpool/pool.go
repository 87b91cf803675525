// Package seatpool binds automated seats to decision workers and tracks
// in-flight decision requests across a stateless poll cycle.
package seatpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/hackur/holdemd/internal/engine"
	"github.com/hackur/holdemd/internal/policy"
)

// WorkerState is the lifecycle state of a seat's worker.
type WorkerState int

const (
	WorkerIdle WorkerState = iota
	WorkerThinking
	WorkerError
)

// String returns the state name
func (s WorkerState) String() string {
	return [...]string{"idle", "thinking", "error"}[s]
}

// Worker serves one automated seat for the seat's lifetime and owns
// exactly one conversational session.
type Worker struct {
	TableID   string
	Seat      int
	SessionID string
	Policy    policy.Policy

	mu           sync.Mutex
	state        WorkerState
	decisions    int
	totalLatency time.Duration
	pending      <-chan singleflight.Result
	startedAt    time.Time
}

// State returns the worker's current state.
func (w *Worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Stats returns the worker's decision count and mean latency.
func (w *Worker) Stats() (int, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.decisions == 0 {
		return 0, 0
	}
	return w.decisions, w.totalLatency / time.Duration(w.decisions)
}

// Pool owns the workers for every automated seat, keyed by table and seat
// so tables never share decision state.
type Pool struct {
	mu       sync.Mutex
	workers  map[string]*Worker
	group    singleflight.Group
	fallback func(view engine.View) policy.Policy
	timeout  time.Duration
	logger   *log.Logger
}

// Options configures a pool.
type Options struct {
	// DecisionTimeout caps one remote decision end to end. A timeout does
	// not cancel the turn; it converts into a fallback decision.
	DecisionTimeout time.Duration
	// Fallback builds the rule-based policy used when a worker's own
	// policy fails.
	Fallback func(view engine.View) policy.Policy
}

// NewPool creates a worker pool.
func NewPool(logger *log.Logger, opts Options) *Pool {
	timeout := opts.DecisionTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pool{
		workers:  make(map[string]*Worker),
		fallback: opts.Fallback,
		timeout:  timeout,
		logger:   logger.WithPrefix("seatpool"),
	}
}

func workerKey(tableID string, seat int) string {
	return fmt.Sprintf("%s/%d", tableID, seat)
}

// Bind attaches a worker to a table seat. Rebinding an already bound seat
// returns the existing worker.
func (p *Pool) Bind(tableID string, seat int, sessionID string, pol policy.Policy) *Worker {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := workerKey(tableID, seat)
	if w, ok := p.workers[key]; ok {
		return w
	}
	w := &Worker{
		TableID:   tableID,
		Seat:      seat,
		SessionID: sessionID,
		Policy:    pol,
		state:     WorkerIdle,
	}
	p.workers[key] = w
	return w
}

// Worker returns the worker bound to a table seat.
func (p *Pool) Worker(tableID string, seat int) (*Worker, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.workers[workerKey(tableID, seat)]
	return w, ok
}

// Release drops a seat's worker when the seat leaves the table.
func (p *Pool) Release(tableID string, seat int) {
	p.mu.Lock()
	delete(p.workers, workerKey(tableID, seat))
	p.mu.Unlock()
}

// RequestDecision drives a seat's decision without blocking. The first
// call starts the request and reports pending; later calls while it is in
// flight return the same pending result rather than issuing a duplicate;
// once resolved, the decision is returned and the worker goes idle. A
// failed remote call still yields a usable fallback decision.
func (p *Pool) RequestDecision(tableID string, seat int, view engine.View) (policy.Decision, bool, error) {
	w, ok := p.Worker(tableID, seat)
	if !ok {
		return policy.Decision{}, false, fmt.Errorf("no worker bound for table %s seat %d", tableID, seat)
	}

	w.mu.Lock()
	if w.pending == nil {
		key := workerKey(tableID, seat)
		w.startedAt = time.Now()
		w.pending = p.group.DoChan(key, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			defer cancel()
			dec, err := w.Policy.Decide(ctx, view)
			if err != nil {
				return policy.Decision{}, err
			}
			return dec, nil
		})
		w.state = WorkerThinking
		w.mu.Unlock()
		p.logger.Debug("decision requested", "table", tableID, "seat", seat)
		return policy.Decision{}, false, nil
	}
	pending := w.pending
	w.mu.Unlock()

	select {
	case res := <-pending:
		return p.resolve(w, view, res), true, nil
	default:
		return policy.Decision{}, false, nil
	}
}

// resolve finalizes a completed request and updates worker bookkeeping.
func (p *Pool) resolve(w *Worker, view engine.View, res singleflight.Result) policy.Decision {
	w.mu.Lock()
	w.pending = nil
	w.decisions++
	w.totalLatency += time.Since(w.startedAt)
	w.mu.Unlock()
	p.group.Forget(workerKey(w.TableID, w.Seat))

	if res.Err != nil {
		p.logger.Warn("remote decision failed, using fallback",
			"table", w.TableID, "seat", w.Seat, "err", res.Err)
		w.mu.Lock()
		w.state = WorkerError
		w.mu.Unlock()
		return p.fallbackDecision(view)
	}

	dec, ok := res.Val.(policy.Decision)
	if !ok {
		w.mu.Lock()
		w.state = WorkerError
		w.mu.Unlock()
		return p.fallbackDecision(view)
	}

	w.mu.Lock()
	w.state = WorkerIdle
	w.mu.Unlock()
	return dec
}

func (p *Pool) fallbackDecision(view engine.View) policy.Decision {
	if p.fallback != nil {
		if dec, err := p.fallback(view).Decide(context.Background(), view); err == nil {
			dec.Action = policy.Clamp(dec.Action, view.ValidActions)
			return dec
		}
	}
	return policy.Decision{Action: policy.Safest(view.ValidActions), Reasoning: "decision worker unavailable"}
}
