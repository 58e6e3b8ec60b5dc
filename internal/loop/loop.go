// Package loop runs the autonomous Reason -> Act -> Observe -> Reflect
// controller. Each iteration performs exactly one bounded action; anything
// open-ended (inner retries, unbounded search) belongs to the caller's
// policy, not here.
package loop

import (
	"context"
	"time"

	"github.com/google/uuid"

	"overseer/internal/reflection"
)

type Phase string

const (
	PhaseReasoning  Phase = "REASONING"
	PhaseActing     Phase = "ACTING"
	PhaseObserving  Phase = "OBSERVING"
	PhaseReflecting Phase = "REFLECTING"
)

// Outcome is the terminal state of a session. The three failure modes are
// distinguishable so callers can decide whether re-running makes sense.
type Outcome string

const (
	OutcomeDone            Outcome = "DONE"
	OutcomeFailedCap       Outcome = "FAILED_CAP"
	OutcomeFailedTimeout   Outcome = "FAILED_TIMEOUT"
	OutcomeFailedCancelled Outcome = "FAILED_CANCELLED"
)

// Decision is one bounded action chosen by the policy: what to do, under
// which strategy, and how likely the policy believes it is to work.
type Decision struct {
	ActionType string
	Strategy   string
	Confidence float64
	Apply      func(ctx context.Context) error
}

// Policy proposes the next action. Implementations typically consult planner
// and orchestrator outputs plus the strategy state handed to them.
type Policy interface {
	Propose(ctx context.Context, state reflection.StrategyState) (*Decision, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, state reflection.StrategyState) (*Decision, error)

func (f PolicyFunc) Propose(ctx context.Context, state reflection.StrategyState) (*Decision, error) {
	return f(ctx, state)
}

type Options struct {
	MaxIterations int
	Timeout       time.Duration

	// Strategies is the rotation order; the first entry is the initial
	// strategy. When the reflection engine votes to switch, the loop moves
	// to the next entry, wrapping around.
	Strategies []string
}

// IterationRecord is one row of a session trace.
type IterationRecord struct {
	Iteration  int     `json:"iteration"`
	Strategy   string  `json:"strategy"`
	ActionType string  `json:"action_type"`
	Confidence float64 `json:"confidence"`
	Succeeded  bool    `json:"succeeded"`
	Switched   bool    `json:"switched"`
	Err        string  `json:"err,omitempty"`
	DurationMs int64   `json:"duration_ms"`
}

// Result summarizes a finished session.
type Result struct {
	SessionID     string            `json:"session_id"`
	Outcome       Outcome           `json:"outcome"`
	Iterations    int               `json:"iterations"`
	FinalStrategy string            `json:"final_strategy"`
	Trace         []IterationRecord `json:"trace"`
}

// Loop drives sessions against one reflection engine. The active strategy is
// per-session state threaded through Run, never process-global, so multiple
// loops can run independently.
type Loop struct {
	engine *reflection.Engine
	policy Policy
}

func New(engine *reflection.Engine, policy Policy) *Loop {
	return &Loop{engine: engine, policy: policy}
}

// Run iterates Reason -> Act -> Observe -> Reflect until the goal holds or a
// hard bound is hit. The goal is checked before the first iteration and after
// every action. Exactly one action runs per iteration, and never more than
// MaxIterations actions in total.
func (l *Loop) Run(ctx context.Context, goal func() bool, opts Options) (*Result, error) {
	result := &Result{SessionID: uuid.New().String()[:8]}

	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = []string{"default"}
	}
	strategyIdx := 0
	result.FinalStrategy = strategies[strategyIdx]

	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	if goal() {
		result.Outcome = OutcomeDone
		return result, nil
	}

	for iter := 1; iter <= maxIterations; iter++ {
		if ctx.Err() != nil {
			result.Outcome = OutcomeFailedCancelled
			return result, ctx.Err()
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			result.Outcome = OutcomeFailedTimeout
			return result, nil
		}

		strategy := strategies[strategyIdx]
		rec := IterationRecord{Iteration: iter, Strategy: strategy}
		start := time.Now()

		// Reasoning: pick the next action given the derived strategy state.
		state, err := l.engine.StrategyState(strategy)
		if err != nil {
			return result, err
		}
		decision, err := l.policy.Propose(ctx, state)
		if err != nil {
			// No action was taken, but the iteration is spent: the cap
			// bounds work, not successful work.
			rec.Err = err.Error()
			rec.DurationMs = time.Since(start).Milliseconds()
			result.Trace = append(result.Trace, rec)
			result.Iterations = iter
			continue
		}
		rec.ActionType = decision.ActionType
		rec.Confidence = decision.Confidence

		// Acting: exactly one bounded action.
		actErr := decision.Apply(ctx)

		// Observing: did the action work, and does the goal hold now?
		succeeded := actErr == nil
		achieved := goal()
		rec.Succeeded = succeeded
		if actErr != nil {
			rec.Err = actErr.Error()
		}

		// Reflecting: write the outcome, then maybe rotate strategy.
		if err := l.engine.Record(decision.ActionType, strategy, decision.Confidence, succeeded); err != nil {
			return result, err
		}
		switchIt, err := l.engine.ShouldSwitchStrategy(strategy)
		if err != nil {
			return result, err
		}
		if switchIt && len(strategies) > 1 {
			strategyIdx = (strategyIdx + 1) % len(strategies)
			rec.Switched = true
		}

		rec.DurationMs = time.Since(start).Milliseconds()
		result.Trace = append(result.Trace, rec)
		result.Iterations = iter
		result.FinalStrategy = strategies[strategyIdx]

		if ctx.Err() != nil {
			result.Outcome = OutcomeFailedCancelled
			return result, context.Cause(ctx)
		}
		if achieved {
			result.Outcome = OutcomeDone
			return result, nil
		}
	}

	result.Outcome = OutcomeFailedCap
	return result, nil
}
