package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"overseer/internal/reflection"
)

func alwaysFail(actionType, strategy string) Policy {
	return PolicyFunc(func(ctx context.Context, state reflection.StrategyState) (*Decision, error) {
		return &Decision{
			ActionType: actionType,
			Strategy:   strategy,
			Confidence: 0.5,
			Apply:      func(ctx context.Context) error { return errors.New("no effect") },
		}, nil
	})
}

func TestRunStopsAtCapExactly(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())
	l := New(engine, alwaysFail("fix", "greedy"))

	result, err := l.Run(context.Background(), func() bool { return false }, Options{
		MaxIterations: 5,
		Strategies:    []string{"greedy"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeFailedCap {
		t.Errorf("expected FAILED_CAP, got %s", result.Outcome)
	}
	if result.Iterations != 5 {
		t.Errorf("expected exactly 5 iterations, got %d", result.Iterations)
	}
	if len(result.Trace) != 5 {
		t.Errorf("expected 5 trace rows, got %d", len(result.Trace))
	}
}

func TestRunDoneWhenGoalHolds(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())

	applied := 0
	policy := PolicyFunc(func(ctx context.Context, state reflection.StrategyState) (*Decision, error) {
		return &Decision{
			ActionType: "fix",
			Confidence: 0.9,
			Apply: func(ctx context.Context) error {
				applied++
				return nil
			},
		}, nil
	})

	l := New(engine, policy)
	result, err := l.Run(context.Background(), func() bool { return applied >= 2 }, Options{MaxIterations: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeDone {
		t.Errorf("expected DONE, got %s", result.Outcome)
	}
	if result.Iterations != 2 || applied != 2 {
		t.Errorf("goal held after 2 actions, got iterations=%d applied=%d", result.Iterations, applied)
	}
}

func TestRunGoalAlreadySatisfied(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())
	l := New(engine, alwaysFail("fix", "greedy"))

	result, err := l.Run(context.Background(), func() bool { return true }, Options{MaxIterations: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeDone || result.Iterations != 0 {
		t.Errorf("satisfied goal should finish without acting: %+v", result)
	}
}

func TestRunSwitchesStrategyAfterThreeFailures(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())
	l := New(engine, alwaysFail("fix", ""))

	result, err := l.Run(context.Background(), func() bool { return false }, Options{
		MaxIterations: 4,
		Strategies:    []string{"greedy", "cautious"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Iterations 1-3 run greedy; the third failure trips the switch, so
	// iteration 4 runs cautious.
	for i := 0; i < 3; i++ {
		if result.Trace[i].Strategy != "greedy" {
			t.Errorf("iteration %d should use greedy, got %s", i+1, result.Trace[i].Strategy)
		}
	}
	if !result.Trace[2].Switched {
		t.Error("third consecutive failure should trigger the switch")
	}
	if result.Trace[3].Strategy != "cautious" {
		t.Errorf("iteration 4 should use cautious, got %s", result.Trace[3].Strategy)
	}
	if result.FinalStrategy != "cautious" {
		t.Errorf("final strategy should be cautious, got %s", result.FinalStrategy)
	}
}

func TestRunTimeout(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())
	policy := PolicyFunc(func(ctx context.Context, state reflection.StrategyState) (*Decision, error) {
		return &Decision{
			ActionType: "slow",
			Confidence: 0.5,
			Apply: func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				return nil
			},
		}, nil
	})

	l := New(engine, policy)
	result, err := l.Run(context.Background(), func() bool { return false }, Options{
		MaxIterations: 1000,
		Timeout:       30 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Outcome != OutcomeFailedTimeout {
		t.Errorf("expected FAILED_TIMEOUT, got %s", result.Outcome)
	}
	if result.Iterations >= 1000 {
		t.Error("timeout did not bound the session")
	}
}

func TestRunCancelled(t *testing.T) {
	engine := reflection.NewEngine(reflection.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())

	policy := PolicyFunc(func(c context.Context, state reflection.StrategyState) (*Decision, error) {
		return &Decision{
			ActionType: "fix",
			Confidence: 0.5,
			Apply: func(c context.Context) error {
				cancel() // observed after the action completes
				return nil
			},
		}, nil
	})

	l := New(engine, policy)
	result, err := l.Run(ctx, func() bool { return false }, Options{MaxIterations: 10})
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if result.Outcome != OutcomeFailedCancelled {
		t.Errorf("expected FAILED_CANCELLED, got %s", result.Outcome)
	}
	if result.Iterations != 1 {
		t.Errorf("no second action may start after cancellation, got %d iterations", result.Iterations)
	}
}
