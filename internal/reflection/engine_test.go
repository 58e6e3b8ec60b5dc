package reflection

import (
	"testing"
)

func record(t *testing.T, e *Engine, actionType, strategy string, predicted float64, success bool) {
	t.Helper()
	if err := e.Record(actionType, strategy, predicted, success); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestSuccessRateWindow(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	// Older history: all failures. Recent window: all successes.
	for i := 0; i < 4; i++ {
		record(t, e, "fix", "greedy", 0.8, false)
	}
	for i := 0; i < 4; i++ {
		record(t, e, "fix", "greedy", 0.8, true)
	}

	recent, err := e.SuccessRate("fix", "greedy", 4)
	if err != nil {
		t.Fatal(err)
	}
	if recent != 1.0 {
		t.Errorf("windowed rate should be 1.0, got %v", recent)
	}

	overall, err := e.SuccessRate("fix", "greedy", 0)
	if err != nil {
		t.Fatal(err)
	}
	if overall != 0.5 {
		t.Errorf("overall rate should be 0.5, got %v", overall)
	}

	if none, _ := e.SuccessRate("ghost", "greedy", 0); none != 0 {
		t.Errorf("unknown action type should rate 0, got %v", none)
	}
}

func TestShouldSwitchStrategyAtThreeConsecutiveFailures(t *testing.T) {
	e := NewEngine(NewMemoryStore())

	record(t, e, "fix", "greedy", 0.7, false)
	record(t, e, "fix", "greedy", 0.7, false)
	if switchIt, _ := e.ShouldSwitchStrategy("greedy"); switchIt {
		t.Error("2 consecutive failures must not trigger a switch")
	}

	record(t, e, "fix", "greedy", 0.7, false)
	if switchIt, _ := e.ShouldSwitchStrategy("greedy"); !switchIt {
		t.Error("3 consecutive failures must trigger a switch")
	}

	// A success resets the streak.
	record(t, e, "fix", "greedy", 0.7, true)
	record(t, e, "fix", "greedy", 0.7, false)
	record(t, e, "fix", "greedy", 0.7, false)
	if switchIt, _ := e.ShouldSwitchStrategy("greedy"); switchIt {
		t.Error("streak should have reset on success")
	}
}

func TestCalibrationError(t *testing.T) {
	e := NewEngine(NewMemoryStore())

	// Bucket [0.8, 1.0): predicted ~0.9 but only 1 of 6 succeeds. Gap is
	// well past 0.15 with >= 5 samples, so the bucket is miscalibrated.
	for i := 0; i < 6; i++ {
		record(t, e, "fix", "greedy", 0.9, i == 0)
	}
	// Bucket [0.4, 0.6): well calibrated, 3 of 6 succeed at 0.5.
	for i := 0; i < 6; i++ {
		record(t, e, "fix", "greedy", 0.5, i%2 == 0)
	}
	// Bucket [0.0, 0.2): wildly wrong but only 2 samples, below the bar.
	for i := 0; i < 2; i++ {
		record(t, e, "fix", "greedy", 0.1, true)
	}

	buckets, err := e.CalibrationError("fix")
	if err != nil {
		t.Fatal(err)
	}

	var flagged []CalibrationBucket
	for _, b := range buckets {
		if b.Miscalibrated {
			flagged = append(flagged, b)
		}
	}
	if len(flagged) != 1 {
		t.Fatalf("expected exactly 1 miscalibrated bucket, got %d: %+v", len(flagged), flagged)
	}
	if flagged[0].Low != 0.8 {
		t.Errorf("wrong bucket flagged: %+v", flagged[0])
	}
}

func TestStrategyStateTrend(t *testing.T) {
	e := NewEngine(NewMemoryStore())
	// Early half succeeds, late half fails: declining.
	for i := 0; i < 4; i++ {
		record(t, e, "fix", "bold", 0.6, true)
	}
	for i := 0; i < 4; i++ {
		record(t, e, "fix", "bold", 0.6, false)
	}

	st, err := e.StrategyState("bold")
	if err != nil {
		t.Fatal(err)
	}
	if st.Trend != TrendDeclining {
		t.Errorf("expected declining trend, got %s", st.Trend)
	}
	if st.ConsecutiveFailures != 4 {
		t.Errorf("expected 4 consecutive failures, got %d", st.ConsecutiveFailures)
	}
	if st.SuccessRate != 0.5 {
		t.Errorf("expected success rate 0.5, got %v", st.SuccessRate)
	}

	empty, err := e.StrategyState("unseen")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Samples != 0 || empty.Trend != TrendSteady {
		t.Errorf("unseen strategy should be an empty steady state: %+v", empty)
	}
}

func TestRecommend(t *testing.T) {
	e := NewEngine(NewMemoryStore())

	// Miscalibrated + recurring failures for "fix" under declining "bold".
	for i := 0; i < 4; i++ {
		record(t, e, "fix", "bold", 0.9, true)
	}
	for i := 0; i < 6; i++ {
		record(t, e, "fix", "bold", 0.9, false)
	}

	rec, err := e.Recommend()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.MiscalibratedBuckets) == 0 {
		t.Error("expected a miscalibrated bucket to be reported")
	}
	if len(rec.DecliningStrategies) != 1 || rec.DecliningStrategies[0] != "bold" {
		t.Errorf("expected bold to be declining: %v", rec.DecliningStrategies)
	}
	if len(rec.RecurringFailures) != 1 {
		t.Errorf("expected one recurring failure entry: %v", rec.RecurringFailures)
	}
}
