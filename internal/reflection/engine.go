// Package reflection keeps an append-only history of predicted-vs-actual
// action outcomes and derives success rates, calibration, and strategy-switch
// advice from it. All derived views are recomputed from the log; the log is
// the only persisted truth.
package reflection

import (
	"fmt"
	"sort"
	"time"
)

const (
	// Strategies are abandoned after this many consecutive failures.
	switchThreshold = 3

	bucketWidth         = 0.2
	miscalibrationSlack = 0.15
	minBucketSamples    = 5
	recurringFailureBar = 3
	trendMinimumSamples = 4
	trendDelta          = 0.15
)

// Trend classifies the direction of a strategy's recent success rate.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendSteady    Trend = "steady"
	TrendDeclining Trend = "declining"
)

// StrategyState is the derived per-strategy view.
type StrategyState struct {
	Strategy            string  `json:"strategy"`
	Samples             int     `json:"samples"`
	SuccessRate         float64 `json:"success_rate"`
	Trend               Trend   `json:"trend"`
	ConsecutiveFailures int     `json:"consecutive_failures"`
}

// CalibrationBucket compares mean predicted probability against observed
// success frequency for one predicted-probability range.
type CalibrationBucket struct {
	Low           float64 `json:"low"`
	High          float64 `json:"high"`
	Samples       int     `json:"samples"`
	MeanPredicted float64 `json:"mean_predicted"`
	ObservedRate  float64 `json:"observed_rate"`
	Miscalibrated bool    `json:"miscalibrated"`
}

// Recommendations is the pure read-side report.
type Recommendations struct {
	MiscalibratedBuckets []string `json:"miscalibrated_buckets,omitempty"`
	DecliningStrategies  []string `json:"declining_strategies,omitempty"`
	RecurringFailures    []string `json:"recurring_failures,omitempty"`
}

// Engine reads and appends outcome records through a Store.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Record appends one outcome. History is never mutated afterwards.
func (e *Engine) Record(actionType, strategy string, predicted float64, success bool) error {
	return e.store.Append(Record{
		ActionType: actionType,
		Strategy:   strategy,
		Predicted:  predicted,
		Success:    success,
		Timestamp:  time.Now().UTC(),
	})
}

// SuccessRate returns the success ratio over the last window records for the
// action type and strategy. A window <= 0 means the whole history. With no
// matching records the rate is 0.
func (e *Engine) SuccessRate(actionType, strategy string, window int) (float64, error) {
	records, err := e.matching(actionType, strategy)
	if err != nil {
		return 0, err
	}
	if window > 0 && len(records) > window {
		records = records[len(records)-window:]
	}
	if len(records) == 0 {
		return 0, nil
	}
	var successes int
	for _, r := range records {
		if r.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(records)), nil
}

// CalibrationError buckets predictions for one action type into 0.2-wide
// ranges and flags any bucket whose mean prediction strays from its observed
// success frequency by more than 0.15 with at least 5 samples.
func (e *Engine) CalibrationError(actionType string) ([]CalibrationBucket, error) {
	records, err := e.matching(actionType, "")
	if err != nil {
		return nil, err
	}

	width := float64(bucketWidth)
	nBuckets := int(1.0/width + 0.5)
	buckets := make([]CalibrationBucket, nBuckets)
	sums := make([]float64, nBuckets)
	hits := make([]int, nBuckets)
	for i := range buckets {
		buckets[i].Low = float64(i) * bucketWidth
		buckets[i].High = buckets[i].Low + bucketWidth
	}

	for _, r := range records {
		i := int(r.Predicted / bucketWidth)
		if i >= nBuckets {
			i = nBuckets - 1
		}
		if i < 0 {
			i = 0
		}
		buckets[i].Samples++
		sums[i] += r.Predicted
		if r.Success {
			hits[i]++
		}
	}

	for i := range buckets {
		if buckets[i].Samples == 0 {
			continue
		}
		buckets[i].MeanPredicted = sums[i] / float64(buckets[i].Samples)
		buckets[i].ObservedRate = float64(hits[i]) / float64(buckets[i].Samples)
		gap := buckets[i].MeanPredicted - buckets[i].ObservedRate
		if gap < 0 {
			gap = -gap
		}
		buckets[i].Miscalibrated = gap > miscalibrationSlack && buckets[i].Samples >= minBucketSamples
	}
	return buckets, nil
}

// ConsecutiveFailures counts the failure streak at the tail of a strategy's
// history. Any recorded success resets the streak.
func (e *Engine) ConsecutiveFailures(strategy string) (int, error) {
	records, err := e.matching("", strategy)
	if err != nil {
		return 0, err
	}
	streak := 0
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Success {
			break
		}
		streak++
	}
	return streak, nil
}

// ShouldSwitchStrategy reports whether the strategy has failed three times in
// a row with no success in between.
func (e *Engine) ShouldSwitchStrategy(strategy string) (bool, error) {
	streak, err := e.ConsecutiveFailures(strategy)
	if err != nil {
		return false, err
	}
	return streak >= switchThreshold, nil
}

// StrategyState derives the current view of one strategy from the log.
func (e *Engine) StrategyState(strategy string) (StrategyState, error) {
	records, err := e.matching("", strategy)
	if err != nil {
		return StrategyState{}, err
	}
	st := StrategyState{Strategy: strategy, Samples: len(records), Trend: TrendSteady}
	if len(records) == 0 {
		return st, nil
	}

	var successes int
	for _, r := range records {
		if r.Success {
			successes++
		}
	}
	st.SuccessRate = float64(successes) / float64(len(records))

	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Success {
			break
		}
		st.ConsecutiveFailures++
	}

	st.Trend = trend(records)
	return st, nil
}

// trend compares the success rate of the recent half of the history against
// the earlier half.
func trend(records []Record) Trend {
	if len(records) < trendMinimumSamples {
		return TrendSteady
	}
	mid := len(records) / 2
	early, late := rate(records[:mid]), rate(records[mid:])
	switch {
	case late-early > trendDelta:
		return TrendImproving
	case early-late > trendDelta:
		return TrendDeclining
	default:
		return TrendSteady
	}
}

func rate(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var successes int
	for _, r := range records {
		if r.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(records))
}

// Recommend assembles the read-side report: miscalibrated buckets per action
// type, strategies on a declining trend, and action types whose failures
// recur at least three times. It has no side effects.
func (e *Engine) Recommend() (*Recommendations, error) {
	records, err := e.store.All()
	if err != nil {
		return nil, err
	}

	rec := &Recommendations{}

	actionTypes := make(map[string]struct{})
	strategies := make(map[string]struct{})
	failures := make(map[string]int)
	for _, r := range records {
		actionTypes[r.ActionType] = struct{}{}
		strategies[r.Strategy] = struct{}{}
		if !r.Success {
			failures[r.ActionType]++
		}
	}

	for _, at := range sortedKeys(actionTypes) {
		buckets, err := e.CalibrationError(at)
		if err != nil {
			return nil, err
		}
		for _, b := range buckets {
			if b.Miscalibrated {
				rec.MiscalibratedBuckets = append(rec.MiscalibratedBuckets,
					fmt.Sprintf("%s [%.1f-%.1f): predicted %.2f, observed %.2f over %d samples",
						at, b.Low, b.High, b.MeanPredicted, b.ObservedRate, b.Samples))
			}
		}
	}

	for _, s := range sortedKeys(strategies) {
		st, err := e.StrategyState(s)
		if err != nil {
			return nil, err
		}
		if st.Trend == TrendDeclining {
			rec.DecliningStrategies = append(rec.DecliningStrategies, s)
		}
	}

	for _, at := range sortedKeys(actionTypes) {
		if failures[at] >= recurringFailureBar {
			rec.RecurringFailures = append(rec.RecurringFailures,
				fmt.Sprintf("%s failed %d times", at, failures[at]))
		}
	}
	return rec, nil
}

// matching filters the log; empty selectors match everything.
func (e *Engine) matching(actionType, strategy string) ([]Record, error) {
	records, err := e.store.All()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range records {
		if actionType != "" && r.ActionType != actionType {
			continue
		}
		if strategy != "" && r.Strategy != strategy {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
