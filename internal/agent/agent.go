// Package agent defines the analysis agent contract and the finding types
// agents report. Agents are pluggable: the orchestrator only sees the Agent
// interface and never knows what an individual analyzer looks for.
package agent

import (
	"context"
	"time"
)

// Severity categorizes how urgent a finding is. Higher values sort first.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Weight is the health-score penalty of one finding at this severity.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0.5
	default:
		return 0
	}
}

// Finding is a single issue detected by one agent. Line is 0 for file-level
// findings.
type Finding struct {
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	File           string   `json:"file"`
	Line           int      `json:"line,omitempty"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	SourceAgent    string   `json:"source_agent"`
}

// Report is one agent's output for one target. Err is set when the agent
// itself failed; its findings are not trustworthy in that case.
type Report struct {
	Agent    string             `json:"agent"`
	Findings []Finding          `json:"findings"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Duration time.Duration      `json:"duration"`
	Err      string             `json:"error,omitempty"`
}

// Agent analyzes an opaque target and reports findings.
type Agent interface {
	Name() string
	Analyze(ctx context.Context, target string) (*Report, error)
}
