package plan

// Status tracks a work item through a single execution run.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReady     Status = "READY"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
)

// WorkItem is a schedulable unit of work. Status is mutated only by the
// executor during a run, and each item's transitions happen on exactly one
// worker.
type WorkItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedCost float64  `json:"estimated_cost"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Status        Status   `json:"status"`
}

// ItemSpec is the external descriptor callers hand to the planner.
// DependsOn lists explicit prerequisite ids; detection rules may add more.
type ItemSpec struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedCost float64  `json:"estimated_cost"`
	DependsOn     []string `json:"depends_on,omitempty"`
}

// DetectionRule decides whether a depends on b. Rules are pure predicates
// supplied by the caller; the planner hardcodes none.
type DetectionRule func(a, b ItemSpec) bool

// CriticalPath is the longest dependency-respecting cost chain through a plan.
type CriticalPath struct {
	Items []string `json:"items"`
	Cost  float64  `json:"cost"`
}

// ExecutionPlan is the immutable output of planning. A change requires
// building a new plan, never editing one in place.
type ExecutionPlan struct {
	ExecutionOrder []string     `json:"execution_order"`
	ParallelGroups [][]string   `json:"parallel_groups"`
	CriticalPath   CriticalPath `json:"critical_path"`

	// Dependencies holds the final edge set (explicit plus inferred),
	// id -> sorted prerequisite ids. The executor uses it to propagate
	// failures to dependents.
	Dependencies map[string][]string `json:"dependencies"`

	// EstimatedDuration equals the critical path cost: a lower bound that
	// assumes unlimited parallel workers. With fewer workers than a group's
	// size the actual wall clock will exceed it.
	EstimatedDuration float64 `json:"estimated_duration"`
}
