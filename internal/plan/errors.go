package plan

import "errors"

// Sentinel errors for graph construction and validation. Callers match with
// errors.Is; the wrapped message names the offending item ids.
var (
	ErrDuplicateItem  = errors.New("duplicate work item")
	ErrUnknownItem    = errors.New("unknown work item")
	ErrSelfDependency = errors.New("item cannot depend on itself")
	ErrCycleDetected  = errors.New("cycle detected in dependencies")
)
