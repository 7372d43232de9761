package task

import "errors"

// Structural graph errors: the offending edge is rejected and neither
// task's edge set changes.
var (
	ErrSelfEdge    = errors.New("task cannot depend on itself")
	ErrEdgeExists  = errors.New("dependency edge already exists")
	ErrReverseEdge = errors.New("reverse dependency edge already exists")
	ErrWouldCycle  = errors.New("edge would create a dependency cycle")
)

// Recoverable conditions: state is left unchanged and the caller may retry
// or ignore.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotReady          = errors.New("task is not ready to start")
	ErrPriorityRange     = errors.New("priority must be within [1,100]")
)
