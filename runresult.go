package aipype

import (
	"fmt"
	"time"
)

// RunStatus classifies an agent run as a whole.
type RunStatus int

const (
	// RunSuccess means every task completed successfully.
	RunSuccess RunStatus = iota

	// RunPartial means some tasks completed and some failed, or some
	// completed only partially.
	RunPartial

	// RunError means no task completed, or the run could not start.
	RunError

	// RunRunning is returned when Run is called while a run is already
	// in flight on the same agent.
	RunRunning
)

// String implements fmt.Stringer.
func (s RunStatus) String() string {
	switch s {
	case RunSuccess:
		return "success"
	case RunPartial:
		return "partial"
	case RunError:
		return "error"
	case RunRunning:
		return "running"
	default:
		return fmt.Sprintf("RunStatus(%d)", int(s))
	}
}

// RunResult summarizes one agent run. CompletedTasks counts every task
// that produced a stored result, including partial ones; PartialTasks
// counts the subset that finished with StatusPartial.
type RunResult struct {
	AgentName      string
	RunID          string
	Status         RunStatus
	TotalTasks     int
	CompletedTasks int
	PartialTasks   int
	FailedTasks    int
	TotalPhases    int
	ExecutionTime  time.Duration
	ErrorMessage   string

	// TaskStatuses maps each task name to its final status.
	TaskStatuses map[string]TaskStatus
}

// IsSuccess reports whether every task completed.
func (r RunResult) IsSuccess() bool { return r.Status == RunSuccess }

// IsPartial reports whether the run mixed completions and failures.
func (r RunResult) IsPartial() bool { return r.Status == RunPartial }

// IsError reports whether the run failed outright.
func (r RunResult) IsError() bool { return r.Status == RunError }

// String implements fmt.Stringer.
func (r RunResult) String() string {
	return fmt.Sprintf("agent %q run %s: %s (%d/%d tasks, %d failed, %d phases, %s)",
		r.AgentName, r.RunID, r.Status, r.CompletedTasks, r.TotalTasks,
		r.FailedTasks, r.TotalPhases, r.ExecutionTime)
}
