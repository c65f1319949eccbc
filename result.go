package aipype

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// TaskStatus tracks where a task is in its lifecycle.
type TaskStatus int

const (
	StatusNotStarted TaskStatus = iota
	StatusRunning
	StatusSuccess
	StatusPartial
	StatusError
	StatusSkipped
)

// String implements fmt.Stringer.
func (s TaskStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusError:
		return "error"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

// TaskResult is the outcome of a single task run. Data carries the task's
// payload as a cty value; downstream tasks address into it with dotted
// source paths. Error holds a human-readable message for partial and error
// outcomes.
type TaskResult struct {
	Status        TaskStatus
	Data          cty.Value
	Error         string
	ExecutionTime time.Duration
	Metadata      map[string]string
}

// Success returns a successful result carrying data.
func Success(data cty.Value, elapsed time.Duration, metadata map[string]string) TaskResult {
	return TaskResult{
		Status:        StatusSuccess,
		Data:          data,
		ExecutionTime: elapsed,
		Metadata:      metadata,
	}
}

// PartialResult returns a result that produced usable data but also hit an
// error. Partial results are stored for downstream consumption like
// successes, yet the run that contains one is classified as partial.
func PartialResult(data cty.Value, errMsg string, elapsed time.Duration, metadata map[string]string) TaskResult {
	return TaskResult{
		Status:        StatusPartial,
		Data:          data,
		Error:         errMsg,
		ExecutionTime: elapsed,
		Metadata:      metadata,
	}
}

// Failure returns a failed result with no usable data.
func Failure(errMsg string, elapsed time.Duration, metadata map[string]string) TaskResult {
	return TaskResult{
		Status:        StatusError,
		Error:         errMsg,
		ExecutionTime: elapsed,
		Metadata:      metadata,
	}
}

// SkippedResult returns a result for a task that was deliberately not run.
func SkippedResult(reason string, elapsed time.Duration, metadata map[string]string) TaskResult {
	return TaskResult{
		Status:        StatusSkipped,
		Error:         reason,
		ExecutionTime: elapsed,
		Metadata:      metadata,
	}
}

// IsSuccess reports whether the task completed fully.
func (r TaskResult) IsSuccess() bool { return r.Status == StatusSuccess }

// IsPartial reports whether the task produced data but also an error.
func (r TaskResult) IsPartial() bool { return r.Status == StatusPartial }

// IsError reports whether the task failed.
func (r TaskResult) IsError() bool { return r.Status == StatusError }

// IsSkipped reports whether the task was skipped.
func (r TaskResult) IsSkipped() bool { return r.Status == StatusSkipped }

// HasData reports whether the result carries a usable payload.
func (r TaskResult) HasData() bool {
	return isSet(r.Data) && !r.Data.IsNull()
}

// AddMetadata attaches a metadata entry, allocating the map if needed.
func (r *TaskResult) AddMetadata(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
}
