package aipype

import (
	"sort"
	"sync"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// ExecutionRecord is one entry in a run's execution history.
type ExecutionRecord struct {
	TaskName string
	Event    string // "started", "completed", "failed"
	Error    string
	At       time.Time
}

// Context is the shared result store for one agent run. The executor
// writes task results and lifecycle records into it; the resolver and
// tasks read from it. All methods are safe for concurrent use.
type Context struct {
	mu        sync.RWMutex
	results   map[string]TaskResult
	completed []string
	failed    map[string]string
	history   []ExecutionRecord
}

// NewContext returns an empty result store.
func NewContext() *Context {
	return &Context{
		results: make(map[string]TaskResult),
		failed:  make(map[string]string),
	}
}

// StoreResult records a task's result. Result slots are write-once: the
// first write for a name wins and later writes are ignored. It reports
// whether the result was stored.
func (c *Context) StoreResult(taskName string, result TaskResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.results[taskName]; exists {
		return false
	}
	c.results[taskName] = result
	return true
}

// GetResult returns the stored result for a task.
func (c *Context) GetResult(taskName string) (TaskResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[taskName]
	return r, ok
}

// HasResult reports whether a result is stored for the task.
func (c *Context) HasResult(taskName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.results[taskName]
	return ok
}

// GetPathValue resolves a dotted source path against the store. The first
// segment names a task; the remaining segments address into that task's
// result data. A single-segment path returns the task's whole data value.
func (c *Context) GetPathValue(path string) (cty.Value, bool) {
	segments := splitPath(path)
	if len(segments) == 0 || segments[0] == "" {
		return cty.NilVal, false
	}

	c.mu.RLock()
	result, ok := c.results[segments[0]]
	c.mu.RUnlock()
	if !ok || !isSet(result.Data) {
		return cty.NilVal, false
	}
	if len(segments) == 1 {
		return result.Data, true
	}

	if v, ok := pathValue(result.Data, segments[1:]); ok {
		return v, true
	}
	// "name.data" also addresses the whole payload for tasks whose
	// results do not carry a literal data attribute.
	if segments[1] == dataKey {
		return pathValue(result.Data, segments[2:])
	}
	return cty.NilVal, false
}

// RecordTaskStarted appends a start record to the history.
func (c *Context) RecordTaskStarted(taskName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, ExecutionRecord{
		TaskName: taskName,
		Event:    "started",
		At:       time.Now(),
	})
}

// RecordTaskCompleted marks a task as completed and records it.
func (c *Context) RecordTaskCompleted(taskName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed = append(c.completed, taskName)
	c.history = append(c.history, ExecutionRecord{
		TaskName: taskName,
		Event:    "completed",
		At:       time.Now(),
	})
}

// RecordTaskFailed marks a task as failed with an error message.
func (c *Context) RecordTaskFailed(taskName, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed[taskName] = errMsg
	c.history = append(c.history, ExecutionRecord{
		TaskName: taskName,
		Event:    "failed",
		Error:    errMsg,
		At:       time.Now(),
	})
}

// CompletedTasks returns the names of completed tasks in completion order.
func (c *Context) CompletedTasks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.completed))
	copy(out, c.completed)
	return out
}

// FailedTasks returns failed task names mapped to their error messages.
func (c *Context) FailedTasks() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.failed))
	for k, v := range c.failed {
		out[k] = v
	}
	return out
}

// FailedTaskNames returns failed task names in sorted order.
func (c *Context) FailedTaskNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.failed))
	for k := range c.failed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// History returns a copy of the execution history in record order.
func (c *Context) History() []ExecutionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ExecutionRecord, len(c.history))
	copy(out, c.history)
	return out
}

// Clear resets the store for reuse across runs.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string]TaskResult)
	c.completed = nil
	c.failed = make(map[string]string)
	c.history = nil
}
