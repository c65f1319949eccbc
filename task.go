package aipype

import (
	"context"
	"time"
)

// Task is a unit of work with a name, a config, and declared dependencies
// on results other tasks produce. An agent resolves the dependencies into
// the config before calling Run; Run must be safe to call from a worker
// goroutine.
type Task interface {
	// Name returns the task's unique name within its agent.
	Name() string

	// Config returns the task's mutable configuration. The resolver
	// writes resolved dependency values into it before Run is called.
	Config() *Config

	// Dependencies declares which results this task needs.
	Dependencies() []Dependency

	// SetContext hands the task its agent's result store before it runs.
	// Most tasks only receive config values and can ignore it.
	SetContext(tc *Context)

	// Run executes the task and returns its result. Implementations
	// should honor ctx cancellation on long operations.
	Run(ctx context.Context) TaskResult
}

// BaseTask implements the bookkeeping shared by Task implementations:
// name, config, dependency list, and status tracking. Embed it and
// implement Run.
type BaseTask struct {
	name      string
	config    *Config
	deps      []Dependency
	status    TaskStatus
	statusAt  time.Time
	taskCtx   *Context
}

// NewBaseTask constructs the embeddable core of a task. A nil config is
// replaced with an empty one.
func NewBaseTask(name string, config *Config, deps []Dependency) BaseTask {
	if config == nil {
		config = NewConfig()
	}
	return BaseTask{
		name:   name,
		config: config,
		deps:   deps,
		status: StatusNotStarted,
	}
}

// Name returns the task name.
func (t *BaseTask) Name() string { return t.name }

// Config returns the task's configuration store.
func (t *BaseTask) Config() *Config { return t.config }

// Dependencies returns the declared dependencies.
func (t *BaseTask) Dependencies() []Dependency { return t.deps }

// SetContext stores the agent's result store for tasks that want to read
// it directly during Run.
func (t *BaseTask) SetContext(tc *Context) { t.taskCtx = tc }

// TaskContext returns the result store handed over via SetContext, or nil
// when the task runs outside an agent.
func (t *BaseTask) TaskContext() *Context { return t.taskCtx }

// SetStatus records a lifecycle transition with a timestamp.
func (t *BaseTask) SetStatus(status TaskStatus) {
	t.status = status
	t.statusAt = time.Now()
}

// Status returns the last recorded status and when it was set.
func (t *BaseTask) Status() (TaskStatus, time.Time) {
	return t.status, t.statusAt
}
