package aipype

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// RunOptions controls how an agent executes its plan.
type RunOptions struct {
	// Parallel runs tasks within a phase concurrently.
	Parallel bool

	// MaxParallel caps the number of concurrent tasks per phase when
	// Parallel is set. Values below 1 fall back to the default.
	MaxParallel int

	// StopOnFailure stops scheduling further phases once a phase
	// produced a failed task. The failing phase always runs to
	// completion first.
	StopOnFailure bool
}

// DefaultRunOptions returns the options used when none are given:
// parallel phases with at most 5 concurrent tasks, stopping on failure.
func DefaultRunOptions() RunOptions {
	return RunOptions{Parallel: true, MaxParallel: 5, StopOnFailure: true}
}

// Agent owns a set of tasks and executes them phase by phase in
// dependency order. Each phase runs after every earlier phase has fully
// finished; within a phase tasks may run in parallel.
//
// An Agent is not reentrant: a second Run while one is in flight returns
// a RunRunning result without touching the first.
type Agent struct {
	name    string
	opts    RunOptions
	tasks   []Task
	store   *Context
	running atomic.Bool
}

// NewAgent constructs an agent with default run options.
func NewAgent(name string) *Agent {
	return NewAgentWithOptions(name, DefaultRunOptions())
}

// NewAgentWithOptions constructs an agent with explicit run options.
func NewAgentWithOptions(name string, opts RunOptions) *Agent {
	if opts.MaxParallel < 1 {
		opts.MaxParallel = DefaultRunOptions().MaxParallel
	}
	return &Agent{
		name:  name,
		opts:  opts,
		store: NewContext(),
	}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// AddTask appends a task to the agent. Returns the agent for chaining.
func (a *Agent) AddTask(t Task) *Agent {
	a.tasks = append(a.tasks, t)
	return a
}

// AddTasks appends several tasks at once.
func (a *Agent) AddTasks(tasks ...Task) *Agent {
	a.tasks = append(a.tasks, tasks...)
	return a
}

// Context returns the agent's result store.
func (a *Agent) Context() *Context { return a.store }

// GetResult returns the stored result for a task after a run.
func (a *Agent) GetResult(taskName string) (TaskResult, bool) {
	return a.store.GetResult(taskName)
}

// GetPathValue resolves a dotted source path against the result store.
func (a *Agent) GetPathValue(path string) (any, bool) {
	v, ok := a.store.GetPathValue(path)
	if !ok {
		return nil, false
	}
	native, err := FromCty(v)
	if err != nil {
		return nil, false
	}
	return native, true
}

// Reset clears the result store so the agent can run again from scratch.
func (a *Agent) Reset() {
	a.store.Clear()
}

// ValidateDependencies checks every task's dependency declarations and
// returns one error per malformed declaration, without running anything.
func (a *Agent) ValidateDependencies() []error {
	resolver := NewResolver(a.store)
	var errs []error
	for _, t := range a.tasks {
		errs = append(errs, resolver.Check(t)...)
	}
	return errs
}

// Run plans the agent's tasks into phases and executes them. It never
// returns an error: every failure mode is folded into the RunResult so
// callers always get per-task statuses alongside the classification.
func (a *Agent) Run(ctx context.Context) RunResult {
	if !a.running.CompareAndSwap(false, true) {
		return RunResult{
			AgentName:    a.name,
			Status:       RunRunning,
			ErrorMessage: "agent is already running",
		}
	}
	defer a.running.Store(false)

	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("agent", a.name, "run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	start := time.Now()
	result := RunResult{
		AgentName:    a.name,
		RunID:        runID,
		TotalTasks:   len(a.tasks),
		TaskStatuses: make(map[string]TaskStatus, len(a.tasks)),
	}
	for _, t := range a.tasks {
		result.TaskStatuses[t.Name()] = StatusNotStarted
	}

	if len(a.tasks) == 0 {
		result.Status = RunError
		result.ErrorMessage = "agent has no tasks"
		result.ExecutionTime = time.Since(start)
		return result
	}

	plan, err := NewExecutionPlan(ctx, a.tasks)
	if err != nil {
		logger.Error("Planning failed.", "error", err)
		result.Status = RunError
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result
	}
	result.TotalPhases = plan.TotalPhases()
	logger.Info("Execution plan ready.",
		"phases", plan.TotalPhases(), "tasks", plan.TotalTasks())

	resolver := NewResolver(a.store)
	for i := 0; i < plan.TotalPhases(); i++ {
		phase := plan.Phase(i)
		logger.Debug("Starting phase.", "phase", i+1, "tasks", len(phase))

		var outcomes []TaskResult
		if a.opts.Parallel && len(phase) > 1 {
			outcomes = a.runPhaseParallel(ctx, resolver, phase)
		} else {
			outcomes = a.runPhaseSequential(ctx, resolver, phase)
		}

		phaseFailed := false
		for j, outcome := range outcomes {
			name := phase[j].Name()
			result.TaskStatuses[name] = outcome.Status
			switch outcome.Status {
			case StatusSuccess:
				result.CompletedTasks++
			case StatusPartial:
				result.CompletedTasks++
				result.PartialTasks++
			case StatusError:
				result.FailedTasks++
				phaseFailed = true
			case StatusSkipped:
				result.FailedTasks++
			}
		}
		if phaseFailed && a.opts.StopOnFailure {
			// Tasks never scheduled keep StatusNotStarted.
			logger.Warn("Stopping after failed phase.", "phase", i+1)
			break
		}
	}

	result.ExecutionTime = time.Since(start)
	result.Status = classifyRun(result)
	if result.Status == RunError && result.ErrorMessage == "" {
		result.ErrorMessage = fmt.Sprintf("%d of %d tasks failed", result.FailedTasks, result.TotalTasks)
	}
	logger.Info("Run finished.",
		"status", result.Status,
		"completed", result.CompletedTasks,
		"failed", result.FailedTasks,
		"elapsed", result.ExecutionTime)
	return result
}

// classifyRun folds per-task outcomes into the run classification. A
// partial task keeps its data flowing downstream but caps the run at
// RunPartial; RunSuccess requires every task to finish fully.
func classifyRun(r RunResult) RunStatus {
	switch {
	case r.CompletedTasks == r.TotalTasks && r.FailedTasks == 0 && r.PartialTasks == 0:
		return RunSuccess
	case r.CompletedTasks > 0:
		return RunPartial
	default:
		return RunError
	}
}

// runPhaseSequential runs a phase's tasks one at a time in plan order.
// With StopOnFailure set, a failure stops the remaining tasks of the
// phase as well.
func (a *Agent) runPhaseSequential(ctx context.Context, resolver *Resolver, phase []Task) []TaskResult {
	outcomes := make([]TaskResult, len(phase))
	for i, t := range phase {
		outcomes[i] = a.runTask(ctx, resolver, t)
		if outcomes[i].IsError() && a.opts.StopOnFailure {
			for j := i + 1; j < len(phase); j++ {
				outcomes[j] = SkippedResult("skipped: earlier task in phase failed", 0, nil)
				a.store.RecordTaskFailed(phase[j].Name(), outcomes[j].Error)
			}
			break
		}
	}
	return outcomes
}

// runPhaseParallel runs a phase's tasks on a bounded worker pool and
// waits for all of them before returning, so later phases always see the
// full phase's results.
func (a *Agent) runPhaseParallel(ctx context.Context, resolver *Resolver, phase []Task) []TaskResult {
	type indexed struct {
		i int
		t Task
	}
	jobs := make(chan indexed)
	outcomes := make([]TaskResult, len(phase))

	workers := a.opts.MaxParallel
	if workers > len(phase) {
		workers = len(phase)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				outcomes[job.i] = a.runTask(ctx, resolver, job.t)
			}
		}()
	}
	for i, t := range phase {
		jobs <- indexed{i: i, t: t}
	}
	close(jobs)
	wg.Wait()
	return outcomes
}

// runTask resolves a single task's dependencies and executes it,
// recording lifecycle events and the result in the store.
func (a *Agent) runTask(ctx context.Context, resolver *Resolver, t Task) TaskResult {
	logger := ctxlog.FromContext(ctx)
	name := t.Name()
	start := time.Now()

	a.store.RecordTaskStarted(name)
	t.SetContext(a.store)
	if st, ok := t.(interface{ SetStatus(TaskStatus) }); ok {
		st.SetStatus(StatusRunning)
	}

	if err := ctx.Err(); err != nil {
		outcome := Failure(fmt.Sprintf("run cancelled: %v", err), time.Since(start), nil)
		a.finishTask(t, outcome)
		return outcome
	}

	if err := resolver.Resolve(ctx, t); err != nil {
		logger.Error("Dependency resolution failed.", "task", name, "error", err)
		outcome := Failure(err.Error(), time.Since(start), map[string]string{
			"error_type": "ResolutionError",
		})
		a.finishTask(t, outcome)
		return outcome
	}

	logger.Info("Running task.", "task", name)
	outcome := runTaskSafely(ctx, t)
	if outcome.ExecutionTime == 0 {
		outcome.ExecutionTime = time.Since(start)
	}
	a.finishTask(t, outcome)

	switch outcome.Status {
	case StatusSuccess:
		logger.Info("Task completed.", "task", name, "elapsed", outcome.ExecutionTime)
	case StatusPartial:
		logger.Warn("Task completed partially.", "task", name, "error", outcome.Error)
	default:
		logger.Error("Task failed.", "task", name, "error", outcome.Error)
	}
	return outcome
}

// finishTask stores the outcome and updates the store's completion sets.
func (a *Agent) finishTask(t Task, outcome TaskResult) {
	name := t.Name()
	if st, ok := t.(interface{ SetStatus(TaskStatus) }); ok {
		st.SetStatus(outcome.Status)
	}
	switch outcome.Status {
	case StatusSuccess, StatusPartial:
		a.store.StoreResult(name, outcome)
		a.store.RecordTaskCompleted(name)
	default:
		a.store.RecordTaskFailed(name, outcome.Error)
	}
}

// runTaskSafely runs a task and converts a panic into a failed result so
// one misbehaving task cannot take down the whole run.
func runTaskSafely(ctx context.Context, t Task) (outcome TaskResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = Failure(fmt.Sprintf("task panicked: %v", r), time.Since(start), map[string]string{
				"error_type": "panic",
			})
		}
	}()
	return t.Run(ctx)
}
