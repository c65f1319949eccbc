package aipype

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// CycleError reports a dependency cycle between tasks.
type CycleError struct {
	Tasks []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected involving tasks: %s",
		strings.Join(e.Tasks, ", "))
}

// ExecutionPlan groups tasks into phases such that every task's
// producers sit in an earlier phase. Tasks within a phase have no
// dependencies on one another and may run in parallel.
type ExecutionPlan struct {
	phases [][]Task
	total  int
}

// NewExecutionPlan layers the given tasks by their declared dependencies.
// It fails on duplicate task names and on dependency cycles; a dependency
// on a task name not present in the set adds no ordering constraint and
// is only logged.
func NewExecutionPlan(ctx context.Context, tasks []Task) (*ExecutionPlan, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		name := t.Name()
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate task name %q", name)
		}
		byName[name] = t
		order = append(order, name)
	}

	// producers[name] = set of task names that must finish first.
	producers := make(map[string]map[string]struct{}, len(tasks))
	for _, t := range tasks {
		deps := make(map[string]struct{})
		for _, d := range t.Dependencies() {
			src := d.SourceTask()
			if src == t.Name() {
				// Self-dependency is an immediate one-task cycle.
				deps[src] = struct{}{}
				continue
			}
			if _, known := byName[src]; !known {
				logger.Warn("Dependency references a task not in this run; no ordering constraint added.",
					"task", t.Name(), "dependency", d.Name, "source_task", src)
				continue
			}
			deps[src] = struct{}{}
		}
		producers[t.Name()] = deps
	}

	plan := &ExecutionPlan{total: len(tasks)}
	remaining := make(map[string]struct{}, len(tasks))
	for name := range byName {
		remaining[name] = struct{}{}
	}
	placed := make(map[string]struct{}, len(tasks))

	for len(remaining) > 0 {
		var phase []Task
		for _, name := range order {
			if _, pending := remaining[name]; !pending {
				continue
			}
			ready := true
			for src := range producers[name] {
				if _, done := placed[src]; !done {
					ready = false
					break
				}
			}
			if ready {
				phase = append(phase, byName[name])
			}
		}
		if len(phase) == 0 {
			stuck := make([]string, 0, len(remaining))
			for name := range remaining {
				stuck = append(stuck, name)
			}
			sort.Strings(stuck)
			return nil, &CycleError{Tasks: stuck}
		}
		for _, t := range phase {
			delete(remaining, t.Name())
		}
		// Placement takes effect only after the whole phase is cut, so
		// tasks in one phase never depend on each other.
		for _, t := range phase {
			placed[t.Name()] = struct{}{}
		}
		plan.phases = append(plan.phases, phase)
	}
	return plan, nil
}

// TotalPhases returns the number of phases in the plan.
func (p *ExecutionPlan) TotalPhases() int { return len(p.phases) }

// TotalTasks returns the number of tasks across all phases.
func (p *ExecutionPlan) TotalTasks() int { return p.total }

// Phase returns the tasks in phase i in deterministic order.
func (p *ExecutionPlan) Phase(i int) []Task {
	if i < 0 || i >= len(p.phases) {
		return nil
	}
	return p.phases[i]
}

// Phases returns all phases in order.
func (p *ExecutionPlan) Phases() [][]Task { return p.phases }

// Describe returns a readable multi-line summary of the plan, one line
// per phase.
func (p *ExecutionPlan) Describe() string {
	var b strings.Builder
	for i, phase := range p.phases {
		names := make([]string, len(phase))
		for j, t := range phase {
			names[j] = t.Name()
		}
		fmt.Fprintf(&b, "phase %d: %s\n", i+1, strings.Join(names, ", "))
	}
	return b.String()
}
