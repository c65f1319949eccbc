package aipype

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// ResolutionError reports why a task's dependency could not be satisfied.
type ResolutionError struct {
	TaskName   string
	Dependency string
	SourcePath string
	Reason     string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("task %q dependency %q (source %q): %s",
		e.TaskName, e.Dependency, e.SourcePath, e.Reason)
}

// Resolver injects values produced by earlier tasks into a task's config
// according to the task's dependency declarations.
type Resolver struct {
	store *Context
}

// NewResolver returns a resolver reading from the given result store.
func NewResolver(store *Context) *Resolver {
	return &Resolver{store: store}
}

// Resolve walks the task's dependencies and writes each resolved value
// into the task's config under the dependency's name. A required
// dependency that cannot resolve returns a *ResolutionError and the
// config is left as-is for the remaining dependencies. Optional
// dependencies that cannot resolve fall back to their default, or are
// skipped entirely when no default is set.
func (r *Resolver) Resolve(ctx context.Context, task Task) error {
	logger := ctxlog.FromContext(ctx)
	cfg := task.Config()

	for _, dep := range task.Dependencies() {
		if err := dep.Validate(); err != nil {
			if dep.IsRequired() {
				return &ResolutionError{
					TaskName:   task.Name(),
					Dependency: dep.Name,
					SourcePath: dep.SourcePath,
					Reason:     err.Error(),
				}
			}
			logger.Warn("Skipping invalid optional dependency.",
				"task", task.Name(), "dependency", dep.Name, "error", err)
			continue
		}

		value, found := r.store.GetPathValue(dep.SourcePath)
		if found && !value.IsNull() {
			injected, err := r.applyTransform(dep, value)
			if err != nil {
				if dep.IsRequired() {
					return &ResolutionError{
						TaskName:   task.Name(),
						Dependency: dep.Name,
						SourcePath: dep.SourcePath,
						Reason:     fmt.Sprintf("transform failed: %v", err),
					}
				}
				logger.Warn("Transform failed for optional dependency; skipping.",
					"task", task.Name(), "dependency", dep.Name, "error", err)
				continue
			}
			// Resolved values always win over any pre-set config value.
			cfg.Set(dep.Name, injected)
			continue
		}

		switch {
		case dep.IsRequired():
			reason := "source value not found"
			if found {
				reason = "source value is null"
			}
			return &ResolutionError{
				TaskName:   task.Name(),
				Dependency: dep.Name,
				SourcePath: dep.SourcePath,
				Reason:     reason,
			}
		case dep.HasDefault():
			cfg.Set(dep.Name, dep.Default)
		case dep.OverrideExisting:
			cfg.Set(dep.Name, cty.NullVal(cty.DynamicPseudoType))
		default:
			// Optional with neither value nor default: leave the
			// config key untouched.
		}
	}
	return nil
}

func (r *Resolver) applyTransform(dep Dependency, value cty.Value) (cty.Value, error) {
	if dep.Transform == nil {
		return value, nil
	}
	return dep.Transform(value)
}

// Check validates a task's dependency declarations without mutating
// anything, returning one error per malformed declaration.
func (r *Resolver) Check(task Task) []error {
	var errs []error
	for _, dep := range task.Dependencies() {
		if err := dep.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("task %q: %w", task.Name(), err))
		}
	}
	return errs
}
