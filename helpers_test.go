package aipype

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// stubTask is a minimal Task used across the package tests. Its behavior
// is a plain function so each test declares exactly what it needs.
type stubTask struct {
	BaseTask
	run func(ctx context.Context, t *stubTask) TaskResult
}

func newStubTask(name string, cfg *Config, deps []Dependency, run func(ctx context.Context, t *stubTask) TaskResult) *stubTask {
	return &stubTask{
		BaseTask: NewBaseTask(name, cfg, deps),
		run:      run,
	}
}

func (t *stubTask) Run(ctx context.Context) TaskResult {
	if t.run == nil {
		return Success(cty.ObjectVal(map[string]cty.Value{
			"task": cty.StringVal(t.Name()),
		}), 0, nil)
	}
	return t.run(ctx, t)
}

// producing returns a stub task that succeeds with a fixed payload.
func producing(name string, attrs map[string]cty.Value) *stubTask {
	return newStubTask(name, nil, nil, func(context.Context, *stubTask) TaskResult {
		return Success(cty.ObjectVal(attrs), 0, nil)
	})
}

// failing returns a stub task that always fails.
func failing(name string, deps ...Dependency) *stubTask {
	return newStubTask(name, nil, deps, func(context.Context, *stubTask) TaskResult {
		return Failure("deliberate failure", 0, nil)
	})
}
