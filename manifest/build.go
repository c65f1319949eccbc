package manifest

import (
	"context"
	"fmt"

	"github.com/mobisoftinfotech/aipype"
	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// Build turns a pipeline definition into a runnable Pipeline wired to
// the registry's runners. Building never fails: an unknown runner
// becomes a step whose function reports the problem, so it surfaces as
// that one task's failed result while the rest of the pipeline runs.
func Build(ctx context.Context, def *PipelineDef, reg *Registry) *aipype.Pipeline {
	logger := ctxlog.FromContext(ctx)
	p := aipype.NewPipelineWithOptions(def.Name, def.Options)

	for _, task := range def.Tasks {
		fn, ok := reg.Handler(task.Runner)
		if !ok {
			logger.Warn("Task references an unregistered runner.",
				"pipeline", def.Name, "task", task.Name, "runner", task.Runner)
			fn = unregisteredRunner(task.Runner)
		}

		sd := aipype.StepDef{
			Name:   task.Name,
			Config: task.Config,
			Fn:     fn,
		}

		declared := make(map[string]struct{}, len(task.Inputs))
		for _, in := range task.Inputs {
			declared[in.Name] = struct{}{}
			param := aipype.Param{
				Name:     in.Name,
				Source:   in.Source,
				Optional: in.Optional,
			}
			if in.Default != nil {
				param.Default = *in.Default
			}
			sd.Params = append(sd.Params, param)
		}

		// Bare depends_on entries become optional whole-payload params,
		// so they order execution without risking resolution failure.
		for _, dep := range task.DependsOn {
			if _, dup := declared[dep]; dup {
				continue
			}
			sd.Params = append(sd.Params, aipype.Param{
				Name:     dep,
				Optional: true,
			})
		}

		p.AddStep(sd)
	}
	return p
}

// Load is the one-call path: parse a manifest file that holds exactly
// one pipeline and build it against the registry.
func Load(ctx context.Context, filePath string, reg *Registry) (*aipype.Pipeline, error) {
	f, err := NewLoader().LoadFile(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if len(f.Pipelines) != 1 {
		return nil, fmt.Errorf("manifest %s must contain exactly one pipeline, found %d", filePath, len(f.Pipelines))
	}
	return Build(ctx, f.Pipelines[0], reg), nil
}

func unregisteredRunner(name string) aipype.StepFunc {
	return func(context.Context, *aipype.Config) (aipype.Return, error) {
		return aipype.Return{}, fmt.Errorf("runner %q is not registered", name)
	}
}
