package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/mobisoftinfotech/aipype"
	"github.com/mobisoftinfotech/aipype/ctxlog"
)

// translateFile converts the HCL-specific schema into the agnostic model,
// validating what can be checked statically: unique pipeline and task
// names and well-formed source paths.
func (l *Loader) translateFile(ctx context.Context, raw *fileSchema) (*File, error) {
	f := &File{}
	seen := make(map[string]struct{})
	for _, p := range raw.Pipelines {
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("duplicate pipeline %q", p.Name)
		}
		seen[p.Name] = struct{}{}

		def, err := l.translatePipeline(ctx, p)
		if err != nil {
			return nil, err
		}
		f.Pipelines = append(f.Pipelines, def)
	}
	return f, nil
}

func (l *Loader) translatePipeline(ctx context.Context, p *pipelineSchema) (*PipelineDef, error) {
	opts := aipype.DefaultRunOptions()
	if p.Parallel != nil {
		opts.Parallel = *p.Parallel
	}
	if p.MaxParallel != nil {
		opts.MaxParallel = *p.MaxParallel
	}
	if p.StopOnFailure != nil {
		opts.StopOnFailure = *p.StopOnFailure
	}

	def := &PipelineDef{Name: p.Name, Options: opts}
	seen := make(map[string]struct{})
	for _, t := range p.Tasks {
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("pipeline %q: duplicate task %q", p.Name, t.Name)
		}
		seen[t.Name] = struct{}{}

		task, err := l.translateTask(ctx, p.Name, t)
		if err != nil {
			return nil, err
		}
		def.Tasks = append(def.Tasks, task)
	}
	return def, nil
}

func (l *Loader) translateTask(ctx context.Context, pipelineName string, t *taskSchema) (*TaskDef, error) {
	task := &TaskDef{
		Name:      t.Name,
		Runner:    t.Runner,
		DependsOn: t.DependsOn,
		Config:    l.extractConfigAttributes(ctx, t.Config),
	}
	for _, in := range t.Inputs {
		input, err := translateInput(in, pipelineName, t.Name)
		if err != nil {
			return nil, err
		}
		task.Inputs = append(task.Inputs, input)
	}
	return task, nil
}

// translateInput statically evaluates an input's default. A default is
// only valid if it evaluates without error and is not null; a valid
// default implies the input is optional.
func translateInput(in *inputSchema, pipelineName, taskName string) (*InputDef, error) {
	input := &InputDef{Name: in.Name, Source: in.Source}
	if in.Optional != nil {
		input.Optional = *in.Optional
	}

	if in.Source != "" && !strings.Contains(in.Source, ".") {
		return nil, fmt.Errorf("pipeline %q task %q: input %q source %q must be of the form \"task.field\"",
			pipelineName, taskName, in.Name, in.Source)
	}

	if in.Default != nil {
		val, diags := in.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("pipeline %q task %q: invalid default for input %q: %w",
				pipelineName, taskName, in.Name, diags)
		}
		if !val.IsNull() {
			input.Default = &val
			input.Optional = true
		}
	}
	return input, nil
}

// extractConfigAttributes statically evaluates a task's config block
// attributes into cty values. Expressions that need variables are not
// supported in config blocks, so failures are surfaced as warnings and
// the attribute is skipped.
func (l *Loader) extractConfigAttributes(ctx context.Context, block *configSchema) map[string]cty.Value {
	if block == nil || block.Body == nil {
		return nil
	}
	attrs, _ := block.Body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	out := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			logger.Warn("Skipping config attribute that does not evaluate statically.",
				"attribute", name, "error", diags.Error())
			continue
		}
		out[name] = val
	}
	return out
}
