package aipype

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// StepFunc is the body of a pipeline step. It receives the step's
// assembled arguments: resolved dependency values, static config, and
// parameter defaults.
type StepFunc func(ctx context.Context, args *Config) (Return, error)

// Param declares one argument of a step. How it is fed is explicit:
//
//   - Source set: the value comes from that dotted path.
//   - Source empty and Name matches another step in the pipeline: the
//     value is that step's whole payload ("<name>.data").
//   - Otherwise the param is config-local and takes its value from the
//     step or pipeline config, falling back to Default.
type Param struct {
	Name     string
	Source   string
	Optional bool
	Default  cty.Value

	// Transform reshapes the resolved value before injection.
	Transform TransformFunc
}

// StepDef is the complete declaration of one pipeline step.
type StepDef struct {
	Name   string
	Params []Param
	Config map[string]cty.Value
	Fn     StepFunc
}

// Pipeline builds an Agent from step declarations, wiring dependencies
// between steps from their parameter declarations rather than requiring
// hand-written Dependency lists.
type Pipeline struct {
	name   string
	defs   []StepDef
	config *Config
	agent  *Agent
	built  bool
}

// NewPipeline constructs a pipeline with default run options.
func NewPipeline(name string) *Pipeline {
	return NewPipelineWithOptions(name, DefaultRunOptions())
}

// NewPipelineWithOptions constructs a pipeline with explicit run options.
func NewPipelineWithOptions(name string, opts RunOptions) *Pipeline {
	return &Pipeline{
		name:   name,
		config: NewConfig(),
		agent:  NewAgentWithOptions(name, opts),
	}
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Set stores a pipeline-level config value, visible to every step that
// does not override the key itself.
func (p *Pipeline) Set(key string, value cty.Value) *Pipeline {
	p.config.Set(key, value)
	return p
}

// AddStep appends a fully built step definition.
func (p *Pipeline) AddStep(def StepDef) *Pipeline {
	p.defs = append(p.defs, def)
	return p
}

// Step starts a fluent step declaration; finish it with Run.
func (p *Pipeline) Step(name string) *StepBuilder {
	return &StepBuilder{pipeline: p, def: StepDef{Name: name}}
}

// setupTasks turns the step definitions into tasks on the agent.
// Declaration problems never abort assembly; they are deferred into the
// task and surface as a failed result when it first runs.
func (p *Pipeline) setupTasks() {
	if p.built {
		return
	}
	p.built = true

	known := make(map[string]struct{}, len(p.defs))
	for _, def := range p.defs {
		known[def.Name] = struct{}{}
	}
	for _, def := range p.defs {
		deps, err := inferDependencies(def, known)
		p.agent.AddTask(newStepTask(def, deps, p.config, err))
	}
}

// Run assembles the tasks (once) and executes the pipeline.
func (p *Pipeline) Run(ctx context.Context) RunResult {
	p.setupTasks()
	return p.agent.Run(ctx)
}

// Agent exposes the underlying agent, mainly for inspection in tests.
func (p *Pipeline) Agent() *Agent {
	p.setupTasks()
	return p.agent
}

// GetResult returns a step's stored result after a run.
func (p *Pipeline) GetResult(stepName string) (TaskResult, bool) {
	return p.agent.GetResult(stepName)
}

// GetPathValue resolves a dotted source path against the run's results.
func (p *Pipeline) GetPathValue(path string) (any, bool) {
	return p.agent.GetPathValue(path)
}

// Reset clears the run's results so the pipeline can run again.
func (p *Pipeline) Reset() {
	p.agent.Reset()
}

// StepBuilder declares a step fluently. Every method returns the builder
// until Run attaches the function and adds the step to the pipeline.
type StepBuilder struct {
	pipeline *Pipeline
	def      StepDef
}

// Param declares a required argument fed from the step with the same
// name ("<name>.data").
func (b *StepBuilder) Param(name string) *StepBuilder {
	b.def.Params = append(b.def.Params, Param{Name: name})
	return b
}

// ParamFrom declares a required argument fed from an explicit dotted
// source path.
func (b *StepBuilder) ParamFrom(name, source string) *StepBuilder {
	b.def.Params = append(b.def.Params, Param{Name: name, Source: source})
	return b
}

// OptionalParam declares an optional argument with a fallback default.
// Pass cty.NilVal for no default.
func (b *StepBuilder) OptionalParam(name string, def cty.Value) *StepBuilder {
	b.def.Params = append(b.def.Params, Param{Name: name, Optional: true, Default: def})
	return b
}

// OptionalParamFrom declares an optional argument fed from an explicit
// source path, with a fallback default.
func (b *StepBuilder) OptionalParamFrom(name, source string, def cty.Value) *StepBuilder {
	b.def.Params = append(b.def.Params, Param{Name: name, Source: source, Optional: true, Default: def})
	return b
}

// Set stores a static config value on the step.
func (b *StepBuilder) Set(key string, value cty.Value) *StepBuilder {
	if b.def.Config == nil {
		b.def.Config = make(map[string]cty.Value)
	}
	b.def.Config[key] = value
	return b
}

// Run attaches the step's function and adds the step to the pipeline.
func (b *StepBuilder) Run(fn StepFunc) *Pipeline {
	b.def.Fn = fn
	return b.pipeline.AddStep(b.def)
}
