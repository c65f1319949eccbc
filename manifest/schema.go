package manifest

import (
	"github.com/hashicorp/hcl/v2"
)

// fileSchema is the top-level structure of a pipeline manifest file.
type fileSchema struct {
	Pipelines []*pipelineSchema `hcl:"pipeline,block"`
	Body      hcl.Body          `hcl:",remain"`
}

// pipelineSchema represents a `pipeline` block.
type pipelineSchema struct {
	Name          string        `hcl:"name,label"`
	Parallel      *bool         `hcl:"parallel,optional"`
	MaxParallel   *int          `hcl:"max_parallel,optional"`
	StopOnFailure *bool         `hcl:"stop_on_failure,optional"`
	Tasks         []*taskSchema `hcl:"task,block"`
}

// taskSchema represents a `task` block: a runnable instance of a
// registered runner.
type taskSchema struct {
	Name      string         `hcl:"name,label"`
	Runner    string         `hcl:"runner"`
	DependsOn []string       `hcl:"depends_on,optional"`
	Config    *configSchema  `hcl:"config,block"`
	Inputs    []*inputSchema `hcl:"input,block"`
}

// configSchema holds the free-form attributes of a task's `config` block.
type configSchema struct {
	Body hcl.Body `hcl:",remain"`
}

// inputSchema represents an `input` block wiring one task argument from
// another task's result.
type inputSchema struct {
	Name     string         `hcl:"name,label"`
	Source   string         `hcl:"source,optional"`
	Optional *bool          `hcl:"optional,optional"`
	Default  hcl.Expression `hcl:"default,optional"`
}
