package manifest

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/mobisoftinfotech/aipype"
)

// File is the format-agnostic model of a parsed manifest file.
type File struct {
	Pipelines []*PipelineDef
}

// PipelineDef describes one pipeline and its run options.
type PipelineDef struct {
	Name    string
	Options aipype.RunOptions
	Tasks   []*TaskDef
}

// TaskDef describes one task: which runner executes it, its static
// config values, its inputs, and any bare ordering dependencies.
type TaskDef struct {
	Name      string
	Runner    string
	DependsOn []string
	Config    map[string]cty.Value
	Inputs    []*InputDef
}

// InputDef describes one wired task argument. A nil Default means no
// default; a non-nil Default implies the input is optional.
type InputDef struct {
	Name     string
	Source   string
	Optional bool
	Default  *cty.Value
}
