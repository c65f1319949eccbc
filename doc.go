// Package aipype is a declarative task scheduler. Tasks declare which
// results they need from other tasks as dotted source paths; an agent
// plans the tasks into dependency-ordered phases, runs each phase with
// bounded parallelism, injects resolved values into task configs, and
// aggregates per-task outcomes into a run result.
//
// Two entry points are provided. Agent takes hand-built Task values with
// explicit Dependency lists. Pipeline builds the same thing from step
// declarations, inferring dependencies from parameter names and sources.
// The manifest subpackage additionally loads pipelines from HCL files.
//
// Values flow through the engine as cty values (github.com/zclconf/go-cty),
// so results produced by one task stay addressable by field from the
// tasks that consume them.
package aipype
