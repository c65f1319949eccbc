package aipype

import (
	"errors"
	"fmt"
)

// inferDependencies derives a step's dependency list from its parameter
// declarations. The rules are explicit and positional-free:
//
//  1. A param with an explicit Source depends on that path verbatim.
//  2. A param whose name matches another step in the pipeline depends on
//     that step's whole payload, "<name>.data".
//  3. Any other param is config-local and produces no dependency; its
//     value comes from step config or its default.
//
// Malformed declarations do not abort inference; they are collected into
// the returned error so assembly can defer them to run time.
func inferDependencies(def StepDef, known map[string]struct{}) ([]Dependency, error) {
	var deps []Dependency
	var errs []error

	for _, p := range def.Params {
		var dep Dependency
		switch {
		case p.Source != "":
			dep = Dependency{Name: p.Name, SourcePath: p.Source}
		default:
			if _, ok := known[p.Name]; !ok {
				continue
			}
			dep = Dependency{Name: p.Name, SourcePath: p.Name + "." + dataKey}
		}

		if p.Optional {
			dep.Type = Optional
			dep.Default = p.Default
		} else {
			dep.Type = Required
		}
		dep.Transform = p.Transform

		if err := dep.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("step %q param %q: %w", def.Name, p.Name, err))
			continue
		}
		deps = append(deps, dep)
	}
	return deps, errors.Join(errs...)
}
