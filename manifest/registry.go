package manifest

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mobisoftinfotech/aipype"
)

// Registry maps runner names to the step functions that execute them.
// Registration happens at process start, so duplicates are programmer
// errors and panic rather than returning an error.
type Registry struct {
	handlers map[string]aipype.StepFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]aipype.StepFunc)}
}

// Register binds a runner name to a step function.
func (r *Registry) Register(name string, fn aipype.StepFunc) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("runner with name '%s' already registered", name))
	}
	slog.Debug("Registering runner.", "name", name)
	r.handlers[name] = fn
}

// Handler looks up the step function for a runner name.
func (r *Registry) Handler(name string) (aipype.StepFunc, bool) {
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns all registered runner names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
