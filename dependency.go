package aipype

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// DependencyType distinguishes dependencies that must resolve from those
// that may be absent.
type DependencyType int

const (
	// Required dependencies must resolve to a value or the task fails
	// before running.
	Required DependencyType = iota

	// Optional dependencies fall back to their default when the source
	// is missing, and are simply skipped when no default is set.
	Optional
)

// String implements fmt.Stringer.
func (t DependencyType) String() string {
	switch t {
	case Required:
		return "required"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("DependencyType(%d)", int(t))
	}
}

// TransformFunc reshapes a resolved value before injection.
type TransformFunc func(cty.Value) (cty.Value, error)

// Dependency declares that a task's config key is fed from another task's
// result. SourcePath is a dotted path whose first segment names the
// producing task and whose remaining segments address into that task's
// stored result.
type Dependency struct {
	// Name is the config key the resolved value is injected under.
	Name string

	// SourcePath addresses the value, e.g. "fetch.data.url".
	SourcePath string

	// Type controls what happens when the source is missing.
	Type DependencyType

	// Default is injected for an optional dependency whose source is
	// missing. The zero cty.Value means no default.
	Default cty.Value

	// Transform, if set, is applied to the resolved value before it is
	// written into the config.
	Transform TransformFunc

	// OverrideExisting injects null results instead of leaving an
	// existing config value untouched.
	OverrideExisting bool
}

// NewRequired declares a required dependency.
func NewRequired(name, sourcePath string) Dependency {
	return Dependency{Name: name, SourcePath: sourcePath, Type: Required}
}

// NewOptional declares an optional dependency with a fallback default.
// Pass cty.NilVal for no default.
func NewOptional(name, sourcePath string, def cty.Value) Dependency {
	return Dependency{Name: name, SourcePath: sourcePath, Type: Optional, Default: def}
}

// WithTransform returns a copy of the dependency with a transform attached.
func (d Dependency) WithTransform(fn TransformFunc) Dependency {
	d.Transform = fn
	return d
}

// IsRequired reports whether the dependency must resolve.
func (d Dependency) IsRequired() bool { return d.Type == Required }

// IsOptional reports whether the dependency may be absent.
func (d Dependency) IsOptional() bool { return d.Type == Optional }

// HasDefault reports whether a fallback default is set.
func (d Dependency) HasDefault() bool { return isSet(d.Default) }

// SourceTask returns the producing task's name, the first path segment.
func (d Dependency) SourceTask() string {
	if i := strings.IndexByte(d.SourcePath, '.'); i >= 0 {
		return d.SourcePath[:i]
	}
	return d.SourcePath
}

// Validate checks the declaration is well formed: both names present and
// the source path shaped "task.field".
func (d Dependency) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dependency has empty name")
	}
	if d.SourcePath == "" {
		return fmt.Errorf("dependency %q has empty source path", d.Name)
	}
	if !strings.Contains(d.SourcePath, ".") {
		return fmt.Errorf("dependency %q source path %q must be of the form \"task.field\"", d.Name, d.SourcePath)
	}
	for _, seg := range splitPath(d.SourcePath) {
		if seg == "" {
			return fmt.Errorf("dependency %q source path %q has an empty segment", d.Name, d.SourcePath)
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (d Dependency) String() string {
	return fmt.Sprintf("%s <- %s (%s)", d.Name, d.SourcePath, d.Type)
}
