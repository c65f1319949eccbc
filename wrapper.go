package aipype

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zclconf/go-cty/cty"
)

const (
	// dataKey is the conventional attribute holding a task's whole
	// payload; "name.data" addresses it from downstream dependencies.
	dataKey = "data"

	// outputKey holds scalar results so they stay addressable by field.
	outputKey = "output"
)

type returnKind int

const (
	returnValue returnKind = iota
	returnResult
	returnDelegate
	returnObject
	returnMapping
)

// Return is what a step function hands back. Exactly one of five shapes:
// a plain value, a full TaskResult, a delegation to another task, a
// struct, or a string-keyed mapping. Use the constructors; the zero
// Return behaves like Value(nil).
type Return struct {
	kind   returnKind
	value  any
	result TaskResult
	task   Task
}

// Value wraps a plain scalar or collection. It is stored dual-addressed
// as {"output": v, "data": v}.
func Value(v any) Return {
	return Return{kind: returnValue, value: v}
}

// ResultOf passes a fully formed TaskResult through unchanged, so a step
// can report partial results or attach its own metadata.
func ResultOf(r TaskResult) Return {
	return Return{kind: returnResult, result: r}
}

// DelegateTo hands execution to another task. The delegate runs in the
// step's place and its result is reported with delegation metadata; its
// execution time covers the whole step including this wrapper.
func DelegateTo(t Task) Return {
	return Return{kind: returnDelegate, task: t}
}

// Object wraps a struct (with cty field tags) or any value that converts
// to a cty object. Its fields become addressable attributes and the
// whole object is additionally stored under "data".
func Object(v any) Return {
	return Return{kind: returnObject, value: v}
}

// Mapping wraps a string-keyed map. Like Object, keys stay addressable
// and the whole map is also stored under "data".
func Mapping(m map[string]any) Return {
	return Return{kind: returnMapping, value: m}
}

// StepTask adapts a StepFunc into a Task: it assembles the function's
// arguments from resolved config values and parameter defaults, invokes
// the function, and normalizes whatever shape it returns into a
// TaskResult.
type StepTask struct {
	BaseTask
	fn       StepFunc
	params   []Param
	setupErr error
}

// NewStepTask wraps a step function as a task with explicit
// dependencies, for use with Agent directly rather than a Pipeline.
func NewStepTask(name string, fn StepFunc, deps []Dependency) *StepTask {
	t := &StepTask{
		BaseTask: NewBaseTask(name, NewConfig(), deps),
		fn:       fn,
	}
	if fn == nil {
		t.setupErr = fmt.Errorf("step %q has no function", name)
	}
	return t
}

// newStepTask builds a task from a step definition. Assembly never
// fails: definition problems are deferred into setupErr and surface as a
// failed result on the first Run.
func newStepTask(def StepDef, deps []Dependency, pipelineCfg *Config, setupErr error) *StepTask {
	cfg := NewConfig()
	if pipelineCfg != nil {
		cfg.Merge(pipelineCfg)
	}
	for k, v := range def.Config {
		cfg.Set(k, v)
	}
	t := &StepTask{
		BaseTask: NewBaseTask(def.Name, cfg, deps),
		fn:       def.Fn,
		params:   def.Params,
		setupErr: setupErr,
	}
	if t.setupErr == nil && def.Fn == nil {
		t.setupErr = fmt.Errorf("step %q has no function", def.Name)
	}
	return t
}

// Run implements Task.
func (t *StepTask) Run(ctx context.Context) (outcome TaskResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = Failure(fmt.Sprintf("task panicked: %v", r), time.Since(start), map[string]string{
				"error_type": "panic",
			})
		}
	}()

	if t.setupErr != nil {
		return Failure(t.setupErr.Error(), time.Since(start), map[string]string{
			"error_type": "SetupError",
		})
	}

	ret, err := t.fn(ctx, t.buildArgs())
	if err != nil {
		return Failure(err.Error(), time.Since(start), map[string]string{
			"error_type": errTypeName(err),
		})
	}
	return t.normalize(ctx, start, ret)
}

// buildArgs clones the resolved config and fills parameter defaults for
// keys that neither resolution nor static config provided.
func (t *StepTask) buildArgs() *Config {
	args := t.Config().Clone()
	for _, p := range t.params {
		if isSet(p.Default) && !args.Has(p.Name) {
			args.Set(p.Name, p.Default)
		}
	}
	return args
}

func (t *StepTask) normalize(ctx context.Context, start time.Time, ret Return) TaskResult {
	switch ret.kind {
	case returnResult:
		r := ret.result
		if r.ExecutionTime == 0 {
			r.ExecutionTime = time.Since(start)
		}
		return r

	case returnDelegate:
		return t.delegate(ctx, start, ret.task)

	case returnObject, returnMapping:
		converted, err := ToCty(ret.value)
		if err != nil {
			return Failure(fmt.Sprintf("converting step result: %v", err), time.Since(start), map[string]string{
				"error_type": "ResultConversionError",
			})
		}
		r := Success(dualAddress(converted), time.Since(start), nil)
		r.AddMetadata("return_type", retKindName(ret.kind))
		return r

	default:
		converted, err := ToCty(ret.value)
		if err != nil {
			return Failure(fmt.Sprintf("converting step result: %v", err), time.Since(start), map[string]string{
				"error_type": "ResultConversionError",
			})
		}
		r := Success(dualAddress(converted), time.Since(start), nil)
		r.AddMetadata("return_type", retKindName(returnValue))
		return r
	}
}

// delegate runs the inner task in this step's place. The reported
// execution time covers the whole step, wrapper overhead included.
func (t *StepTask) delegate(ctx context.Context, start time.Time, inner Task) TaskResult {
	if inner == nil {
		return Failure("delegation target is nil", time.Since(start), map[string]string{
			"error_type": "SetupError",
		})
	}
	inner.SetContext(t.TaskContext())
	r := runTaskSafely(ctx, inner)
	r.ExecutionTime = time.Since(start)
	if r.IsSuccess() && isSet(r.Data) && r.Data.Type().IsObjectType() {
		r.Data = dualAddress(r.Data)
	}
	r.AddMetadata("delegated_from", t.Name())
	r.AddMetadata("delegated_to", inner.Name())
	return r
}

// dualAddress makes a payload addressable both by field and as a whole:
// object attributes stay reachable directly while "data" always holds
// the complete value. Scalars go under "output" and "data".
func dualAddress(v cty.Value) cty.Value {
	if isSet(v) && !v.IsNull() && v.Type().IsObjectType() {
		attrTypes := v.Type().AttributeTypes()
		attrs := make(map[string]cty.Value, len(attrTypes)+1)
		for name := range attrTypes {
			attrs[name] = v.GetAttr(name)
		}
		attrs[dataKey] = v
		return cty.ObjectVal(attrs)
	}
	if !isSet(v) {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	return cty.ObjectVal(map[string]cty.Value{
		outputKey: v,
		dataKey:   v,
	})
}

func retKindName(k returnKind) string {
	switch k {
	case returnObject:
		return "object"
	case returnMapping:
		return "mapping"
	default:
		return "value"
	}
}

// errTypeName names an error's concrete type for failure metadata.
func errTypeName(err error) string {
	ty := reflect.TypeOf(err)
	for ty != nil && ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}
	if ty == nil || ty.Name() == "" {
		return "error"
	}
	return ty.Name()
}
