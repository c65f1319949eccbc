package aipype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestPipelineWiresStepsByName(t *testing.T) {
	p := NewPipeline("news")

	p.Step("search").
		Set("query", cty.StringVal("go scheduling")).
		Run(func(_ context.Context, args *Config) (Return, error) {
			return Mapping(map[string]any{
				"query": args.StringOr("query", ""),
				"hits":  []string{"a", "b"},
			}), nil
		})

	// A param named after the search step receives its whole payload.
	p.Step("summarize").
		Param("search").
		Run(func(_ context.Context, args *Config) (Return, error) {
			payload, ok := args.Get("search")
			if !ok {
				return Return{}, assert.AnError
			}
			hits := payload.GetAttr("hits")
			return Mapping(map[string]any{
				"summary": "summarized",
				"count":   hits.LengthInt(),
			}), nil
		})

	result := p.Run(context.Background())

	require.True(t, result.IsSuccess(), "run failed: %s", result.ErrorMessage)
	assert.Equal(t, 2, result.TotalPhases)

	count, ok := p.GetPathValue("summarize.count")
	require.True(t, ok)
	assert.Equal(t, float64(2), count)
}

func TestPipelineExplicitSourcePaths(t *testing.T) {
	p := NewPipeline("paths")

	p.Step("fetch").Run(func(context.Context, *Config) (Return, error) {
		return Mapping(map[string]any{"status": 200, "body": "ok"}), nil
	})

	p.Step("check").
		ParamFrom("code", "fetch.status").
		Run(func(_ context.Context, args *Config) (Return, error) {
			code, _ := args.GetInt("code")
			return Value(code == 200), nil
		})

	result := p.Run(context.Background())
	require.True(t, result.IsSuccess())

	v, ok := p.GetPathValue("check.output")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestPipelineOptionalParams(t *testing.T) {
	p := NewPipeline("optionals")

	p.Step("render").
		OptionalParam("style", cty.StringVal("brief")).
		OptionalParamFrom("title", "ghost.title", cty.StringVal("untitled")).
		Run(func(_ context.Context, args *Config) (Return, error) {
			return Mapping(map[string]any{
				"style": args.StringOr("style", ""),
				"title": args.StringOr("title", ""),
			}), nil
		})

	result := p.Run(context.Background())
	require.True(t, result.IsSuccess(), "run failed: %s", result.ErrorMessage)

	style, _ := p.GetPathValue("render.style")
	title, _ := p.GetPathValue("render.title")
	assert.Equal(t, "brief", style)
	assert.Equal(t, "untitled", title)
}

func TestPipelineConfigLocalParamsProduceNoDependency(t *testing.T) {
	// "query" matches no step, so it is config-local and creates no
	// edge; both steps share a phase.
	p := NewPipeline("local")
	p.Step("a").
		OptionalParam("query", cty.StringVal("default")).
		Run(func(_ context.Context, args *Config) (Return, error) {
			return Value(args.StringOr("query", "")), nil
		})
	p.Step("b").Run(func(context.Context, *Config) (Return, error) {
		return Value(1), nil
	})

	result := p.Run(context.Background())
	require.True(t, result.IsSuccess())
	assert.Equal(t, 1, result.TotalPhases)
}

func TestPipelineMalformedSourceDefersToRunTime(t *testing.T) {
	// Assembly never fails; the bad declaration fails that one step.
	p := NewPipelineWithOptions("deferred", RunOptions{Parallel: false, StopOnFailure: false})
	p.Step("bad").
		ParamFrom("x", "nodot").
		Run(func(context.Context, *Config) (Return, error) {
			return Value(1), nil
		})
	p.Step("good").Run(func(context.Context, *Config) (Return, error) {
		return Value(2), nil
	})

	result := p.Run(context.Background())

	assert.True(t, result.IsPartial())
	assert.Equal(t, StatusError, result.TaskStatuses["bad"])
	assert.Equal(t, StatusSuccess, result.TaskStatuses["good"])

	_, ok := p.GetResult("bad")
	require.False(t, ok)
	assert.Contains(t, p.Agent().Context().FailedTasks()["bad"], "task.field")
}

func TestPipelineFailurePropagation(t *testing.T) {
	p := NewPipeline("halting")
	p.Step("first").Run(func(context.Context, *Config) (Return, error) {
		return Return{}, assert.AnError
	})
	p.Step("second").
		Param("first").
		Run(func(context.Context, *Config) (Return, error) {
			return Value(1), nil
		})

	result := p.Run(context.Background())

	assert.True(t, result.IsError())
	assert.Equal(t, StatusError, result.TaskStatuses["first"])
	assert.Equal(t, StatusNotStarted, result.TaskStatuses["second"])
}

func TestPipelineRunIsIdempotentPerBuild(t *testing.T) {
	runs := 0
	p := NewPipeline("rebuild")
	p.Step("only").Run(func(context.Context, *Config) (Return, error) {
		runs++
		return Value(runs), nil
	})

	require.True(t, p.Run(context.Background()).IsSuccess())
	p.Reset()
	require.True(t, p.Run(context.Background()).IsSuccess())

	// Steps are assembled once; the second run reuses the same tasks.
	assert.Equal(t, 2, runs)
}

func TestInferDependencies(t *testing.T) {
	known := map[string]struct{}{"search": {}, "fetch": {}}

	t.Run("explicit source wins", func(t *testing.T) {
		deps, err := inferDependencies(StepDef{
			Name:   "s",
			Params: []Param{{Name: "articles", Source: "search.results"}},
		}, known)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "search.results", deps[0].SourcePath)
		assert.True(t, deps[0].IsRequired())
	})

	t.Run("name matching a step implies whole payload", func(t *testing.T) {
		deps, err := inferDependencies(StepDef{
			Name:   "s",
			Params: []Param{{Name: "search"}},
		}, known)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "search.data", deps[0].SourcePath)
	})

	t.Run("unmatched name is config-local", func(t *testing.T) {
		deps, err := inferDependencies(StepDef{
			Name:   "s",
			Params: []Param{{Name: "query"}},
		}, known)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("optional flag carries the default", func(t *testing.T) {
		deps, err := inferDependencies(StepDef{
			Name: "s",
			Params: []Param{
				{Name: "fetch", Optional: true, Default: cty.StringVal("none")},
			},
		}, known)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.True(t, deps[0].IsOptional())
		assert.Equal(t, cty.StringVal("none"), deps[0].Default)
	})

	t.Run("malformed source collects an error", func(t *testing.T) {
		deps, err := inferDependencies(StepDef{
			Name:   "s",
			Params: []Param{{Name: "x", Source: "nodot"}},
		}, known)
		assert.Error(t, err)
		assert.Empty(t, deps)
	})
}
