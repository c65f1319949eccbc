package aipype

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestResolverRequired(t *testing.T) {
	store := NewContext()
	store.StoreResult("search", objectResult(map[string]cty.Value{
		"results": cty.TupleVal([]cty.Value{cty.StringVal("hit")}),
	}))
	resolver := NewResolver(store)

	t.Run("resolves and injects", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewRequired("articles", "search.results"),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		v, ok := task.Config().Get("articles")
		require.True(t, ok)
		assert.Equal(t, 1, v.LengthInt())
	})

	t.Run("missing source fails", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewRequired("articles", "missing.results"),
		}, nil)

		err := resolver.Resolve(context.Background(), task)
		require.Error(t, err)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "consume", resErr.TaskName)
		assert.Equal(t, "articles", resErr.Dependency)
		assert.Equal(t, "missing.results", resErr.SourcePath)
	})

	t.Run("resolved value overrides preexisting config", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Set("articles", cty.StringVal("stale"))
		task := newStubTask("consume", cfg, []Dependency{
			NewRequired("articles", "search.results"),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		v, _ := task.Config().Get("articles")
		assert.True(t, v.Type().IsTupleType())
	})

	t.Run("invalid declaration fails", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewRequired("articles", "nodot"),
		}, nil)

		err := resolver.Resolve(context.Background(), task)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, "task.field")
	})
}

func TestResolverOptional(t *testing.T) {
	store := NewContext()
	resolver := NewResolver(store)

	t.Run("missing with default injects default", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewOptional("style", "config.style", cty.StringVal("brief")),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		assert.Equal(t, "brief", task.Config().StringOr("style", ""))
	})

	t.Run("missing without default leaves key absent", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewOptional("style", "config.style", cty.NilVal),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		assert.False(t, task.Config().Has("style"))
	})

	t.Run("missing with override injects null", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			{Name: "style", SourcePath: "config.style", Type: Optional, OverrideExisting: true},
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		v, ok := task.Config().Get("style")
		require.True(t, ok)
		assert.True(t, v.IsNull())
	})

	t.Run("invalid optional declaration is skipped", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewOptional("style", "nodot", cty.StringVal("x")),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		assert.False(t, task.Config().Has("style"))
	})
}

func TestResolverTransform(t *testing.T) {
	store := NewContext()
	store.StoreResult("fetch", objectResult(map[string]cty.Value{
		"count": cty.NumberIntVal(4),
	}))
	resolver := NewResolver(store)

	double := func(v cty.Value) (cty.Value, error) {
		f, _ := v.AsBigFloat().Float64()
		return cty.NumberFloatVal(f * 2), nil
	}
	explode := func(cty.Value) (cty.Value, error) {
		return cty.NilVal, fmt.Errorf("bad shape")
	}

	t.Run("transform applies before injection", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewRequired("count", "fetch.count").WithTransform(double),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		n, _ := task.Config().GetFloat("count")
		assert.Equal(t, 8.0, n)
	})

	t.Run("failing transform on required dependency fails", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewRequired("count", "fetch.count").WithTransform(explode),
		}, nil)

		err := resolver.Resolve(context.Background(), task)
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, "transform failed")
	})

	t.Run("failing transform on optional dependency skips", func(t *testing.T) {
		task := newStubTask("consume", nil, []Dependency{
			NewOptional("count", "fetch.count", cty.NumberIntVal(0)).WithTransform(explode),
		}, nil)

		require.NoError(t, resolver.Resolve(context.Background(), task))
		assert.False(t, task.Config().Has("count"))
	})
}

func TestResolverCheck(t *testing.T) {
	resolver := NewResolver(NewContext())
	task := newStubTask("consume", nil, []Dependency{
		NewRequired("good", "a.b"),
		NewRequired("bad", "nodot"),
		{Name: "", SourcePath: "a.b"},
	}, nil)

	errs := resolver.Check(task)
	assert.Len(t, errs, 2)
}
