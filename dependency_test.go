package aipype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zclconf/go-cty/cty"
)

func TestDependencyValidate(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		assert.NoError(t, NewRequired("articles", "search.results").Validate())
		assert.NoError(t, NewOptional("style", "config.style", cty.StringVal("brief")).Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		err := Dependency{SourcePath: "a.b"}.Validate()
		assert.ErrorContains(t, err, "empty name")
	})

	t.Run("empty source path", func(t *testing.T) {
		err := Dependency{Name: "x"}.Validate()
		assert.ErrorContains(t, err, "empty source path")
	})

	t.Run("path without dot", func(t *testing.T) {
		err := NewRequired("x", "search").Validate()
		assert.ErrorContains(t, err, "task.field")
	})

	t.Run("empty segment", func(t *testing.T) {
		err := NewRequired("x", "search..results").Validate()
		assert.ErrorContains(t, err, "empty segment")
	})
}

func TestDependencySourceTask(t *testing.T) {
	assert.Equal(t, "search", NewRequired("x", "search.results").SourceTask())
	assert.Equal(t, "search", NewRequired("x", "search.data.items").SourceTask())
	assert.Equal(t, "search", Dependency{Name: "x", SourcePath: "search"}.SourceTask())
}

func TestDependencyKinds(t *testing.T) {
	req := NewRequired("a", "t.f")
	assert.True(t, req.IsRequired())
	assert.False(t, req.IsOptional())
	assert.False(t, req.HasDefault())

	opt := NewOptional("b", "t.f", cty.NumberIntVal(1))
	assert.True(t, opt.IsOptional())
	assert.True(t, opt.HasDefault())

	noDefault := NewOptional("c", "t.f", cty.NilVal)
	assert.False(t, noDefault.HasDefault())
}

func TestDependencyString(t *testing.T) {
	assert.Equal(t, "a <- t.f (required)", NewRequired("a", "t.f").String())
	assert.Equal(t, "b <- t.f (optional)", NewOptional("b", "t.f", cty.NilVal).String())
}
