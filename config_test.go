package aipype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConfigBasics(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("x"))

	c.Set("x", cty.StringVal("v"))
	assert.True(t, c.Has("x"))
	v, ok := c.Get("x")
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("v"), v)

	c.Set("a", cty.NumberIntVal(1))
	assert.Equal(t, []string{"a", "x"}, c.Keys())
}

func TestConfigFromGo(t *testing.T) {
	c, err := ConfigFromGo(map[string]any{
		"url":     "https://example.com",
		"retries": 3,
	})
	require.NoError(t, err)

	url, ok := c.GetString("url")
	require.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	retries, ok := c.GetInt("retries")
	require.True(t, ok)
	assert.Equal(t, 3, retries)
}

func TestConfigTypedGetters(t *testing.T) {
	c := ConfigFrom(map[string]cty.Value{
		"name":  cty.StringVal("fetch"),
		"ratio": cty.NumberFloatVal(0.5),
		"on":    cty.True,
		"tags":  cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
	})

	t.Run("matching types", func(t *testing.T) {
		s, ok := c.GetString("name")
		assert.True(t, ok)
		assert.Equal(t, "fetch", s)

		f, ok := c.GetFloat("ratio")
		assert.True(t, ok)
		assert.Equal(t, 0.5, f)

		b, ok := c.GetBool("on")
		assert.True(t, ok)
		assert.True(t, b)

		tags, ok := c.GetStringSlice("tags")
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, tags)
	})

	t.Run("type mismatches report not found", func(t *testing.T) {
		_, ok := c.GetString("ratio")
		assert.False(t, ok)
		_, ok = c.GetBool("name")
		assert.False(t, ok)
		_, ok = c.GetStringSlice("name")
		assert.False(t, ok)
	})

	t.Run("fallback helpers", func(t *testing.T) {
		assert.Equal(t, "fetch", c.StringOr("name", "other"))
		assert.Equal(t, "other", c.StringOr("missing", "other"))
		assert.Equal(t, 9, c.IntOr("missing", 9))
		assert.True(t, c.BoolOr("on", false))
		assert.False(t, c.BoolOr("missing", false))
	})
}

func TestConfigCloneIsIndependent(t *testing.T) {
	c := NewConfig()
	c.Set("k", cty.StringVal("original"))

	clone := c.Clone()
	clone.Set("k", cty.StringVal("changed"))
	clone.Set("extra", cty.True)

	v, _ := c.Get("k")
	assert.Equal(t, cty.StringVal("original"), v)
	assert.False(t, c.Has("extra"))
}

func TestConfigMerge(t *testing.T) {
	base := ConfigFrom(map[string]cty.Value{
		"a": cty.StringVal("base"),
		"b": cty.StringVal("base"),
	})
	overlay := ConfigFrom(map[string]cty.Value{
		"b": cty.StringVal("overlay"),
		"c": cty.StringVal("overlay"),
	})

	base.Merge(overlay)
	assert.Equal(t, "base", base.StringOr("a", ""))
	assert.Equal(t, "overlay", base.StringOr("b", ""))
	assert.Equal(t, "overlay", base.StringOr("c", ""))

	base.Merge(nil) // no-op
	assert.Equal(t, 3, base.Len())
}
