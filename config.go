package aipype

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Config is a string-keyed store of cty values. It carries both a task's
// static parameters and, after resolution, its injected dependency values.
//
// A Config is owned by a single task within a single run: the resolver
// writes to it once before the task runs and the task body only reads it,
// so no internal locking is needed.
type Config struct {
	values map[string]cty.Value
}

// NewConfig returns an empty Config.
func NewConfig() *Config {
	return &Config{values: make(map[string]cty.Value)}
}

// ConfigFrom returns a Config seeded with a copy of the given values.
func ConfigFrom(values map[string]cty.Value) *Config {
	c := NewConfig()
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// ConfigFromGo converts a map of native Go values into a Config.
func ConfigFromGo(values map[string]any) (*Config, error) {
	c := NewConfig()
	for k, v := range values {
		converted, err := ToCty(v)
		if err != nil {
			return nil, fmt.Errorf("config key %q: %w", k, err)
		}
		c.values[k] = converted
	}
	return c, nil
}

// Set stores a value under key, replacing any existing value.
func (c *Config) Set(key string, value cty.Value) {
	c.values[key] = value
}

// SetGo converts a native Go value and stores it under key.
func (c *Config) SetGo(key string, value any) error {
	converted, err := ToCty(value)
	if err != nil {
		return fmt.Errorf("config key %q: %w", key, err)
	}
	c.values[key] = converted
	return nil
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (cty.Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Len returns the number of stored keys.
func (c *Config) Len() int {
	return len(c.values)
}

// Keys returns all stored keys in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the Config.
func (c *Config) Clone() *Config {
	return ConfigFrom(c.values)
}

// Merge copies every entry from other into c, overwriting existing keys.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	for k, v := range other.values {
		c.values[k] = v
	}
}

// GetString returns the string stored under key, if the value is a
// non-null string.
func (c *Config) GetString(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok || v.IsNull() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}

// StringOr returns the string stored under key, or fallback when the key
// is absent or not a string.
func (c *Config) StringOr(key, fallback string) string {
	if s, ok := c.GetString(key); ok {
		return s
	}
	return fallback
}

// GetBool returns the bool stored under key, if the value is a non-null bool.
func (c *Config) GetBool(key string) (bool, bool) {
	v, ok := c.values[key]
	if !ok || v.IsNull() || v.Type() != cty.Bool {
		return false, false
	}
	return v.True(), true
}

// BoolOr returns the bool stored under key, or fallback when the key is
// absent or not a bool.
func (c *Config) BoolOr(key string, fallback bool) bool {
	if b, ok := c.GetBool(key); ok {
		return b
	}
	return fallback
}

// GetFloat returns the number stored under key as a float64.
func (c *Config) GetFloat(key string) (float64, bool) {
	v, ok := c.values[key]
	if !ok || v.IsNull() || v.Type() != cty.Number {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}

// GetInt returns the number stored under key truncated to an int.
func (c *Config) GetInt(key string) (int, bool) {
	f, ok := c.GetFloat(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// IntOr returns the number stored under key truncated to an int, or
// fallback when the key is absent or not a number.
func (c *Config) IntOr(key string, fallback int) int {
	if n, ok := c.GetInt(key); ok {
		return n
	}
	return fallback
}

// GetStringSlice returns the value stored under key as a slice of strings.
// The value must be a list, set, or tuple whose elements are all strings.
func (c *Config) GetStringSlice(key string) ([]string, bool) {
	v, ok := c.values[key]
	if !ok || v.IsNull() {
		return nil, false
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, false
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, item := it.Element()
		if item.IsNull() || item.Type() != cty.String {
			return nil, false
		}
		out = append(out, item.AsString())
	}
	return out, true
}
