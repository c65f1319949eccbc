package aipype

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts a native Go value into its cty representation. Strings,
// bools, and numeric types map to the corresponding primitive types; maps
// keyed by string become object values; slices become tuple values; structs
// are converted via gocty and must carry cty field tags. A cty.Value passes
// through unchanged.
func ToCty(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	case string:
		return cty.StringVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int32:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case float32:
		return cty.NumberFloatVal(float64(val)), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(val))
		for k, item := range val {
			converted, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = converted
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil
	case map[string]string:
		attrs := make(map[string]cty.Value, len(val))
		for k, item := range val {
			attrs[k] = cty.StringVal(item)
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, 0, len(val))
		for i, item := range val {
			converted, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, converted)
		}
		return cty.TupleVal(items), nil
	case []string:
		if len(val) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, 0, len(val))
		for _, item := range val {
			items = append(items, cty.StringVal(item))
		}
		return cty.TupleVal(items), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unsupported value of type %T: %w", v, err)
		}
		return gocty.ToCtyValue(v, ty)
	}
}

// FromCty converts a cty.Value back into a native Go value. Numbers come
// back as float64; objects and maps as map[string]any; tuples and lists as
// []any. Null and unknown values convert to nil.
func FromCty(val cty.Value) (any, error) {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type for conversion: %s", ty.FriendlyName())
}

// pathValue walks a dotted field path through nested object and map values.
// It reports false as soon as any segment is missing or the current value
// cannot be traversed further.
func pathValue(root cty.Value, segments []string) (cty.Value, bool) {
	current := root
	for _, seg := range segments {
		if current == cty.NilVal || current.IsNull() || !current.IsKnown() {
			return cty.NilVal, false
		}
		ty := current.Type()
		switch {
		case ty.IsObjectType():
			if !ty.HasAttribute(seg) {
				return cty.NilVal, false
			}
			current = current.GetAttr(seg)
		case ty.IsMapType():
			key := cty.StringVal(seg)
			if current.HasIndex(key).False() {
				return cty.NilVal, false
			}
			current = current.Index(key)
		default:
			return cty.NilVal, false
		}
	}
	return current, true
}

// splitPath splits a dotted source path into its segments.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// isSet reports whether v holds an actual value, i.e. it is not the zero
// cty.Value used throughout this package as "no value provided".
func isSet(v cty.Value) bool {
	return v != cty.NilVal
}
