package typemap

import (
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/vk/graphproc/internal/literal"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// ToNative recursively converts a cty.Value to its most natural Go
// counterpart. Whole numbers that fit become int64, other numbers float64.
func ToNative(v cty.Value) (any, error) {
	// A null or unknown value becomes a nil interface{}.
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.Equals(types.BytesType):
		return types.AsBytes(v), nil

	case ty.Equals(types.DateTimeType):
		return types.AsDateTime(v), nil

	case ty.Equals(types.DurationType):
		return types.AsDuration(v), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, val := it.Element()
			nativeVal, err := ToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, val := it.Element()
			keyStr := key.AsString()
			nativeVal, err := ToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for native conversion: %s", ty.FriendlyName())
	}
}

// ToValue converts a native Go value into a cty.Value. A nil value becomes
// types.NoValue.
func ToValue(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return types.NoValue, nil
	case cty.Value:
		if x.Type() == cty.NilType {
			return types.NoValue, nil
		}
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float32:
		return floatVal(float64(x))
	case float64:
		return floatVal(x)
	case *big.Float:
		if x == nil {
			return types.NoValue, nil
		}
		return types.NumberVal(x), nil
	case []byte:
		if x == nil {
			return types.NoValue, nil
		}
		return types.BytesVal(x), nil
	case time.Time:
		return types.DateTimeVal(x), nil
	case time.Duration:
		return types.DurationVal(x), nil
	}
	return reflectToValue(reflect.ValueOf(v))
}

func reflectToValue(rv reflect.Value) (cty.Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return types.NoValue, nil
		}
		return ToValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cty.NumberIntVal(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cty.NumberUIntVal(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return floatVal(rv.Float())
	case reflect.String:
		return cty.StringVal(rv.String()), nil
	case reflect.Bool:
		return cty.BoolVal(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return types.NoValue, nil
		}
		elems := make([]cty.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := ToValue(rv.Index(i).Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return literal.MakeList(elems, cty.DynamicPseudoType), nil
	case reflect.Map:
		if rv.IsNil() {
			return types.NoValue, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("maps are required to have string keys, got %s", rv.Type().Key())
		}
		attrs := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := ToValue(iter.Value().Interface())
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", iter.Key().String(), err)
			}
			attrs[iter.Key().String()] = ev
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported value of type %s", rv.Type())
}

// NativeMapper exposes ToNative as a procedure.ValueMapper.
type NativeMapper struct{}

func (NativeMapper) MapValue(v cty.Value) (any, error) {
	return ToNative(v)
}
