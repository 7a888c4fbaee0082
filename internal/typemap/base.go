package typemap

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vk/graphproc/internal/literal"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

var (
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
	ctyValueType = reflect.TypeOf(cty.Value{})
)

// baseConverters returns the fixed part of the mapping table.
func baseConverters() []*Converter {
	str := &Converter{
		typ:    types.String,
		goType: reflect.TypeOf(""),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return cty.StringVal(v.String()), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			if v.Type() != cty.String {
				return reflect.Value{}, mismatch(types.String, v)
			}
			return reflect.ValueOf(v.AsString()), nil
		},
		parse: func(lit string) (cty.Value, error) {
			if lit == "null" {
				return types.NoValue, nil
			}
			return cty.StringVal(lit), nil
		},
	}

	boolean := &Converter{
		typ:    types.Boolean,
		goType: reflect.TypeOf(false),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return cty.BoolVal(v.Bool()), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			if v.Type() != cty.Bool {
				return reflect.Value{}, mismatch(types.Boolean, v)
			}
			return reflect.ValueOf(v.True()), nil
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			switch strings.ToLower(s) {
			case "true":
				return cty.True, nil
			case "false":
				return cty.False, nil
			}
			return cty.NilVal, fmt.Errorf("%q is not a boolean", s)
		}),
	}

	integer := &Converter{
		typ:    types.Integer,
		goType: reflect.TypeOf(int64(0)),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return cty.NumberIntVal(v.Int()), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			if v.Type() != cty.Number {
				return reflect.Value{}, mismatch(types.Integer, v)
			}
			i, _ := v.AsBigFloat().Int64()
			return reflect.ValueOf(i), nil
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			i, err := strconv.ParseInt(s, 10, 64)
			return cty.NumberIntVal(i), err
		}),
	}

	float := &Converter{
		typ:    types.Float,
		goType: reflect.TypeOf(float64(0)),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return floatVal(v.Float())
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			if v.Type() != cty.Number {
				return reflect.Value{}, mismatch(types.Float, v)
			}
			f, _ := v.AsBigFloat().Float64()
			return reflect.ValueOf(f), nil
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return cty.NilVal, err
			}
			return floatVal(f)
		}),
	}

	number := &Converter{
		typ:    types.Number,
		goType: reflect.TypeOf((*big.Float)(nil)),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.IsNil() {
				return types.NoValue, nil
			}
			return types.NumberVal(v.Interface().(*big.Float)), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			if v.Type() != cty.Number {
				return reflect.Value{}, mismatch(types.Number, v)
			}
			return reflect.ValueOf(v.AsBigFloat()), nil
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			return cty.ParseNumberVal(s)
		}),
	}

	bytes := &Converter{
		typ:    types.ByteArray,
		goType: reflect.TypeOf([]byte(nil)),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.IsNil() {
				return types.NoValue, nil
			}
			return types.BytesVal(v.Bytes()), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			bv, err := literal.Coerce(v, types.ByteArray)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(types.AsBytes(bv)), nil
		},
		parse: func(lit string) (cty.Value, error) {
			return literal.ParseAs(lit, types.ByteArray)
		},
	}

	datetime := &Converter{
		typ:    types.DateTime,
		goType: reflect.TypeOf(time.Time{}),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return types.DateTimeVal(v.Interface().(time.Time)), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			switch {
			case v.Type().Equals(types.DateTimeType):
				return reflect.ValueOf(types.AsDateTime(v)), nil
			case v.Type() == cty.String:
				tm, err := time.Parse(time.RFC3339Nano, v.AsString())
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(tm), nil
			}
			return reflect.Value{}, mismatch(types.DateTime, v)
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			tm, err := time.Parse(time.RFC3339Nano, strings.Trim(s, `'"`))
			return types.DateTimeVal(tm), err
		}),
	}

	duration := &Converter{
		typ:    types.Duration,
		goType: reflect.TypeOf(time.Duration(0)),
		toInternal: func(v reflect.Value) (cty.Value, error) {
			return types.DurationVal(time.Duration(v.Int())), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			switch {
			case v.Type().Equals(types.DurationType):
				return reflect.ValueOf(types.AsDuration(v)), nil
			case v.Type() == cty.String:
				d, err := time.ParseDuration(v.AsString())
				if err != nil {
					return reflect.Value{}, err
				}
				return reflect.ValueOf(d), nil
			}
			return reflect.Value{}, mismatch(types.Duration, v)
		},
		parse: scalarParser(func(s string) (cty.Value, error) {
			d, err := time.ParseDuration(strings.Trim(s, `'"`))
			return types.DurationVal(d), err
		}),
	}

	dynamic := &Converter{
		typ:    types.Any,
		goType: anyType,
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.Kind() == reflect.Interface && v.IsNil() {
				return types.NoValue, nil
			}
			return ToValue(v.Interface())
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			native, err := ToNative(v)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(anyType).Elem()
			if native != nil {
				out.Set(reflect.ValueOf(native))
			}
			return out, nil
		},
		parse: func(lit string) (cty.Value, error) {
			return literal.Parse(lit)
		},
	}

	identity := &Converter{
		typ:    types.Any,
		goType: ctyValueType,
		toInternal: func(v reflect.Value) (cty.Value, error) {
			cv := v.Interface().(cty.Value)
			if cv.Type() == cty.NilType {
				return types.NoValue, nil
			}
			return cv, nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			return reflect.ValueOf(v), nil
		},
		parse: func(lit string) (cty.Value, error) {
			return literal.Parse(lit)
		},
	}

	return []*Converter{
		str, boolean, integer, float, number, bytes, datetime, duration, dynamic, identity,
		pointerTo(boolean), pointerTo(integer), pointerTo(float),
		listOf(reflect.TypeOf([]any(nil)), dynamic),
		mapOf(reflect.TypeOf(map[string]any(nil)), dynamic),
	}
}

// floatVal rejects NaN, which graph numbers cannot represent.
func floatVal(f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, procerr.New(procerr.TypeError, "NaN is not a valid %s", types.Float)
	}
	return cty.NumberFloatVal(f), nil
}

// scalarParser trims the literal and handles null before delegating.
func scalarParser(parse func(string) (cty.Value, error)) func(string) (cty.Value, error) {
	return func(lit string) (cty.Value, error) {
		s := strings.TrimSpace(lit)
		if s == "null" {
			return types.NoValue, nil
		}
		return parse(s)
	}
}
