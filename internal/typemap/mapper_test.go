package typemap

import (
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TestResolve_Types(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		goType reflect.Type
		want   types.Type
	}{
		{typeOf[string](), types.String},
		{typeOf[bool](), types.Boolean},
		{typeOf[*bool](), types.Boolean},
		{typeOf[int64](), types.Integer},
		{typeOf[*int64](), types.Integer},
		{typeOf[float64](), types.Float},
		{typeOf[*big.Float](), types.Number},
		{typeOf[[]byte](), types.ByteArray},
		{typeOf[any](), types.Any},
		{typeOf[cty.Value](), types.Any},
		{typeOf[map[string]any](), types.Map},
		{typeOf[map[string]int64](), types.Map},
		{typeOf[[]any](), types.List(types.Any)},
		{typeOf[[]string](), types.List(types.String)},
		{typeOf[[][]int64](), types.List(types.List(types.Integer))},
		{typeOf[time.Time](), types.DateTime},
		{typeOf[time.Duration](), types.Duration},
	}
	for _, tc := range tests {
		t.Run(tc.goType.String(), func(t *testing.T) {
			c, err := m.Resolve(tc.goType)
			require.NoError(t, err)
			require.True(t, tc.want.Equals(c.Type()), "got %s", c.Type())
		})
	}
}

func TestResolve_Unmappable(t *testing.T) {
	m := NewMapper()

	_, err := m.Resolve(typeOf[int]())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Don't know how to map `int` to the graph type system.")
	require.Contains(t, err.Error(), "For your reference, known types are: [")

	_, err = m.Resolve(typeOf[[]int]())
	require.Contains(t, err.Error(), "Don't know how to map `[]int`")

	_, err = m.Resolve(typeOf[map[int]string]())
	require.EqualError(t, err, "Maps are required to have `string` keys - but this map has `int` keys.")

	_, err = m.Resolve(typeOf[[]map[int]string]())
	require.EqualError(t, err, "Maps are required to have `string` keys - but this map has `int` keys.")
}

func TestKnownTypes_Sorted(t *testing.T) {
	known := NewMapper().KnownTypes()
	require.IsIncreasing(t, known)
	require.Contains(t, known, "string")
	require.Contains(t, known, "map[string]interface {}")
}

func TestResolve_CachesDerived(t *testing.T) {
	m := NewMapper()
	a, err := m.Resolve(typeOf[[]string]())
	require.NoError(t, err)
	b, err := m.Resolve(typeOf[[]string]())
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestConverter_RoundTrip(t *testing.T) {
	m := NewMapper()

	c, err := m.Resolve(typeOf[map[string][]int64]())
	require.NoError(t, err)
	in := map[string][]int64{"a": {1, 2}, "b": nil}
	v, err := c.ToInternal(reflect.ValueOf(in))
	require.NoError(t, err)
	require.True(t, v.GetAttr("b").IsNull())

	out, err := c.FromInternal(v)
	require.NoError(t, err)
	require.Equal(t, map[string][]int64{"a": {1, 2}, "b": nil}, out.Interface())
}

func TestConverter_NullBecomesZero(t *testing.T) {
	m := NewMapper()
	for _, goType := range []reflect.Type{typeOf[string](), typeOf[int64](), typeOf[*int64](), typeOf[[]string](), typeOf[any]()} {
		c, err := m.Resolve(goType)
		require.NoError(t, err)
		out, err := c.FromInternal(types.NoValue)
		require.NoError(t, err)
		require.True(t, out.IsZero(), goType.String())
	}
}

func TestConverter_NilBecomesNoValue(t *testing.T) {
	m := NewMapper()
	c, err := m.Resolve(typeOf[*int64]())
	require.NoError(t, err)
	v, err := c.ToInternal(reflect.ValueOf((*int64)(nil)))
	require.NoError(t, err)
	require.True(t, v.RawEquals(types.NoValue))
}

func TestConverter_TypeMismatch(t *testing.T) {
	c, err := NewMapper().Resolve(typeOf[string]())
	require.NoError(t, err)
	_, err = c.FromInternal(cty.NumberIntVal(1))
	require.EqualError(t, err, "Expected a STRING but got a INTEGER")
}

func TestConverter_RejectsNaN(t *testing.T) {
	m := NewMapper()
	nan := math.NaN()
	tests := []struct {
		goType reflect.Type
		value  reflect.Value
	}{
		{typeOf[float64](), reflect.ValueOf(nan)},
		{typeOf[*float64](), reflect.ValueOf(&nan)},
		{typeOf[any](), reflect.ValueOf(&[]any{nan}).Elem().Index(0)},
		{typeOf[[]float64](), reflect.ValueOf([]float64{1, nan})},
		{typeOf[map[string]any](), reflect.ValueOf(map[string]any{"x": float32(nan)})},
	}
	for _, tc := range tests {
		t.Run(tc.goType.String(), func(t *testing.T) {
			c, err := m.Resolve(tc.goType)
			require.NoError(t, err)
			_, err = c.ToInternal(tc.value)
			require.ErrorContains(t, err, "NaN is not a valid FLOAT")
			status, ok := procerr.StatusOf(err)
			require.True(t, ok)
			require.Equal(t, procerr.TypeError, status)
		})
	}
}

func TestParseDefault(t *testing.T) {
	m := NewMapper()
	tests := []struct {
		goType  reflect.Type
		literal string
		want    cty.Value
		wantErr string
	}{
		{goType: typeOf[int64](), literal: "42", want: cty.NumberIntVal(42)},
		{goType: typeOf[int64](), literal: "null", want: types.NoValue},
		{goType: typeOf[int64](), literal: "forty", wantErr: "Default value `forty` could not be parsed as a INTEGER"},
		{goType: typeOf[bool](), literal: "TRUE", want: cty.True},
		{goType: typeOf[bool](), literal: "42", wantErr: "Default value `42` could not be parsed as a BOOLEAN"},
		{goType: typeOf[map[string]any](), literal: "{}", want: cty.EmptyObjectVal},
		{goType: typeOf[[]any](), literal: "[]", want: cty.ListValEmpty(cty.DynamicPseudoType)},
		{goType: typeOf[[]int64](), literal: "[1, 3, 3, 7, 42]", want: cty.ListVal([]cty.Value{
			cty.NumberIntVal(1), cty.NumberIntVal(3), cty.NumberIntVal(3), cty.NumberIntVal(7), cty.NumberIntVal(42),
		})},
		{goType: typeOf[float64](), literal: "2.5", want: cty.NumberFloatVal(2.5)},
		{goType: typeOf[float64](), literal: "NaN", wantErr: "Default value `NaN` could not be parsed as a FLOAT"},
		{goType: typeOf[*float64](), literal: "nan", wantErr: "Default value `nan` could not be parsed as a FLOAT"},
		{goType: typeOf[string](), literal: "hello", want: cty.StringVal("hello")},
		{goType: typeOf[time.Duration](), literal: "1m", want: types.DurationVal(time.Minute)},
		{goType: typeOf[[]string](), literal: "['a', 1]", wantErr: "Expects a list of STRING but got a list of INTEGER"},
		{goType: typeOf[map[string]any](), literal: "[1]", wantErr: "Default value `[1]` could not be parsed as a MAP"},
	}
	for _, tc := range tests {
		t.Run(tc.goType.String()+"/"+tc.literal, func(t *testing.T) {
			c, err := m.Resolve(tc.goType)
			require.NoError(t, err)
			def, err := c.ParseDefault(tc.literal)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, def.Value().RawEquals(tc.want), "got %#v", def.Value())
			require.True(t, c.Type().Equals(def.Type()))
		})
	}
}

func TestToNative(t *testing.T) {
	v := cty.ObjectVal(map[string]cty.Value{
		"n": cty.NumberIntVal(3),
		"f": cty.NumberFloatVal(1.5),
		"l": cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.True}),
	})
	got, err := ToNative(v)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"n": int64(3), "f": 1.5, "l": []any{"x", true}}, got)
}
