package typemap

import (
	"errors"
	"reflect"

	"github.com/vk/graphproc/internal/literal"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Converter moves values of one Go type in and out of the graph type system.
// Converters are immutable and safe for concurrent use.
type Converter struct {
	typ    types.Type
	goType reflect.Type

	toInternal   func(reflect.Value) (cty.Value, error)
	fromInternal func(cty.Value) (reflect.Value, error)
	parse        func(string) (cty.Value, error)
}

// Type is the graph type of the converted values.
func (c *Converter) Type() types.Type {
	return c.typ
}

// GoType is the Go type of the converted values.
func (c *Converter) GoType() reflect.Type {
	return c.goType
}

// ToInternal converts a Go value of GoType. Nil pointers, slices, maps and
// interfaces become types.NoValue.
func (c *Converter) ToInternal(v reflect.Value) (cty.Value, error) {
	return c.toInternal(v)
}

// FromInternal converts v into a value of GoType. A null v becomes the zero
// value of GoType.
func (c *Converter) FromInternal(v cty.Value) (reflect.Value, error) {
	if v.IsNull() {
		return reflect.Zero(c.goType), nil
	}
	return c.fromInternal(v)
}

// ParseDefault parses a declared default value.
func (c *Converter) ParseDefault(lit string) (signature.DefaultValue, error) {
	v, err := c.parse(lit)
	if err != nil {
		var mismatch *literal.ListMismatchError
		if errors.As(err, &mismatch) {
			return signature.DefaultValue{}, err
		}
		return signature.DefaultValue{}, procerr.Wrap(procerr.TypeError, err,
			"Default value `%s` could not be parsed as a %s", lit, c.typ)
	}
	return signature.NewDefaultValue(v, c.typ), nil
}

func mismatch(want types.Type, v cty.Value) error {
	return procerr.New(procerr.TypeError, "Expected a %s but got a %s", want, types.Of(v))
}

// pointerTo wraps a scalar converter so that *T maps to the same graph type
// as T with nil standing in for null.
func pointerTo(base *Converter) *Converter {
	ptr := reflect.PointerTo(base.goType)
	return &Converter{
		typ:    base.typ,
		goType: ptr,
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.IsNil() {
				return types.NoValue, nil
			}
			return base.toInternal(v.Elem())
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			inner, err := base.fromInternal(v)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(base.goType)
			out.Elem().Set(inner)
			return out, nil
		},
		parse: base.parse,
	}
}

func listOf(goType reflect.Type, elem *Converter) *Converter {
	typ := types.List(elem.typ)
	return &Converter{
		typ:    typ,
		goType: goType,
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.IsNil() {
				return types.NoValue, nil
			}
			elems := make([]cty.Value, 0, v.Len())
			for i := 0; i < v.Len(); i++ {
				ev, err := elem.ToInternal(v.Index(i))
				if err != nil {
					return cty.NilVal, err
				}
				elems = append(elems, ev)
			}
			return literal.MakeList(elems, elem.typ.Cty()), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			ty := v.Type()
			if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
				return reflect.Value{}, mismatch(typ, v)
			}
			out := reflect.MakeSlice(goType, 0, v.LengthInt())
			for it := v.ElementIterator(); it.Next(); {
				_, ev := it.Element()
				gv, err := elem.FromInternal(ev)
				if err != nil {
					return reflect.Value{}, err
				}
				out = reflect.Append(out, gv)
			}
			return out, nil
		},
		parse: func(lit string) (cty.Value, error) {
			return literal.ParseAs(lit, typ)
		},
	}
}

func mapOf(goType reflect.Type, elem *Converter) *Converter {
	return &Converter{
		typ:    types.Map,
		goType: goType,
		toInternal: func(v reflect.Value) (cty.Value, error) {
			if v.IsNil() {
				return types.NoValue, nil
			}
			attrs := make(map[string]cty.Value, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				ev, err := elem.ToInternal(iter.Value())
				if err != nil {
					return cty.NilVal, err
				}
				attrs[iter.Key().String()] = ev
			}
			return cty.ObjectVal(attrs), nil
		},
		fromInternal: func(v cty.Value) (reflect.Value, error) {
			ty := v.Type()
			if !ty.IsObjectType() && !ty.IsMapType() {
				return reflect.Value{}, mismatch(types.Map, v)
			}
			out := reflect.MakeMapWithSize(goType, v.LengthInt())
			for it := v.ElementIterator(); it.Next(); {
				k, ev := it.Element()
				gv, err := elem.FromInternal(ev)
				if err != nil {
					return reflect.Value{}, err
				}
				out.SetMapIndex(reflect.ValueOf(k.AsString()).Convert(goType.Key()), gv)
			}
			return out, nil
		},
		parse: func(lit string) (cty.Value, error) {
			return literal.ParseAs(lit, types.Map)
		},
	}
}
