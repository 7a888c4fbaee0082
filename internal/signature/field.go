package signature

import (
	"fmt"

	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// DefaultValue is the parsed default of an optional input.
type DefaultValue struct {
	value cty.Value
	typ   types.Type
}

// NewDefaultValue pairs a parsed value with its type.
func NewDefaultValue(v cty.Value, t types.Type) DefaultValue {
	return DefaultValue{value: v, typ: t}
}

func (d DefaultValue) Value() cty.Value { return d.value }
func (d DefaultValue) Type() types.Type { return d.typ }

// FieldSignature describes one input or output column.
type FieldSignature struct {
	name       string
	typ        types.Type
	def        *DefaultValue
	deprecated bool
}

// Input describes a required input.
func Input(name string, t types.Type) FieldSignature {
	return FieldSignature{name: name, typ: t}
}

// InputWithDefault describes an optional input.
func InputWithDefault(name string, t types.Type, def DefaultValue) FieldSignature {
	return FieldSignature{name: name, typ: t, def: &def}
}

// Output describes an output column.
func Output(name string, t types.Type, deprecated bool) FieldSignature {
	return FieldSignature{name: name, typ: t, deprecated: deprecated}
}

func (f FieldSignature) Name() string       { return f.name }
func (f FieldSignature) Type() types.Type   { return f.typ }
func (f FieldSignature) IsDeprecated() bool { return f.deprecated }

// Default returns the default value of an optional input.
func (f FieldSignature) Default() (DefaultValue, bool) {
	if f.def == nil {
		return DefaultValue{}, false
	}
	return *f.def, true
}

func (f FieldSignature) String() string {
	if f.def != nil {
		return fmt.Sprintf("%s = %s :: %s", f.name, render(f.def.value), f.typ)
	}
	return fmt.Sprintf("%s :: %s", f.name, f.typ)
}

// render prints a value the way it would be written as a literal.
func render(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "?"
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case ty == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := "["
		i := 0
		for it := v.ElementIterator(); it.Next(); i++ {
			_, ev := it.Element()
			if i > 0 {
				out += ", "
			}
			out += render(ev)
		}
		return out + "]"
	case ty.IsObjectType() || ty.IsMapType():
		out := "{"
		i := 0
		for it := v.ElementIterator(); it.Next(); i++ {
			k, ev := it.Element()
			if i > 0 {
				out += ", "
			}
			out += k.AsString() + ": " + render(ev)
		}
		return out + "}"
	}
	return ty.FriendlyName()
}
