package literal

import (
	"fmt"

	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// ListMismatchError reports a list whose elements do not fit the declared
// element type.
type ListMismatchError struct {
	Want types.Type
	Got  types.Type
}

func (e *ListMismatchError) Error() string {
	return fmt.Sprintf("Expects a list of %s but got a list of %s", e.Want, e.Got)
}

// Coerce checks val against target and normalises lists. Lists of a single
// element type become cty lists, everything else stays a tuple.
func Coerce(val cty.Value, target types.Type) (cty.Value, error) {
	if val.IsNull() {
		return types.NoValue, nil
	}
	switch target.Kind() {
	case types.KindAny:
		return val, nil
	case types.KindList:
		return coerceList(val, target.Elem())
	case types.KindFloat, types.KindNumber:
		if val.Type() == cty.Number {
			return val, nil
		}
	case types.KindByteArray:
		return coerceBytes(val)
	default:
		if target.Accepts(val) {
			return val, nil
		}
	}
	return cty.NilVal, procerr.New(procerr.TypeError,
		"Expected a %s but got a %s", target, types.Of(val))
}

func coerceList(val cty.Value, elem types.Type) (cty.Value, error) {
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return cty.NilVal, procerr.New(procerr.TypeError,
			"Expected a %s but got a %s", types.List(elem), types.Of(val))
	}

	var out []cty.Value
	for it := val.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if elem.Kind() != types.KindAny && !ev.IsNull() {
			if elem.Kind() == types.KindList {
				if !ev.Type().IsTupleType() && !ev.Type().IsListType() {
					return cty.NilVal, &ListMismatchError{Want: elem, Got: types.Of(ev)}
				}
			} else if !elem.Accepts(ev) {
				return cty.NilVal, &ListMismatchError{Want: elem, Got: types.Of(ev)}
			}
		}
		cv, err := Coerce(ev, elem)
		if err != nil {
			return cty.NilVal, err
		}
		out = append(out, cv)
	}
	return MakeList(out, elem.Cty()), nil
}

func coerceBytes(val cty.Value) (cty.Value, error) {
	if val.Type().Equals(types.BytesType) {
		return val, nil
	}
	list, err := coerceList(val, types.Integer)
	if err != nil {
		return cty.NilVal, err
	}
	var b []byte
	for it := list.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		n, _ := ev.AsBigFloat().Int64()
		if n < -128 || n > 255 {
			return cty.NilVal, procerr.New(procerr.TypeError, "Value %d does not fit in a byte", n)
		}
		b = append(b, byte(n))
	}
	return types.BytesVal(b), nil
}

// MakeList builds a list when every element has the same type and a tuple
// otherwise. An empty input yields an empty list of elemType.
func MakeList(elems []cty.Value, elemType cty.Type) cty.Value {
	if len(elems) == 0 {
		return cty.ListValEmpty(elemType)
	}
	first := elems[0].Type()
	for _, e := range elems[1:] {
		if !e.Type().Equals(first) {
			return cty.TupleVal(elems)
		}
	}
	if first == cty.DynamicPseudoType {
		return cty.TupleVal(elems)
	}
	return cty.ListVal(elems)
}
