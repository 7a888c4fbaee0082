package invoker

import (
	"errors"
	"reflect"

	"github.com/vk/graphproc/internal/injection"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// Instance builds the receiver of a call.
type Instance struct {
	// New returns a pointer to a fresh instance of the extension type.
	New       func() (reflect.Value, error)
	Injection *injection.Injection
}

func (in Instance) prepare(pc *procedure.Context) (reflect.Value, error) {
	recv, err := in.New()
	if err != nil {
		return reflect.Value{}, err
	}
	if in.Injection != nil {
		if err := in.Injection.Apply(pc, recv); err != nil {
			return reflect.Value{}, err
		}
	}
	return recv, nil
}

// Method is one resolved extension method.
type Method struct {
	// Func is the method expression; its first argument is the receiver.
	Func reflect.Value
	Name string

	// WantsContext is set when the first declared argument is a
	// context.Context.
	WantsContext bool
	Args         []*typemap.Converter
	ReturnsError bool
}

// invoke calls the method and splits off a trailing error. Panics are
// recovered into errors.
func (m *Method) invoke(pc *procedure.Context, recv reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	in := make([]reflect.Value, 0, len(args)+2)
	in = append(in, recv)
	if m.WantsContext {
		in = append(in, reflect.ValueOf(pc.Context()))
	}
	in = append(in, args...)

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fromPanic(r)
		}
	}()

	out = m.Func.Call(in)
	if m.ReturnsError {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			return out, last.Interface().(error)
		}
	}
	return out, nil
}

// convertArgs fills missing trailing arguments from defaults and converts
// everything into Go values.
func (m *Method) convertArgs(what string, inputs []signature.FieldSignature, args []cty.Value) ([]reflect.Value, error) {
	if len(args) > len(inputs) {
		return nil, procerr.New(procerr.CallFailed,
			"Failed to invoke %s: it takes at most %d arguments but %d were given.", what, len(inputs), len(args))
	}
	out := make([]reflect.Value, len(inputs))
	for i, input := range inputs {
		var v cty.Value
		if i < len(args) {
			v = args[i]
		} else if def, ok := input.Default(); ok {
			v = def.Value()
		} else {
			return nil, procerr.New(procerr.CallFailed,
				"Failed to invoke %s: missing required argument `%s`.", what, input.Name())
		}
		rv, err := m.Args[i].FromInternal(v)
		if err != nil {
			return nil, procerr.Wrap(procerr.TypeError, err,
				"Failed to invoke %s: argument `%s`: %s", what, input.Name(), err.Error())
		}
		out[i] = rv
	}
	return out, nil
}

// RecordField maps one exported struct field to an output column.
type RecordField struct {
	Index     []int
	Converter *typemap.Converter
}

// RecordMapper converts record structs into rows.
type RecordMapper struct {
	fields  []RecordField
	pointer bool
}

// NewRecordMapper creates a mapper for records of a struct type, or of a
// pointer to one when pointer is set.
func NewRecordMapper(fields []RecordField, pointer bool) *RecordMapper {
	return &RecordMapper{fields: fields, pointer: pointer}
}

// Map converts one record.
func (m *RecordMapper) Map(v reflect.Value) ([]cty.Value, error) {
	if m.pointer {
		if v.IsNil() {
			return nil, errors.New("a nil record was produced")
		}
		v = v.Elem()
	}
	row := make([]cty.Value, len(m.fields))
	for i, f := range m.fields {
		cv, err := toInternal(f.Converter, v.FieldByIndex(f.Index))
		if err != nil {
			return nil, err
		}
		row[i] = cv
	}
	return row, nil
}

// toInternal converts a value produced by extension code. Panics raised
// while converting are recovered into errors.
func toInternal(c *typemap.Converter, v reflect.Value) (out cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = cty.NilVal, fromPanic(r)
		}
	}()
	return c.ToInternal(v)
}
