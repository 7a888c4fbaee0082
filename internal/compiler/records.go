package compiler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/signature"
)

const exampleRecord = "Procedures must return a Stream of records, where a record is a concrete type\n" +
	"that you define, with exported fields defining the fields in the record.\n" +
	"If you'd like your procedure to return `%[1]s`, you could define a record type like:\n" +
	"type Output struct {\n" +
	"    Out %[1]s\n" +
	"}\n" +
	"\n" +
	"And then define your procedure as returning `procedure.Stream[Output]`."

// streamElem returns the element type of a procedure.Stream[T] return type.
func streamElem(t reflect.Type) (reflect.Type, bool) {
	next, ok := t.MethodByName("Next")
	if !ok {
		return nil, false
	}
	closeFn, ok := t.MethodByName("Close")
	if !ok {
		return nil, false
	}
	nt := next.Type
	ct := closeFn.Type
	// Interface methods carry no receiver.
	inOffset := 0
	if t.Kind() != reflect.Interface {
		inOffset = 1
	}
	if nt.NumIn() != inOffset || nt.NumOut() != 2 || nt.Out(1) != errorType {
		return nil, false
	}
	if ct.NumIn() != inOffset || ct.NumOut() != 1 || ct.Out(0) != errorType {
		return nil, false
	}
	return nt.Out(0), true
}

// outputShape validates the non-error results of a procedure and returns
// the record mapper, or nil for a void procedure.
func (c *Compiler) outputShape(method reflect.Method, outs []reflect.Type) (*invoker.RecordMapper, []signature.FieldSignature, error) {
	switch len(outs) {
	case 0:
		return nil, nil, nil
	case 1:
	default:
		return nil, nil, fmt.Errorf("Procedure method `%s` returns %d values; it must return a single Stream of records.",
			method.Name, len(outs))
	}

	elem, ok := streamElem(outs[0])
	if !ok {
		return nil, nil, fmt.Errorf(exampleRecord, outs[0])
	}

	base := elem
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	switch {
	case base.Kind() == reflect.Interface:
		return nil, nil, fmt.Errorf("Procedures must return a Stream of records, where a record is a concrete type\n"+
			"that you define and not a wildcard type such as `%s`.", elem)
	case base.Kind() == reflect.Slice || base.Kind() == reflect.Map || isGenericName(base):
		return nil, nil, fmt.Errorf("Procedures must return a Stream of records, where a record is a concrete type\n"+
			"that you define and not a parameterized type such as `%s`.", elem)
	case base.Kind() != reflect.Struct:
		return nil, nil, fmt.Errorf(exampleRecord, elem)
	}

	fields, outputs, err := c.recordFields(base)
	if err != nil {
		return nil, nil, err
	}
	return invoker.NewRecordMapper(fields, elem.Kind() == reflect.Pointer), outputs, nil
}

func isGenericName(t reflect.Type) bool {
	return strings.Contains(t.Name(), "[")
}

// recordFields lists the output columns of a record struct, descending into
// exported embedded structs.
func (c *Compiler) recordFields(record reflect.Type) ([]invoker.RecordField, []signature.FieldSignature, error) {
	var fields []invoker.RecordField
	var outputs []signature.FieldSignature
	seen := make(map[string]struct{})

	var walk func(t reflect.Type, index []int) error
	walk = func(t reflect.Type, index []int) error {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name, deprecated, skip := parseRecordTag(sf)
			if skip {
				continue
			}
			if !sf.IsExported() {
				return fmt.Errorf("Field `%s` in record `%s` cannot be accessed. Please ensure the field is exported.",
					sf.Name, record.Name())
			}
			at := append(append([]int(nil), index...), i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("proc") == "" {
				if err := walk(sf.Type, at); err != nil {
					return err
				}
				continue
			}

			conv, err := c.mapper.Resolve(sf.Type)
			if err != nil {
				return fmt.Errorf("Field `%s` in record `%s` cannot be converted to a graph type: %s",
					sf.Name, record.Name(), err.Error())
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("Record `%s` declares field `%s` more than once.", record.Name(), name)
			}
			seen[name] = struct{}{}
			fields = append(fields, invoker.RecordField{Index: at, Converter: conv})
			outputs = append(outputs, signature.Output(name, conv.Type(), deprecated))
		}
		return nil
	}
	if err := walk(record, nil); err != nil {
		return nil, nil, err
	}
	return fields, outputs, nil
}

// parseRecordTag reads `proc:"name,deprecated"`. A tag of "-" skips the
// field, as do blank fields.
func parseRecordTag(sf reflect.StructField) (name string, deprecated, skip bool) {
	if sf.Name == "_" {
		return "", false, true
	}
	tag := sf.Tag.Get("proc")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "deprecated" {
			deprecated = true
		}
	}
	if name == "" {
		name = signature.LowerCamel(sf.Name)
	}
	return name, deprecated, false
}
