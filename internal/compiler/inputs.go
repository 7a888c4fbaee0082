package compiler

import (
	"fmt"
	"reflect"

	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
)

// qualifiedName is the explicit name of m, or the class namespace followed
// by the lowerCamel method name.
func qualifiedName(class procedure.Class, m procedure.Member) signature.QualifiedName {
	if m.Name != "" {
		return signature.ParseQualifiedName(m.Name)
	}
	return signature.NewQualifiedName(class.NamespaceSegments(), signature.LowerCamel(m.Method))
}

// bindMethod resolves the arguments of a method expression whose first
// input is the receiver.
func (c *Compiler) bindMethod(method reflect.Method, params []procedure.Param) (invoker.Method, []signature.FieldSignature, error) {
	ft := method.Type
	bound := invoker.Method{Func: method.Func, Name: method.Name}
	if ft.IsVariadic() {
		return bound, nil, fmt.Errorf("Method `%s` is variadic, which is not supported.", method.Name)
	}

	first := 1
	if ft.NumIn() > 1 && ft.In(1) == contextType {
		bound.WantsContext = true
		first = 2
	}
	argc := ft.NumIn() - first
	if len(params) != argc {
		return bound, nil, fmt.Errorf("Method `%s` declares %d parameters but takes %d arguments.",
			method.Name, len(params), argc)
	}

	inputs := make([]signature.FieldSignature, 0, argc)
	seen := make(map[string]struct{}, argc)
	seenDefault := false
	for i, p := range params {
		if p.Name == "" {
			return bound, nil, fmt.Errorf("Argument at position %d in method `%s` is missing a name. "+
				"Please declare a name for it, rebuild the extension and try again.", i, method.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return bound, nil, fmt.Errorf("Method `%s` declares the argument `%s` more than once.", method.Name, p.Name)
		}
		seen[p.Name] = struct{}{}

		goType := ft.In(first + i)
		conv, err := c.mapper.Resolve(goType)
		if err != nil {
			return bound, nil, fmt.Errorf("Argument `%s` at position %d in `%s` with type `%s` cannot be converted to a graph type: %s",
				p.Name, i, method.Name, goType, err.Error())
		}
		bound.Args = append(bound.Args, conv)

		field, err := inputField(conv, p)
		if err != nil {
			return bound, nil, err
		}
		if _, hasDefault := field.Default(); hasDefault {
			seenDefault = true
		} else if seenDefault {
			return bound, nil, fmt.Errorf("Non-default argument at position %d with name %s in method %s follows default argument. "+
				"Add a default value or rearrange arguments so that the non-default values are listed first.",
				i, p.Name, method.Name)
		}
		inputs = append(inputs, field)
	}

	_, bound.ReturnsError = splitOuts(ft)
	return bound, inputs, nil
}

func inputField(conv *typemap.Converter, p procedure.Param) (signature.FieldSignature, error) {
	if p.Default == nil {
		return signature.Input(p.Name, conv.Type()), nil
	}
	def, err := conv.ParseDefault(*p.Default)
	if err != nil {
		return signature.FieldSignature{}, err
	}
	return signature.InputWithDefault(p.Name, conv.Type(), def), nil
}
