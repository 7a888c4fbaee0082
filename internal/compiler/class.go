package compiler

import (
	"context"
	"fmt"
	"go/token"
	"reflect"

	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/procedure"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// preparedClass is an extension type whose constructor and context fields
// have been validated.
type preparedClass struct {
	class    procedure.Class
	instance invoker.Instance
}

func (p *preparedClass) name() string {
	return p.class.Name()
}

func (p *preparedClass) safe() bool {
	return p.instance.Injection.Safe()
}

// declaredMembers asks a zero value of t for its members.
func declaredMembers(t reflect.Type) []procedure.Member {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if d, ok := reflect.New(t).Interface().(procedure.Declarer); ok {
		return d.Members()
	}
	return nil
}

func membersOf(class procedure.Class, kind procedure.Kind) []procedure.Member {
	var out []procedure.Member
	for _, m := range declaredMembers(class.Type) {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (c *Compiler) prepare(class procedure.Class) (*preparedClass, error) {
	if class.Type == nil || class.Type.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Extension class `%s` must be a struct type.", class.Name())
	}
	newInstance, err := constructor(class)
	if err != nil {
		return nil, err
	}
	prototype, err := newInstance()
	if err != nil {
		return nil, err
	}
	in, err := c.resolver.Setters(class, prototype)
	if err != nil {
		return nil, err
	}
	return &preparedClass{
		class:    class,
		instance: invoker.Instance{New: newInstance, Injection: in},
	}, nil
}

// constructor returns a factory of pointers to fresh instances.
func constructor(class procedure.Class) (func() (reflect.Value, error), error) {
	t := class.Type
	unusable := fmt.Errorf("Unable to find a usable public no-argument constructor in the class `%s`. "+
		"Please add a valid, public constructor, recompile the class and try again.", t.Name())

	if class.New == nil {
		if !token.IsExported(t.Name()) {
			return nil, unusable
		}
		return func() (reflect.Value, error) { return reflect.New(t), nil }, nil
	}

	fn := reflect.ValueOf(class.New)
	ft := fn.Type()
	if ft.Kind() != reflect.Func || ft.NumIn() != 0 || ft.NumOut() != 1 {
		return nil, unusable
	}

	switch ft.Out(0) {
	case reflect.PointerTo(t):
		return func() (v reflect.Value, err error) {
			defer recoverConstructor(t, &err)
			v = fn.Call(nil)[0]
			if v.IsNil() {
				return reflect.Value{}, fmt.Errorf("the constructor of `%s` returned nil", t.Name())
			}
			return v, nil
		}, nil
	case t:
		return func() (v reflect.Value, err error) {
			defer recoverConstructor(t, &err)
			v = reflect.New(t)
			v.Elem().Set(fn.Call(nil)[0])
			return v, nil
		}, nil
	}
	return nil, unusable
}

func recoverConstructor(t reflect.Type, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("the constructor of `%s` panicked: %v", t.Name(), r)
	}
}

// lookupMethod finds a member's method on the method set of t.
func lookupMethod(t reflect.Type, owner string, m procedure.Member, what string) (reflect.Method, error) {
	method, ok := t.MethodByName(m.Method)
	if ok {
		return method, nil
	}
	if !token.IsExported(m.Method) {
		return reflect.Method{}, fmt.Errorf("%s method '%s' in %s must be public.", what, m.Method, owner)
	}
	return reflect.Method{}, fmt.Errorf("Type `%s` declares the %s member `%s` but has no such method.", owner, m.Kind, m.Method)
}

// splitOuts separates a trailing error result from the other results.
func splitOuts(ft reflect.Type) (outs []reflect.Type, returnsError bool) {
	for i := 0; i < ft.NumOut(); i++ {
		outs = append(outs, ft.Out(i))
	}
	if n := len(outs); n > 0 && outs[n-1] == errorType {
		return outs[:n-1], true
	}
	return outs, false
}
