// Package injection resolves the context fields of extension types into
// setters that fill a fresh instance from the component catalog before every
// call.
package injection

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/graphproc/internal/components"
	"github.com/vk/graphproc/procedure"
)

const tagName = "proc"

// FieldSetter fills one context field.
type FieldSetter struct {
	Field    reflect.StructField
	provider components.Provider
}

// Apply sets the field on instance, a pointer to the extension struct.
func (s FieldSetter) Apply(pc *procedure.Context, instance reflect.Value) error {
	v, err := s.provider(pc)
	if err != nil {
		return fmt.Errorf("unable to provide `%s` for field `%s`: %w", s.Field.Type, s.Field.Name, err)
	}
	field := instance.Elem().FieldByIndex(s.Field.Index)
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("component of type `%s` cannot be assigned to field `%s` of type `%s`", rv.Type(), s.Field.Name, field.Type())
	}
	field.Set(rv)
	return nil
}

// Injection is the resolved set of setters for one extension type.
type Injection struct {
	setters []FieldSetter
	safe    bool
}

// Setters returns a copy of the resolved setters in field order.
func (in *Injection) Setters() []FieldSetter {
	out := make([]FieldSetter, len(in.setters))
	copy(out, in.setters)
	return out
}

// Safe reports whether every setter was resolved from the safe catalog.
func (in *Injection) Safe() bool {
	return in.safe
}

// Apply runs every setter against instance.
func (in *Injection) Apply(pc *procedure.Context, instance reflect.Value) error {
	if in == nil {
		return nil
	}
	for _, s := range in.setters {
		if err := s.Apply(pc, instance); err != nil {
			return err
		}
	}
	return nil
}

// Resolver builds injections from a component registry.
type Resolver struct {
	components *components.Registry
}

// NewResolver creates a Resolver.
func NewResolver(c *components.Registry) *Resolver {
	return &Resolver{components: c}
}

// Setters inspects the fields of class. prototype is a pointer to an
// instance built by the class constructor and is used to tell initialized
// fields from unmanaged ones.
func (r *Resolver) Setters(class procedure.Class, prototype reflect.Value) (*Injection, error) {
	t := class.Type
	in := &Injection{safe: true}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" {
			continue
		}
		isContext, isStatic := parseTag(f.Tag.Get(tagName))

		switch {
		case isContext && isStatic:
			return nil, fmt.Errorf("The field `%s` in the class named `%s` is annotated as a context field, but it is static. "+
				"Context fields must be exported, settable and non-static, because they are reset each time a procedure is invoked.",
				f.Name, t.Name())

		case isStatic:
			continue

		case isContext:
			if !f.IsExported() {
				return nil, fmt.Errorf("Field `%s` on `%s` is annotated as a context field but is not exported. "+
					"Context fields must be exported and settable.", f.Name, t.Name())
			}
			provider, safe, ok := r.components.Lookup(f.Type)
			if !ok {
				return nil, fmt.Errorf("Unable to set up injection for `%s`, the field `%s` has type `%s` which is not a known injectable component.",
					t.Name(), f.Name, f.Type)
			}
			in.safe = in.safe && safe
			in.setters = append(in.setters, FieldSetter{Field: f, provider: provider})

		default:
			if prototype.IsValid() && !prototype.Elem().Field(i).IsZero() {
				continue
			}
			return nil, fmt.Errorf("Field `%s` on `%s` is not annotated as a context field and is not static. "+
				"If you want to store state along with your procedure, please use a static field.", f.Name, t.Name())
		}
	}
	return in, nil
}

func parseTag(tag string) (isContext, isStatic bool) {
	for _, opt := range strings.Split(tag, ",") {
		switch strings.TrimSpace(opt) {
		case "context":
			isContext = true
		case "static":
			isStatic = true
		}
	}
	return isContext, isStatic
}
