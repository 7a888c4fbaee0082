package typemap

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const derivedCacheSize = 512

// MappingError reports a Go type that has no graph type.
type MappingError struct {
	// Type is the offending Go type as written in diagnostics.
	Type  string
	Known []string

	reason string
}

func (e *MappingError) Error() string {
	if e.reason != "" {
		return e.reason
	}
	return fmt.Sprintf("Don't know how to map `%s` to the graph type system.\n"+
		"Please refer to the documentation for full details.\n"+
		"For your reference, known types are: [%s]", e.Type, strings.Join(e.Known, ", "))
}

// Mapper resolves Go types to converters. Derived slice and map converters
// are kept in an LRU cache.
type Mapper struct {
	base    map[reflect.Type]*Converter
	known   []string
	derived *lru.Cache[reflect.Type, *Converter]
}

// NewMapper builds a mapper holding the base table.
func NewMapper() *Mapper {
	derived, err := lru.New[reflect.Type, *Converter](derivedCacheSize)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	m := &Mapper{
		base:    make(map[reflect.Type]*Converter),
		derived: derived,
	}
	for _, c := range baseConverters() {
		m.base[c.goType] = c
		m.known = append(m.known, c.goType.String())
	}
	sort.Strings(m.known)
	return m
}

// KnownTypes lists the Go types of the base table, sorted.
func (m *Mapper) KnownTypes() []string {
	out := make([]string, len(m.known))
	copy(out, m.known)
	return out
}

// Resolve returns the converter for t.
func (m *Mapper) Resolve(t reflect.Type) (*Converter, error) {
	if c, ok := m.base[t]; ok {
		return c, nil
	}
	if c, ok := m.derived.Get(t); ok {
		return c, nil
	}

	c, err := m.derive(t)
	if err != nil {
		return nil, err
	}
	m.derived.Add(t, c)
	return c, nil
}

// VoidError is the error for a member that returns nothing where a value is
// required.
func (m *Mapper) VoidError() error {
	return &MappingError{Type: "void", Known: m.KnownTypes()}
}

func (m *Mapper) derive(t reflect.Type) (*Converter, error) {
	switch t.Kind() {
	case reflect.Slice:
		elem, err := m.Resolve(t.Elem())
		if err != nil {
			return nil, m.outer(t, err)
		}
		return listOf(t, elem), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &MappingError{
				Type:   t.String(),
				Known:  m.KnownTypes(),
				reason: fmt.Sprintf("Maps are required to have `string` keys - but this map has `%s` keys.", t.Key()),
			}
		}
		elem, err := m.Resolve(t.Elem())
		if err != nil {
			return nil, m.outer(t, err)
		}
		return mapOf(t, elem), nil
	}
	return nil, &MappingError{Type: t.String(), Known: m.KnownTypes()}
}

// outer reports an element failure against the enclosing type, except for
// failures that carry their own explanation.
func (m *Mapper) outer(t reflect.Type, err error) error {
	if me, ok := err.(*MappingError); ok && me.reason != "" {
		return err
	}
	return &MappingError{Type: t.String(), Known: m.KnownTypes()}
}
