// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the member declarations an extension type returns from
// Members, and the small builders used to write them.

package procedure

// Kind identifies what a declared member compiles to.
type Kind int

const (
	// KindProcedure is a method returning a Stream of records.
	KindProcedure Kind = iota + 1
	// KindFunction is a method returning a single value.
	KindFunction
	// KindAggregation is a method returning a fresh aggregator.
	KindAggregation
	// KindUpdate marks the aggregator method fed with every input row.
	KindUpdate
	// KindResult marks the aggregator method producing the final value.
	KindResult
)

func (k Kind) String() string {
	switch k {
	case KindProcedure:
		return "procedure"
	case KindFunction:
		return "function"
	case KindAggregation:
		return "aggregation"
	case KindUpdate:
		return "update"
	case KindResult:
		return "result"
	default:
		return "unknown"
	}
}

// Mode is the access mode a procedure declares.
type Mode int

const (
	ModeDefault Mode = iota
	ModeRead
	ModeWrite
	ModeSchema
	ModeDBMS
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeWrite:
		return "WRITE"
	case ModeSchema:
		return "SCHEMA"
	case ModeDBMS:
		return "DBMS"
	default:
		return "DEFAULT"
	}
}

// Param describes one method argument. An empty Name means the argument was
// left unnamed, which the compiler rejects.
type Param struct {
	Name    string
	Default *string
}

// Name declares a required argument.
func Name(name string) Param {
	return Param{Name: name}
}

// Default declares an optional argument whose value is parsed from literal
// when the caller omits it.
func Default(name, literal string) Param {
	return Param{Name: name, Default: &literal}
}

// Member binds a method of the declaring type to a callable entry point.
type Member struct {
	Kind   Kind
	Method string

	// Name overrides the qualified name. Without it the name is the class
	// namespace followed by the lowerCamel method name.
	Name string

	Params          []Param
	Description     string
	Mode            Mode
	Deprecated      bool
	Successor       string
	CaseInsensitive bool
}

// Procedure declares method as a procedure.
func Procedure(method string, params ...Param) Member {
	return Member{Kind: KindProcedure, Method: method, Params: params}
}

// Function declares method as a user-defined function.
func Function(method string, params ...Param) Member {
	return Member{Kind: KindFunction, Method: method, Params: params}
}

// Aggregation declares method as the factory of an aggregation function. The
// returned aggregator declares its own Update and Result members.
func Aggregation(method string) Member {
	return Member{Kind: KindAggregation, Method: method}
}

// Update declares the aggregator method receiving each row. Its params are
// the inputs of the aggregation function.
func Update(method string, params ...Param) Member {
	return Member{Kind: KindUpdate, Method: method, Params: params}
}

// Result declares the aggregator method producing the aggregated value.
func Result(method string) Member {
	return Member{Kind: KindResult, Method: method}
}

// Named sets an explicit qualified name such as "org.example.greet".
func (m Member) Named(name string) Member {
	m.Name = name
	return m
}

// Describe sets the human readable description.
func (m Member) Describe(text string) Member {
	m.Description = text
	return m
}

// WithMode sets the procedure access mode.
func (m Member) WithMode(mode Mode) Member {
	m.Mode = mode
	return m
}

// Deprecate marks the member deprecated, optionally naming its successor.
func (m Member) Deprecate(successor string) Member {
	m.Deprecated = true
	m.Successor = successor
	return m
}

// ReplacedBy names a successor without marking the member deprecated.
func (m Member) ReplacedBy(successor string) Member {
	m.Successor = successor
	return m
}

// IgnoreCase makes the member resolvable regardless of name casing.
func (m Member) IgnoreCase() Member {
	m.CaseInsensitive = true
	return m
}

// Declarer is implemented by extension types. Members is called on a zero
// value and must not depend on instance state.
type Declarer interface {
	Members() []Member
}
