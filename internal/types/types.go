// Package types is the graph type system extension values are mapped into.
// Every Type is backed by a cty type so values can be checked and converted
// with the go-cty toolkit.
package types

import (
	"math/big"
	"reflect"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Kind enumerates the graph types.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBoolean
	KindInteger
	KindFloat
	KindNumber
	KindByteArray
	KindMap
	KindList
	KindDateTime
	KindDuration
)

var kindNames = map[Kind]string{
	KindAny:       "ANY",
	KindString:    "STRING",
	KindBoolean:   "BOOLEAN",
	KindInteger:   "INTEGER",
	KindFloat:     "FLOAT",
	KindNumber:    "NUMBER",
	KindByteArray: "BYTEARRAY",
	KindMap:       "MAP",
	KindList:      "LIST",
	KindDateTime:  "DATETIME",
	KindDuration:  "DURATION",
}

// Type is a graph type. The zero value is ANY.
type Type struct {
	kind Kind
	elem *Type
}

var (
	Any       = Type{kind: KindAny}
	String    = Type{kind: KindString}
	Boolean   = Type{kind: KindBoolean}
	Integer   = Type{kind: KindInteger}
	Float     = Type{kind: KindFloat}
	Number    = Type{kind: KindNumber}
	ByteArray = Type{kind: KindByteArray}
	Map       = Type{kind: KindMap}
	DateTime  = Type{kind: KindDateTime}
	Duration  = Type{kind: KindDuration}
)

// List returns LIST OF elem.
func List(elem Type) Type {
	return Type{kind: KindList, elem: &elem}
}

// Kind returns the kind of t.
func (t Type) Kind() Kind {
	return t.kind
}

// Elem returns the element type of a list and ANY for everything else.
func (t Type) Elem() Type {
	if t.elem == nil {
		return Any
	}
	return *t.elem
}

// Equals reports whether both types are structurally the same.
func (t Type) Equals(o Type) bool {
	if t.kind != o.kind {
		return false
	}
	if t.kind == KindList {
		return t.Elem().Equals(o.Elem())
	}
	return true
}

func (t Type) String() string {
	if t.kind == KindList {
		return "LIST OF " + t.Elem().String()
	}
	return kindNames[t.kind]
}

// Cty returns the cty type values of t are stored as. MAP and ANY are dynamic
// since their values are objects or arbitrary values.
func (t Type) Cty() cty.Type {
	switch t.kind {
	case KindString:
		return cty.String
	case KindBoolean:
		return cty.Bool
	case KindInteger, KindFloat, KindNumber:
		return cty.Number
	case KindByteArray:
		return BytesType
	case KindDateTime:
		return DateTimeType
	case KindDuration:
		return DurationType
	case KindList:
		return cty.List(t.Elem().Cty())
	default:
		return cty.DynamicPseudoType
	}
}

// Accepts reports whether v is a valid value of t. Null is accepted by every
// type.
func (t Type) Accepts(v cty.Value) bool {
	if v.IsNull() || t.kind == KindAny {
		return true
	}
	if !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch t.kind {
	case KindString, KindBoolean, KindFloat, KindNumber:
		return ty.Equals(t.Cty())
	case KindInteger:
		return ty.Equals(cty.Number) && v.AsBigFloat().IsInt()
	case KindByteArray, KindDateTime, KindDuration:
		return ty.Equals(t.Cty())
	case KindMap:
		return ty.IsObjectType() || ty.IsMapType()
	case KindList:
		if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
			return false
		}
		elem := t.Elem()
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if !elem.Accepts(ev) {
				return false
			}
		}
		return true
	}
	return false
}

// Of infers the graph type of a value. Null and unknown values are ANY.
func Of(v cty.Value) Type {
	if v.IsNull() || !v.IsKnown() {
		return Any
	}
	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return String
	case ty.Equals(cty.Bool):
		return Boolean
	case ty.Equals(cty.Number):
		if v.AsBigFloat().IsInt() {
			return Integer
		}
		return Float
	case ty.Equals(BytesType):
		return ByteArray
	case ty.Equals(DateTimeType):
		return DateTime
	case ty.Equals(DurationType):
		return Duration
	case ty.IsObjectType() || ty.IsMapType():
		return Map
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var elem *Type
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			et := Of(ev)
			if elem == nil {
				elem = &et
			} else if !elem.Equals(et) {
				return List(Any)
			}
		}
		if elem == nil {
			return List(Any)
		}
		return List(*elem)
	}
	return Any
}

// NoValue is the sentinel produced for absent values.
var NoValue = cty.NullVal(cty.DynamicPseudoType)

var (
	// BytesType stores []byte values.
	BytesType = cty.CapsuleWithOps("bytes", reflect.TypeOf([]byte(nil)), &cty.CapsuleOps{
		GoString: func(v interface{}) string { return "bytes" },
		RawEquals: func(a, b interface{}) bool {
			return reflect.DeepEqual(*a.(*[]byte), *b.(*[]byte))
		},
		Equals: func(a, b interface{}) cty.Value {
			return cty.BoolVal(reflect.DeepEqual(*a.(*[]byte), *b.(*[]byte)))
		},
	})

	// DateTimeType stores time.Time values.
	DateTimeType = cty.CapsuleWithOps("datetime", reflect.TypeOf(time.Time{}), &cty.CapsuleOps{
		RawEquals: func(a, b interface{}) bool {
			return a.(*time.Time).Equal(*b.(*time.Time))
		},
		Equals: func(a, b interface{}) cty.Value {
			return cty.BoolVal(a.(*time.Time).Equal(*b.(*time.Time)))
		},
	})

	// DurationType stores time.Duration values.
	DurationType = cty.CapsuleWithOps("duration", reflect.TypeOf(time.Duration(0)), &cty.CapsuleOps{
		RawEquals: func(a, b interface{}) bool {
			return *a.(*time.Duration) == *b.(*time.Duration)
		},
		Equals: func(a, b interface{}) cty.Value {
			return cty.BoolVal(*a.(*time.Duration) == *b.(*time.Duration))
		},
	})
)

// BytesVal wraps b. The slice is copied.
func BytesVal(b []byte) cty.Value {
	cp := append([]byte(nil), b...)
	return cty.CapsuleVal(BytesType, &cp)
}

// DateTimeVal wraps tm.
func DateTimeVal(tm time.Time) cty.Value {
	return cty.CapsuleVal(DateTimeType, &tm)
}

// DurationVal wraps d.
func DurationVal(d time.Duration) cty.Value {
	return cty.CapsuleVal(DurationType, &d)
}

// AsBytes unwraps a value built by BytesVal.
func AsBytes(v cty.Value) []byte {
	return append([]byte(nil), *v.EncapsulatedValue().(*[]byte)...)
}

// AsDateTime unwraps a value built by DateTimeVal.
func AsDateTime(v cty.Value) time.Time {
	return *v.EncapsulatedValue().(*time.Time)
}

// AsDuration unwraps a value built by DurationVal.
func AsDuration(v cty.Value) time.Duration {
	return *v.EncapsulatedValue().(*time.Duration)
}

// NumberVal copies f into a number value.
func NumberVal(f *big.Float) cty.Value {
	return cty.NumberVal(new(big.Float).Copy(f))
}
