// Package signature holds the immutable descriptions of compiled procedures
// and functions. Accessors hand out copies so a published signature can be
// shared between goroutines.
package signature

import (
	"slices"
	"strings"
	"unicode"
)

// QualifiedName is a namespace followed by a name.
type QualifiedName struct {
	namespace []string
	name      string
}

// NewQualifiedName builds a name from namespace segments and a final name.
func NewQualifiedName(namespace []string, name string) QualifiedName {
	return QualifiedName{namespace: slices.Clone(namespace), name: name}
}

// ParseQualifiedName splits a dotted name. The last segment is the name.
func ParseQualifiedName(s string) QualifiedName {
	parts := strings.Split(s, ".")
	return NewQualifiedName(parts[:len(parts)-1], parts[len(parts)-1])
}

// Namespace returns a copy of the namespace segments.
func (q QualifiedName) Namespace() []string {
	return slices.Clone(q.namespace)
}

func (q QualifiedName) Name() string {
	return q.name
}

// IsRoot reports whether the name has no namespace.
func (q QualifiedName) IsRoot() bool {
	return len(q.namespace) == 0
}

func (q QualifiedName) String() string {
	if len(q.namespace) == 0 {
		return q.name
	}
	return strings.Join(q.namespace, ".") + "." + q.name
}

// Equal compares names exactly.
func (q QualifiedName) Equal(o QualifiedName) bool {
	return q.name == o.name && slices.Equal(q.namespace, o.namespace)
}

// LowerCamel converts a Go identifier into the lowerCamel form used for
// default member and column names: "Hello" becomes "hello", "URLPath"
// becomes "urlPath" and "ID" becomes "id".
func LowerCamel(ident string) string {
	runes := []rune(ident)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return ident
	case upper == 1 || upper == len(runes):
		// leading word or an all upper-case acronym
	default:
		// keep the last upper-case rune for the next word
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
