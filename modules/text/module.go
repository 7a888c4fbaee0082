// Package text provides string functions and procedures.
package text

import (
	"strings"

	"github.com/agext/levenshtein"
	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/procedure"
)

// Module implements the loader.Module interface for this package.
type Module struct{}

// Register registers the builtin class with the catalog.
func (m *Module) Register(c *loader.Catalog) {
	c.AddBuiltin(procedure.ClassOf[Text]("text", nil))
}

// Text holds no state; every member is a pure function of its arguments.
type Text struct{}

// Part is one piece of a split string.
type Part struct {
	Index int64
	Value string
}

func (Text) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Function("Upper", procedure.Name("value")).
			Describe("Returns the value in upper case."),
		procedure.Function("Lower", procedure.Name("value")).
			Describe("Returns the value in lower case."),
		procedure.Function("Join", procedure.Name("values"), procedure.Default("separator", ",")).
			Describe("Joins the values with the separator."),
		procedure.Function("Distance", procedure.Name("a"), procedure.Name("b")).
			Describe("Returns the Levenshtein distance between two strings."),
		procedure.Procedure("Split", procedure.Name("value"), procedure.Default("separator", ",")).
			WithMode(procedure.ModeRead).
			Describe("Splits the value around each separator, one row per part."),
	}
}

func (Text) Upper(value string) string { return strings.ToUpper(value) }

func (Text) Lower(value string) string { return strings.ToLower(value) }

func (Text) Join(values []string, separator string) string {
	return strings.Join(values, separator)
}

func (Text) Distance(a, b string) int64 {
	return int64(levenshtein.Distance(a, b, nil))
}

func (Text) Split(value, separator string) procedure.Stream[Part] {
	pieces := strings.Split(value, separator)
	parts := make([]Part, len(pieces))
	for i, p := range pieces {
		parts[i] = Part{Index: int64(i), Value: p}
	}
	return procedure.FromSlice(parts)
}
