// Package coll provides aggregation functions over collections of values.
package coll

import (
	"fmt"

	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/procedure"
)

// Module implements the loader.Module interface for this package.
type Module struct{}

// Register registers the builtin class with the catalog.
func (m *Module) Register(c *loader.Catalog) {
	c.AddBuiltin(procedure.ClassOf[Coll]("coll", nil))
}

type Coll struct{}

func (Coll) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Aggregation("Collect").
			Describe("Collects the non-null values of a group into a list."),
		procedure.Aggregation("CountDistinct").
			Describe("Counts the distinct non-null values of a group."),
		procedure.Aggregation("Longest").
			Describe("Returns the longest string of a group."),
		procedure.Function("Size", procedure.Name("values")).
			Describe("Returns the number of elements in a list."),
	}
}

func (Coll) Collect() *collector { return &collector{items: []any{}} }

func (Coll) CountDistinct() *distinct { return &distinct{seen: map[string]struct{}{}} }

func (Coll) Longest() *longest { return &longest{} }

func (Coll) Size(values []any) int64 { return int64(len(values)) }

type collector struct {
	items []any
}

func (collector) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Update("Add", procedure.Name("value")),
		procedure.Result("Items"),
	}
}

func (c *collector) Add(value any) {
	if value != nil {
		c.items = append(c.items, value)
	}
}

func (c *collector) Items() []any { return c.items }

type distinct struct {
	seen map[string]struct{}
}

func (distinct) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Update("Add", procedure.Name("value")),
		procedure.Result("Count"),
	}
}

func (d *distinct) Add(value any) {
	if value != nil {
		d.seen[fmt.Sprintf("%T:%v", value, value)] = struct{}{}
	}
}

func (d *distinct) Count() int64 { return int64(len(d.seen)) }

type longest struct {
	best string
}

func (longest) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Update("Add", procedure.Name("value")),
		procedure.Result("Value"),
	}
}

// Add keeps the first of equally long strings. Nulls arrive as "".
func (l *longest) Add(value string) {
	if len(value) > len(l.best) {
		l.best = value
	}
}

func (l *longest) Value() string { return l.best }
