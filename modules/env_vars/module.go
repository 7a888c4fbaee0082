// Package env_vars exposes the process environment. Its class depends on an
// unsafe component, so its members only work when unrestricted.
package env_vars

import (
	"sort"
	"strings"

	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/procedure"
)

// Module implements the loader.Module interface for this package.
type Module struct{}

// Register registers the builtin class with the catalog.
func (m *Module) Register(c *loader.Catalog) {
	c.AddBuiltin(procedure.ClassOf[Env]("env", nil))
}

// Env reads environment variables.
type Env struct {
	Environment procedure.Environment `proc:"context"`
}

// Var is one environment variable.
type Var struct {
	Name  string
	Value string
}

func (Env) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Procedure("Vars").
			WithMode(procedure.ModeDBMS).
			Describe("Lists the environment variables of the database process."),
		procedure.Function("Get", procedure.Name("name"), procedure.Default("fallback", "")).
			Describe("Returns an environment variable, or the fallback when it is unset."),
	}
}

func (e *Env) Vars() procedure.Stream[Var] {
	var vars []Var
	for _, kv := range e.Environment.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			vars = append(vars, Var{Name: name, Value: value})
		}
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return procedure.FromSlice(vars)
}

func (e *Env) Get(name, fallback string) string {
	if v, ok := e.Environment.Lookup(name); ok {
		return v
	}
	return fallback
}
