package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/vk/graphproc/internal/components"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/registry"
	"github.com/vk/graphproc/procedure"
)

// osEnvironment exposes the process environment.
type osEnvironment struct{}

func (osEnvironment) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (osEnvironment) Environ() []string                { return os.Environ() }

// newComponents registers the components extensions may declare as context
// fields.
func newComponents(procs *registry.Procedures) *components.Registry {
	r := components.New()

	components.Provide(r, func(pc *procedure.Context) (*slog.Logger, error) {
		return ctxlog.FromContext(pc.Context()), nil
	})
	components.Provide(r, func(pc *procedure.Context) (context.Context, error) {
		return pc.Context(), nil
	})
	components.Provide(r, func(pc *procedure.Context) (procedure.Transaction, error) {
		return pc.Transaction(), nil
	})
	components.Provide(r, func(pc *procedure.Context) (procedure.ValueMapper, error) {
		return pc.ValueMapper(), nil
	})
	components.Provide(r, func(*procedure.Context) (procedure.SignatureCatalog, error) {
		return procs, nil
	})

	components.ProvideUnsafe(r, func(*procedure.Context) (procedure.Environment, error) {
		return osEnvironment{}, nil
	})
	components.ProvideUnsafe(r, func(*procedure.Context) (*registry.Procedures, error) {
		return procs, nil
	})
	return r
}
