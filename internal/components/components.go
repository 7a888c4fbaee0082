// Package components holds the providers context fields of extension types
// are filled from. Every provider is registered either as safe or as unsafe;
// unsafe providers reach into host internals and are only handed to
// extensions that are explicitly unrestricted.
package components

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/vk/graphproc/procedure"
)

// Provider produces a component value for one invocation.
type Provider func(pc *procedure.Context) (any, error)

// Registry keeps the safe catalog and the catalog of all providers.
type Registry struct {
	mu   sync.RWMutex
	safe map[reflect.Type]Provider
	all  map[reflect.Type]Provider
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		safe: make(map[reflect.Type]Provider),
		all:  make(map[reflect.Type]Provider),
	}
}

// RegisterSafe registers a provider that may be used by any extension.
func (r *Registry) RegisterSafe(t reflect.Type, p Provider) {
	r.register(t, p, true)
}

// RegisterUnsafe registers a provider that is only available to
// unrestricted extensions.
func (r *Registry) RegisterUnsafe(t reflect.Type, p Provider) {
	r.register(t, p, false)
}

func (r *Registry) register(t reflect.Type, p Provider, safe bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.all[t]; exists {
		panic(fmt.Sprintf("component for type '%s' already registered", t))
	}
	slog.Debug("Registering component.", "type", t.String(), "safe", safe)
	r.all[t] = p
	if safe {
		r.safe[t] = p
	}
}

// Lookup returns the provider for t and whether it is safe.
func (r *Registry) Lookup(t reflect.Type) (p Provider, safe bool, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.safe[t]; ok {
		return p, true, true
	}
	p, ok = r.all[t]
	return p, false, ok
}

// Provide registers a typed safe provider.
func Provide[T any](r *Registry, fn func(pc *procedure.Context) (T, error)) {
	r.RegisterSafe(reflect.TypeOf((*T)(nil)).Elem(), func(pc *procedure.Context) (any, error) {
		return fn(pc)
	})
}

// ProvideUnsafe registers a typed unsafe provider.
func ProvideUnsafe[T any](r *Registry, fn func(pc *procedure.Context) (T, error)) {
	r.RegisterUnsafe(reflect.TypeOf((*T)(nil)).Elem(), func(pc *procedure.Context) (any, error) {
		return fn(pc)
	})
}
