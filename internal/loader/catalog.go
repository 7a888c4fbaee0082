package loader

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/graphproc/procedure"
)

// Module is implemented by packages that contribute extension classes.
type Module interface {
	Register(c *Catalog)
}

// Catalog is the ambient set of extension classes, keyed by full name.
type Catalog struct {
	mu       sync.RWMutex
	classes  map[string]procedure.Class
	builtins map[string]bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		classes:  make(map[string]procedure.Class),
		builtins: make(map[string]bool),
	}
}

// Add registers a class that archives may activate.
func (c *Catalog) Add(class procedure.Class) {
	c.add(class, false)
}

// AddBuiltin registers a class that is always active and survives reloads.
func (c *Catalog) AddBuiltin(class procedure.Class) {
	c.add(class, true)
}

func (c *Catalog) add(class procedure.Class, builtin bool) {
	name := class.FullName()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.classes[name]; exists {
		panic(fmt.Sprintf("extension class '%s' already registered", name))
	}
	slog.Debug("Registering extension class.", "class", name, "builtin", builtin)
	c.classes[name] = class
	if builtin {
		c.builtins[name] = true
	}
}

// Lookup returns the class registered under name.
func (c *Catalog) Lookup(name string) (procedure.Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.classes[name]
	return class, ok
}

// Builtins returns the builtin classes sorted by name.
func (c *Catalog) Builtins() []procedure.Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []procedure.Class
	for _, name := range c.sortedNames() {
		if c.builtins[name] {
			out = append(out, c.classes[name])
		}
	}
	return out
}

// Names returns every class name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedNames()
}

func (c *Catalog) sortedNames() []string {
	names := make([]string, 0, len(c.classes))
	for name := range c.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
