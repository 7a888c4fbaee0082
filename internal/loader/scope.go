package loader

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/graphproc/procedure"
)

// Scope is the set of classes one archive activates.
type Scope struct {
	ID       string
	Archive  string
	Manifest Manifest

	catalog  *Catalog
	isolated bool
	// frozen holds the classes of an isolated scope.
	frozen []procedure.Class
}

func newAmbientScope(archive string, m Manifest, catalog *Catalog) *Scope {
	return &Scope{ID: uuid.NewString(), Archive: archive, Manifest: m, catalog: catalog}
}

// newIsolatedScope resolves every class up front so later catalog changes
// are invisible to the scope.
func newIsolatedScope(archive string, m Manifest, catalog *Catalog) (*Scope, error) {
	s := &Scope{ID: uuid.NewString(), Archive: archive, Manifest: m, catalog: catalog, isolated: true}
	classes, err := s.resolve()
	if err != nil {
		return nil, err
	}
	s.frozen = classes
	return s, nil
}

// Isolated reports whether the scope holds its own snapshot of classes.
func (s *Scope) Isolated() bool {
	return s.isolated
}

// Classes returns the classes the archive activates.
func (s *Scope) Classes() ([]procedure.Class, error) {
	if s.isolated {
		return append([]procedure.Class(nil), s.frozen...), nil
	}
	return s.resolve()
}

func (s *Scope) resolve() ([]procedure.Class, error) {
	out := make([]procedure.Class, 0, len(s.Manifest.Classes))
	for _, name := range s.Manifest.Classes {
		class, ok := s.catalog.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("Extension archive `%s` declares class `%s`, which is not available.", s.Archive, name)
		}
		out = append(out, class)
	}
	return out, nil
}
