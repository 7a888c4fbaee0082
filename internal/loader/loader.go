package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/fsutil"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/procedure"
)

// ArchiveExtension is the file extension LoadDir looks for.
const ArchiveExtension = ".zip"

// errNoManifest marks an archive that is readable but not an extension.
var errNoManifest = errors.New("no " + ManifestName + " found")

// Loader opens extension archives.
type Loader struct {
	catalog   *Catalog
	hotReload bool
}

// New creates a loader resolving classes from catalog.
func New(catalog *Catalog, hotReload bool) *Loader {
	return &Loader{catalog: catalog, hotReload: hotReload}
}

// LoadDir loads every archive below dir. An empty dir loads nothing.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*Scope, error) {
	if dir == "" {
		return nil, nil
	}
	paths, err := fsutil.FindFilesByExtension(dir, ArchiveExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to scan extension directory %s: %w", dir, err)
	}
	if len(paths) == 0 {
		ctxlog.FromContext(ctx).Debug("No extension archives found.", "dir", dir)
		return nil, nil
	}
	return l.Load(ctx, paths...)
}

// Load opens each archive and returns a scope per valid one. Corrupted
// archives are logged individually and reported together.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*Scope, error) {
	logger := ctxlog.FromContext(ctx)
	var scopes []*Scope
	var corrupted []string
	var errs []error

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		m, err := readManifest(abs)
		if err != nil {
			if errors.Is(err, errNoManifest) || isManifestError(err) {
				errs = append(errs, fmt.Errorf("extension archive %s: %w", abs, err))
				continue
			}
			logger.Error(fmt.Sprintf("Plugin archive file: %s corrupted.", abs), "error", err)
			corrupted = append(corrupted, filepath.Base(abs))
			continue
		}

		scope, err := l.scopeFor(abs, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("Loaded extension archive.",
			"archive", abs, "name", m.Name, "classes", len(m.Classes), "isolated", scope.Isolated())
		scopes = append(scopes, scope)
	}

	if len(corrupted) > 0 {
		errs = append([]error{procerr.New(procerr.ArchiveCorrupted,
			"Some extension archives (%s) are invalid, see log for details.", strings.Join(corrupted, ", "))}, errs...)
	}
	return scopes, errors.Join(errs...)
}

// scopeFor isolates the archive only when hot reload is on and the manifest
// does not ask for ambient resolution.
func (l *Loader) scopeFor(archive string, m Manifest) (*Scope, error) {
	if l.hotReload && !m.Ambient {
		return newIsolatedScope(archive, m, l.catalog)
	}
	return newAmbientScope(archive, m, l.catalog), nil
}

// Classes collects the classes of every scope.
func Classes(scopes []*Scope) ([]procedure.Class, error) {
	var out []procedure.Class
	var errs []error
	for _, s := range scopes {
		classes, err := s.Classes()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, classes...)
	}
	return out, errors.Join(errs...)
}

type manifestError struct{ err error }

func (e *manifestError) Error() string { return e.err.Error() }
func (e *manifestError) Unwrap() error { return e.err }

func isManifestError(err error) bool {
	var me *manifestError
	return errors.As(err, &me)
}

func readManifest(path string) (Manifest, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Manifest{}, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Manifest{}, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return Manifest{}, err
		}
		m, err := ParseManifest(bytes.NewReader(data))
		if err != nil {
			return Manifest{}, &manifestError{err: err}
		}
		return m, nil
	}
	return Manifest{}, errNoManifest
}
