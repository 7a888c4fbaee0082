package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/graphproc/internal/allowlist"
	"github.com/vk/graphproc/internal/compiler"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/internal/metrics"
	"github.com/vk/graphproc/internal/registry"
	"github.com/vk/graphproc/internal/typemap"
)

// App encapsulates the runtime's dependencies and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	catalog    *loader.Catalog
	loader     *loader.Loader
	compiler   *compiler.Compiler
	procedures *registry.Procedures
	metrics    *metrics.Metrics
	gatherer   *prometheus.Registry
	httpServer *http.Server
}

// NewApp builds an App, registers modules into the catalog (the core
// modules when none are given), compiles the builtin classes and loads the
// archives of the plugin directory. Archive failures are logged and
// returned, but the App stays usable with whatever did load.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, modules ...loader.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	m := metrics.New()
	gatherer := prometheus.NewRegistry()
	if err := m.Register(gatherer); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	procs := registry.New(m)
	comp := compiler.New(typemap.NewMapper(), newComponents(procs), compiler.Options{
		Allowlist:    allowlist.Allowlist(nonEmpty(cfg.Procedures.Allowlist)),
		Unrestricted: allowlist.Unrestricted(cfg.Procedures.Unrestricted),
		Metrics:      m,
	})

	catalog := loader.NewCatalog()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(catalog)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "classes", len(catalog.Names()))

	a := &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		catalog:    catalog,
		loader:     loader.New(catalog, cfg.Procedures.HotReload),
		compiler:   comp,
		procedures: procs,
		metrics:    m,
		gatherer:   gatherer,
	}

	builtins, err := comp.CompileAll(ctx, catalog.Builtins())
	if regErr := procs.Register(ctx, builtins, true); regErr != nil {
		logger.Error("Failed to register builtin procedures.", "error", regErr)
		err = errors.Join(err, regErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compile builtin procedures: %w", err)
	}
	logger.Debug("Builtin procedures registered.",
		"procedures", len(builtins.Procedures),
		"functions", len(builtins.Functions),
		"aggregations", len(builtins.Aggregations))

	if cfg.Procedures.PluginDir != "" {
		if err := a.Reload(ctx); err != nil {
			return a, err
		}
	}
	return a, nil
}

// nonEmpty maps an empty allowlist to "unset", which allows everything.
func nonEmpty(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	return patterns
}

// Procedures returns the registry. This is primarily for the CLI and tests.
func (a *App) Procedures() *registry.Procedures {
	return a.procedures
}

// Catalog returns the class catalog.
func (a *App) Catalog() *loader.Catalog {
	return a.catalog
}

// Gatherer exposes the metrics of this App.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.gatherer
}

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close stops the healthcheck server if it runs.
func (a *App) Close(ctx context.Context) error {
	return a.closeHealthCheckServer(ctxlog.WithLogger(ctx, a.logger))
}
