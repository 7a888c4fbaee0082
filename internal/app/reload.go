package app

import (
	"context"
	"errors"

	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/loader"
)

// Reload loads every archive of the plugin directory, compiles the classes
// they activate and swaps them in for the previously loaded ones. Builtin
// entry points are untouched and returning names keep their ids. Failures
// of single archives or classes are reported after everything else has been
// registered.
func (a *App) Reload(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	scopes, loadErr := a.loader.LoadDir(ctx, a.config.Procedures.PluginDir)
	classes, classErr := loader.Classes(scopes)
	batch, compileErr := a.compiler.CompileAll(ctx, classes)
	regErr := a.procedures.Reload(ctx, batch)

	err := errors.Join(loadErr, classErr, compileErr, regErr)
	if err != nil {
		logger.Error("Reload finished with errors.", "error", err)
	}
	logger.Info("Extensions reloaded.",
		"archives", len(scopes),
		"classes", len(classes),
		"procedures", len(batch.Procedures),
		"functions", len(batch.Functions),
		"aggregations", len(batch.Aggregations),
		"generation", a.procedures.Generation())
	return err
}
