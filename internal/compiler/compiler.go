package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/graphproc/internal/allowlist"
	"github.com/vk/graphproc/internal/components"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/injection"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/metrics"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
)

// Options configures policy checks.
type Options struct {
	// Allowlist limits which names may be called. Nil allows everything.
	Allowlist *allowlist.Matcher
	// Unrestricted lists names that may use unsafe components and bypass
	// the allowlist. Nil unrestricts nothing.
	Unrestricted *allowlist.Matcher
	Metrics      *metrics.Metrics
}

// Compiler compiles extension types.
type Compiler struct {
	mapper   *typemap.Mapper
	resolver *injection.Resolver
	opts     Options
}

// New creates a Compiler.
func New(mapper *typemap.Mapper, comps *components.Registry, opts Options) *Compiler {
	if opts.Allowlist == nil {
		opts.Allowlist = allowlist.Allowlist(nil)
	}
	if opts.Unrestricted == nil {
		opts.Unrestricted = allowlist.Unrestricted(nil)
	}
	return &Compiler{
		mapper:   mapper,
		resolver: injection.NewResolver(comps),
		opts:     opts,
	}
}

// Batch is the output of compiling one or more extension types.
type Batch struct {
	Procedures   []invoker.Procedure
	Functions    []invoker.Function
	Aggregations []invoker.Aggregation
}

// Append adds everything in other to b.
func (b *Batch) Append(other Batch) {
	b.Procedures = append(b.Procedures, other.Procedures...)
	b.Functions = append(b.Functions, other.Functions...)
	b.Aggregations = append(b.Aggregations, other.Aggregations...)
}

// Compile compiles every member of class. The returned batch holds whatever
// compiled even when an error is returned.
func (c *Compiler) Compile(ctx context.Context, class procedure.Class) (Batch, error) {
	var b Batch
	var errs []error
	var err error

	b.Procedures, err = c.CompileProcedures(ctx, class)
	errs = append(errs, err)
	b.Functions, err = c.CompileFunctions(ctx, class)
	errs = append(errs, err)
	b.Aggregations, err = c.CompileAggregations(ctx, class)
	errs = append(errs, err)

	return b, errors.Join(errs...)
}

// CompileAll compiles every class, collecting failures per class.
func (c *Compiler) CompileAll(ctx context.Context, classes []procedure.Class) (Batch, error) {
	logger := ctxlog.FromContext(ctx)
	var all Batch
	var errs []error
	for _, class := range classes {
		b, err := c.Compile(ctx, class)
		all.Append(b)
		if err != nil {
			logger.Error("Failed to compile extension class.", "class", class.FullName(), "error", err)
			c.opts.Metrics.CompileFailed()
			errs = append(errs, fmt.Errorf("class %s: %w", class.FullName(), err))
		}
	}
	return all, errors.Join(errs...)
}

// CompileProcedures compiles the procedures of class.
func (c *Compiler) CompileProcedures(ctx context.Context, class procedure.Class) ([]invoker.Procedure, error) {
	members := membersOf(class, procedure.KindProcedure)
	if len(members) == 0 {
		return nil, nil
	}
	pc, err := c.prepare(class)
	if err != nil {
		return nil, err
	}

	var out []invoker.Procedure
	var errs []error
	for _, m := range members {
		p, err := c.compileProcedure(ctx, pc, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, p)
	}
	return out, errors.Join(errs...)
}

// CompileFunctions compiles the functions of class.
func (c *Compiler) CompileFunctions(ctx context.Context, class procedure.Class) ([]invoker.Function, error) {
	members := membersOf(class, procedure.KindFunction)
	if len(members) == 0 {
		return nil, nil
	}
	pc, err := c.prepare(class)
	if err != nil {
		return nil, err
	}

	var out []invoker.Function
	var errs []error
	for _, m := range members {
		f, err := c.compileFunction(ctx, pc, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, errors.Join(errs...)
}

// CompileAggregations compiles the aggregation functions of class.
func (c *Compiler) CompileAggregations(ctx context.Context, class procedure.Class) ([]invoker.Aggregation, error) {
	members := membersOf(class, procedure.KindAggregation)
	if len(members) == 0 {
		return nil, nil
	}
	pc, err := c.prepare(class)
	if err != nil {
		return nil, err
	}

	var out []invoker.Aggregation
	var errs []error
	for _, m := range members {
		a, err := c.compileAggregation(ctx, pc, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if a != nil {
			out = append(out, a)
		}
	}
	return out, errors.Join(errs...)
}

type verdict int

const (
	callable verdict = iota
	notAllowed
	sandboxed
)

// policy decides how name may be called. For anything but callable the
// returned message is the failure to raise at call time.
func (c *Compiler) policy(ctx context.Context, kind string, name signature.QualifiedName, safe bool) (verdict, string) {
	logger := ctxlog.FromContext(ctx)
	n := name.String()
	if c.opts.Unrestricted.Matches(n) {
		return callable, ""
	}
	if !c.opts.Allowlist.Matches(n) {
		logger.Warn(fmt.Sprintf("The %s '%s' is not on the allowlist and won't be loaded.", kind, n))
		return notAllowed, fmt.Sprintf("%s is not available due to not being on the allowlist.", n)
	}
	if !safe {
		msg := fmt.Sprintf("%s is unavailable because it is sandboxed and has dependencies outside of the sandbox. "+
			"Sandboxing is controlled by the unrestricted setting. "+
			"Only unrestrict procedures you can trust with access to database internals.", n)
		logger.Warn(msg)
		return sandboxed, msg
	}
	return callable, ""
}

func (c *Compiler) deprecation(ctx context.Context, name signature.QualifiedName, m procedure.Member) signature.Deprecation {
	if m.Deprecated {
		return signature.Deprecated(m.Successor)
	}
	if m.Successor != "" {
		ctxlog.FromContext(ctx).Warn(fmt.Sprintf("Use of DeprecatedBy without Deprecated in %s", name))
		return signature.SupersededBy(m.Successor)
	}
	return signature.Deprecation{}
}
