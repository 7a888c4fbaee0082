package registry

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vk/graphproc/internal/compiler"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/metrics"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// snapshot is an immutable view of everything registered. Writers build a
// new snapshot and publish it with a single atomic store.
type snapshot struct {
	generation   string
	procedures   *Holder[invoker.Procedure]
	functions    *Holder[invoker.Function]
	aggregations *Holder[invoker.Aggregation]
	// pinned ids survive reloads; they belong to built-in entry points.
	pinned pins
}

type pins struct {
	procedures, functions, aggregations map[int]bool
}

func (p pins) clone() pins {
	return pins{
		procedures:   maps.Clone(p.procedures),
		functions:    maps.Clone(p.functions),
		aggregations: maps.Clone(p.aggregations),
	}
}

func (s *snapshot) clone() *snapshot {
	return &snapshot{
		generation:   s.generation,
		procedures:   s.procedures.Clone(),
		functions:    s.functions.Clone(),
		aggregations: s.aggregations.Clone(),
		pinned:       s.pinned.clone(),
	}
}

// ProcedureHandle identifies a registered procedure.
type ProcedureHandle struct {
	ID        int
	Signature signature.ProcedureSignature
}

// FunctionHandle identifies a registered function or aggregation function.
type FunctionHandle struct {
	ID        int
	Signature signature.FunctionSignature
}

// Procedures is the registry of one database instance. Lookups and calls
// are lock-free; registration and reload are serialised.
type Procedures struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	metrics *metrics.Metrics
}

// New creates an empty registry. m may be nil.
func New(m *metrics.Metrics) *Procedures {
	p := &Procedures{metrics: m}
	p.current.Store(&snapshot{
		generation:   uuid.NewString(),
		procedures:   NewHolder[invoker.Procedure](),
		functions:    NewHolder[invoker.Function](),
		aggregations: NewHolder[invoker.Aggregation](),
		pinned: pins{
			procedures:   map[int]bool{},
			functions:    map[int]bool{},
			aggregations: map[int]bool{},
		},
	})
	return p
}

// Generation changes every time the registry is modified.
func (p *Procedures) Generation() string {
	return p.current.Load().generation
}

// Register adds every entry point in batch. Builtin entry points survive
// reloads. Entries that clash with registered names are skipped and
// reported; the rest are registered.
func (p *Procedures) Register(ctx context.Context, batch compiler.Batch, builtin bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.current.Load().clone()
	err := next.add(batch, builtin)
	p.publish(ctx, next)
	return err
}

// RegisterProcedure adds a single procedure.
func (p *Procedures) RegisterProcedure(ctx context.Context, proc invoker.Procedure) error {
	return p.Register(ctx, compiler.Batch{Procedures: []invoker.Procedure{proc}}, false)
}

// RegisterFunction adds a single function.
func (p *Procedures) RegisterFunction(ctx context.Context, fn invoker.Function) error {
	return p.Register(ctx, compiler.Batch{Functions: []invoker.Function{fn}}, false)
}

// RegisterAggregation adds a single aggregation function.
func (p *Procedures) RegisterAggregation(ctx context.Context, agg invoker.Aggregation) error {
	return p.Register(ctx, compiler.Batch{Aggregations: []invoker.Aggregation{agg}}, false)
}

// Reload replaces everything but the builtin entry points with batch. Names
// registered before keep their ids.
func (p *Procedures) Reload(ctx context.Context, batch compiler.Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.current.Load()
	next := &snapshot{
		procedures:   cur.procedures.Tombstone(cur.pinned.procedures),
		functions:    cur.functions.Tombstone(cur.pinned.functions),
		aggregations: cur.aggregations.Tombstone(cur.pinned.aggregations),
		pinned:       cur.pinned.clone(),
	}
	err := next.add(batch, false)
	p.publish(ctx, next)
	p.metrics.Reloaded()
	return err
}

func (p *Procedures) publish(ctx context.Context, next *snapshot) {
	next.generation = uuid.NewString()
	p.current.Store(next)
	p.metrics.SetRegistered(procedure.KindProcedure.String(), next.procedures.Len())
	p.metrics.SetRegistered(procedure.KindFunction.String(), next.functions.Len())
	p.metrics.SetRegistered(procedure.KindAggregation.String(), next.aggregations.Len())
	ctxlog.FromContext(ctx).Debug("Published procedure registry.",
		"generation", next.generation,
		"procedures", next.procedures.Len(),
		"functions", next.functions.Len(),
		"aggregations", next.aggregations.Len())
}

func (s *snapshot) add(batch compiler.Batch, builtin bool) error {
	var errs []error
	for _, proc := range batch.Procedures {
		name := proc.Signature().Name().String()
		if _, exists := s.procedures.Get(name); exists {
			errs = append(errs, procerr.New(procerr.RegistrationFailed,
				"Unable to add procedure `%s`, because a procedure with that name already exists.", name))
			continue
		}
		id := s.procedures.Put(name, proc, false)
		if builtin {
			s.pinned.procedures[id] = true
		}
	}
	for _, fn := range batch.Functions {
		sig := fn.Signature()
		name := sig.Name().String()
		if s.functionExists(name) {
			errs = append(errs, duplicateFunction(name))
			continue
		}
		id := s.functions.Put(name, fn, sig.CaseInsensitive())
		if builtin {
			s.pinned.functions[id] = true
		}
	}
	for _, agg := range batch.Aggregations {
		sig := agg.Signature()
		name := sig.Name().String()
		if s.functionExists(name) {
			errs = append(errs, duplicateFunction(name))
			continue
		}
		id := s.aggregations.Put(name, agg, sig.CaseInsensitive())
		if builtin {
			s.pinned.aggregations[id] = true
		}
	}
	return errors.Join(errs...)
}

// functionExists checks the shared namespace of functions and aggregation
// functions.
func (s *snapshot) functionExists(name string) bool {
	if _, ok := s.functions.Get(name); ok {
		return true
	}
	_, ok := s.aggregations.Get(name)
	return ok
}

func duplicateFunction(name string) error {
	return procerr.New(procerr.RegistrationFailed,
		"Unable to add function `%s`, because a function with that name already exists.", name)
}

// LookupProcedure resolves a procedure by qualified name.
func (p *Procedures) LookupProcedure(name string) (ProcedureHandle, error) {
	s := p.current.Load()
	id, err := s.procedures.IDOf(name)
	if err != nil {
		return ProcedureHandle{}, notFound("procedure", name, s.procedures.Names())
	}
	proc, _ := s.procedures.GetByID(id)
	return ProcedureHandle{ID: id, Signature: proc.Signature()}, nil
}

// LookupFunction resolves a function by qualified name.
func (p *Procedures) LookupFunction(name string) (FunctionHandle, error) {
	s := p.current.Load()
	id, err := s.functions.IDOf(name)
	if err != nil {
		return FunctionHandle{}, notFound("function", name, s.functionNames())
	}
	fn, _ := s.functions.GetByID(id)
	return FunctionHandle{ID: id, Signature: fn.Signature()}, nil
}

// LookupAggregation resolves an aggregation function by qualified name.
func (p *Procedures) LookupAggregation(name string) (FunctionHandle, error) {
	s := p.current.Load()
	id, err := s.aggregations.IDOf(name)
	if err != nil {
		return FunctionHandle{}, notFound("function", name, s.functionNames())
	}
	agg, _ := s.aggregations.GetByID(id)
	return FunctionHandle{ID: id, Signature: agg.Signature()}, nil
}

func (s *snapshot) functionNames() []string {
	return append(s.functions.Names(), s.aggregations.Names()...)
}

// CallProcedure invokes the procedure with the given id.
func (p *Procedures) CallProcedure(pc *procedure.Context, id int, args []cty.Value, tracker invoker.ResourceTracker) (rows *invoker.Rows, err error) {
	proc, ok := p.current.Load().procedures.GetByID(id)
	if !ok {
		return nil, unknownID("procedure", id)
	}
	defer p.observe(procedure.KindProcedure, time.Now(), &err)
	return proc.Apply(pc, args, tracker)
}

// CallFunction invokes the function with the given id.
func (p *Procedures) CallFunction(pc *procedure.Context, id int, args []cty.Value) (v cty.Value, err error) {
	fn, ok := p.current.Load().functions.GetByID(id)
	if !ok {
		return cty.NilVal, unknownID("function", id)
	}
	defer p.observe(procedure.KindFunction, time.Now(), &err)
	return fn.Apply(pc, args)
}

// CreateAggregationReducer starts an aggregation with the given id.
func (p *Procedures) CreateAggregationReducer(pc *procedure.Context, id int) (r invoker.Reducer, err error) {
	agg, ok := p.current.Load().aggregations.GetByID(id)
	if !ok {
		return nil, unknownID("aggregation function", id)
	}
	defer p.observe(procedure.KindAggregation, time.Now(), &err)
	return agg.CreateReducer(pc)
}

func (p *Procedures) observe(kind procedure.Kind, start time.Time, err *error) {
	p.metrics.ObserveInvocation(kind.String(), start, *err)
}

// AllProcedures returns the signatures of every registered procedure.
func (p *Procedures) AllProcedures() []signature.ProcedureSignature {
	var out []signature.ProcedureSignature
	for _, proc := range p.current.Load().procedures.All() {
		out = append(out, proc.Signature())
	}
	return out
}

// AllFunctions returns the signatures of every registered function.
func (p *Procedures) AllFunctions() []signature.FunctionSignature {
	var out []signature.FunctionSignature
	for _, fn := range p.current.Load().functions.All() {
		out = append(out, fn.Signature())
	}
	return out
}

// AllAggregations returns the signatures of every registered aggregation
// function.
func (p *Procedures) AllAggregations() []signature.FunctionSignature {
	var out []signature.FunctionSignature
	for _, agg := range p.current.Load().aggregations.All() {
		out = append(out, agg.Signature())
	}
	return out
}

// Signatures implements procedure.SignatureCatalog.
func (p *Procedures) Signatures(kind procedure.Kind) []procedure.SignatureInfo {
	var out []procedure.SignatureInfo
	switch kind {
	case procedure.KindProcedure:
		for _, sig := range p.AllProcedures() {
			out = append(out, procedure.SignatureInfo{
				Kind:        kind,
				Name:        sig.Name().String(),
				Signature:   sig.String(),
				Description: sig.Description(),
				Mode:        sig.Mode(),
				Deprecated:  sig.Deprecation().IsActive(),
			})
		}
	case procedure.KindFunction, procedure.KindAggregation:
		sigs := p.AllFunctions()
		if kind == procedure.KindAggregation {
			sigs = p.AllAggregations()
		}
		for _, sig := range sigs {
			out = append(out, procedure.SignatureInfo{
				Kind:        kind,
				Name:        sig.Name().String(),
				Signature:   sig.String(),
				Description: sig.Description(),
				Deprecated:  sig.Deprecation().IsActive(),
			})
		}
	}
	return out
}
