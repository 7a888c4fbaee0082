package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/literal"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/internal/types"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// Result is the tabular outcome of a call. Functions and aggregations
// produce a single column named after themselves.
type Result struct {
	Columns []string
	Rows    [][]cty.Value
}

// transaction is the transaction a single call runs in.
type transaction struct {
	id     string
	closed atomic.Bool
}

func newTransaction() *transaction {
	return &transaction{id: uuid.NewString()}
}

func (tx *transaction) ID() string   { return tx.id }
func (tx *transaction) IsOpen() bool { return !tx.closed.Load() }

// statement owns the procedure results opened while it runs and closes
// whatever is still open when it ends.
type statement struct {
	mu   sync.Mutex
	open []io.Closer
}

func (s *statement) RegisterCloseableResource(c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = append(s.open, c)
}

func (s *statement) UnregisterCloseableResource(c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.open {
		if o == c {
			s.open = append(s.open[:i], s.open[i+1:]...)
			return
		}
	}
}

func (s *statement) close() error {
	s.mu.Lock()
	open := s.open
	s.open = nil
	s.mu.Unlock()

	var errs []error
	for _, c := range open {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (a *App) callContext(ctx context.Context) (*procedure.Context, *transaction) {
	tx := newTransaction()
	ctx = ctxlog.WithLogger(ctx, a.logger.With("tx", tx.id))
	return procedure.NewContext(ctx, tx, typemap.NativeMapper{}), tx
}

// CallProcedure runs the named procedure and collects every row.
func (a *App) CallProcedure(ctx context.Context, name string, args []cty.Value) (*Result, error) {
	h, err := a.procedures.LookupProcedure(name)
	if err != nil {
		return nil, err
	}
	pc, tx := a.callContext(ctx)
	defer tx.closed.Store(true)

	st := &statement{}
	rows, err := a.procedures.CallProcedure(pc, h.ID, args, st)
	if err != nil {
		return nil, errors.Join(err, st.close())
	}

	res := &Result{}
	for _, out := range h.Signature.Outputs() {
		res.Columns = append(res.Columns, out.Name())
	}
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Join(err, st.close())
		}
		res.Rows = append(res.Rows, row)
	}
	return res, st.close()
}

// CallFunction evaluates the named function once.
func (a *App) CallFunction(ctx context.Context, name string, args []cty.Value) (*Result, error) {
	h, err := a.procedures.LookupFunction(name)
	if err != nil {
		return nil, err
	}
	pc, tx := a.callContext(ctx)
	defer tx.closed.Store(true)

	v, err := a.procedures.CallFunction(pc, h.ID, args)
	if err != nil {
		return nil, err
	}
	return &Result{Columns: []string{h.Signature.Name().String()}, Rows: [][]cty.Value{{v}}}, nil
}

// Aggregate feeds rows into a fresh reducer of the named aggregation and
// returns its result.
func (a *App) Aggregate(ctx context.Context, name string, rows [][]cty.Value) (*Result, error) {
	h, err := a.procedures.LookupAggregation(name)
	if err != nil {
		return nil, err
	}
	pc, tx := a.callContext(ctx)
	defer tx.closed.Store(true)

	reducer, err := a.procedures.CreateAggregationReducer(pc, h.ID)
	if err != nil {
		return nil, err
	}
	updater, err := reducer.NewUpdater()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := updater.Update(row); err != nil {
			return nil, err
		}
	}
	if err := updater.ApplyUpdates(); err != nil {
		return nil, err
	}
	v, err := reducer.Result()
	if err != nil {
		return nil, err
	}
	return &Result{Columns: []string{h.Signature.Name().String()}, Rows: [][]cty.Value{{v}}}, nil
}

// Call resolves name as a procedure, then as a function, then as an
// aggregation and parses literals against the declared input types. For
// aggregations every literal is one row of a single-argument update.
func (a *App) Call(ctx context.Context, name string, literals []string) (*Result, error) {
	if h, err := a.procedures.LookupProcedure(name); err == nil {
		args, err := parseArgs(h.Signature.Inputs(), literals)
		if err != nil {
			return nil, err
		}
		return a.CallProcedure(ctx, name, args)
	}
	if h, err := a.procedures.LookupFunction(name); err == nil {
		args, err := parseArgs(h.Signature.Inputs(), literals)
		if err != nil {
			return nil, err
		}
		return a.CallFunction(ctx, name, args)
	}
	h, err := a.procedures.LookupAggregation(name)
	if err != nil {
		// Report the procedure namespace, which is where callers look first.
		_, procErr := a.procedures.LookupProcedure(name)
		return nil, procErr
	}
	target := types.Any
	if in := h.Signature.Inputs(); len(in) > 0 {
		target = in[0].Type()
	}
	rows := make([][]cty.Value, 0, len(literals))
	for _, lit := range literals {
		v, err := parseArg(lit, target)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []cty.Value{v})
	}
	return a.Aggregate(ctx, name, rows)
}

func parseArgs(inputs []signature.FieldSignature, literals []string) ([]cty.Value, error) {
	if len(literals) > len(inputs) {
		return nil, procerr.New(procerr.CallFailed,
			"Too many arguments: expected at most %d but got %d.", len(inputs), len(literals))
	}
	args := make([]cty.Value, len(literals))
	for i, lit := range literals {
		v, err := parseArg(lit, inputs[i].Type())
		if err != nil {
			return nil, fmt.Errorf("argument `%s`: %w", inputs[i].Name(), err)
		}
		args[i] = v
	}
	return args, nil
}

// parseArg parses a literal for target. A STRING argument that is not a
// valid literal is taken verbatim.
func parseArg(lit string, target types.Type) (cty.Value, error) {
	v, err := literal.ParseAs(lit, target)
	if err != nil && target.Equals(types.String) {
		return cty.StringVal(lit), nil
	}
	return v, err
}
