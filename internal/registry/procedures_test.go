package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/compiler"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/metrics"
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/testutil"
	"github.com/vk/graphproc/internal/types"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

type fakeProcedure struct {
	sig signature.ProcedureSignature
}

func (f fakeProcedure) Signature() signature.ProcedureSignature { return f.sig }

func (f fakeProcedure) Apply(*procedure.Context, []cty.Value, invoker.ResourceTracker) (*invoker.Rows, error) {
	return nil, errors.New("not callable")
}

type constFunction struct {
	sig   signature.FunctionSignature
	value cty.Value
}

func (f constFunction) Signature() signature.FunctionSignature { return f.sig }

func (f constFunction) Apply(*procedure.Context, []cty.Value) (cty.Value, error) {
	return f.value, nil
}

func proc(name string) invoker.Procedure {
	return fakeProcedure{sig: signature.NewProcedure(signature.ParseQualifiedName(name)).Build()}
}

func fn(name string, v string, caseInsensitive bool) invoker.Function {
	sig := signature.NewFunction(signature.ParseQualifiedName(name), types.String).
		CaseInsensitive(caseInsensitive).
		Build()
	return constFunction{sig: sig, value: cty.StringVal(v)}
}

func agg(name string) invoker.Aggregation {
	return invoker.FailedAggregation(signature.NewFunction(signature.ParseQualifiedName(name), types.Any).Build(), "nope")
}

func TestProcedures_RegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	p := New(nil)
	require.NoError(t, p.Register(ctx, compiler.Batch{
		Procedures:   []invoker.Procedure{proc("db.labels"), proc("db.indexes")},
		Functions:    []invoker.Function{fn("text.upper", "UP", true)},
		Aggregations: []invoker.Aggregation{agg("coll.collect")},
	}, false))

	h, err := p.LookupProcedure("db.indexes")
	require.NoError(t, err)
	require.Equal(t, 1, h.ID)
	require.Equal(t, "db.indexes", h.Signature.Name().String())

	f, err := p.LookupFunction("TEXT.UPPER")
	require.NoError(t, err)
	v, err := p.CallFunction(testutil.CallContext(t), f.ID, nil)
	require.NoError(t, err)
	require.Equal(t, cty.StringVal("UP"), v)

	a, err := p.LookupAggregation("coll.collect")
	require.NoError(t, err)
	_, err = p.CreateAggregationReducer(testutil.CallContext(t), a.ID)
	require.EqualError(t, err, "nope")
}

func TestProcedures_DuplicateNames(t *testing.T) {
	ctx := context.Background()
	p := New(nil)
	require.NoError(t, p.RegisterProcedure(ctx, proc("db.labels")))
	require.NoError(t, p.RegisterFunction(ctx, fn("text.upper", "", false)))

	err := p.RegisterProcedure(ctx, proc("db.labels"))
	require.EqualError(t, err, "Unable to add procedure `db.labels`, because a procedure with that name already exists.")
	status, _ := procerr.StatusOf(err)
	require.Equal(t, procerr.RegistrationFailed, status)

	err = p.RegisterAggregation(ctx, agg("text.upper"))
	require.EqualError(t, err, "Unable to add function `text.upper`, because a function with that name already exists.")

	err = p.Register(ctx, compiler.Batch{
		Procedures: []invoker.Procedure{proc("db.labels"), proc("db.other")},
	}, false)
	require.Error(t, err)
	_, err = p.LookupProcedure("db.other")
	require.NoError(t, err)
}

func TestProcedures_NotFound(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.RegisterProcedure(context.Background(), proc("db.labels")))

	_, err := p.LookupProcedure("db.lables")
	require.EqualError(t, err, "There is no procedure with the name `db.lables` registered for this database instance. "+
		"Please ensure you've spelled the procedure name correctly and that the procedure is properly deployed. "+
		"Did you mean `db.labels`?")
	status, _ := procerr.StatusOf(err)
	require.Equal(t, procerr.NotFound, status)

	_, err = p.LookupFunction("nothing.like.it")
	require.ErrorContains(t, err, "There is no function with the name `nothing.like.it`")
	require.NotContains(t, err.Error(), "Did you mean")

	_, err = p.CallProcedure(testutil.CallContext(t), 42, nil, nil)
	require.EqualError(t, err, "There is no procedure with the internal id `42` registered for this database instance.")
}

func TestProcedures_ReloadKeepsIDsAndBuiltins(t *testing.T) {
	ctx := context.Background()
	p := New(metrics.New())
	require.NoError(t, p.Register(ctx, compiler.Batch{
		Procedures: []invoker.Procedure{proc("dbms.procedures")},
	}, true))
	require.NoError(t, p.Register(ctx, compiler.Batch{
		Procedures: []invoker.Procedure{proc("ext.a"), proc("ext.b")},
	}, false))
	before := p.Generation()

	require.NoError(t, p.Reload(ctx, compiler.Batch{
		Procedures: []invoker.Procedure{proc("ext.c"), proc("ext.a")},
	}))
	require.NotEqual(t, before, p.Generation())

	builtin, err := p.LookupProcedure("dbms.procedures")
	require.NoError(t, err)
	require.Equal(t, 0, builtin.ID)

	a, err := p.LookupProcedure("ext.a")
	require.NoError(t, err)
	require.Equal(t, 1, a.ID)

	c, err := p.LookupProcedure("ext.c")
	require.NoError(t, err)
	require.Equal(t, 3, c.ID)

	_, err = p.LookupProcedure("ext.b")
	require.Error(t, err)

	require.Len(t, p.AllProcedures(), 3)
}

func TestProcedures_Signatures(t *testing.T) {
	ctx := context.Background()
	p := New(nil)
	sig := signature.NewProcedure(signature.ParseQualifiedName("db.labels")).
		Out(signature.Output("label", types.String, false)).
		Mode(procedure.ModeRead).
		Description("Lists labels.").
		Deprecation(signature.Deprecated("")).
		Build()
	require.NoError(t, p.RegisterProcedure(ctx, fakeProcedure{sig: sig}))
	require.NoError(t, p.RegisterFunction(ctx, fn("text.upper", "", false)))

	var catalog procedure.SignatureCatalog = p
	procs := catalog.Signatures(procedure.KindProcedure)
	require.Equal(t, []procedure.SignatureInfo{{
		Kind:        procedure.KindProcedure,
		Name:        "db.labels",
		Signature:   "db.labels() :: (label :: STRING)",
		Description: "Lists labels.",
		Mode:        procedure.ModeRead,
		Deprecated:  true,
	}}, procs)
	require.Len(t, catalog.Signatures(procedure.KindFunction), 1)
	require.Empty(t, catalog.Signatures(procedure.KindAggregation))
}

func TestProcedures_ConcurrentReadsDuringReload(t *testing.T) {
	ctx := context.Background()
	p := New(nil)
	require.NoError(t, p.RegisterFunction(ctx, fn("text.upper", "UP", false)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h, err := p.LookupFunction("text.upper")
				if err != nil {
					continue
				}
				require.Equal(t, 0, h.ID)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Reload(ctx, compiler.Batch{
			Functions: []invoker.Function{fn("text.upper", "UP", false)},
		}))
	}
	wg.Wait()
}
