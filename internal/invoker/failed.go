package invoker

import (
	"github.com/vk/graphproc/internal/procerr"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// FailedProcedure returns a procedure that fails every call with message.
// It keeps the name registered while making the entry point unusable.
func FailedProcedure(sig signature.ProcedureSignature, message string) Procedure {
	return &failedProcedure{sig: sig, message: message}
}

type failedProcedure struct {
	sig     signature.ProcedureSignature
	message string
}

func (p *failedProcedure) Signature() signature.ProcedureSignature { return p.sig }

func (p *failedProcedure) Apply(*procedure.Context, []cty.Value, ResourceTracker) (*Rows, error) {
	return nil, procerr.New(procerr.CallFailed, "%s", p.message)
}

// FailedFunction returns a function that fails every call with message.
func FailedFunction(sig signature.FunctionSignature, message string) Function {
	return &failedFunction{sig: sig, message: message}
}

type failedFunction struct {
	sig     signature.FunctionSignature
	message string
}

func (f *failedFunction) Signature() signature.FunctionSignature { return f.sig }

func (f *failedFunction) Apply(*procedure.Context, []cty.Value) (cty.Value, error) {
	return cty.NilVal, procerr.New(procerr.CallFailed, "%s", f.message)
}

// FailedAggregation returns an aggregation whose reducers cannot be created.
func FailedAggregation(sig signature.FunctionSignature, message string) Aggregation {
	return &failedAggregation{sig: sig, message: message}
}

type failedAggregation struct {
	sig     signature.FunctionSignature
	message string
}

func (a *failedAggregation) Signature() signature.FunctionSignature { return a.sig }

func (a *failedAggregation) CreateReducer(*procedure.Context) (Reducer, error) {
	return nil, procerr.New(procerr.CallFailed, "%s", a.message)
}
