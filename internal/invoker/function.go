package invoker

import (
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// FunctionSpec is the call plan of a function.
type FunctionSpec struct {
	Signature signature.FunctionSignature
	Instance  Instance
	Method    Method
	Result    *typemap.Converter
}

type compiledFunction struct {
	spec FunctionSpec
	what string
}

// NewFunction builds a function invoker from its plan.
func NewFunction(spec FunctionSpec) Function {
	return &compiledFunction{spec: spec, what: functionName(spec.Signature.Name())}
}

func (f *compiledFunction) Signature() signature.FunctionSignature {
	return f.spec.Signature
}

func (f *compiledFunction) Apply(pc *procedure.Context, args []cty.Value) (cty.Value, error) {
	argv, err := f.spec.Method.convertArgs(f.what, f.spec.Signature.Inputs(), args)
	if err != nil {
		return cty.NilVal, err
	}
	recv, err := f.spec.Instance.prepare(pc)
	if err != nil {
		return cty.NilVal, wrapFailure(err, f.what)
	}
	out, err := f.spec.Method.invoke(pc, recv, argv)
	if err != nil {
		return cty.NilVal, wrapFailure(err, f.what)
	}
	v, err := toInternal(f.spec.Result, out[0])
	if err != nil {
		return cty.NilVal, conversionFailure(err, f.what)
	}
	return v, nil
}
