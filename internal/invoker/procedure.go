package invoker

import (
	"reflect"

	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// ProcedureSpec is the call plan of a procedure.
type ProcedureSpec struct {
	Signature signature.ProcedureSignature
	Instance  Instance
	Method    Method
	// Record maps stream elements to rows. It is nil for void procedures.
	Record *RecordMapper
}

type compiledProcedure struct {
	spec ProcedureSpec
	what string
}

// NewProcedure builds a procedure invoker from its plan.
func NewProcedure(spec ProcedureSpec) Procedure {
	return &compiledProcedure{spec: spec, what: procedureName(spec.Signature.Name())}
}

func (p *compiledProcedure) Signature() signature.ProcedureSignature {
	return p.spec.Signature
}

func (p *compiledProcedure) Apply(pc *procedure.Context, args []cty.Value, tracker ResourceTracker) (*Rows, error) {
	argv, err := p.spec.Method.convertArgs(p.what, p.spec.Signature.Inputs(), args)
	if err != nil {
		return nil, err
	}
	recv, err := p.spec.Instance.prepare(pc)
	if err != nil {
		return nil, wrapFailure(err, p.what)
	}
	out, err := p.spec.Method.invoke(pc, recv, argv)
	if err != nil {
		return nil, wrapFailure(err, p.what)
	}
	if p.spec.Record == nil {
		return emptyRows(), nil
	}

	stream := out[0]
	if (stream.Kind() == reflect.Interface || stream.Kind() == reflect.Pointer) && stream.IsNil() {
		return emptyRows(), nil
	}
	return newRows(p.what, stream, p.spec.Record, tracker), nil
}
