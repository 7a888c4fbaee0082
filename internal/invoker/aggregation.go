package invoker

import (
	"errors"
	"reflect"

	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// AggregationSpec is the call plan of an aggregation function. Create is a
// method of the extension type, Update and Result are methods of the
// aggregator it returns.
type AggregationSpec struct {
	Signature signature.FunctionSignature
	Instance  Instance
	Create    Method
	Update    Method
	Result    Method
	Output    *typemap.Converter
}

type compiledAggregation struct {
	spec AggregationSpec
	what string
}

// NewAggregation builds an aggregation invoker from its plan.
func NewAggregation(spec AggregationSpec) Aggregation {
	return &compiledAggregation{spec: spec, what: functionName(spec.Signature.Name())}
}

func (a *compiledAggregation) Signature() signature.FunctionSignature {
	return a.spec.Signature
}

func (a *compiledAggregation) CreateReducer(pc *procedure.Context) (Reducer, error) {
	recv, err := a.spec.Instance.prepare(pc)
	if err != nil {
		return nil, wrapFailure(err, a.what)
	}
	out, err := a.spec.Create.invoke(pc, recv, nil)
	if err != nil {
		return nil, wrapFailure(err, a.what)
	}
	agg := out[0]
	if (agg.Kind() == reflect.Pointer || agg.Kind() == reflect.Interface) && agg.IsNil() {
		return nil, wrapFailure(errors.New("the aggregation factory returned nil"), a.what)
	}
	return &reducer{owner: a, pc: pc, instance: recv, aggregator: agg}, nil
}

type reducer struct {
	owner      *compiledAggregation
	pc         *procedure.Context
	instance   reflect.Value
	aggregator reflect.Value
}

// NewUpdater returns an updater writing straight into the aggregator.
func (r *reducer) NewUpdater() (Updater, error) {
	return r, nil
}

func (r *reducer) Update(args []cty.Value) error {
	spec := r.owner.spec
	if err := spec.Instance.Injection.Apply(r.pc, r.instance); err != nil {
		return wrapFailure(err, r.owner.what)
	}
	argv, err := spec.Update.convertArgs(r.owner.what, spec.Signature.Inputs(), args)
	if err != nil {
		return err
	}
	if _, err := spec.Update.invoke(r.pc, r.aggregator, argv); err != nil {
		return wrapFailure(err, r.owner.what)
	}
	return nil
}

func (r *reducer) ApplyUpdates() error {
	return nil
}

func (r *reducer) Result() (cty.Value, error) {
	spec := r.owner.spec
	out, err := spec.Result.invoke(r.pc, r.aggregator, nil)
	if err != nil {
		return cty.NilVal, wrapFailure(err, r.owner.what)
	}
	v, err := toInternal(spec.Output, out[0])
	if err != nil {
		return cty.NilVal, conversionFailure(err, r.owner.what)
	}
	return v, nil
}
