package compiler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
)

// compileAggregation returns nil without error when the aggregation is
// dropped by the allowlist. Unlike functions, aggregations may live in the
// root namespace.
func (c *Compiler) compileAggregation(ctx context.Context, pc *preparedClass, m procedure.Member) (invoker.Aggregation, error) {
	create, err := lookupMethod(reflect.PointerTo(pc.class.Type), pc.name(), m, "Aggregation")
	if err != nil {
		return nil, err
	}
	name := qualifiedName(pc.class, m)

	createBound, _, err := c.bindMethod(create, nil)
	if err != nil {
		return nil, err
	}
	outs, _ := splitOuts(create.Type)
	if len(outs) != 1 {
		return nil, fmt.Errorf("Aggregation method `%s` in %s must return exactly one aggregator.", create.Name, pc.name())
	}
	at := outs[0]
	base := at
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Aggregation method `%s` in %s returns `%s`, but an aggregator must be a struct type.",
			create.Name, pc.name(), at)
	}

	updateMember, resultMember, err := aggregatorMembers(base)
	if err != nil {
		return nil, err
	}
	update, err := lookupMethod(at, base.Name(), updateMember, "Aggregation update")
	if err != nil {
		return nil, err
	}
	result, err := lookupMethod(at, base.Name(), resultMember, "Aggregation result")
	if err != nil {
		return nil, err
	}

	updateBound, inputs, err := c.bindMethod(update, updateMember.Params)
	if err != nil {
		return nil, err
	}
	if uouts, _ := splitOuts(update.Type); len(uouts) > 0 {
		return nil, fmt.Errorf("Update method '%s' in %s has type '%s' but must have return type 'void'.",
			update.Name, base.Name(), uouts[0])
	}

	resultBound, _, err := c.bindMethod(result, nil)
	if err != nil {
		return nil, err
	}
	routs, _ := splitOuts(result.Type)
	switch len(routs) {
	case 0:
		return nil, c.mapper.VoidError()
	case 1:
	default:
		return nil, fmt.Errorf("Aggregation result method `%s` in %s returns %d values but must return exactly one.",
			result.Name, base.Name(), len(routs))
	}
	output, err := c.mapper.Resolve(routs[0])
	if err != nil {
		return nil, err
	}

	b := signature.NewFunction(name, output.Type()).
		In(inputs...).
		Deprecation(c.deprecation(ctx, name, m)).
		Description(m.Description).
		CaseInsensitive(m.CaseInsensitive)

	switch v, msg := c.policy(ctx, "function", name, pc.safe()); v {
	case notAllowed:
		return nil, nil
	case sandboxed:
		return invoker.FailedAggregation(b.Description(msg).Failed().Build(), msg), nil
	}

	sig := b.Build()
	ctxlog.FromContext(ctx).Debug("Compiled aggregation.", "name", name.String(), "signature", sig.String())
	return invoker.NewAggregation(invoker.AggregationSpec{
		Signature: sig,
		Instance:  pc.instance,
		Create:    createBound,
		Update:    updateBound,
		Result:    resultBound,
		Output:    output,
	}), nil
}

// aggregatorMembers finds the single update and result members an
// aggregator type declares.
func aggregatorMembers(t reflect.Type) (update, result procedure.Member, err error) {
	var updates, results []procedure.Member
	for _, m := range declaredMembers(t) {
		switch m.Kind {
		case procedure.KindUpdate:
			updates = append(updates, m)
		case procedure.KindResult:
			results = append(results, m)
		}
	}
	switch {
	case len(updates) > 1:
		err = fmt.Errorf("Type '%s' declares multiple update members.", t.Name())
	case len(results) > 1:
		err = fmt.Errorf("Type '%s' declares multiple result members.", t.Name())
	case len(updates) == 0 || len(results) == 0:
		err = fmt.Errorf("Type '%s' must declare both an update and a result member.", t.Name())
	default:
		update, result = updates[0], results[0]
	}
	return update, result, err
}
