package compiler

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
)

// compileFunction returns nil without error when the function is dropped by
// the allowlist.
func (c *Compiler) compileFunction(ctx context.Context, pc *preparedClass, m procedure.Member) (invoker.Function, error) {
	method, err := lookupMethod(reflect.PointerTo(pc.class.Type), pc.name(), m, "Function")
	if err != nil {
		return nil, err
	}
	name := qualifiedName(pc.class, m)
	if name.IsRoot() {
		return nil, errors.New("It is not allowed to define functions in the root namespace. " +
			"Please define a namespace, e.g. `Named(\"org.example.com.singleName\")`.")
	}

	bound, inputs, err := c.bindMethod(method, m.Params)
	if err != nil {
		return nil, err
	}
	outs, _ := splitOuts(method.Type)
	switch len(outs) {
	case 0:
		return nil, c.mapper.VoidError()
	case 1:
	default:
		return nil, fmt.Errorf("Function method `%s` returns %d values but a function returns exactly one.",
			method.Name, len(outs))
	}
	result, err := c.mapper.Resolve(outs[0])
	if err != nil {
		return nil, err
	}

	b := signature.NewFunction(name, result.Type()).
		In(inputs...).
		Deprecation(c.deprecation(ctx, name, m)).
		Description(m.Description).
		CaseInsensitive(m.CaseInsensitive)

	switch v, msg := c.policy(ctx, "function", name, pc.safe()); v {
	case notAllowed:
		return nil, nil
	case sandboxed:
		return invoker.FailedFunction(b.Description(msg).Failed().Build(), msg), nil
	}

	sig := b.Build()
	ctxlog.FromContext(ctx).Debug("Compiled function.", "name", name.String(), "signature", sig.String())
	return invoker.NewFunction(invoker.FunctionSpec{
		Signature: sig,
		Instance:  pc.instance,
		Method:    bound,
		Result:    result,
	}), nil
}
