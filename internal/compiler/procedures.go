package compiler

import (
	"context"
	"reflect"

	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/invoker"
	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
)

func (c *Compiler) compileProcedure(ctx context.Context, pc *preparedClass, m procedure.Member) (invoker.Procedure, error) {
	method, err := lookupMethod(reflect.PointerTo(pc.class.Type), pc.name(), m, "Procedure")
	if err != nil {
		return nil, err
	}
	name := qualifiedName(pc.class, m)

	bound, inputs, err := c.bindMethod(method, m.Params)
	if err != nil {
		return nil, err
	}
	outs, _ := splitOuts(method.Type)
	record, outputs, err := c.outputShape(method, outs)
	if err != nil {
		return nil, err
	}

	b := signature.NewProcedure(name).
		In(inputs...).
		Mode(m.Mode).
		Deprecation(c.deprecation(ctx, name, m)).
		Description(m.Description)
	if record != nil {
		b.Out(outputs...)
	}

	if v, msg := c.policy(ctx, "procedure", name, pc.safe()); v != callable {
		return invoker.FailedProcedure(b.Description(msg).Failed().Build(), msg), nil
	}

	sig := b.Build()
	ctxlog.FromContext(ctx).Debug("Compiled procedure.", "name", name.String(), "signature", sig.String())
	return invoker.NewProcedure(invoker.ProcedureSpec{
		Signature: sig,
		Instance:  pc.instance,
		Method:    bound,
		Record:    record,
	}), nil
}
