package signature

import (
	"slices"

	"github.com/vk/graphproc/internal/types"
	"github.com/vk/graphproc/procedure"
)

// ProcedureBuilder assembles a ProcedureSignature.
type ProcedureBuilder struct {
	sig ProcedureSignature
}

// NewProcedure starts a void procedure signature; adding an output makes it
// a record-producing one.
func NewProcedure(name QualifiedName) *ProcedureBuilder {
	return &ProcedureBuilder{sig: ProcedureSignature{name: name, void: true}}
}

func (b *ProcedureBuilder) In(fields ...FieldSignature) *ProcedureBuilder {
	b.sig.inputs = append(b.sig.inputs, fields...)
	return b
}

func (b *ProcedureBuilder) Out(fields ...FieldSignature) *ProcedureBuilder {
	b.sig.outputs = append(b.sig.outputs, fields...)
	b.sig.void = false
	return b
}

func (b *ProcedureBuilder) Mode(m procedure.Mode) *ProcedureBuilder {
	b.sig.mode = m
	return b
}

func (b *ProcedureBuilder) Deprecation(d Deprecation) *ProcedureBuilder {
	b.sig.deprecation = d
	return b
}

func (b *ProcedureBuilder) Description(text string) *ProcedureBuilder {
	b.sig.description = text
	return b
}

// Failed marks the signature of an entry point that always fails when called.
func (b *ProcedureBuilder) Failed() *ProcedureBuilder {
	b.sig.failed = true
	return b
}

// Build returns the signature. The builder may be reused.
func (b *ProcedureBuilder) Build() ProcedureSignature {
	sig := b.sig
	sig.inputs = slices.Clone(b.sig.inputs)
	sig.outputs = slices.Clone(b.sig.outputs)
	return sig
}

// FunctionBuilder assembles a FunctionSignature.
type FunctionBuilder struct {
	sig FunctionSignature
}

// NewFunction starts a function signature returning output.
func NewFunction(name QualifiedName, output types.Type) *FunctionBuilder {
	return &FunctionBuilder{sig: FunctionSignature{name: name, output: output}}
}

func (b *FunctionBuilder) In(fields ...FieldSignature) *FunctionBuilder {
	b.sig.inputs = append(b.sig.inputs, fields...)
	return b
}

func (b *FunctionBuilder) Deprecation(d Deprecation) *FunctionBuilder {
	b.sig.deprecation = d
	return b
}

func (b *FunctionBuilder) Description(text string) *FunctionBuilder {
	b.sig.description = text
	return b
}

func (b *FunctionBuilder) CaseInsensitive(ci bool) *FunctionBuilder {
	b.sig.caseInsensitive = ci
	return b
}

func (b *FunctionBuilder) Failed() *FunctionBuilder {
	b.sig.failed = true
	return b
}

func (b *FunctionBuilder) Build() FunctionSignature {
	sig := b.sig
	sig.inputs = slices.Clone(b.sig.inputs)
	return sig
}
