package signature

import (
	"slices"
	"strings"

	"github.com/vk/graphproc/procedure"
	"github.com/vk/graphproc/internal/types"
)

// Deprecation records whether an entry point is deprecated and by what.
type Deprecation struct {
	active    bool
	successor string
}

// Deprecated returns an active deprecation.
func Deprecated(successor string) Deprecation {
	return Deprecation{active: true, successor: successor}
}

// SupersededBy names a successor without deprecating.
func SupersededBy(successor string) Deprecation {
	return Deprecation{successor: successor}
}

func (d Deprecation) IsActive() bool    { return d.active }
func (d Deprecation) Successor() string { return d.successor }

// ProcedureSignature describes a compiled procedure.
type ProcedureSignature struct {
	name        QualifiedName
	inputs      []FieldSignature
	outputs     []FieldSignature
	void        bool
	mode        procedure.Mode
	deprecation Deprecation
	description string
	failed      bool
}

func (s ProcedureSignature) Name() QualifiedName       { return s.name }
func (s ProcedureSignature) Inputs() []FieldSignature  { return slices.Clone(s.inputs) }
func (s ProcedureSignature) Outputs() []FieldSignature { return slices.Clone(s.outputs) }
func (s ProcedureSignature) IsVoid() bool              { return s.void }
func (s ProcedureSignature) Mode() procedure.Mode      { return s.mode }
func (s ProcedureSignature) Deprecation() Deprecation  { return s.deprecation }
func (s ProcedureSignature) Description() string       { return s.description }
func (s ProcedureSignature) IsFailed() bool            { return s.failed }

func (s ProcedureSignature) String() string {
	var b strings.Builder
	b.WriteString(s.name.String())
	writeInputs(&b, s.inputs)
	b.WriteString(" :: ")
	if s.void {
		b.WriteString("VOID")
		return b.String()
	}
	b.WriteString("(")
	for i, f := range s.outputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	b.WriteString(")")
	return b.String()
}

// FunctionSignature describes a compiled function or aggregation function.
type FunctionSignature struct {
	name            QualifiedName
	inputs          []FieldSignature
	output          types.Type
	deprecation     Deprecation
	description     string
	caseInsensitive bool
	failed          bool
}

func (s FunctionSignature) Name() QualifiedName      { return s.name }
func (s FunctionSignature) Inputs() []FieldSignature { return slices.Clone(s.inputs) }
func (s FunctionSignature) Output() types.Type       { return s.output }
func (s FunctionSignature) Deprecation() Deprecation { return s.deprecation }
func (s FunctionSignature) Description() string      { return s.description }
func (s FunctionSignature) CaseInsensitive() bool    { return s.caseInsensitive }
func (s FunctionSignature) IsFailed() bool           { return s.failed }

func (s FunctionSignature) String() string {
	var b strings.Builder
	b.WriteString(s.name.String())
	writeInputs(&b, s.inputs)
	b.WriteString(" :: ")
	b.WriteString(s.output.String())
	return b.String()
}

func writeInputs(b *strings.Builder, inputs []FieldSignature) {
	b.WriteString("(")
	for i, f := range inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	b.WriteString(")")
}
