// Package dbms lists the procedures and functions registered with the
// database.
package dbms

import (
	"sort"

	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/procedure"
)

// Module implements the loader.Module interface for this package.
type Module struct{}

// Register registers the builtin class with the catalog.
func (m *Module) Register(c *loader.Catalog) {
	c.AddBuiltin(procedure.ClassOf[DBMS]("dbms", nil))
}

// DBMS reads the registry through the signature catalog component.
type DBMS struct {
	Catalog procedure.SignatureCatalog `proc:"context"`
}

// ProcedureInfo is one row of dbms.procedures.
type ProcedureInfo struct {
	Name        string
	Signature   string
	Description string
	Mode        string
	Deprecated  bool
}

// FunctionInfo is one row of dbms.functions.
type FunctionInfo struct {
	Name        string
	Signature   string
	Description string
	Aggregating bool
	Deprecated  bool
}

func (DBMS) Members() []procedure.Member {
	return []procedure.Member{
		procedure.Procedure("Procedures").
			WithMode(procedure.ModeDBMS).
			Describe("List all procedures in the DBMS."),
		procedure.Procedure("Functions").
			WithMode(procedure.ModeDBMS).
			Describe("List all functions in the DBMS."),
	}
}

func (d *DBMS) Procedures() procedure.Stream[ProcedureInfo] {
	sigs := sorted(d.Catalog.Signatures(procedure.KindProcedure))
	rows := make([]ProcedureInfo, len(sigs))
	for i, s := range sigs {
		rows[i] = ProcedureInfo{
			Name:        s.Name,
			Signature:   s.Signature,
			Description: s.Description,
			Mode:        s.Mode.String(),
			Deprecated:  s.Deprecated,
		}
	}
	return procedure.FromSlice(rows)
}

func (d *DBMS) Functions() procedure.Stream[FunctionInfo] {
	sigs := d.Catalog.Signatures(procedure.KindFunction)
	sigs = append(sigs, d.Catalog.Signatures(procedure.KindAggregation)...)
	sigs = sorted(sigs)
	rows := make([]FunctionInfo, len(sigs))
	for i, s := range sigs {
		rows[i] = FunctionInfo{
			Name:        s.Name,
			Signature:   s.Signature,
			Description: s.Description,
			Aggregating: s.Kind == procedure.KindAggregation,
			Deprecated:  s.Deprecated,
		}
	}
	return procedure.FromSlice(rows)
}

func sorted(sigs []procedure.SignatureInfo) []procedure.SignatureInfo {
	sort.SliceStable(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	return sigs
}
