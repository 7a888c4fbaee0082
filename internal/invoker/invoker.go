package invoker

import (
	"io"

	"github.com/vk/graphproc/internal/signature"
	"github.com/vk/graphproc/procedure"
	"github.com/zclconf/go-cty/cty"
)

// ResourceTracker is told about every open procedure result so the host can
// close it when the surrounding statement ends.
type ResourceTracker interface {
	RegisterCloseableResource(c io.Closer)
	UnregisterCloseableResource(c io.Closer)
}

// Procedure is a callable procedure.
type Procedure interface {
	Signature() signature.ProcedureSignature
	// Apply calls the procedure. The returned Rows must be drained or closed.
	Apply(pc *procedure.Context, args []cty.Value, tracker ResourceTracker) (*Rows, error)
}

// Function is a callable user-defined function.
type Function interface {
	Signature() signature.FunctionSignature
	Apply(pc *procedure.Context, args []cty.Value) (cty.Value, error)
}

// Aggregation is a callable aggregation function.
type Aggregation interface {
	Signature() signature.FunctionSignature
	CreateReducer(pc *procedure.Context) (Reducer, error)
}

// Reducer accumulates the rows of one aggregation group.
type Reducer interface {
	NewUpdater() (Updater, error)
	Result() (cty.Value, error)
}

// Updater feeds rows into a Reducer.
type Updater interface {
	Update(args []cty.Value) error
	ApplyUpdates() error
}
