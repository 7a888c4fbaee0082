package testutil

import (
	"context"
	"log/slog"
	"testing"

	"github.com/vk/graphproc/internal/ctxlog"
	"github.com/vk/graphproc/internal/typemap"
	"github.com/vk/graphproc/procedure"
)

// Transaction is a minimal open transaction.
type Transaction struct {
	TxID   string
	Closed bool
}

func (tx *Transaction) ID() string   { return tx.TxID }
func (tx *Transaction) IsOpen() bool { return !tx.Closed }

// LogContext returns a context carrying a debug logger that writes into the
// returned buffer.
func LogContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// CallContext returns an invocation context with a test transaction.
func CallContext(t *testing.T) *procedure.Context {
	t.Helper()
	ctx, _ := LogContext(t)
	return procedure.NewContext(ctx, &Transaction{TxID: "tx-1"}, typemap.NativeMapper{})
}
