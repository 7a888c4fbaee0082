package invoker

import (
	"errors"
	"io"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Rows is the open result of a procedure call. Next returns io.EOF after the
// last row. The underlying stream is closed on exhaustion, on failure or by
// Close, whichever happens first.
type Rows struct {
	what    string
	stream  reflect.Value
	record  *RecordMapper
	tracker ResourceTracker
	closed  bool
}

func newRows(what string, stream reflect.Value, record *RecordMapper, tracker ResourceTracker) *Rows {
	r := &Rows{what: what, stream: stream, record: record, tracker: tracker}
	if tracker != nil {
		tracker.RegisterCloseableResource(r)
	}
	return r
}

func emptyRows() *Rows {
	return &Rows{closed: true}
}

// Next returns the next row.
func (r *Rows) Next() ([]cty.Value, error) {
	if r.closed {
		return nil, io.EOF
	}

	item, err := r.pull()
	if errors.Is(err, io.EOF) {
		if err := r.Close(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var failure error
	if err != nil {
		failure = wrapFailure(err, r.what)
	} else {
		row, err := r.record.Map(item)
		if err == nil {
			return row, nil
		}
		failure = conversionFailure(err, r.what)
	}
	return nil, suppress(failure, r.closeStream())
}

// Close closes the underlying stream. It is safe to call more than once.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	if err := r.closeStream(); err != nil {
		return wrapFailure(err, r.what)
	}
	return nil
}

func (r *Rows) pull() (item reflect.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fromPanic(rec)
		}
	}()
	out := r.stream.MethodByName("Next").Call(nil)
	if e := out[1]; !e.IsNil() {
		return reflect.Value{}, e.Interface().(error)
	}
	return out[0], nil
}

// closeStream closes the stream once and always unregisters from the
// tracker.
func (r *Rows) closeStream() (err error) {
	r.closed = true
	defer func() {
		if rec := recover(); rec != nil {
			err = fromPanic(rec)
		}
		if r.tracker != nil {
			r.tracker.UnregisterCloseableResource(r)
		}
	}()
	out := r.stream.MethodByName("Close").Call(nil)
	if e := out[0]; !e.IsNil() {
		return e.Interface().(error)
	}
	return nil
}
