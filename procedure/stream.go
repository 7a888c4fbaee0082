// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Stream, the result shape of every procedure that returns
// rows.

package procedure

import (
	"io"
	"iter"
)

// Stream is a lazily evaluated sequence of records. Next returns io.EOF once
// the sequence is exhausted. Close releases whatever the stream holds and is
// called exactly once by the runtime.
type Stream[T any] interface {
	Next() (T, error)
	Close() error
}

// FromSlice streams the given items.
func FromSlice[T any](items []T) Stream[T] {
	return &sliceStream[T]{items: items}
}

type sliceStream[T any] struct {
	items []T
	pos   int
}

func (s *sliceStream[T]) Next() (T, error) {
	var zero T
	if s.pos >= len(s.items) {
		return zero, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item, nil
}

func (s *sliceStream[T]) Close() error {
	s.pos = len(s.items)
	return nil
}

// FromFunc builds a stream from a next function and an optional close
// function.
func FromFunc[T any](next func() (T, error), closeFn func() error) Stream[T] {
	return &funcStream[T]{next: next, close: closeFn}
}

type funcStream[T any] struct {
	next  func() (T, error)
	close func() error
}

func (s *funcStream[T]) Next() (T, error) {
	return s.next()
}

func (s *funcStream[T]) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// FromSeq adapts an iterator. A non-nil error yielded by seq is returned from
// Next; iteration is stopped on Close.
func FromSeq[T any](seq iter.Seq2[T, error]) Stream[T] {
	next, stop := iter.Pull2(seq)
	return &funcStream[T]{
		next: func() (T, error) {
			item, err, ok := next()
			if !ok {
				var zero T
				return zero, io.EOF
			}
			return item, err
		},
		close: func() error {
			stop()
			return nil
		},
	}
}
