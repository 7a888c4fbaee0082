// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the invocation context and the host interfaces that
// context fields may be injected with.

package procedure

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Transaction is the host transaction a call runs in.
type Transaction interface {
	ID() string
	IsOpen() bool
}

// ValueMapper converts internal values into plain Go values.
type ValueMapper interface {
	MapValue(v cty.Value) (any, error)
}

// Context carries what the host knows about the current invocation. Context
// fields of extension types are resolved from it.
type Context struct {
	ctx         context.Context
	transaction Transaction
	mapper      ValueMapper
}

// NewContext builds an invocation context. Any argument may be nil.
func NewContext(ctx context.Context, tx Transaction, mapper ValueMapper) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{ctx: ctx, transaction: tx, mapper: mapper}
}

// Context returns the Go context of the call.
func (c *Context) Context() context.Context {
	if c == nil || c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Transaction returns the host transaction, or nil outside of one.
func (c *Context) Transaction() Transaction {
	if c == nil {
		return nil
	}
	return c.transaction
}

// ValueMapper returns the host value mapper, or nil when none is set.
func (c *Context) ValueMapper() ValueMapper {
	if c == nil {
		return nil
	}
	return c.mapper
}

// Environment reads the process environment of the host. It is only handed
// to unrestricted extensions.
type Environment interface {
	Lookup(key string) (string, bool)
	Environ() []string
}
