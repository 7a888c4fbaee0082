// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package procedure is the surface extension authors program against. An
// extension is a struct type that declares its procedures, functions and
// aggregation functions by implementing Declarer, and is made available to the
// runtime as a Class.
//
// # Declaring members
//
// Members are described by value, next to the type that implements them:
//
//	type Greeter struct {
//		Log *slog.Logger `proc:"context"`
//	}
//
//	func (g *Greeter) Members() []procedure.Member {
//		return []procedure.Member{
//			procedure.Function("Hello", procedure.Name("who")).Describe("Says hello."),
//			procedure.Procedure("Greetings", procedure.Default("count", "3")),
//		}
//	}
//
//	func (g *Greeter) Hello(who string) string { ... }
//	func (g *Greeter) Greetings(count int64) procedure.Stream[Greeting] { ... }
//
// # Fields
//
// Every call runs against a fresh instance built by the class constructor.
// Fields tagged `proc:"context"` are filled from the component catalog before
// the call. Fields tagged `proc:"static"` are left alone. Any other field must
// be initialized by the constructor.
//
// # Records
//
// Procedures return a Stream of records. A record is a struct whose exported
// fields become the output columns; the `proc` tag renames a column and may
// mark it deprecated:
//
//	type Greeting struct {
//		Text  string `proc:"text"`
//		Count int64  `proc:"n,deprecated"`
//	}
package procedure
