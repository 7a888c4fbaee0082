// Package compiler validates the members an extension type declares and
// compiles each of them into a signature and an invoker.
//
// Compilation of one member is the unit of failure: a broken member is
// reported and its siblings still compile. Policy checks run here too. Names
// outside the allowlist and members that need unsafe components compile to
// invokers that fail when called, except for functions and aggregation
// functions outside the allowlist, which are not loaded at all.
package compiler
