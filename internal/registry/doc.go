// Package registry stores compiled procedures, functions and aggregation
// functions by qualified name and numeric id.
//
// Holder is the name/id table. A reload never mutates a published Holder:
// it tombstones the current one, registers the freshly compiled entry points
// into the copy and swaps the result in atomically. Names that come back
// after a reload keep the id they had before, so callers that cached an id
// keep calling the same entry point.
package registry
