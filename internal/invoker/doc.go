// Package invoker turns compiled signatures into callable entry points. Each
// invoker owns a call plan resolved once at compile time: the constructor of
// the extension type, its context field setters, the method to call and one
// converter per argument. A call only walks that plan.
//
// Errors raised by extension code, returned or panicked, surface as
// procerr.Error values reading "Failed to invoke procedure `name`: Caused by:
// <type>: <message>", or "function" for functions and aggregations.
package invoker
