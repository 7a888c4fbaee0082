// Package typemap maps Go types to graph types. For every mappable Go type it
// provides a Converter that moves values between the Go representation used
// by extension code and the cty representation used by the host, and that
// parses declared default values.
//
// The base table covers any, string, bool, int64, float64, *big.Float,
// []byte, time.Time, time.Duration and cty.Value together with pointer forms
// of the scalar types. Slices and string-keyed maps of mappable types are
// derived on demand and cached.
package typemap
