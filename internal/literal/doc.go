// Package literal parses the restricted literal grammar used for parameter
// default values: null, booleans, integers, floats, single or double quoted
// strings, lists and maps with bare, back-quoted or quoted keys, nested
// arbitrarily.
//
// Literals are rewritten into HCL expression syntax and evaluated by
// hclsyntax without an evaluation context. Only literal nodes, tuples,
// objects and negation are accepted, so a literal can never reference a
// variable or call a function.
package literal
