// Package loader decides which extension classes an archive makes available.
//
// Go cannot load code at run time, so every extension type is compiled into
// the binary and registered in a Catalog by its module. An extension archive
// is a zip file carrying an extension.toml manifest that names the catalog
// classes it activates:
//
//	name    = "text-utils"
//	classes = ["text.Strings", "text.Joiner"]
//	ambient = false
//
// With hot reload enabled an archive gets an isolated Scope, a snapshot of
// its classes taken when it was loaded. Otherwise, or when the manifest sets
// ambient, the scope resolves classes from the shared catalog on demand.
package loader
