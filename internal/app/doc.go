// Package app wires the extension runtime together: it builds the logger,
// the component catalogs, the compiler and the registry, compiles the
// builtin modules and loads extension archives. It is independent of any
// entrypoint; the CLI and tests drive it through App.
package app
