// Package config defines the settings that govern which extension entry
// points are loaded and how they may be called. Values are plain data; the
// CLI fills them from flags, environment variables and an optional file.
package config
