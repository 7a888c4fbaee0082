package config

import (
	"errors"
	"fmt"
	"strings"
)

// Procedures configures extension loading and call policy.
type Procedures struct {
	// Allowlist lists the names that may be loaded. Patterns may use '*' as
	// a wildcard. An empty list allows everything.
	Allowlist []string `mapstructure:"allowlist" yaml:"allowlist"`

	// Unrestricted lists the names that may use components outside the
	// sandbox. They also bypass the allowlist.
	Unrestricted []string `mapstructure:"unrestricted" yaml:"unrestricted"`

	// HotReload gives every archive its own isolated scope so that a reload
	// picks up a fresh set of classes.
	HotReload bool `mapstructure:"hot_reload" yaml:"hot_reload"`

	// PluginDir is scanned for extension archives. Empty disables loading.
	PluginDir string `mapstructure:"plugin_dir" yaml:"plugin_dir"`
}

// Validate rejects patterns that can never match a qualified name.
func (p Procedures) Validate() error {
	var errs []error
	check := func(setting string, patterns []string) {
		for _, pattern := range patterns {
			pattern = strings.TrimSpace(pattern)
			switch {
			case pattern == "":
				continue
			case strings.ContainsAny(pattern, " \t"):
				errs = append(errs, fmt.Errorf("%s: pattern %q must not contain whitespace", setting, pattern))
			case strings.HasPrefix(pattern, ".") || strings.HasSuffix(pattern, "."):
				errs = append(errs, fmt.Errorf("%s: pattern %q must not start or end with a dot", setting, pattern))
			}
		}
	}
	check("allowlist", p.Allowlist)
	check("unrestricted", p.Unrestricted)
	return errors.Join(errs...)
}

// SplitPatterns turns a comma separated setting into patterns.
func SplitPatterns(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
