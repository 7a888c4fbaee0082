package loader

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// ManifestName is the manifest entry every extension archive carries.
const ManifestName = "extension.toml"

// Manifest describes an extension archive.
type Manifest struct {
	Name    string   `toml:"name"`
	Classes []string `toml:"classes"`
	// Ambient forces the shared catalog even when hot reload is enabled.
	Ambient bool `toml:"ambient"`
}

// ParseManifest decodes a manifest. Unknown keys are rejected.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return Manifest{}, fmt.Errorf("invalid %s: %w", ManifestName, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, fmt.Errorf("invalid %s: unknown key %q", ManifestName, undecoded[0].String())
	}
	if len(m.Classes) == 0 {
		return Manifest{}, fmt.Errorf("invalid %s: no classes listed", ManifestName)
	}
	return m, nil
}
