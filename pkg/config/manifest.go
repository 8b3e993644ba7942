package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the project manifest `cdnlock resolve` reads when no
// library is given on the command line.
const ManifestFile = "cdnlock.toml"

// Manifest lists the libraries a project loads:
//
//	loaded = ["rxjs#7"]
//	extra = ["drafts.json"]
//
//	[libraries]
//	"@youwol/http-clients" = "^3.0.0"
//	rxjs = "^7.5.6"
//
//	[using]
//	rxjs = "7.5.6"
type Manifest struct {
	Libraries map[string]string `toml:"libraries"`
	Using     map[string]string `toml:"using"`
	Loaded    []string          `toml:"loaded"`
	Extra     []string          `toml:"extra"` // extra index files, relative to the manifest
}

// LoadManifest reads a project manifest.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	if len(m.Libraries) == 0 {
		return nil, fmt.Errorf("%s: no [libraries] declared", path)
	}
	return &m, nil
}

// Names returns the declared library names, sorted.
func (m *Manifest) Names() []string {
	return slices.Sorted(maps.Keys(m.Libraries))
}
