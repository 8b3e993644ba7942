package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/cdnlock/pkg/version"
)

// ErrNotFound is returned when a package or package version does not exist.
var ErrNotFound = errors.New("not found")

// Gateway provides read access to a package registry.
// Implementations must be safe for concurrent use.
type Gateway interface {
	// ListVersions returns every published version of name.
	ListVersions(ctx context.Context, name string) (*VersionList, error)

	// GetMetadata returns the metadata of one published version.
	GetMetadata(ctx context.Context, name, version string) (*Metadata, error)
}

// Query asks for a package at a version spec: a fixed version, a range,
// "latest" or a wildcard.
type Query struct {
	Name string `json:"name"`
	Spec string `json:"version"`
}

// String returns "name@spec".
func (q Query) String() string { return q.Name + "@" + q.Spec }

// ParseQuery parses "name@spec". Scoped names keep their leading "@"; a
// missing spec means "latest".
func ParseQuery(s string) (Query, error) {
	s = strings.TrimSpace(s)
	name, spec := s, "latest"
	if i := strings.LastIndex(s, "@"); i > 0 {
		name, spec = s[:i], s[i+1:]
	}
	if name == "" || spec == "" {
		return Query{}, fmt.Errorf("invalid package query %q: want name@version", s)
	}
	return Query{Name: name, Spec: spec}, nil
}

// Metadata holds the immutable facts about one published package version.
type Metadata struct {
	Name           string  `json:"name"`
	Version        string  `json:"version"`
	Namespace      string  `json:"namespace,omitempty"`
	Type           string  `json:"type,omitempty"` // e.g. "js/wasm", "backend"
	Bundle         string  `json:"bundle"`         // entry point, relative to the version root
	Fingerprint    string  `json:"fingerprint,omitempty"`
	APIKey         string  `json:"apiKey"`
	ExportedSymbol string  `json:"exportedSymbol,omitempty"`
	Dependencies   []Query `json:"dependencies,omitempty"`
}

// LibraryKey identifies the runtime slot a package occupies: one name at
// one API key. Two versions with the same library key are interchangeable
// at runtime.
func LibraryKey(name, apiKey string) string {
	return name + "#" + apiKey
}

// Key returns the library key of m.
func (m *Metadata) Key() string { return LibraryKey(m.Name, m.APIKey) }

// Normalize fills the derived fields (api key, namespace, exported symbol)
// when the record left them empty.
func (m *Metadata) Normalize() error {
	if m.Name == "" || m.Version == "" {
		return fmt.Errorf("metadata needs a name and a version (got %q@%q)", m.Name, m.Version)
	}
	if m.APIKey == "" {
		key, err := version.APIKey(m.Version)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
		m.APIKey = key
	}
	if m.Namespace == "" {
		m.Namespace = Namespace(m.Name)
	}
	if m.ExportedSymbol == "" {
		m.ExportedSymbol = m.Name
	}
	return nil
}

// Namespace returns the scope of a scoped package name ("@youwol/x" -> "youwol"),
// or "" for unscoped names.
func Namespace(name string) string {
	scope, _, ok := strings.Cut(name, "/")
	if !ok || !strings.HasPrefix(scope, "@") {
		return ""
	}
	return strings.TrimPrefix(scope, "@")
}

// VersionList is the answer of [Gateway.ListVersions].
type VersionList struct {
	Name         string            `json:"name"`
	Versions     []string          `json:"versions"`               // most recent first
	Fingerprints map[string]string `json:"fingerprints,omitempty"` // version -> fingerprint
}
