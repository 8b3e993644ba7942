package mongogw

import (
	"testing"

	"github.com/matzehuels/cdnlock/pkg/registry"
)

func TestDocRoundTrip(t *testing.T) {
	m := &registry.Metadata{
		Name:           "@youwol/lib",
		Version:        "2.1.0-beta",
		Namespace:      "youwol",
		Bundle:         "dist/lib.js",
		APIKey:         "2",
		ExportedSymbol: "@youwol/lib",
		Dependencies:   []registry.Query{{Name: "rxjs", Spec: "^7.0.0"}},
	}
	doc, err := toDoc(m)
	if err != nil {
		t.Fatalf("toDoc() error: %v", err)
	}
	if doc.VersionNumber != 20_010_000-2 {
		t.Errorf("VersionNumber = %d, want %d", doc.VersionNumber, 20_010_000-2)
	}

	back := fromDoc(doc)
	if back.Name != m.Name || back.Version != m.Version || back.Bundle != m.Bundle {
		t.Errorf("fromDoc(toDoc()) = %+v, want %+v", back, m)
	}
	if len(back.Dependencies) != 1 || back.Dependencies[0] != m.Dependencies[0] {
		t.Errorf("Dependencies = %v, want %v", back.Dependencies, m.Dependencies)
	}
}

func TestToDocRejectsUnknownVersion(t *testing.T) {
	if _, err := toDoc(&registry.Metadata{Name: "x", Version: "1.0.0-rc1"}); err == nil {
		t.Error("toDoc() should reject versions the codec cannot order")
	}
}
