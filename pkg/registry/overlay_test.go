package registry

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type failingGateway struct{ err error }

func (g failingGateway) ListVersions(context.Context, string) (*VersionList, error) {
	return nil, g.err
}

func (g failingGateway) GetMetadata(context.Context, string, string) (*Metadata, error) {
	return nil, g.err
}

func TestOverlay(t *testing.T) {
	ctx := context.Background()
	primary, _ := NewIndex(
		&Metadata{Name: "lib", Version: "2.0.0", Bundle: "lib.js", Fingerprint: "published"},
		&Metadata{Name: "lib", Version: "2.1.0", Bundle: "lib.js"},
	)
	extra, _ := NewIndex(
		&Metadata{Name: "lib", Version: "2.0.0", Bundle: "local.js", Fingerprint: "local"},
		&Metadata{Name: "lib", Version: "3.0.0-wip", Bundle: "lib.js"},
		&Metadata{Name: "draft", Version: "0.1.0", Bundle: "draft.js"},
	)
	gw := NewOverlay(primary, extra)

	list, err := gw.ListVersions(ctx, "lib")
	if err != nil {
		t.Fatalf("ListVersions() error: %v", err)
	}
	if want := []string{"3.0.0-wip", "2.1.0", "2.0.0"}; !slices.Equal(list.Versions, want) {
		t.Errorf("Versions = %v, want %v", list.Versions, want)
	}
	if list.Fingerprints["2.0.0"] != "local" {
		t.Errorf("Fingerprints[2.0.0] = %v, want local", list.Fingerprints["2.0.0"])
	}

	m, err := gw.GetMetadata(ctx, "lib", "2.0.0")
	if err != nil || m.Bundle != "local.js" {
		t.Errorf("GetMetadata(lib@2.0.0) = %v, %v; want the extra record", m, err)
	}
	m, err = gw.GetMetadata(ctx, "lib", "2.1.0")
	if err != nil || m.Bundle != "lib.js" {
		t.Errorf("GetMetadata(lib@2.1.0) = %v, %v; want the primary record", m, err)
	}

	if _, err := gw.ListVersions(ctx, "draft"); err != nil {
		t.Errorf("ListVersions(draft) error = %v, want extra-only package", err)
	}
	if _, err := gw.ListVersions(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListVersions(nope) error = %v, want ErrNotFound", err)
	}
}

func TestOverlayPrimaryFailure(t *testing.T) {
	boom := errors.New("registry down")
	extra, _ := NewIndex(&Metadata{Name: "lib", Version: "1.0.0", Bundle: "lib.js"})
	gw := NewOverlay(failingGateway{err: boom}, extra)

	if _, err := gw.ListVersions(context.Background(), "lib"); !errors.Is(err, boom) {
		t.Errorf("ListVersions() error = %v, want %v", err, boom)
	}
	if _, err := gw.GetMetadata(context.Background(), "lib", "1.0.0"); err != nil {
		t.Errorf("GetMetadata() served by extra index error = %v", err)
	}
}

func TestNewOverlayEmptyExtra(t *testing.T) {
	primary, _ := NewIndex()
	if gw := NewOverlay(primary, nil); gw != Gateway(primary) {
		t.Error("NewOverlay(primary, nil) should return primary")
	}
	empty, _ := NewIndex()
	if gw := NewOverlay(primary, empty); gw != Gateway(primary) {
		t.Error("NewOverlay(primary, empty) should return primary")
	}
}
