package registry

import (
	"context"
	"errors"
	"maps"

	"github.com/matzehuels/cdnlock/pkg/version"
)

// Overlay is a [Gateway] that consults an extra [Index] before a primary
// gateway. Versions are the union of both sources; on a conflicting
// fingerprint, and for metadata, the extra index wins.
type Overlay struct {
	Primary Gateway
	Extra   *Index
}

// NewOverlay returns primary unchanged when extra is empty.
func NewOverlay(primary Gateway, extra *Index) Gateway {
	if extra == nil || extra.Len() == 0 {
		return primary
	}
	if primary == nil {
		return extra
	}
	return &Overlay{Primary: primary, Extra: extra}
}

// ListVersions implements [Gateway].
func (o *Overlay) ListVersions(ctx context.Context, name string) (*VersionList, error) {
	extra, extraErr := o.Extra.ListVersions(ctx, name)
	primary, err := o.Primary.ListVersions(ctx, name)
	switch {
	case err == nil && extraErr != nil:
		return primary, nil
	case err != nil && extraErr == nil && errors.Is(err, ErrNotFound):
		return extra, nil
	case err != nil:
		return nil, err
	}

	merged := &VersionList{
		Name:         name,
		Fingerprints: make(map[string]string, len(primary.Versions)+len(extra.Versions)),
	}
	maps.Copy(merged.Fingerprints, primary.Fingerprints)
	maps.Copy(merged.Fingerprints, extra.Fingerprints)

	seen := make(map[string]bool)
	var all []string
	for _, v := range append(append([]string{}, extra.Versions...), primary.Versions...) {
		if !seen[v] {
			seen[v] = true
			all = append(all, v)
		}
	}
	merged.Versions = version.SortDescending(all)
	return merged, nil
}

// GetMetadata implements [Gateway].
func (o *Overlay) GetMetadata(ctx context.Context, name, ver string) (*Metadata, error) {
	if m, err := o.Extra.GetMetadata(ctx, name, ver); err == nil {
		return m, nil
	}
	return o.Primary.GetMetadata(ctx, name, ver)
}

var _ Gateway = (*Overlay)(nil)
