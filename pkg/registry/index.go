package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/matzehuels/cdnlock/pkg/version"
)

// Index is an in-memory [Gateway].
type Index struct {
	mu       sync.RWMutex
	packages map[string]map[string]*Metadata // name -> version -> metadata
}

// NewIndex builds an Index from metadata records. Records are normalized;
// a later record for the same name and version replaces an earlier one.
func NewIndex(records ...*Metadata) (*Index, error) {
	idx := &Index{packages: make(map[string]map[string]*Metadata)}
	for _, m := range records {
		if err := idx.Add(m); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// LoadIndex reads a JSON array of metadata records from path.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []*Metadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return NewIndex(records...)
}

// Add inserts or replaces a record.
func (idx *Index) Add(m *Metadata) error {
	if m == nil {
		return fmt.Errorf("nil metadata record")
	}
	rec := *m
	if err := rec.Normalize(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.packages[rec.Name] == nil {
		idx.packages[rec.Name] = make(map[string]*Metadata)
	}
	idx.packages[rec.Name][rec.Version] = &rec
	return nil
}

// Len returns the number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, versions := range idx.packages {
		n += len(versions)
	}
	return n
}

// All returns every record ordered by name, then most recent version first.
func (idx *Index) All() []*Metadata {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*Metadata
	for _, name := range slices.Sorted(maps.Keys(idx.packages)) {
		for _, v := range version.SortDescending(slices.Collect(maps.Keys(idx.packages[name]))) {
			out = append(out, idx.packages[name][v])
		}
	}
	return out
}

// ListVersions implements [Gateway].
func (idx *Index) ListVersions(_ context.Context, name string) (*VersionList, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	byVersion := idx.packages[name]
	if len(byVersion) == 0 {
		return nil, fmt.Errorf("%w: package %s", ErrNotFound, name)
	}
	list := &VersionList{
		Name:         name,
		Versions:     version.SortDescending(slices.Collect(maps.Keys(byVersion))),
		Fingerprints: make(map[string]string, len(byVersion)),
	}
	for v, m := range byVersion {
		if m.Fingerprint != "" {
			list.Fingerprints[v] = m.Fingerprint
		}
	}
	return list, nil
}

// GetMetadata implements [Gateway]. The returned record is a copy.
func (idx *Index) GetMetadata(_ context.Context, name, ver string) (*Metadata, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.packages[name][ver]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, name, ver)
	}
	out := *m
	out.Dependencies = slices.Clone(m.Dependencies)
	return &out, nil
}

var _ Gateway = (*Index)(nil)
