package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/registry"
)

// ParseQueries parses "name@spec" arguments. A missing spec means "latest".
func ParseQueries(args []string) ([]registry.Query, error) {
	queries := make([]registry.Query, 0, len(args))
	for _, arg := range args {
		q, err := registry.ParseQuery(arg)
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse %q", arg)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// ParseUsing parses "name=version" pins.
func ParseUsing(pins []string) (map[string]string, error) {
	if len(pins) == 0 {
		return nil, nil
	}
	using := make(map[string]string, len(pins))
	for _, pin := range pins {
		name, ver, ok := strings.Cut(pin, "=")
		name, ver = strings.TrimSpace(name), strings.TrimSpace(ver)
		if !ok || name == "" || ver == "" {
			return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "invalid pin %q: want name=version", pin)
		}
		using[name] = ver
	}
	return using, nil
}

// LoadMetadata reads a JSON array of package metadata records, the format
// of both extra indexes and registry index files.
func LoadMetadata(path string) ([]*registry.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []*registry.Metadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return records, nil
}
