package version

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const wipSuffix = "-wip"

var (
	// ErrNotFound is returned when no candidate satisfies a version spec.
	ErrNotFound = errors.New("no matching version")

	// ErrInvalidSpec is returned when a range spec cannot be parsed.
	ErrInvalidSpec = errors.New("invalid version spec")
)

// Selection is the outcome of [Selector.Select].
type Selection struct {
	Version string // concrete version, exactly as listed in the candidates
	APIKey  string // derived from Version

	// Substituted is set when the range resolved to a release that does not
	// exist and its "-wip" build was picked instead. Nominal holds the release
	// the range actually matched.
	Substituted bool
	Nominal     string
}

// Selector picks one concrete version for a version spec.
// The zero value rejects WIP substitution; use [NewSelector] for the default policy.
type Selector struct {
	// AllowWIPFallback lets a range that no release satisfies resolve to a
	// "<version>-wip" build whose release part satisfies it.
	AllowWIPFallback bool
}

// NewSelector returns a Selector with WIP fallback enabled.
func NewSelector() *Selector {
	return &Selector{AllowWIPFallback: true}
}

// IsFixed reports whether spec names one exact version: no range operator,
// not "latest"/"x", and no wildcard segment.
func IsFixed(spec string) bool {
	s := strings.TrimSpace(spec)
	switch s {
	case "", "latest", "x", "X":
		return false
	}
	if strings.ContainsAny(s, "><*^~| \t") {
		return false
	}
	core, _, _ := strings.Cut(s, "-")
	for _, seg := range strings.Split(core, ".") {
		if seg == "x" || seg == "X" {
			return false
		}
	}
	return true
}

// NormalizeRange maps the "latest"/"x"/empty aliases to "*".
func NormalizeRange(spec string) string {
	s := strings.TrimSpace(spec)
	switch s {
	case "", "latest", "x", "X":
		return "*"
	}
	return s
}

// Select picks the version satisfying spec among candidates. Candidates do
// not need to be sorted; the highest match by [SortKey] wins.
func (s *Selector) Select(spec string, candidates []string) (Selection, error) {
	if IsFixed(spec) {
		v := strings.TrimSpace(spec)
		if !slices.Contains(candidates, v) {
			return Selection{}, fmt.Errorf("%w: %s", ErrNotFound, v)
		}
		return selection(v, false, "")
	}

	c, err := semver.NewConstraint(NormalizeRange(spec))
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}

	if best, ok := highest(candidates, func(cand string) bool {
		v, err := semver.NewVersion(cand)
		return err == nil && c.Check(v)
	}); ok {
		return selection(best, false, "")
	}

	if s.AllowWIPFallback {
		if best, ok := highest(candidates, func(cand string) bool {
			base, isWIP := strings.CutSuffix(cand, wipSuffix)
			if !isWIP {
				return false
			}
			v, err := semver.NewVersion(base)
			return err == nil && c.Check(v)
		}); ok {
			return selection(best, true, strings.TrimSuffix(best, wipSuffix))
		}
	}

	return Selection{}, fmt.Errorf("%w: %s", ErrNotFound, spec)
}

func selection(v string, substituted bool, nominal string) (Selection, error) {
	key, err := APIKey(v)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Version: v, APIKey: key, Substituted: substituted, Nominal: nominal}, nil
}

// highest returns the matching candidate with the greatest sort key. Ties and
// candidates the codec cannot order fall back to list order.
func highest(candidates []string, match func(string) bool) (string, bool) {
	var (
		best    string
		bestKey int64
		found   bool
	)
	for _, cand := range candidates {
		if !match(cand) {
			continue
		}
		key, err := SortKey(cand)
		if err != nil {
			if !found {
				best, found = cand, true
				bestKey = -1 << 62
			}
			continue
		}
		if !found || key > bestKey {
			best, bestKey, found = cand, key, true
		}
	}
	return best, found
}
