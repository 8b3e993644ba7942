package version

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Tags lists the allowed prerelease tags, most unstable first.
var Tags = []string{"wip", "alpha", "alpha-wip", "beta", "beta-wip"}

// TagNext is the legacy tag that ranks above the release it decorates.
const TagNext = "next"

const (
	majorWeight = 10_000_000
	minorWeight = 10_000
	patchWeight = 10

	maxMinor = majorWeight / minorWeight
	maxPatch = minorWeight / patchWeight
)

var (
	// ErrInvalidVersion is returned when a string is not a major.minor.patch[-tag] version.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidKey is returned by [FromSortKey] for keys no version encodes to.
	ErrInvalidKey = errors.New("invalid sort key")
)

// Version is a parsed major.minor.patch[-tag] version.
type Version struct {
	Major int
	Minor int
	Patch int
	Tag   string // "" for releases, one of Tags, or TagNext
}

// Parse parses a version string. The prerelease tag, if any, must be one of
// [Tags] or [TagNext]; minor and patch must stay below 1000 so the sort key
// remains unambiguous.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	core, tag, tagged := strings.Cut(raw, "-")
	nums, err := parseCore(core)
	if err != nil || (tagged && tag == "") {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	if nums[1] >= maxMinor || nums[2] >= maxPatch {
		return Version{}, fmt.Errorf("%w: %q: minor and patch must be below %d", ErrInvalidVersion, s, maxPatch)
	}
	if tag != "" && tag != TagNext && !slices.Contains(Tags, tag) {
		return Version{}, fmt.Errorf("%w: %q: unknown prerelease tag %q", ErrInvalidVersion, s, tag)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Tag: tag}, nil
}

// String formats v back to its canonical string form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Tag != "" {
		s += "-" + v.Tag
	}
	return s
}

// Key returns the integer sort key of v.
func (v Version) Key() int64 {
	return int64(v.Major)*majorWeight + int64(v.Minor)*minorWeight + int64(v.Patch)*patchWeight + int64(v.delta())
}

// APIKey returns the runtime compatibility key of v.
func (v Version) APIKey() string {
	return apiKey(v.Major, v.Minor)
}

func (v Version) delta() int {
	switch v.Tag {
	case "":
		return 0
	case TagNext:
		return 1
	}
	return -(len(Tags) - slices.Index(Tags, v.Tag))
}

// SortKey returns the integer sort key of a version string.
func SortKey(s string) (int64, error) {
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return v.Key(), nil
}

// FromSortKey converts a sort key back to the version string it encodes.
func FromSortKey(key int64) (string, error) {
	rem := ((key % patchWeight) + patchWeight) % patchWeight
	base := key - rem

	var tag string
	switch {
	case rem == 0:
	case rem == 1:
		tag = TagNext
	case rem >= patchWeight-int64(len(Tags)):
		delta := rem - patchWeight
		tag = Tags[int64(len(Tags))+delta]
		base += patchWeight
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	if base < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}

	v := Version{
		Major: int(base / majorWeight),
		Minor: int(base % majorWeight / minorWeight),
		Patch: int(base % minorWeight / patchWeight),
		Tag:   tag,
	}
	return v.String(), nil
}

// APIKey returns the API key of a version string: "<major>" when major > 0,
// otherwise "0.<minor>". Only the numeric core is inspected, so versions with
// tags the codec does not know still get a key.
func APIKey(s string) (string, error) {
	core, _, _ := strings.Cut(strings.TrimSpace(s), "-")
	nums, err := parseCore(core)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return apiKey(nums[0], nums[1]), nil
}

func apiKey(major, minor int) string {
	if major > 0 {
		return strconv.Itoa(major)
	}
	return "0." + strconv.Itoa(minor)
}

// SortDescending returns a copy of versions ordered from most to least recent.
// Strings that do not parse keep their relative order at the end.
func SortDescending(versions []string) []string {
	type keyed struct {
		v   string
		key int64
		ok  bool
	}
	items := make([]keyed, len(versions))
	for i, v := range versions {
		k, err := SortKey(v)
		items[i] = keyed{v: v, key: k, ok: err == nil}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return cmp.Compare(b.key, a.key)
	})
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.v
	}
	return out
}

// Latest returns the most recent parseable version, or false if there is none.
func Latest(versions []string) (string, bool) {
	sorted := SortDescending(versions)
	if len(sorted) == 0 {
		return "", false
	}
	if _, err := SortKey(sorted[0]); err != nil {
		return "", false
	}
	return sorted[0], true
}

func parseCore(core string) ([3]int, error) {
	var nums [3]int
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return nums, ErrInvalidVersion
	}
	for i, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return nums, ErrInvalidVersion
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nums, err
		}
		nums[i] = n
	}
	return nums, nil
}
