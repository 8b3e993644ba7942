package version

import (
	"errors"
	"slices"
	"testing"
)

func TestSortKey(t *testing.T) {
	tests := []struct {
		version string
		want    int64
	}{
		{"0.0.0", 0},
		{"1.2.3", 10_020_030},
		{"1.2.3-wip", 10_020_025},
		{"1.2.3-alpha", 10_020_026},
		{"1.2.3-alpha-wip", 10_020_027},
		{"1.2.3-beta", 10_020_028},
		{"1.2.3-beta-wip", 10_020_029},
		{"1.2.3-next", 10_020_031},
		{"12.999.999", 129_999_990},
	}

	for _, tt := range tests {
		got, err := SortKey(tt.version)
		if err != nil {
			t.Fatalf("SortKey(%q) error: %v", tt.version, err)
		}
		if got != tt.want {
			t.Errorf("SortKey(%q) = %d, want %d", tt.version, got, tt.want)
		}
	}
}

func TestSortKeyOrdering(t *testing.T) {
	// each entry must sort strictly below the next one
	ordered := []string{
		"0.9.9",
		"1.0.0-wip",
		"1.0.0-alpha",
		"1.0.0-beta-wip",
		"1.0.0",
		"1.0.0-next",
		"1.0.1-wip",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}
	for i := 1; i < len(ordered); i++ {
		lo, _ := SortKey(ordered[i-1])
		hi, _ := SortKey(ordered[i])
		if lo >= hi {
			t.Errorf("SortKey(%q) = %d should be below SortKey(%q) = %d", ordered[i-1], lo, ordered[i], hi)
		}
	}
}

func TestFromSortKeyRoundTrip(t *testing.T) {
	versions := []string{
		"0.0.0", "0.0.0-wip", "0.1.0", "0.1.5-beta", "1.0.0-next",
		"3.14.15", "7.0.0-alpha-wip", "99.999.999-beta-wip",
	}
	for _, v := range versions {
		key, err := SortKey(v)
		if err != nil {
			t.Fatalf("SortKey(%q) error: %v", v, err)
		}
		got, err := FromSortKey(key)
		if err != nil {
			t.Fatalf("FromSortKey(%d) error: %v", key, err)
		}
		if got != v {
			t.Errorf("FromSortKey(SortKey(%q)) = %q", v, got)
		}
	}
}

func TestFromSortKeyInvalid(t *testing.T) {
	for _, key := range []int64{2, 3, 4, 10_000_003, -6} {
		if _, err := FromSortKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("FromSortKey(%d) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	invalid := []string{
		"", "1", "1.2", "1.2.3.4", "a.b.c", "1.2.x", "-1.2.3", "+1.2.3",
		"1.1000.0", "1.0.1000", "1.0.0-rc1", "1.0.0-",
	}
	for _, v := range invalid {
		if _, err := Parse(v); !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidVersion", v, err)
		}
	}
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.2.3", "1"},
		{"12.0.0-wip", "12"},
		{"0.3.1", "0.3"},
		{"0.0.7", "0.0"},
		{"2.0.0-rc.1", "2"},
	}
	for _, tt := range tests {
		got, err := APIKey(tt.version)
		if err != nil {
			t.Fatalf("APIKey(%q) error: %v", tt.version, err)
		}
		if got != tt.want {
			t.Errorf("APIKey(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}

	if _, err := APIKey("latest"); err == nil {
		t.Error("APIKey(\"latest\") should fail")
	}
}

func TestSortDescending(t *testing.T) {
	in := []string{"1.0.0", "garbage", "1.3.0-wip", "2.0.0", "1.2.0", "1.3.0"}
	got := SortDescending(in)
	want := []string{"2.0.0", "1.3.0", "1.3.0-wip", "1.2.0", "1.0.0", "garbage"}
	if !slices.Equal(got, want) {
		t.Errorf("SortDescending() = %v, want %v", got, want)
	}
	if in[0] != "1.0.0" {
		t.Error("SortDescending() must not modify its input")
	}
}

func TestLatest(t *testing.T) {
	if v, ok := Latest([]string{"0.1.0", "0.2.0-next", "0.2.0"}); !ok || v != "0.2.0-next" {
		t.Errorf("Latest() = %q, %v; want 0.2.0-next, true", v, ok)
	}
	if _, ok := Latest([]string{"nope"}); ok {
		t.Error("Latest() should report false without parseable versions")
	}
	if _, ok := Latest(nil); ok {
		t.Error("Latest(nil) should report false")
	}
}
