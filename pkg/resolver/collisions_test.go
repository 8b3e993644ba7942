package resolver

import (
	"reflect"
	"testing"
)

func TestCheckCollisions(t *testing.T) {
	tests := []struct {
		name string
		in   []*Resolved
		want []Collision
	}{
		{
			name: "none",
			in: []*Resolved{
				{Name: "lib", Query: "^2.0.0", Version: "2.1.0", APIKey: "2"},
				{Name: "lib", Query: "2.1.0", Version: "2.1.0", APIKey: "2"},
			},
		},
		{
			name: "different api keys do not collide",
			in: []*Resolved{
				{Name: "lib", Query: "^1.0.0", Version: "1.9.0", APIKey: "1"},
				{Name: "lib", Query: "^2.0.0", Version: "2.1.0", APIKey: "2"},
			},
		},
		{
			name: "different names do not collide",
			in: []*Resolved{
				{Name: "a", Query: "^1.0.0", Version: "1.0.0", APIKey: "1"},
				{Name: "b", Query: "^1.0.0", Version: "1.2.0", APIKey: "1"},
			},
		},
		{
			name: "same key, two versions",
			in: []*Resolved{
				{Name: "lib", Query: "2.0.0", Version: "2.0.0", APIKey: "2"},
				{Name: "lib", Query: "^2.0.0", Version: "2.1.0", APIKey: "2"},
				{Name: "flux", Query: "0.3.0", Version: "0.3.0", APIKey: "0.3"},
				{Name: "flux", Query: "~0.3.0", Version: "0.3.4", APIKey: "0.3"},
			},
			want: []Collision{
				{Name: "flux", APIKey: "0.3", Versions: []string{"0.3.4", "0.3.0"}},
				{Name: "lib", APIKey: "2", Versions: []string{"2.1.0", "2.0.0"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckCollisions(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckCollisions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollisionString(t *testing.T) {
	c := Collision{Name: "lib", APIKey: "2", Versions: []string{"2.1.0", "2.0.0"}}
	want := "API collision: lib (API 2) resolved to 2.1.0, 2.0.0"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
