package errors

import (
	"strings"
	"testing"
)

func TestValidateNpmPackageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"rxjs", false},
		{"lodash.merge", false},
		{"@youwol/http-clients", false},
		{"@youwol/flux-view", false},
		{"~tilde", false},

		{"", true},
		{strings.Repeat("a", 215), true},
		{"RxJS", true},
		{".hidden", true},
		{"with space", true},
		{"@youwol/../etc", true},
		{"a//b", true},
		{"a\\b", true},
		{"rxjs\n", true},
		{"rxjs#7", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateNpmPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNpmPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("code = %s, want %s", GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateLibraryKey(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"rxjs#7", false},
		{"@youwol/http-clients#3", false},
		{"lib#0.3", false},
		{"lib#12", false},

		{"rxjs", true},
		{"rxjs#", true},
		{"#7", true},
		{"rxjs#v7", true},
		{"rxjs#7.1", true},
		{"rxjs#07", true},
		{"Rxjs#7", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLibraryKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLibraryKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateVersionSpec(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"7.5.6", false},
		{"^3.0.0", false},
		{"latest", false},
		{">=1.0.0 <2.0.0", false},
		{"1.0.0-wip", false},

		{"", true},
		{"   ", true},
		{"^1.0.0\x01", true},
		{strings.Repeat("1", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateVersionSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateVersionSpec(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidVersion) {
				t.Errorf("code = %s, want %s", GetCode(err), ErrCodeInvalidVersion)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bundle", "dist/@youwol/http-clients.js", false},
		{"root file", "rxjs.min.js", false},
		{"dotted segment", "dist/..bundle.js", false},
		{"current dir", "./dist/lib.js", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"absolute", "/dist/lib.js", true},
		{"parent", "../lib.js", true},
		{"nested parent", "dist/../../lib.js", true},
		{"backslash", "dist\\lib.js", true},
		{"query", "dist/lib.js?v=2", true},
		{"fragment", "dist/lib.js#main", true},
		{"control char", "dist/\x00lib.js", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("code = %s, want %s", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{"https://cdn.example.com/api", "http://localhost:8080"} {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
	for _, u := range []string{"", "ftp://cdn.example.com", "cdn.example.com", "file:///tmp/index.json"} {
		err := ValidateURL(u)
		if !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateURL(%q) = %v, want %s", u, err, ErrCodeInvalidConfig)
		}
	}
}
