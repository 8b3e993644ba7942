package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(ErrCodeInvalidPackage, "invalid package name: %q", "Rxjs"),
			want: `INVALID_PACKAGE: invalid package name: "Rxjs"`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeNetwork, errors.New("connection refused"), "fetch %s", "rxjs"),
			want: "NETWORK_ERROR: fetch rxjs: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("registry unreachable")
	err := Wrap(ErrCodeNetwork, cause, "open registry store")

	if err.Code() != ErrCodeNetwork {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeNetwork)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

// collision mimics a typed resolution error that carries its own code.
type collision struct{ key string }

func (c collision) Error() string { return "two versions claim " + c.key }
func (collision) Code() Code      { return ErrCodeAPICollision }

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidVersion, "version spec cannot be empty"), ErrCodeInvalidVersion},
		{"outermost wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidInput, "inner"), "registry.url"), ErrCodeInvalidConfig},
		{"fmt wrapped", fmt.Errorf("resolve: %w", New(ErrCodeNotFound, "rxjs")), ErrCodeNotFound},
		{"coder", fmt.Errorf("pipeline: %w", collision{"rxjs#7"}), ErrCodeAPICollision},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %s) = false, want true", tt.want)
			}
		})
	}
}

func TestCodeInvalid(t *testing.T) {
	invalid := []Code{ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidVersion, ErrCodeInvalidPath, ErrCodeInvalidConfig}
	for _, c := range invalid {
		if !c.Invalid() {
			t.Errorf("%s.Invalid() = false, want true", c)
		}
	}
	other := []Code{ErrCodeNotFound, ErrCodeResolutionFailure, ErrCodeDependencies, ErrCodeCircularDependencies,
		ErrCodeAPICollision, ErrCodeNetwork, ErrCodeInternal, ""}
	for _, c := range other {
		if c.Invalid() {
			t.Errorf("%q.Invalid() = true, want false", c)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "no libraries requested"), "no libraries requested"},
		{"drops cause", Wrap(ErrCodeNetwork, errors.New("dial tcp"), "open cache"), "open cache"},
		{"fmt wrapped", fmt.Errorf("initialize runner: %w", New(ErrCodeInvalidConfig, "no registry configured")), "no registry configured"},
		{"plain", errors.New("disk full"), "disk full"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
