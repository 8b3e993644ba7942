package resolver

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/version"
)

// Kind classifies a failed query.
type Kind string

const (
	// KindNotFound: the package, or a version matching the spec, does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindResolutionFailure: the registry failed for another reason.
	KindResolutionFailure Kind = "RESOLUTION_FAILURE"
)

// classify maps a registry or selector error to a [Kind].
func classify(err error) Kind {
	if errors.Is(err, registry.ErrNotFound) || errors.Is(err, version.ErrNotFound) {
		return KindNotFound
	}
	return KindResolutionFailure
}

// Failure describes one query that could not be resolved.
type Failure struct {
	Query registry.Query `json:"query"`
	Kind  Kind           `json:"kind"`
	// Chain lists the packages that led to the query, outermost first
	// ("app@1.0.0", "lib@2.1.0"). Empty for a requested root.
	Chain []string `json:"chain"`
	Err   error    `json:"-"`
}

// Path renders the chain ending in the failed query: "app@1.0.0 -> z@^9.0.0".
func (f Failure) Path() string {
	return strings.Join(append(append([]string{}, f.Chain...), f.Query.String()), " -> ")
}

// Message returns the underlying error text, for JSON consumers.
func (f Failure) Message() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return f.Err.Error()
}

// DependenciesError aggregates every failure of one resolution round.
type DependenciesError struct {
	Failures []Failure
}

// Error implements the error interface.
func (e *DependenciesError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("unresolved dependency %s: %v", f.Path(), f.Err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d unresolved dependencies:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.Path(), f.Err)
	}
	return b.String()
}

// Code implements errors.Coder.
func (e *DependenciesError) Code() cerrors.Code { return cerrors.ErrCodeDependencies }

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e *DependenciesError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

var _ cerrors.Coder = (*DependenciesError)(nil)
