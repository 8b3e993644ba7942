package loading

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
)

// CircularDependenciesError reports packages that could not be scheduled.
type CircularDependenciesError struct {
	// Unmet maps every stuck package (library key) to the library keys of
	// the dependencies it is still waiting on, sorted.
	Unmet map[string][]string

	// Cycles lists the dependency cycles among the stuck packages. Empty
	// when packages are only stuck behind unresolved dependencies.
	Cycles [][]string
}

// Error implements the error interface.
func (e *CircularDependenciesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circular dependencies: %d packages cannot be scheduled", len(e.Unmet))
	for _, key := range slices.Sorted(maps.Keys(e.Unmet)) {
		fmt.Fprintf(&b, "\n  %s waits on %s", key, strings.Join(e.Unmet[key], ", "))
	}
	for _, c := range e.Cycles {
		fmt.Fprintf(&b, "\n  cycle: %s -> %s", strings.Join(c, " -> "), c[0])
	}
	return b.String()
}

// Code implements errors.Coder.
func (e *CircularDependenciesError) Code() cerrors.Code { return cerrors.ErrCodeCircularDependencies }

var _ cerrors.Coder = (*CircularDependenciesError)(nil)
