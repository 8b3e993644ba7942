package api

import (
	"context"
	"errors"
	"net/http"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/loading"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/resolver"
)

// ErrorBody is the JSON body of a failed request.
type ErrorBody struct {
	Code      cerrors.Code        `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"requestId,omitempty"`
	Failures  []FailureBody       `json:"failures,omitempty"`
	Unmet     map[string][]string `json:"unmet,omitempty"`
	Cycles    [][]string          `json:"cycles,omitempty"`
}

// FailureBody describes one failed query of a DEPENDENCIES_ERROR.
type FailureBody struct {
	Query   registry.Query `json:"query"`
	Kind    resolver.Kind  `json:"kind"`
	Chain   []string       `json:"chain"`
	Message string         `json:"message"`
}

// codeOf returns the code of err, classifying uncoded registry and context
// errors.
func codeOf(err error) cerrors.Code {
	if code := cerrors.GetCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return cerrors.ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return cerrors.ErrCodeResolutionFailure
	}
	return cerrors.ErrCodeInternal
}

// StatusCode maps an error code to an HTTP status.
func StatusCode(code cerrors.Code) int {
	if code.Invalid() {
		return http.StatusBadRequest
	}
	switch code {
	case cerrors.ErrCodeDependencies, cerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cerrors.ErrCodeCircularDependencies, cerrors.ErrCodeAPICollision:
		return http.StatusConflict
	case cerrors.ErrCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// statusOf returns the HTTP status of err. A dependency failure that the
// registry caused, rather than a missing package or version, is reported
// as 502.
func statusOf(err error, code cerrors.Code) int {
	var depErr *resolver.DependenciesError
	if code == cerrors.ErrCodeDependencies && errors.As(err, &depErr) {
		for _, f := range depErr.Failures {
			if f.Kind == resolver.KindResolutionFailure {
				return http.StatusBadGateway
			}
		}
	}
	return StatusCode(code)
}

func errorBody(err error) ErrorBody {
	body := ErrorBody{Code: codeOf(err), Message: cerrors.UserMessage(err)}

	var depErr *resolver.DependenciesError
	if errors.As(err, &depErr) {
		for _, f := range depErr.Failures {
			body.Failures = append(body.Failures, FailureBody{
				Query:   f.Query,
				Kind:    f.Kind,
				Chain:   f.Chain,
				Message: f.Message(),
			})
		}
	}

	var circ *loading.CircularDependenciesError
	if errors.As(err, &circ) {
		body.Unmet = circ.Unmet
		body.Cycles = circ.Cycles
	}
	return body
}
