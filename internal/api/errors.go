package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
	"github.com/storytimeapp/storytime-server/internal/store"
)

// APIError is the error body every failed request carries. It
// implements huma.StatusError so the operation layer picks the status
// from the domain error rather than from its own defaults.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler replaces huma's error constructor with one that
// understands domain errors. Call it once, before registering routes.
func RegisterErrorHandler() {
	huma.NewError = newAPIError
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		// Store sentinels that escaped the service layer uncoded.
		if errors.Is(err, store.ErrBookNotFound) || errors.Is(err, store.ErrUserNotFound) {
			return &APIError{
				status:  http.StatusNotFound,
				Code:    string(domainerrors.CodeNotFound),
				Message: err.Error(),
			}
		}
	}

	return &APIError{status: status, Code: statusToCode(status), Message: message}
}

// statusToCode assigns codes to errors huma raises itself, mostly
// schema validation and routing failures.
func statusToCode(status int) string {
	var code domainerrors.Code
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = domainerrors.CodeValidation
	case http.StatusUnauthorized:
		code = domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		code = domainerrors.CodeForbidden
	case http.StatusNotFound:
		code = domainerrors.CodeNotFound
	case http.StatusConflict:
		code = domainerrors.CodeConflict
	default:
		code = domainerrors.CodeInternal
	}
	return string(code)
}
