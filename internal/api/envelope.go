package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// responseEnvelope is the versioned wrapper around every API response body.
// Clients parse the "v" field first and dispatch on it.
type responseEnvelope struct {
	V       int       `json:"v"`
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// envelopeVersion is bumped only on breaking changes to the wrapper itself.
const envelopeVersion = 1

// EnvelopeTransformer wraps all huma response bodies in the shared envelope.
// Errors produced by RegisterErrorHandler land in the error field; everything
// else is treated as payload data.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &responseEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr,
		}, nil
	}

	return &responseEnvelope{
		V:       envelopeVersion,
		Success: len(status) > 0 && (status[0] == '2' || status[0] == '3'),
		Data:    v,
	}, nil
}
