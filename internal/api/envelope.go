package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the wire shape of the envelope changes.
// Clients check it before parsing the rest.
const envelopeVersion = 1

// Envelope is the versioned wrapper around every JSON response body.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// EnvelopeTransformer wraps all huma response bodies in the shared envelope
// so success and error responses have a single, predictable shape.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}

	if code >= 400 {
		return &Envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   v,
		}, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
