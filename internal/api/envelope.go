package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the response envelope format version.
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response, and plain errors.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps coded errors.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in
// the versioned envelope. Errors produced by huma.NewError arrive here as
// *APIError.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch body := v.(type) {
	case *APIError:
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Message,
			Code:    body.Code,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: body.Error()}, nil
	}

	if code >= 400 {
		return APIEnvelope{Version: EnvelopeVersion, Data: v}, nil
	}
	return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
