package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the response envelope version sent as "v".
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response and plain errors.
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
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps response bodies in the versioned envelope.
// Status codes of 400 and above are treated as errors.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if isErrorStatus(status) {
		switch e := v.(type) {
		case *APIError:
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Error:   e.Message,
				Code:    e.Code,
				Message: e.Message,
				Details: e.Details,
			}, nil
		case error:
			return APIEnvelope{Version: EnvelopeVersion, Error: e.Error()}, nil
		}
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

func isErrorStatus(status string) bool {
	return len(status) == 3 && (status[0] == '4' || status[0] == '5')
}
