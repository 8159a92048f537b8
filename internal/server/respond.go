package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zbiljic/blueprint/pkg/llm"
)

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func newAPIError(err error) apiError {
	e := apiError{Error: err.Error(), Kind: string(llm.Classify(err))}

	var verr *llm.ValidationError
	if errors.As(err, &verr) {
		e.Field = verr.Field
	}
	if llm.IsTimeout(err) {
		e.Kind = "timeout"
	}

	return e
}

// statusFor maps a generation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case llm.IsInputValidation(err):
		return http.StatusBadRequest
	case llm.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrValidation), errors.Is(err, llm.ErrEmptyReply):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, newAPIError(err))
}
