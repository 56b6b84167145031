package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comodofi/perps/market"
)

// sessionHeader carries the caller's session ID; the server issues one on
// the first order if the header is absent.
const sessionHeader = "X-Session-ID"

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps core error kinds onto HTTP status codes. Unrecognized
// errors are treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidOrder), errors.Is(err, market.ErrBadConfig):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrInsufficientBalance):
		return http.StatusConflict
	case errors.Is(err, market.ErrUnknownPosition), errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrBadSource):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
