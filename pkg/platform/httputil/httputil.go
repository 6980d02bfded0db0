// Package httputil centralizes JSON response writing for the HTTP surface.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "avviso/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError renders a domain error as JSON. Internal errors omit the
// description so operational details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		if de, ok := err.(*dErrors.Error); ok {
			body.ErrorDescription = de.Message
		}
	}
	WriteJSON(w, code.HTTPStatus(), body)
}
