package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/matzehuels/psdatlas/pkg/errors"
	"github.com/matzehuels/psdatlas/pkg/observability"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBinary(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

// writeErr maps err onto a status code and writes it as an error body.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
			"request body exceeds the limit")
		return
	case apperr.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, string(apperr.GetCode(err)), apperr.UserMessage(err))
		return
	case apperr.IsNotFound(err):
		writeError(w, r, http.StatusNotFound, string(apperr.GetCode(err)), apperr.UserMessage(err))
		return
	}

	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, r, http.StatusInternalServerError, string(apperr.ErrCodeInternal), "internal error")
}

// decodeJSON reads a single JSON object from the request body.
// Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || apperr.GetCode(err) != "" {
			return err
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "malformed request body")
	}
	if dec.More() {
		return apperr.New(apperr.ErrCodeInvalidInput, "request body must hold a single JSON object")
	}
	return nil
}
