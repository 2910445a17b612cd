package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/parsererror"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *parsererror.ValidationError
		formatErr     *parsererror.InvalidFormatError
		duplicateErr  *parsererror.DuplicateReportError
		storageErr    *parsererror.StorageError
	)

	body := errorBody{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body.Field = validationErr.Field
	case errors.As(err, &formatErr):
		status = http.StatusBadRequest
	case errors.As(err, &duplicateErr):
		status = http.StatusConflict
	case parsererror.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &storageErr):
		status = http.StatusServiceUnavailable
		s.logger.Error("Storage failure while serving request",
			logging.F(logging.FieldOperation, storageErr.Op),
			logging.F(logging.FieldError, storageErr.Err))
	default:
		s.logger.WithError(err).Error("Request failed")
	}

	s.writeJSON(w, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, &parsererror.ValidationError{Field: "body", Reason: err.Error()})
		return false
	}
	return true
}
