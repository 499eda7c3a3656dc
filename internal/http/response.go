package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tally/internal/core"
	"tally/internal/store"
	"tally/internal/transfer"
)

// errorBody is the JSON envelope for every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validationErrs are the domain errors reported as 422 rather than 500.
var validationErrs = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrDescriptionTooLong,
	core.ErrEmptyCategory,
	core.ErrInvalidPeriod,
	core.ErrInvalidBudgetType,
	core.ErrInvalidPaymentMethod,
	core.ErrEmptyName,
	core.ErrDuplicateCategory,
}

func errorStatus(err error) int {
	var fe *transfer.FormatError
	if errors.As(err, &fe) {
		return http.StatusBadRequest
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err inside the error envelope with its mapped
// status, logging server faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// decodeJSON decodes the request body into v. Callers report a
// failure as 400; the body is request framing, not domain state.
func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// cachedJSON serves the response for r from the analytics cache,
// building and storing it on a miss.
func (s *Server) cachedJSON(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.Path + "?" + r.URL.RawQuery
	if body, ok := s.respCache.Get(key); ok {
		s.logger.DebugContext(r.Context(), "Analytics cache hit", "key", key)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	v, err := build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
