package http

import (
	"net/http"

	"tally/internal/analytics"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	ref, err := refTime(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	days, err := windowDays(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	s.cachedJSON(w, r, func() (any, error) {
		return analytics.ComputeSpendingAnalytics(s.store.Expenses.List(r.Context()), days, ref), nil
	})
}
