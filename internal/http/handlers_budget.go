package http

import (
	"net/http"

	"tally/internal/analytics"
	"tally/internal/core"
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Budgets.List(r.Context()))
	case http.MethodPost:
		var b core.Budget
		if err := decodeJSON(r, &b); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		created, err := s.store.Budgets.Add(r.Context(), b)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respCache.Clear()
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/budgets/")

	// /api/budgets/status is the all-budget rollup, not an id.
	if id == "status" && action == "" {
		s.handleAllBudgetStatuses(w, r)
		return
	}

	switch {
	case id == "":
		http.NotFound(w, r)

	case action == "status":
		s.handleBudgetStatus(w, r, id)

	case action != "":
		http.NotFound(w, r)

	case r.Method == http.MethodGet:
		b, err := s.store.Budgets.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)

	case r.Method == http.MethodDelete:
		if err := s.store.Budgets.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respCache.Clear()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	ref, err := refTime(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	s.cachedJSON(w, r, func() (any, error) {
		b, err := s.store.Budgets.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return analytics.ComputeBudgetStatus(b, s.store.Expenses.List(r.Context()), ref), nil
	})
}

func (s *Server) handleAllBudgetStatuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	ref, err := refTime(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	s.cachedJSON(w, r, func() (any, error) {
		budgets := s.store.Budgets.List(r.Context())
		expenses := s.store.Expenses.List(r.Context())
		return analytics.ComputeAllBudgetStatuses(budgets, expenses, ref), nil
	})
}
