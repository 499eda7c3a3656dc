package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Expenses.List(r.Context()))
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeJSON(r, &e); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	created, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respCache.Clear()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/expenses/")
	if id == "" || action != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		e, err := s.store.Expenses.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)

	case http.MethodPut, http.MethodPatch:
		var patch core.ExpensePatch
		if err := decodeJSON(r, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		updated, err := s.expenses.Update(r.Context(), id, patch)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respCache.Clear()
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.expenses.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.respCache.Clear()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, PUT, PATCH, DELETE")
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	result := s.bulk.Delete(r.Context(), req.IDs)
	s.respCache.Clear()
	writeJSON(w, http.StatusOK, result)
}

type bulkEditRequest struct {
	IDs   []string          `json:"ids"`
	Patch core.ExpensePatch `json:"patch"`
}

func (s *Server) handleBulkEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	var req bulkEditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	result := s.bulk.Edit(r.Context(), req.IDs, req.Patch)
	s.respCache.Clear()
	writeJSON(w, http.StatusOK, result)
}
