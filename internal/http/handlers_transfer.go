package http

import (
	"io"
	"net/http"

	"tally/internal/transfer"
)

// importBodyLimit caps import and restore payloads.
const importBodyLimit = 10 << 20

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, importBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	rows, err := transfer.ParseCSV(string(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := s.bulk.ImportRows(r.Context(), rows)
	s.respCache.Clear()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	data := transfer.ExportCSV(s.store.Expenses.List(r.Context()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	data, err := transfer.ExportJSON(s.store.Expenses.List(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	data, err := transfer.EncodeBackup(s.store.Snapshot(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tally-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// restoreResponse reports what the restored snapshot contained.
type restoreResponse struct {
	Expenses   int `json:"expenses"`
	Budgets    int `json:"budgets"`
	Categories int `json:"categories"`
	Templates  int `json:"templates"`
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, importBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	b, err := transfer.DecodeBackup(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.store.Restore(r.Context(), b)
	s.respCache.Clear()
	writeJSON(w, http.StatusOK, restoreResponse{
		Expenses:   len(b.Expenses),
		Budgets:    len(b.Budgets),
		Categories: len(b.CustomCategories),
		Templates:  len(b.BudgetTemplates),
	})
}
