package http

import (
	"net/http"

	"tally/internal/core"
)

// categoriesResponse pairs the fixed standard set with the
// user-defined categories.
type categoriesResponse struct {
	Standard []string              `json:"standard"`
	Custom   []core.CustomCategory `json:"custom"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, categoriesResponse{
			Standard: core.StandardCategories(),
			Custom:   s.store.Categories.List(r.Context()),
		})
	case http.MethodPost:
		var c core.CustomCategory
		if err := decodeJSON(r, &c); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		created, err := s.store.Categories.Add(r.Context(), c)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/categories/")
	if id == "" || action != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	if err := s.store.Categories.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Templates.List(r.Context()))
	case http.MethodPost:
		var t core.BudgetTemplate
		if err := decodeJSON(r, &t); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		created, err := s.store.Templates.Add(r.Context(), t)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/templates/")

	switch {
	case id == "":
		http.NotFound(w, r)

	case action == "apply":
		s.applyTemplate(w, r, id)

	case action != "":
		http.NotFound(w, r)

	case r.Method == http.MethodGet:
		t, err := s.store.Templates.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case r.Method == http.MethodDelete:
		if err := s.store.Templates.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}

// applyTemplate instantiates every budget in the template.
func (s *Server) applyTemplate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	tpl, err := s.store.Templates.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := s.store.Budgets.AddBatch(r.Context(), s.store.Templates.Budgets(tpl))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respCache.Clear()
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Rules.List(r.Context()))
	case http.MethodPost:
		var rule core.CategoryRule
		if err := decodeJSON(r, &rule); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		created, err := s.store.Rules.Add(r.Context(), rule)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleRuleByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/rules/")
	if id == "" || action != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	if err := s.store.Rules.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Recurring.List(r.Context()))
	case http.MethodPost:
		var def core.RecurringExpense
		if err := decodeJSON(r, &def); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		created, err := s.store.Recurring.Add(r.Context(), def)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleRecurringByID(w http.ResponseWriter, r *http.Request) {
	id, action := splitIDAction(r.URL.Path, "/api/recurring/")
	if id == "" || action != "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}
	if err := s.store.Recurring.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
