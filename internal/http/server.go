// Package http exposes the JSON API over the stores, the analytics
// engine, and the transfer codecs. Handlers stay thin: decode, call
// the component, map the error, encode.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tally/internal/bulk"
	"tally/internal/cache"
	"tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
	"tally/internal/store"
)

type Server struct {
	http.Server

	store    *store.Store
	expenses *services.ExpenseService
	bulk     *bulk.Coordinator
	logger   *log.Logger

	// Rendered analytics responses, keyed by request path and query.
	// Dropped wholesale on any mutation.
	respCache *cache.LRUCache[[]byte]

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, st *store.Store, expenses *services.ExpenseService, coordinator *bulk.Coordinator, logger *log.Logger) *Server {
	s := &Server{
		store:     st,
		expenses:  expenses,
		bulk:      coordinator,
		logger:    logger.WithComponent(log.ComponentHTTP),
		respCache: cache.NewLRUCache[[]byte](200, 5*time.Minute),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/", s.handleBudgetByID)
	mux.HandleFunc("/api/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/categories/", s.handleCategoryByID)
	mux.HandleFunc("/api/templates", s.handleTemplates)
	mux.HandleFunc("/api/templates/", s.handleTemplateByID)
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/api/rules/", s.handleRuleByID)
	mux.HandleFunc("/api/recurring", s.handleRecurring)
	mux.HandleFunc("/api/recurring/", s.handleRecurringByID)

	mux.HandleFunc("/api/import/csv", s.handleImportCSV)
	mux.HandleFunc("/api/export/csv", s.handleExportCSV)
	mux.HandleFunc("/api/export/json", s.handleExportJSON)
	mux.HandleFunc("/api/backup", s.handleBackup)
	mux.HandleFunc("/api/restore", s.handleRestore)

	mux.HandleFunc("/api/bulk/delete", s.handleBulkDelete)
	mux.HandleFunc("/api/bulk/edit", s.handleBulkEdit)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// withMiddleware wraps the mux in the standard chain: security headers
// outermost, then request tracing, then suspicious-request logging and
// per-IP rate limiting on mutating methods.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)(next)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.UserAgent())
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})

	traced := trace.NewMiddleware(s.detector.ExtractClientIP, s.logger).Middleware(inner)
	return security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(traced)
}

// RunCacheJanitor sweeps expired response cache entries on the given
// interval until the context ends.
func (s *Server) RunCacheJanitor(ctx context.Context, interval time.Duration) error {
	janitor := cache.NewManager(s.logger)
	janitor.Register(s.respCache)
	return janitor.Run(ctx, interval)
}

// Shutdown stops the rate limiter's cleanup goroutine and drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
