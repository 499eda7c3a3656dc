// Package store implements the entity stores on top of the keyed
// persistence layer. Each store hydrates an in-memory collection with
// Load and rewrites the full collection on every mutation.
//
// Reads never fail: a missing key, an unreadable backend, or a corrupt
// document all fall back to the collection's default, with the reason
// logged. Write failures are logged and absorbed too; the in-memory
// state stays authoritative for the life of the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tally/internal/log"
	"tally/internal/storage"
)

// ErrNotFound reports an id with no matching record. Bulk operations
// count it as a per-item failure instead of aborting.
var ErrNotFound = errors.New("not found")

// Store bundles the entity stores sharing one persistence backend.
type Store struct {
	Expenses   *Expenses
	Budgets    *Budgets
	Categories *Categories
	Templates  *Templates
	Recurring  *Recurring
	Rules      *Rules
}

func New(kv storage.KV, logger *log.Logger) *Store {
	logger = logger.WithComponent(log.ComponentStore)
	return &Store{
		Expenses:   NewExpenses(kv, logger),
		Budgets:    NewBudgets(kv, logger),
		Categories: NewCategories(kv, logger),
		Templates:  NewTemplates(kv, logger),
		Recurring:  NewRecurring(kv, logger),
		Rules:      NewRules(kv, logger),
	}
}

// Load hydrates every store.
func (s *Store) Load(ctx context.Context) {
	s.Expenses.Load(ctx)
	s.Budgets.Load(ctx)
	s.Categories.Load(ctx)
	s.Templates.Load(ctx)
	s.Recurring.Load(ctx)
	s.Rules.Load(ctx)
}

// loadList reads and decodes the JSON array stored under key. Any
// failure yields nil so the caller falls back to its default.
func loadList[T any](ctx context.Context, kv storage.KV, key string, logger *log.Logger) []T {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		logger.ErrorContext(ctx, "Storage read failed, falling back to defaults", "key", key, "error", err)
		return nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.WarnContext(ctx, "Stored document is corrupt, falling back to defaults", "key", key, "error", err)
		return nil
	}
	return items
}

// flushList rewrites the JSON array stored under key.
func flushList[T any](ctx context.Context, kv storage.KV, key string, items []T, logger *log.Logger) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		logger.ErrorContext(ctx, "Encoding collection failed", "key", key, "error", err)
		return
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		logger.ErrorContext(ctx, "Storage write failed, in-memory state retained", "key", key, "error", err)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
