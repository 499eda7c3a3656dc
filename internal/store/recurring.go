package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// Recurring is the recurring expense definition collection.
type Recurring struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.RecurringExpense
}

func NewRecurring(kv storage.KV, logger *log.Logger) *Recurring {
	return &Recurring{kv: kv, logger: logger}
}

func (s *Recurring) Load(ctx context.Context) {
	items := loadList[core.RecurringExpense](ctx, s.kv, storage.KeyRecurring, s.logger)
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Recurring) List(ctx context.Context) []core.RecurringExpense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringExpense, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Recurring) Add(ctx context.Context, r core.RecurringExpense) (core.RecurringExpense, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringExpense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.items = append(s.items, r)
	flushList(ctx, s.kv, storage.KeyRecurring, s.items, s.logger)
	return r, nil
}

// MarkRun records the day a definition last materialized an expense.
func (s *Recurring) MarkRun(ctx context.Context, id string, day core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].LastRun = day
			flushList(ctx, s.kv, storage.KeyRecurring, s.items, s.logger)
			return nil
		}
	}
	return notFound("recurring expense", id)
}

func (s *Recurring) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyRecurring, s.items, s.logger)
			return nil
		}
	}
	return notFound("recurring expense", id)
}
