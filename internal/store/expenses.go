package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// Expenses is the expense collection.
type Expenses struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.Expense
}

func NewExpenses(kv storage.KV, logger *log.Logger) *Expenses {
	return &Expenses{kv: kv, logger: logger}
}

// Load hydrates the collection from storage.
func (s *Expenses) Load(ctx context.Context) {
	items := loadList[core.Expense](ctx, s.kv, storage.KeyExpenses, s.logger)
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// List returns a copy of all expenses.
func (s *Expenses) List(ctx context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the expense with the given id.
func (s *Expenses) Get(ctx context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, notFound("expense", id)
}

// Count returns the number of stored expenses.
func (s *Expenses) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalAmount sums every stored expense.
func (s *Expenses) TotalAmount(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, e := range s.items {
		total += e.Amount
	}
	return total
}

// Add validates the expense, assigns id and timestamps, and persists.
func (s *Expenses) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepare(&e)
	s.items = append(s.items, e)
	flushList(ctx, s.kv, storage.KeyExpenses, s.items, s.logger)
	return e, nil
}

// AddBatch validates and appends a batch of expenses with a single
// write at the end, so a crash mid-import never exposes a partial
// batch.
func (s *Expenses) AddBatch(ctx context.Context, batch []core.Expense) ([]core.Expense, error) {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]core.Expense, 0, len(batch))
	for _, e := range batch {
		s.prepare(&e)
		s.items = append(s.items, e)
		added = append(added, e)
	}
	flushList(ctx, s.kv, storage.KeyExpenses, s.items, s.logger)
	return added, nil
}

// Update applies a patch to the expense with the given id. The patched
// record must still validate, otherwise nothing changes.
func (s *Expenses) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID != id {
			continue
		}
		patch.Apply(&e)
		e.Date = core.DateOf(e.Date.Time)
		if err := e.Validate(); err != nil {
			return core.Expense{}, err
		}
		e.UpdatedAt = time.Now().UTC()
		s.items[i] = e
		flushList(ctx, s.kv, storage.KeyExpenses, s.items, s.logger)
		return e, nil
	}
	return core.Expense{}, notFound("expense", id)
}

// Delete removes the expense with the given id.
func (s *Expenses) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyExpenses, s.items, s.logger)
			return nil
		}
	}
	return notFound("expense", id)
}

// ReplaceAll swaps the entire collection, used by backup restore.
func (s *Expenses) ReplaceAll(ctx context.Context, items []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]core.Expense, len(items))
	copy(s.items, items)
	flushList(ctx, s.kv, storage.KeyExpenses, s.items, s.logger)
}

// prepare normalizes a record before it joins the collection. Caller
// holds the lock.
func (s *Expenses) prepare(e *core.Expense) {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Date = core.DateOf(e.Date.Time)
	e.CreatedAt = now
	e.UpdatedAt = now
}
