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

// Budgets is the budget collection.
type Budgets struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.Budget
}

func NewBudgets(kv storage.KV, logger *log.Logger) *Budgets {
	return &Budgets{kv: kv, logger: logger}
}

func (s *Budgets) Load(ctx context.Context) {
	items := loadList[core.Budget](ctx, s.kv, storage.KeyBudgets, s.logger)
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Budgets) List(ctx context.Context) []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Budgets) Get(ctx context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.items {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Budget{}, notFound("budget", id)
}

func (s *Budgets) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Add validates the budget, assigns defaults, and persists.
func (s *Budgets) Add(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepare(&b)
	s.items = append(s.items, b)
	flushList(ctx, s.kv, storage.KeyBudgets, s.items, s.logger)
	return b, nil
}

// AddBatch appends several budgets with one write, used when a
// template is applied so the bundle lands atomically.
func (s *Budgets) AddBatch(ctx context.Context, batch []core.Budget) ([]core.Budget, error) {
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]core.Budget, 0, len(batch))
	for _, b := range batch {
		s.prepare(&b)
		s.items = append(s.items, b)
		added = append(added, b)
	}
	flushList(ctx, s.kv, storage.KeyBudgets, s.items, s.logger)
	return added, nil
}

func (s *Budgets) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.items {
		if b.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyBudgets, s.items, s.logger)
			return nil
		}
	}
	return notFound("budget", id)
}

func (s *Budgets) ReplaceAll(ctx context.Context, items []core.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]core.Budget, len(items))
	copy(s.items, items)
	flushList(ctx, s.kv, storage.KeyBudgets, s.items, s.logger)
}

func (s *Budgets) prepare(b *core.Budget) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Type == "" {
		b.Type = core.BudgetStandard
	}
	b.CreatedAt = time.Now().UTC()
}
