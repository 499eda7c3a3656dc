package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// Rules is the category rule collection. Order is significant: the
// import path applies the first matching rule.
type Rules struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.CategoryRule
}

func NewRules(kv storage.KV, logger *log.Logger) *Rules {
	return &Rules{kv: kv, logger: logger}
}

func (s *Rules) Load(ctx context.Context) {
	items := loadList[core.CategoryRule](ctx, s.kv, storage.KeyCategoryRules, s.logger)
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Rules) List(ctx context.Context) []core.CategoryRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CategoryRule, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Rules) Add(ctx context.Context, r core.CategoryRule) (core.CategoryRule, error) {
	if err := r.Validate(); err != nil {
		return core.CategoryRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.items = append(s.items, r)
	flushList(ctx, s.kv, storage.KeyCategoryRules, s.items, s.logger)
	return r, nil
}

func (s *Rules) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyCategoryRules, s.items, s.logger)
			return nil
		}
	}
	return notFound("rule", id)
}
