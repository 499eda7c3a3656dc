package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// Categories is the user-defined category collection. The standard
// categories live in core and are not stored.
type Categories struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.CustomCategory
}

func NewCategories(kv storage.KV, logger *log.Logger) *Categories {
	return &Categories{kv: kv, logger: logger}
}

func (s *Categories) Load(ctx context.Context) {
	items := loadList[core.CustomCategory](ctx, s.kv, storage.KeyCustomCategories, s.logger)
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Categories) List(ctx context.Context) []core.CustomCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CustomCategory, len(s.items))
	copy(out, s.items)
	return out
}

// Add validates and persists a custom category. Names are unique
// across the collection, compared case-insensitively.
func (s *Categories) Add(ctx context.Context, c core.CustomCategory) (core.CustomCategory, error) {
	if err := c.Validate(); err != nil {
		return core.CustomCategory{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if strings.EqualFold(existing.Name, c.Name) {
			return core.CustomCategory{}, core.ErrDuplicateCategory
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.items = append(s.items, c)
	flushList(ctx, s.kv, storage.KeyCustomCategories, s.items, s.logger)
	return c, nil
}

func (s *Categories) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.items {
		if c.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyCustomCategories, s.items, s.logger)
			return nil
		}
	}
	return notFound("custom category", id)
}

func (s *Categories) ReplaceAll(ctx context.Context, items []core.CustomCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]core.CustomCategory, len(items))
	copy(s.items, items)
	flushList(ctx, s.kv, storage.KeyCustomCategories, s.items, s.logger)
}
