package store

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

//go:embed defaults.toml
var defaultsTOML []byte

type (
	templateFile struct {
		Templates []templateDef `toml:"template"`
	}
	templateDef struct {
		ID      string           `toml:"id"`
		Name    string           `toml:"name"`
		Budgets []templateBudget `toml:"budgets"`
	}
	templateBudget struct {
		Category string  `toml:"category"`
		Amount   float64 `toml:"amount"`
		Period   string  `toml:"period"`
		Type     string  `toml:"type"`
	}
)

// defaultTemplates decodes the embedded bundle. The file ships inside
// the binary, so a decode failure is a programming error.
func defaultTemplates() []core.BudgetTemplate {
	var f templateFile
	if err := toml.Unmarshal(defaultsTOML, &f); err != nil {
		panic(fmt.Sprintf("invalid embedded template bundle: %v", err))
	}
	out := make([]core.BudgetTemplate, 0, len(f.Templates))
	for _, def := range f.Templates {
		t := core.BudgetTemplate{ID: def.ID, Name: def.Name}
		for _, b := range def.Budgets {
			t.Budgets = append(t.Budgets, core.TemplateBudget{
				Category: core.ParseCategory(b.Category),
				Amount:   b.Amount,
				Period:   core.Period(b.Period),
				Type:     core.BudgetType(b.Type),
			})
		}
		out = append(out, t)
	}
	return out
}

// Templates is the budget template collection. When nothing is stored
// the built-in bundle takes its place.
type Templates struct {
	kv     storage.KV
	logger *log.Logger

	mu    sync.Mutex
	items []core.BudgetTemplate
}

func NewTemplates(kv storage.KV, logger *log.Logger) *Templates {
	return &Templates{kv: kv, logger: logger}
}

func (s *Templates) Load(ctx context.Context) {
	items := loadList[core.BudgetTemplate](ctx, s.kv, storage.KeyBudgetTemplates, s.logger)
	if len(items) == 0 {
		items = defaultTemplates()
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Templates) List(ctx context.Context) []core.BudgetTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BudgetTemplate, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Templates) Get(ctx context.Context, id string) (core.BudgetTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.BudgetTemplate{}, notFound("template", id)
}

func (s *Templates) Add(ctx context.Context, t core.BudgetTemplate) (core.BudgetTemplate, error) {
	if err := t.Validate(); err != nil {
		return core.BudgetTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.items = append(s.items, t)
	flushList(ctx, s.kv, storage.KeyBudgetTemplates, s.items, s.logger)
	return t, nil
}

func (s *Templates) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			flushList(ctx, s.kv, storage.KeyBudgetTemplates, s.items, s.logger)
			return nil
		}
	}
	return notFound("template", id)
}

func (s *Templates) ReplaceAll(ctx context.Context, items []core.BudgetTemplate) {
	s.mu.Lock()
	if len(items) == 0 {
		s.items = defaultTemplates()
	} else {
		s.items = make([]core.BudgetTemplate, len(items))
		copy(s.items, items)
	}
	flushList(ctx, s.kv, storage.KeyBudgetTemplates, s.items, s.logger)
	s.mu.Unlock()
}

// Budgets expands a template into budget records ready for AddBatch.
func (t *Templates) Budgets(tpl core.BudgetTemplate) []core.Budget {
	out := make([]core.Budget, 0, len(tpl.Budgets))
	for _, tb := range tpl.Budgets {
		out = append(out, core.Budget{
			Category: tb.Category,
			Amount:   tb.Amount,
			Period:   tb.Period,
			Type:     tb.Type,
		})
	}
	return out
}
