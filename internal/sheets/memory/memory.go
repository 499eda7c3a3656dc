// Package memory is an in-memory Mirror used by tests and local runs
// without a spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/core"
)

type Sink struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.Expense
}

func New() *Sink {
	return &Sink{rows: make(map[string]core.Expense)}
}

// Append stores the expense row and returns a synthetic row reference.
func (s *Sink) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.rows[e.ID] = e
	return fmt.Sprintf("mem:%d", len(s.order)), nil
}

// DeleteByID removes the row for the id. Missing rows are ignored.
func (s *Sink) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListIDs returns the stored ids in insertion order.
func (s *Sink) ListIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

// Row returns the stored expense for the id, for test assertions.
func (s *Sink) Row(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[id]
	return e, ok
}
