package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
	"tally/internal/store"
)

func testExpenseStore(t *testing.T) *store.Expenses {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	s := store.New(storage.NewMemory(), logger)
	s.Load(context.Background())
	return s.Expenses
}

func TestExpenseServiceCreate(t *testing.T) {
	svc := NewExpenseService(testExpenseStore(t), nil)

	created, err := svc.Create(context.Background(), core.Expense{
		Date:        core.NewDate(2024, 5, 10),
		Amount:      42.50,
		Category:    core.ParseCategory("Food & Dining"),
		Description: "groceries",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestExpenseServiceCreateInvalid(t *testing.T) {
	svc := NewExpenseService(testExpenseStore(t), nil)

	_, err := svc.Create(context.Background(), core.Expense{
		Date:     core.NewDate(2024, 5, 10),
		Amount:   -1,
		Category: core.ParseCategory("Food & Dining"),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestExpenseServiceUpdate(t *testing.T) {
	expenses := testExpenseStore(t)
	svc := NewExpenseService(expenses, nil)

	created, err := svc.Create(context.Background(), core.Expense{
		Date:        core.NewDate(2024, 5, 10),
		Amount:      10,
		Category:    core.ParseCategory("Food & Dining"),
		Description: "lunch",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	amount := 12.5
	updated, err := svc.Update(context.Background(), created.ID, core.ExpensePatch{Amount: &amount})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Amount != 12.5 {
		t.Errorf("expected amount 12.5, got %v", updated.Amount)
	}

	got, err := expenses.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Amount != 12.5 {
		t.Errorf("store not updated, amount = %v", got.Amount)
	}
}

func TestExpenseServiceUpdateMissing(t *testing.T) {
	svc := NewExpenseService(testExpenseStore(t), nil)

	amount := 1.0
	_, err := svc.Update(context.Background(), "nope", core.ExpensePatch{Amount: &amount})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExpenseServiceDelete(t *testing.T) {
	expenses := testExpenseStore(t)
	svc := NewExpenseService(expenses, nil)

	created, err := svc.Create(context.Background(), core.Expense{
		Date:        core.NewDate(2024, 5, 10),
		Amount:      10,
		Category:    core.ParseCategory("Food & Dining"),
		Description: "lunch",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := expenses.Get(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestExpenseServiceCreateBatch(t *testing.T) {
	expenses := testExpenseStore(t)
	svc := NewExpenseService(expenses, nil)

	batch := []core.Expense{
		{Date: core.NewDate(2024, 5, 1), Amount: 1, Category: core.ParseCategory("Food & Dining"), Description: "a"},
		{Date: core.NewDate(2024, 5, 2), Amount: 2, Category: core.ParseCategory("Transportation"), Description: "b"},
	}
	created, err := svc.CreateBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created, got %d", len(created))
	}
	if got := expenses.Count(context.Background()); got != 2 {
		t.Errorf("expected 2 stored, got %d", got)
	}
	for _, e := range created {
		if e.ID == "" {
			t.Error("expected generated id")
		}
	}
}
