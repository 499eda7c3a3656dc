package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/sheets/memory"
	"tally/internal/storage"
	"tally/internal/store"
)

func testSetup(t *testing.T) (*store.Store, *memory.Sink, *MirrorWorker) {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	s := store.New(storage.NewMemory(), logger)
	s.Load(context.Background())
	sink := memory.New()
	return s, sink, NewMirrorWorker(s.Expenses, sink, logger)
}

func addExpense(t *testing.T, s *store.Store, desc string, amount float64) core.Expense {
	t.Helper()
	e, err := s.Expenses.Add(context.Background(), core.Expense{
		Date:        core.NewDate(2024, 6, 1),
		Amount:      amount,
		Category:    core.ParseCategory("Food & Dining"),
		Description: desc,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return e
}

func TestHandleEventCreated(t *testing.T) {
	s, sink, w := testSetup(t)
	ctx := context.Background()
	e := addExpense(t, s, "coffee", 3.5)

	msg := amqp.NewExpenseEventMessage(amqp.ActionCreated, e.ID)
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	ids, _ := sink.ListIDs(ctx)
	if len(ids) != 1 || ids[0] != e.ID {
		t.Fatalf("unexpected sheet ids: %v", ids)
	}
	row, ok := sink.Row(e.ID)
	if !ok || row.Amount != 3.5 {
		t.Fatalf("unexpected row: %+v ok=%v", row, ok)
	}
}

func TestHandleEventUpdatedReplacesRow(t *testing.T) {
	s, sink, w := testSetup(t)
	ctx := context.Background()
	e := addExpense(t, s, "coffee", 3.5)

	if err := w.HandleEvent(ctx, amqp.NewExpenseEventMessage(amqp.ActionCreated, e.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	amount := 4.0
	if _, err := s.Expenses.Update(ctx, e.ID, core.ExpensePatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewExpenseEventMessage(amqp.ActionUpdated, e.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	ids, _ := sink.ListIDs(ctx)
	if len(ids) != 1 {
		t.Fatalf("expected 1 row after update, got %v", ids)
	}
	row, _ := sink.Row(e.ID)
	if row.Amount != 4.0 {
		t.Errorf("expected updated amount 4.0, got %v", row.Amount)
	}
}

func TestHandleEventDeleted(t *testing.T) {
	s, sink, w := testSetup(t)
	ctx := context.Background()
	e := addExpense(t, s, "coffee", 3.5)

	if err := w.HandleEvent(ctx, amqp.NewExpenseEventMessage(amqp.ActionCreated, e.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if err := s.Expenses.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewExpenseEventMessage(amqp.ActionDeleted, e.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	ids, _ := sink.ListIDs(ctx)
	if len(ids) != 0 {
		t.Fatalf("expected empty sheet, got %v", ids)
	}
}

func TestHandleEventExpenseAlreadyGone(t *testing.T) {
	s, sink, w := testSetup(t)
	ctx := context.Background()
	e := addExpense(t, s, "coffee", 3.5)
	if err := s.Expenses.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Created event arrives after the expense was already removed.
	if err := w.HandleEvent(ctx, amqp.NewExpenseEventMessage(amqp.ActionCreated, e.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	ids, _ := sink.ListIDs(ctx)
	if len(ids) != 0 {
		t.Fatalf("expected no rows, got %v", ids)
	}
}

func TestHandleEventUnknownAction(t *testing.T) {
	_, _, w := testSetup(t)
	msg := amqp.NewExpenseEventMessage("archived", "x")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Errorf("unknown action should be dropped, got %v", err)
	}
}

func TestReconcileAppendsMissing(t *testing.T) {
	s, sink, w := testSetup(t)
	ctx := context.Background()
	a := addExpense(t, s, "coffee", 3.5)
	b := addExpense(t, s, "lunch", 12)

	// Only one of the two made it to the sheet.
	if _, err := sink.Append(ctx, a); err != nil {
		t.Fatalf("seed sink: %v", err)
	}

	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	ids, _ := sink.ListIDs(ctx)
	if len(ids) != 2 {
		t.Fatalf("expected 2 rows after reconcile, got %v", ids)
	}
	if _, ok := sink.Row(b.ID); !ok {
		t.Error("expected missing expense to be appended")
	}

	// A second pass appends nothing new.
	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	ids, _ = sink.ListIDs(ctx)
	if len(ids) != 2 {
		t.Fatalf("expected 2 rows after second reconcile, got %v", ids)
	}
}
