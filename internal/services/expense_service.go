package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
)

// ExpenseService wraps expense store mutations with change events.
// The store always wins: a failed publish is logged and the mutation
// stands, so a broker outage never blocks bookkeeping.
type ExpenseService struct {
	expenses   *store.Expenses
	amqpClient *amqp.Client
}

func NewExpenseService(expenses *store.Expenses, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		amqpClient: amqpClient,
	}
}

// Create stores an expense and publishes a created event.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.expenses.Add(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, created.ID)
	return created, nil
}

// CreateBatch stores a batch of expenses in one write and publishes a
// created event per record.
func (s *ExpenseService) CreateBatch(ctx context.Context, batch []core.Expense) ([]core.Expense, error) {
	added, err := s.expenses.AddBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("add expense batch: %w", err)
	}

	for _, e := range added {
		s.publish(ctx, amqp.ActionCreated, e.ID)
	}
	return added, nil
}

// Update patches an expense and publishes an updated event.
func (s *ExpenseService) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	updated, err := s.expenses.Update(ctx, id, patch)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

// Delete removes an expense and publishes a deleted event.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, amqp.ActionDeleted, id)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, action amqp.Action, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishExpenseEvent(ctx, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action,
			"id", id,
			"error", err)
		// Don't fail the request - the store already has the change
	}
}

// Close releases the AMQP connection if one is attached.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
