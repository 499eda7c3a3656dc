// Package worker keeps the spreadsheet mirror in line with the
// expense store by consuming expense events.
package worker

import (
	"context"
	"errors"
	"fmt"

	"tally/internal/amqp"
	"tally/internal/log"
	"tally/internal/sheets"
	"tally/internal/store"
)

type MirrorWorker struct {
	expenses *store.Expenses
	mirror   sheets.Mirror
	logger   *log.Logger
}

func NewMirrorWorker(expenses *store.Expenses, mirror sheets.Mirror, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		expenses: expenses,
		mirror:   mirror,
		logger:   logger.WithComponent(log.ComponentMirror),
	}
}

// HandleEvent processes a single expense event from AMQP. Returning an
// error requeues the event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	w.logger.InfoContext(ctx, "Processing expense event",
		"action", msg.Action,
		"id", msg.ID)

	switch msg.Action {
	case amqp.ActionDeleted:
		if err := w.mirror.DeleteByID(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete row: %w", err)
		}
		return nil

	case amqp.ActionCreated, amqp.ActionUpdated:
		// The API process owns the store; reload to see its latest write.
		w.expenses.Load(ctx)
		e, err := w.expenses.Get(ctx, msg.ID)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted again before we got here. Clear any stale row.
			w.logger.WarnContext(ctx, "Expense gone before mirroring, clearing row", "id", msg.ID)
			return w.mirror.DeleteByID(ctx, msg.ID)
		}
		if err != nil {
			return fmt.Errorf("get expense: %w", err)
		}

		// Replace rather than edit in place: drop the old row, append
		// the current state. Makes created and updated the same path.
		if err := w.mirror.DeleteByID(ctx, msg.ID); err != nil {
			return fmt.Errorf("clear old row: %w", err)
		}
		ref, err := w.mirror.Append(ctx, e)
		if err != nil {
			return fmt.Errorf("append row: %w", err)
		}
		w.logger.InfoContext(ctx, "Mirrored expense",
			"id", msg.ID,
			"row_ref", ref)
		return nil

	default:
		// Unknown actions are dropped, not requeued.
		w.logger.WarnContext(ctx, "Ignoring unknown event action", "action", msg.Action)
		return nil
	}
}

// Reconcile appends every stored expense whose id is missing from the
// sheet. Run at startup and on a timer to recover from lost events.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	w.expenses.Load(ctx)

	ids, err := w.mirror.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list sheet ids: %w", err)
	}
	present := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}

	items := w.expenses.List(ctx)
	appended := 0
	failed := 0
	for _, e := range items {
		if _, ok := present[e.ID]; ok {
			continue
		}
		if _, err := w.mirror.Append(ctx, e); err != nil {
			w.logger.ErrorContext(ctx, "Failed to append missing row",
				"id", e.ID,
				"error", err)
			failed++
			continue
		}
		appended++
	}

	w.logger.InfoContext(ctx, "Reconciliation complete",
		"checked", len(items),
		"appended", appended,
		"failed", failed)
	return nil
}
