package store

import (
	"context"

	"tally/internal/transfer"
)

// Snapshot captures every collection into a backup envelope.
func (s *Store) Snapshot(ctx context.Context) transfer.Backup {
	return transfer.NewBackup(
		s.Expenses.List(ctx),
		s.Budgets.List(ctx),
		s.Categories.List(ctx),
		s.Templates.List(ctx),
	)
}

// Restore replaces every collection with the backup contents. The
// backup must already be validated by transfer.DecodeBackup; this step
// only swaps state.
func (s *Store) Restore(ctx context.Context, b transfer.Backup) {
	s.Expenses.ReplaceAll(ctx, b.Expenses)
	s.Budgets.ReplaceAll(ctx, b.Budgets)
	s.Categories.ReplaceAll(ctx, b.CustomCategories)
	s.Templates.ReplaceAll(ctx, b.BudgetTemplates)
}
