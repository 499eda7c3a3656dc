package services

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/store"
)

// RecurringProcessor materializes concrete expenses from recurring
// definitions once their period elapses.
type RecurringProcessor struct {
	recurring      *store.Recurring
	expenseService *ExpenseService
	logger         *log.Logger
}

func NewRecurringProcessor(recurring *store.Recurring, expenseService *ExpenseService, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		recurring:      recurring,
		expenseService: expenseService,
		logger:         logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue walks every definition and creates an expense for each
// one that is due at now. A definition that fails is skipped, the rest
// still run. Returns how many expenses were created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.recurring == nil || p.expenseService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	defs := p.recurring.List(ctx)
	p.logger.InfoContext(ctx, "Processing recurring expenses",
		"total", len(defs),
		"processing_date", now.Format("2006-01-02"))

	today := core.DateOf(now)
	processed := 0

	for _, def := range defs {
		if def.StartDate.After(today.Time) {
			continue
		}

		checker, err := GetDuenessChecker(def.Every)
		if err != nil {
			p.logger.ErrorContext(ctx, "Skipping definition with unknown period",
				"id", def.ID,
				"every", def.Every)
			continue
		}
		if !checker.IsDue(def.LastRun.Time, now, def.StartDate) {
			continue
		}

		expense := core.Expense{
			Date:        today,
			Amount:      def.Amount,
			Category:    def.Category,
			Description: def.Description,
			Merchant:    def.Merchant,
		}
		if _, err := p.expenseService.Create(ctx, expense); err != nil {
			p.logger.ErrorContext(ctx, "Failed to create expense from recurring definition",
				"id", def.ID,
				"description", def.Description,
				"error", err)
			continue
		}

		if err := p.recurring.MarkRun(ctx, def.ID, today); err != nil {
			p.logger.ErrorContext(ctx, "Failed to record last run",
				"id", def.ID,
				"error", err)
			// Continue anyway - the expense was created
		}

		processed++
		p.logger.InfoContext(ctx, "Created expense from recurring definition",
			"id", def.ID,
			"description", def.Description,
			"amount", def.Amount,
			"every", def.Every)
	}

	p.logger.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processed,
		"total_checked", len(defs))
	return processed, nil
}
