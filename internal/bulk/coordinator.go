// Package bulk applies one mutation across many expenses and reports
// per-item outcomes. Individual failures are counted, never thrown:
// the caller always gets a full result, even when every item failed.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
	"tally/internal/transfer"
)

// Result accumulates the outcome of a bulk operation. Errors carries
// one message per failed item; delete results leave it empty since a
// missing id is the only way to fail.
type Result struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Coordinator runs bulk operations against the expense service so
// every mutation publishes its change event like a single one would.
type Coordinator struct {
	expenses *services.ExpenseService
	rules    *store.Rules
	logger   *log.Logger
}

func NewCoordinator(expenses *services.ExpenseService, rules *store.Rules, logger *log.Logger) *Coordinator {
	return &Coordinator{
		expenses: expenses,
		rules:    rules,
		logger:   logger.WithComponent(log.ComponentBulk),
	}
}

// Delete removes each id, counting ids with no matching expense as
// failures.
func (c *Coordinator) Delete(ctx context.Context, ids []string) Result {
	var res Result
	for _, id := range ids {
		if err := c.expenses.Delete(ctx, id); err != nil {
			res.Failed++
			continue
		}
		res.Success++
	}
	c.logger.InfoContext(ctx, "Bulk delete finished", "requested", len(ids), "success", res.Success, "failed", res.Failed)
	return res
}

// Edit applies the same patch to each id. A failed item reports why:
// either the id was unknown or the patched record no longer validated.
func (c *Coordinator) Edit(ctx context.Context, ids []string, patch core.ExpensePatch) Result {
	var res Result
	for _, id := range ids {
		if _, err := c.expenses.Update(ctx, id, patch); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		res.Success++
	}
	c.logger.InfoContext(ctx, "Bulk edit finished", "requested", len(ids), "success", res.Success, "failed", res.Failed)
	return res
}

// ImportRows validates and converts parsed CSV rows, then adds every
// valid one as a single batch. Invalid rows are reported with their
// data row number; the batch is best effort, not all-or-nothing.
func (c *Coordinator) ImportRows(ctx context.Context, rows []transfer.ImportRow) Result {
	var res Result
	var batch []core.Expense
	for _, row := range rows {
		e, err := c.buildExpense(ctx, row)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
			continue
		}
		batch = append(batch, e)
	}

	if len(batch) > 0 {
		if _, err := c.expenses.CreateBatch(ctx, batch); err != nil {
			res.Failed += len(batch)
			res.Errors = append(res.Errors, fmt.Sprintf("saving batch: %v", err))
			c.logger.ErrorContext(ctx, "Import batch rejected", "rows", len(batch), "error", err)
			return res
		}
		res.Success = len(batch)
	}
	c.logger.InfoContext(ctx, "Import finished", "rows", len(rows), "success", res.Success, "failed", res.Failed)
	return res
}

// buildExpense turns one raw row into a valid expense. The amount must
// be a positive finite number and the date must parse; the category
// falls back to the first matching rule, then to Other.
func (c *Coordinator) buildExpense(ctx context.Context, row transfer.ImportRow) (core.Expense, error) {
	amount, err := core.ParseAmount(row.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q", row.Amount)
	}
	if amount <= 0 {
		return core.Expense{}, errors.New("amount must be greater than zero")
	}

	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid date %q", row.Date)
	}

	if strings.TrimSpace(row.Description) == "" {
		return core.Expense{}, errors.New("missing description")
	}

	e := core.Expense{
		Date:        date,
		Amount:      amount,
		Description: row.Description,
		Merchant:    row.Merchant,
		Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
	}

	if row.Category != "" {
		e.Category = core.ParseCategory(row.Category)
	} else if c.rules != nil {
		if cat, ok := core.ApplyRules(c.rules.List(ctx), e); ok {
			e.Category = cat
		}
	}
	if e.Category.IsZero() {
		e.Category = core.ParseCategory("Other")
	}

	if row.PaymentMethod != "" {
		pm := core.PaymentMethod(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(row.PaymentMethod)), " ", "_"))
		if pm.IsValid() {
			e.PaymentMethod = pm
		}
	}

	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
