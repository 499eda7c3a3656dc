package google

import (
	"time"

	"tally/internal/core"
)

// Column layout of the mirror sheet: ID, Date, Amount, Category,
// Description, Created At.
func rowForExpense(e core.Expense) []any {
	created := ""
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		e.ID,
		e.Date.String(),
		core.FormatAmount(e.Amount),
		e.Category.String(),
		e.Description,
		created,
	}
}
