package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/core"
)

// BackupVersion is the current backup envelope version.
const BackupVersion = 1

// Backup is the portable snapshot of every collection, with summary
// counts for quick inspection of the file.
type Backup struct {
	Version          int                   `json:"version"`
	Timestamp        time.Time             `json:"timestamp"`
	Expenses         []core.Expense        `json:"expenses"`
	Budgets          []core.Budget         `json:"budgets"`
	CustomCategories []core.CustomCategory `json:"customCategories"`
	BudgetTemplates  []core.BudgetTemplate `json:"budgetTemplates"`
	TotalExpenses    int                   `json:"totalExpenses"`
	TotalBudgets     int                   `json:"totalBudgets"`
	TotalAmount      float64               `json:"totalAmount"`
}

// NewBackup assembles the envelope and fills in the summary fields.
func NewBackup(expenses []core.Expense, budgets []core.Budget, categories []core.CustomCategory, templates []core.BudgetTemplate) Backup {
	b := Backup{
		Version:          BackupVersion,
		Timestamp:        time.Now().UTC(),
		Expenses:         expenses,
		Budgets:          budgets,
		CustomCategories: categories,
		BudgetTemplates:  templates,
		TotalExpenses:    len(expenses),
		TotalBudgets:     len(budgets),
	}
	for _, e := range expenses {
		b.TotalAmount += e.Amount
	}
	return b
}

// EncodeBackup renders the envelope pretty-printed.
func EncodeBackup(b Backup) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// ExportJSON renders the expense list pretty-printed.
func ExportJSON(expenses []core.Expense) ([]byte, error) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.MarshalIndent(expenses, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode expenses: %w", err)
	}
	return data, nil
}

// DecodeBackup parses and validates a backup document. Every expense
// record must carry the required fields with the right primitive
// types; one malformed record rejects the whole document so a restore
// is never partial.
func DecodeBackup(data []byte) (Backup, error) {
	var probe struct {
		Expenses []json.RawMessage `json:"expenses"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Backup{}, &FormatError{Reason: "backup is not a valid JSON document"}
	}
	for i, raw := range probe.Expenses {
		if err := validateExpenseRecord(raw); err != nil {
			return Backup{}, &FormatError{Reason: fmt.Sprintf("expense record %d: %v", i+1, err)}
		}
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, &FormatError{Reason: fmt.Sprintf("backup does not decode: %v", err)}
	}
	return b, nil
}

// validateExpenseRecord checks required fields and their primitive
// types on the raw record, before the typed decode papers over
// missing fields with zero values.
func validateExpenseRecord(raw json.RawMessage) error {
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("not an object")
	}

	for _, field := range []string{"id", "date", "category", "description"} {
		v, ok := rec[field]
		if !ok {
			return fmt.Errorf("missing %s", field)
		}
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s must be a string", field)
		}
	}
	if rec["id"].(string) == "" {
		return fmt.Errorf("empty id")
	}
	if _, err := core.ParseDate(rec["date"].(string)); err != nil {
		return fmt.Errorf("unparseable date %q", rec["date"])
	}

	amount, ok := rec["amount"].(float64)
	if !ok {
		return fmt.Errorf("amount must be a number")
	}
	if amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}
