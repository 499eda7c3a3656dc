package transfer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"tally/internal/core"
)

func TestBackupRoundTrip(t *testing.T) {
	expenses := []core.Expense{
		{ID: "e1", Date: core.NewDate(2024, 6, 10), Amount: 12.5, Category: core.ParseCategory("Food"), Description: "lunch"},
		{ID: "e2", Date: core.NewDate(2024, 6, 11), Amount: 30, Category: core.ParseCategory("Travel"), Description: "train"},
	}
	budgets := []core.Budget{
		{ID: "b1", Category: core.ParseCategory("Food"), Amount: 300, Period: core.Monthly, Type: core.BudgetStandard},
	}

	b := NewBackup(expenses, budgets, nil, nil)
	if b.Version != BackupVersion {
		t.Fatalf("version = %d, want %d", b.Version, BackupVersion)
	}
	if b.TotalExpenses != 2 || b.TotalBudgets != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", b.TotalExpenses, b.TotalBudgets)
	}
	if b.TotalAmount != 42.5 {
		t.Fatalf("total amount = %v, want 42.5", b.TotalAmount)
	}

	data, err := EncodeBackup(b)
	if err != nil {
		t.Fatalf("EncodeBackup: %v", err)
	}
	decoded, err := DecodeBackup(data)
	if err != nil {
		t.Fatalf("DecodeBackup: %v", err)
	}
	if len(decoded.Expenses) != 2 || len(decoded.Budgets) != 1 {
		t.Fatalf("decoded %d expenses and %d budgets", len(decoded.Expenses), len(decoded.Budgets))
	}
	if decoded.Expenses[0].Category.Name != "Food" {
		t.Fatalf("category = %q, want Food", decoded.Expenses[0].Category.Name)
	}
}

func TestDecodeBackupRejectsBadRecords(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"not json", "{nope", "not a valid JSON document"},
		{"record not object", `{"expenses":[42]}`, "not an object"},
		{"missing field", `{"expenses":[{"id":"a","date":"2024-06-10","category":"Food"}]}`, "missing description"},
		{"empty id", `{"expenses":[{"id":"","date":"2024-06-10","category":"Food","description":"x","amount":1}]}`, "empty id"},
		{"bad date", `{"expenses":[{"id":"a","date":"junk","category":"Food","description":"x","amount":1}]}`, "unparseable date"},
		{"string amount", `{"expenses":[{"id":"a","date":"2024-06-10","category":"Food","description":"x","amount":"12"}]}`, "amount must be a number"},
		{"negative amount", `{"expenses":[{"id":"a","date":"2024-06-10","category":"Food","description":"x","amount":-1}]}`, "negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBackup([]byte(tc.data))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if !strings.Contains(fe.Reason, tc.want) {
				t.Fatalf("reason %q does not mention %q", fe.Reason, tc.want)
			}
		})
	}
}

func TestExportJSONShape(t *testing.T) {
	data, err := ExportJSON([]core.Expense{
		{ID: "e1", Date: core.NewDate(2024, 6, 10), Amount: 5, Category: core.ParseCategory("Food"), Description: "snack"},
	})
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if out[0]["category"] != "Food" {
		t.Fatalf("category encodes as %v, want bare name", out[0]["category"])
	}
	if out[0]["date"] != "2024-06-10" {
		t.Fatalf("date encodes as %v, want ISO day", out[0]["date"])
	}
}
