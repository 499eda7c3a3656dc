package bulk

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
	"tally/internal/store"
	"tally/internal/transfer"
)

func testCoordinator(t *testing.T) (*store.Store, *Coordinator) {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	st := store.New(storage.NewMemory(), logger)
	st.Load(context.Background())
	svc := services.NewExpenseService(st.Expenses, nil)
	return st, NewCoordinator(svc, st.Rules, logger)
}

func seedExpense(t *testing.T, st *store.Store, description string) core.Expense {
	t.Helper()
	e, err := st.Expenses.Add(context.Background(), core.Expense{
		Date:        core.NewDate(2024, 6, 10),
		Amount:      10,
		Category:    core.ParseCategory("Food"),
		Description: description,
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return e
}

func TestDeleteCountsMissingIDs(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()
	a := seedExpense(t, st, "coffee")
	b := seedExpense(t, st, "tea")

	res := c.Delete(ctx, []string{a.ID, "missing", b.ID})
	if res.Success != 2 || res.Failed != 1 {
		t.Fatalf("Delete result = %+v, want 2 success 1 failed", res)
	}
	if n := st.Expenses.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d expenses", n)
	}
}

func TestEditReportsPerItemFailures(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()
	a := seedExpense(t, st, "coffee")

	cat := core.ParseCategory("Travel")
	res := c.Edit(ctx, []string{a.ID, "missing"}, core.ExpensePatch{Category: &cat})
	if res.Success != 1 || res.Failed != 1 {
		t.Fatalf("Edit result = %+v, want 1 success 1 failed", res)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "missing") {
		t.Fatalf("expected error naming the missing id, got %v", res.Errors)
	}

	got, err := st.Expenses.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Category.Name != "Travel" {
		t.Fatalf("category = %q, want Travel", got.Category.Name)
	}
}

func TestEditInvalidPatchFailsItem(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()
	a := seedExpense(t, st, "coffee")

	bad := -3.0
	res := c.Edit(ctx, []string{a.ID}, core.ExpensePatch{Amount: &bad})
	if res.Success != 0 || res.Failed != 1 {
		t.Fatalf("Edit result = %+v, want 0 success 1 failed", res)
	}
	got, _ := st.Expenses.Get(ctx, a.ID)
	if got.Amount != 10 {
		t.Fatalf("amount = %v, want original 10 after rejected patch", got.Amount)
	}
}

func TestImportRowsMixedValidity(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()

	rows, err := transfer.ParseCSV("Date,Amount,Description\n" +
		"2024-01-01,100,Lunch\n" +
		"not-a-date,50,Bad row\n" +
		"2024-01-02,-5,Negative\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	res := c.ImportRows(ctx, rows)
	if res.Success != 1 || res.Failed != 2 {
		t.Fatalf("ImportRows result = %+v, want 1 success 2 failed", res)
	}
	for _, want := range []string{"row 2", "row 3"} {
		found := false
		for _, msg := range res.Errors {
			if strings.Contains(msg, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("errors missing %s: %v", want, res.Errors)
		}
	}

	list := st.Expenses.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 stored expense, got %d", len(list))
	}
	if list[0].Description != "Lunch" || list[0].Amount != 100 {
		t.Fatalf("stored expense = %+v, want the Lunch row", list[0])
	}
}

func TestImportRowsRejectsMalformedValues(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()

	rows := []transfer.ImportRow{
		{Line: 1, Date: "2024-06-11", Amount: "abc", Description: "broken amount"},
		{Line: 2, Date: "2024-06-12", Amount: "5", Description: "   "},
	}
	res := c.ImportRows(ctx, rows)
	if res.Success != 0 || res.Failed != 2 {
		t.Fatalf("ImportRows result = %+v, want 0 success 2 failed", res)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 error messages, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "invalid amount") {
		t.Errorf("first error = %q, want invalid amount", res.Errors[0])
	}
	if !strings.Contains(res.Errors[1], "description") {
		t.Errorf("second error = %q, want missing description", res.Errors[1])
	}
	if n := st.Expenses.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d expenses", n)
	}
}

func TestImportAppliesCategoryRules(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()

	_, err := st.Rules.Add(ctx, core.CategoryRule{
		Field:    core.FieldDescription,
		Op:       core.RuleContains,
		Value:    "uber",
		Category: core.ParseCategory("Transportation"),
	})
	if err != nil {
		t.Fatalf("Add rule: %v", err)
	}

	rows := []transfer.ImportRow{
		{Line: 1, Date: "2024-06-10", Amount: "18", Description: "Uber to airport"},
		{Line: 2, Date: "2024-06-10", Amount: "4", Description: "mystery purchase"},
	}
	res := c.ImportRows(ctx, rows)
	if res.Success != 2 {
		t.Fatalf("ImportRows result = %+v, want 2 success", res)
	}

	byDesc := map[string]core.Expense{}
	for _, e := range st.Expenses.List(ctx) {
		byDesc[e.Description] = e
	}
	if got := byDesc["Uber to airport"].Category.Name; got != "Transportation" {
		t.Errorf("rule category = %q, want Transportation", got)
	}
	if got := byDesc["mystery purchase"].Category.Name; got != "Other" {
		t.Errorf("fallback category = %q, want Other", got)
	}
}

func TestImportNormalizesPaymentMethod(t *testing.T) {
	st, c := testCoordinator(t)
	ctx := context.Background()

	rows := []transfer.ImportRow{
		{Line: 1, Date: "2024-06-10", Amount: "9", Description: "app sub", Category: "Entertainment", PaymentMethod: "Digital Wallet"},
		{Line: 2, Date: "2024-06-10", Amount: "9", Description: "cash buy", Category: "Food", PaymentMethod: "carrier pigeon"},
	}
	if res := c.ImportRows(ctx, rows); res.Success != 2 {
		t.Fatalf("ImportRows result = %+v, want 2 success", res)
	}

	byDesc := map[string]core.Expense{}
	for _, e := range st.Expenses.List(ctx) {
		byDesc[e.Description] = e
	}
	if got := byDesc["app sub"].PaymentMethod; got != core.PaymentDigitalWallet {
		t.Errorf("payment method = %q, want digital_wallet", got)
	}
	if got := byDesc["cash buy"].PaymentMethod; got != "" {
		t.Errorf("unknown payment method should be dropped, got %q", got)
	}
}
