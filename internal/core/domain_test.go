package core

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out Date
		ok  bool
	}{
		{"2024-01-15", NewDate(2024, 1, 15), true},
		{" 2024-01-15 ", NewDate(2024, 1, 15), true},
		{"2024/01/15", NewDate(2024, 1, 15), true},
		{"2024-01-15T08:30:00Z", NewDate(2024, 1, 15), true},
		{"2024-02-31", Date{}, false}, // day out of range
		{"15-01-2024", Date{}, false},
		{"not a date", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.out.Time) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 7))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03-07"` {
		t.Fatalf("expected bare ISO day, got %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-07"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d != NewDate(2024, 3, 7) {
		t.Fatalf("round trip mismatch: %v", d)
	}

	if b, _ := json.Marshal(Date{}); string(b) != "null" {
		t.Fatalf("zero date should marshal as null, got %s", b)
	}
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !d.IsZero() {
		t.Fatalf("null should decode to zero date, got %v", d)
	}
}

func validExpense() Expense {
	return Expense{
		Date:        NewDate(2025, 1, 1),
		Amount:      12.5,
		Category:    ParseCategory("Food"),
		Description: "lunch",
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := validExpense()
	zero.Amount = 0
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	long := validExpense()
	long.Description = strings.Repeat("x", 201)

	negative := validExpense()
	negative.Amount = -1

	nan := validExpense()
	nan.Amount = math.NaN()

	noDate := validExpense()
	noDate.Date = Date{}

	noDesc := validExpense()
	noDesc.Description = "   "

	noCat := validExpense()
	noCat.Category = Category{}

	badPay := validExpense()
	badPay.PaymentMethod = "cheque"

	bads := []Expense{long, negative, nan, noDate, noDesc, noCat, badPay}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{
		Category: ParseCategory("Food"),
		Amount:   500,
		Period:   Monthly,
		Type:     BudgetStandard,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	total := good
	total.Category = ParseCategory(TotalCategory)
	if err := total.Validate(); err != nil {
		t.Fatalf("total budget should validate, got %v", err)
	}

	untyped := good
	untyped.Type = ""
	if err := untyped.Validate(); err != nil {
		t.Fatalf("empty type should validate, got %v", err)
	}

	thresholds := good
	thresholds.AlertThresholds = []float64{50, 80, 100}
	if err := thresholds.Validate(); err != nil {
		t.Fatalf("ascending thresholds should validate, got %v", err)
	}

	zeroAmount := good
	zeroAmount.Amount = 0

	badPeriod := good
	badPeriod.Period = "fortnightly"

	badType := good
	badType.Type = "elastic"

	descending := good
	descending.AlertThresholds = []float64{80, 50}

	bads := []Budget{zeroAmount, badPeriod, badType, descending}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetCovers(t *testing.T) {
	food := Budget{Category: ParseCategory("Food")}
	total := Budget{Category: ParseCategory(TotalCategory)}
	lunch := Expense{Category: ParseCategory("Food")}
	taxi := Expense{Category: ParseCategory("Transportation")}

	if !food.Covers(lunch) {
		t.Fatalf("category budget should cover matching expense")
	}
	if food.Covers(taxi) {
		t.Fatalf("category budget should not cover other categories")
	}
	if !total.Covers(lunch) || !total.Covers(taxi) {
		t.Fatalf("total budget should cover every expense")
	}
}

func TestExpensePatchApply(t *testing.T) {
	e := validExpense()
	amount := 99.9
	desc := "dinner"
	p := ExpensePatch{Amount: &amount, Description: &desc}

	p.Apply(&e)
	if e.Amount != 99.9 || e.Description != "dinner" {
		t.Fatalf("patch not applied: %+v", e)
	}
	if !e.Date.Equal(NewDate(2025, 1, 1).Time) || e.Category.Name != "Food" {
		t.Fatalf("unset fields must not change: %+v", e)
	}

	if (ExpensePatch{}).IsEmpty() != true {
		t.Fatalf("empty patch should report empty")
	}
	if p.IsEmpty() {
		t.Fatalf("non-empty patch should not report empty")
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	good := RecurringExpense{
		Description: "rent",
		Amount:      800,
		Category:    ParseCategory("Utilities"),
		Every:       Monthly,
		StartDate:   NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noStart := good
	noStart.StartDate = Date{}

	badEvery := good
	badEvery.Every = "sometimes"

	free := good
	free.Amount = 0

	bads := []RecurringExpense{noStart, badEvery, free}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
