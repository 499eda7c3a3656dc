package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"tally/internal/core"
)

func expense(day core.Date, amount float64, category string) core.Expense {
	return core.Expense{
		Date:        day,
		Amount:      amount,
		Category:    core.ParseCategory(category),
		Description: "test",
	}
}

func monthlyBudget(category string, amount float64) core.Budget {
	return core.Budget{
		ID:       "b1",
		Category: core.ParseCategory(category),
		Amount:   amount,
		Period:   core.Monthly,
		Type:     core.BudgetStandard,
	}
}

func TestPeriodWindowAlignment(t *testing.T) {
	ref := time.Date(2024, 6, 19, 15, 30, 0, 0, time.UTC) // a Wednesday

	cases := []struct {
		period core.Period
		start  time.Time
		end    time.Time
	}{
		{core.Daily, time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)},
		{core.Weekly, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)}, // Sunday through Saturday
		{core.Monthly, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{core.Yearly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		start, end := PeriodWindow(tc.period, ref)
		if !start.Equal(tc.start) || !end.Equal(tc.end) {
			t.Fatalf("%s window: got [%v, %v]", tc.period, start, end)
		}
	}
}

func TestTotalBudgetSumsAllCategories(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2024, 6, 3), 100, "Food"),
		expense(core.NewDate(2024, 6, 10), 50, "Transportation"),
		expense(core.NewDate(2024, 6, 12), 25.5, "Gadgets"), // custom category
		expense(core.NewDate(2024, 5, 28), 999, "Food"),     // previous month
	}

	total := monthlyBudget(core.TotalCategory, 500)
	status := ComputeBudgetStatus(total, expenses, ref)
	if status.Spent != 175.5 {
		t.Fatalf("total budget should sum every in-window expense, got %v", status.Spent)
	}
	if status.Remaining != 500-175.5 {
		t.Fatalf("remaining wrong: %v", status.Remaining)
	}
}

func TestCategoryFilterAndBoundaryDays(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2024, 6, 1), 10, "Food"),  // first day, included
		expense(core.NewDate(2024, 6, 30), 20, "Food"), // last day, included
		expense(core.NewDate(2024, 5, 31), 40, "Food"), // day before, excluded
		expense(core.NewDate(2024, 7, 1), 80, "Food"),  // day after, excluded
		expense(core.NewDate(2024, 6, 15), 160, "Transportation"),
	}

	status := ComputeBudgetStatus(monthlyBudget("Food", 100), expenses, ref)
	if status.Spent != 30 {
		t.Fatalf("expected boundary days included and other categories excluded, got %v", status.Spent)
	}
}

func TestIsOverBudgetIsStrict(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	budget := monthlyBudget("Food", 100)

	exact := []core.Expense{expense(core.NewDate(2024, 6, 10), 100, "Food")}
	status := ComputeBudgetStatus(budget, exact, ref)
	if status.IsOverBudget {
		t.Fatalf("spending exactly the budget is not over budget")
	}
	if status.PercentUsed != 100 {
		t.Fatalf("expected 100%%, got %v", status.PercentUsed)
	}

	over := []core.Expense{expense(core.NewDate(2024, 6, 10), 100.01, "Food")}
	if !ComputeBudgetStatus(budget, over, ref).IsOverBudget {
		t.Fatalf("a cent over the budget is over budget")
	}
}

func TestZeroAmountBudget(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	budget := monthlyBudget("Food", 0)

	empty := ComputeBudgetStatus(budget, nil, ref)
	if !math.IsInf(empty.PercentUsed, 1) {
		t.Fatalf("zero budget should report infinite percent, got %v", empty.PercentUsed)
	}
	if empty.IsOverBudget {
		t.Fatalf("nothing spent against a zero budget is not over")
	}

	spent := ComputeBudgetStatus(budget, []core.Expense{expense(core.NewDate(2024, 6, 10), 0.01, "Food")}, ref)
	if !spent.IsOverBudget {
		t.Fatalf("any spend against a zero budget is over")
	}
}

func TestDaysRemainingAndProjection(t *testing.T) {
	// June 10th: 10 elapsed days of 30, 20 remaining.
	ref := time.Date(2024, 6, 10, 13, 45, 0, 0, time.UTC)
	expenses := []core.Expense{expense(core.NewDate(2024, 6, 5), 50, "Food")}

	status := ComputeBudgetStatus(monthlyBudget("Food", 300), expenses, ref)
	if status.DaysRemaining != 20 {
		t.Fatalf("expected 20 days remaining, got %d", status.DaysRemaining)
	}
	if status.AverageDailySpending != 5 {
		t.Fatalf("expected 50/10 per day, got %v", status.AverageDailySpending)
	}
	if status.ProjectedSpending != 150 {
		t.Fatalf("expected linear projection 5*30, got %v", status.ProjectedSpending)
	}

	// On the last day nothing remains but the average still counts the
	// full month.
	lastDay := time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)
	status = ComputeBudgetStatus(monthlyBudget("Food", 300), expenses, lastDay)
	if status.DaysRemaining != 0 {
		t.Fatalf("expected 0 days remaining on the last day, got %d", status.DaysRemaining)
	}
	if status.ProjectedSpending != status.Spent {
		t.Fatalf("projection on the last day should equal spend, got %v vs %v", status.ProjectedSpending, status.Spent)
	}
}

func TestTrendAgainstPreviousPeriod(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	budget := monthlyBudget("Food", 1000)

	cases := []struct {
		name     string
		current  float64
		previous float64
		want     Trend
	}{
		{"more than last month", 200, 100, TrendIncreasing},
		{"less than last month", 100, 200, TrendDecreasing},
		{"same as last month", 150, 150, TrendStable},
	}
	for _, tc := range cases {
		expenses := []core.Expense{
			expense(core.NewDate(2024, 6, 10), tc.current, "Food"),
			expense(core.NewDate(2024, 5, 10), tc.previous, "Food"),
		}
		status := ComputeBudgetStatus(budget, expenses, ref)
		if status.Trend != tc.want {
			t.Fatalf("%s: got %s", tc.name, status.Trend)
		}
		if status.PreviousPeriod.Spent != tc.previous {
			t.Fatalf("%s: previous spent %v", tc.name, status.PreviousPeriod.Spent)
		}
		if status.PreviousPeriod.Change != tc.current-tc.previous {
			t.Fatalf("%s: change %v", tc.name, status.PreviousPeriod.Change)
		}
	}
}

func TestChangePercentZeroWhenNoPreviousSpend(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{expense(core.NewDate(2024, 6, 10), 200, "Food")}

	status := ComputeBudgetStatus(monthlyBudget("Food", 1000), expenses, ref)
	if status.PreviousPeriod.ChangePercent != 0 {
		t.Fatalf("empty previous period must yield zero change percent, got %v", status.PreviousPeriod.ChangePercent)
	}
	if status.Trend != TrendIncreasing {
		t.Fatalf("spend against empty previous period trends up, got %s", status.Trend)
	}
}

func TestWeeklyPreviousWindowIsAdjacent(t *testing.T) {
	// Wednesday June 19th 2024; its week is Sun 16 - Sat 22, the
	// previous week Sun 9 - Sat 15.
	ref := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)
	budget := core.Budget{ID: "w", Category: core.ParseCategory("Food"), Amount: 100, Period: core.Weekly}

	expenses := []core.Expense{
		expense(core.NewDate(2024, 6, 16), 30, "Food"), // this week's Sunday
		expense(core.NewDate(2024, 6, 15), 70, "Food"), // previous week's Saturday
		expense(core.NewDate(2024, 6, 8), 500, "Food"), // two weeks back, ignored
	}
	status := ComputeBudgetStatus(budget, expenses, ref)
	if status.Spent != 30 {
		t.Fatalf("current week spend: got %v", status.Spent)
	}
	if status.PreviousPeriod.Spent != 70 {
		t.Fatalf("previous week spend: got %v", status.PreviousPeriod.Spent)
	}
}

func TestComputeBudgetStatusIsPure(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(core.NewDate(2024, 6, 1), 10, "Food"),
		expense(core.NewDate(2024, 6, 2), 20, "Transportation"),
	}
	snapshot := make([]core.Expense, len(expenses))
	copy(snapshot, expenses)

	budget := monthlyBudget(core.TotalCategory, 100)
	first := ComputeBudgetStatus(budget, expenses, ref)
	second := ComputeBudgetStatus(budget, expenses, ref)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs must yield identical results:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(expenses, snapshot) {
		t.Fatalf("input slice was mutated:\n%+v\n%+v", expenses, snapshot)
	}
}
