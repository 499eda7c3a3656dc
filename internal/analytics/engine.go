// Package analytics derives budget status and spending insight from
// expense snapshots. Everything here is a pure function of its inputs:
// no clocks, no storage, no mutation of the slices passed in.
package analytics

import (
	"encoding/json"
	"math"
	"time"

	"tally/internal/core"
)

// Trend labels the direction of spending between two periods.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// PeriodComparison relates current spending to the immediately
// preceding period of the same length.
type PeriodComparison struct {
	Spent         float64 `json:"spent"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// BudgetStatus is the derived view of one budget at a reference date.
type BudgetStatus struct {
	Budget               core.Budget      `json:"budget"`
	Spent                float64          `json:"spent"`
	Remaining            float64          `json:"remaining"`
	PercentUsed          float64          `json:"percentUsed"`
	IsOverBudget         bool             `json:"isOverBudget"`
	DaysRemaining        int              `json:"daysRemaining"`
	AverageDailySpending float64          `json:"averageDailySpending"`
	ProjectedSpending    float64          `json:"projectedSpending"`
	Trend                Trend            `json:"trend"`
	PreviousPeriod       PeriodComparison `json:"previousPeriodComparison"`
}

// MarshalJSON renders a non-finite percentage as null, since JSON has
// no literal for infinity.
func (s BudgetStatus) MarshalJSON() ([]byte, error) {
	type alias BudgetStatus
	if math.IsInf(s.PercentUsed, 0) || math.IsNaN(s.PercentUsed) {
		return json.Marshal(struct {
			alias
			PercentUsed any `json:"percentUsed"`
		}{alias: alias(s)})
	}
	return json.Marshal(alias(s))
}

// dayOf truncates an instant to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodWindow returns the calendar-aligned window containing ref.
// Start and end are inclusive day bounds: weeks start on Sunday,
// months and years on their first day.
func PeriodWindow(p core.Period, ref time.Time) (start, end time.Time) {
	day := dayOf(ref)
	switch p {
	case core.Daily:
		return day, day
	case core.Weekly:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 6)
	case core.Yearly:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}
}

// previousWindow returns the calendar period immediately before the
// one starting at start.
func previousWindow(p core.Period, start time.Time) (time.Time, time.Time) {
	return PeriodWindow(p, start.AddDate(0, 0, -1))
}

func within(t, start, end time.Time) bool {
	d := dayOf(t)
	return !d.Before(start) && !d.After(end)
}

func sumCovered(b core.Budget, expenses []core.Expense, start, end time.Time) float64 {
	var total float64
	for _, e := range expenses {
		if !b.Covers(e) {
			continue
		}
		if within(e.Date.Time, start, end) {
			total += e.Amount
		}
	}
	return total
}

// ComputeBudgetStatus evaluates one budget against the expense
// snapshot at the given reference date.
//
// Spending is summed over the calendar period containing ref, with
// both boundary days included. A budget whose category is the total
// marker covers every expense. Equality is not overspending: the
// budget is over only when spent strictly exceeds the amount. A zero
// budget amount yields an infinite percentage and is over as soon as
// anything is spent.
//
// The projection is linear: the daily average over the elapsed share
// of the period, extended to the whole period. Early in a period this
// deliberately overweights recent spending.
func ComputeBudgetStatus(budget core.Budget, expenses []core.Expense, ref time.Time) BudgetStatus {
	start, end := PeriodWindow(budget.Period, ref)
	prevStart, prevEnd := previousWindow(budget.Period, start)

	spent := sumCovered(budget, expenses, start, end)
	previous := sumCovered(budget, expenses, prevStart, prevEnd)

	status := BudgetStatus{
		Budget:    budget,
		Spent:     spent,
		Remaining: budget.Amount - spent,
	}

	if budget.Amount == 0 {
		status.PercentUsed = math.Inf(1)
		status.IsOverBudget = spent > 0
	} else {
		status.PercentUsed = spent / budget.Amount * 100
		status.IsOverBudget = spent > budget.Amount
	}

	day := dayOf(ref)
	elapsedDays := int(day.Sub(start).Hours()/24) + 1
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	totalDays := int(end.Sub(start).Hours()/24) + 1
	remainingDays := int(end.Sub(day).Hours() / 24)
	if remainingDays < 0 {
		remainingDays = 0
	}

	status.DaysRemaining = remainingDays
	status.AverageDailySpending = spent / float64(elapsedDays)
	status.ProjectedSpending = status.AverageDailySpending * float64(totalDays)

	switch {
	case spent > previous:
		status.Trend = TrendIncreasing
	case spent < previous:
		status.Trend = TrendDecreasing
	default:
		status.Trend = TrendStable
	}

	comparison := PeriodComparison{Spent: previous, Change: spent - previous}
	if previous > 0 {
		comparison.ChangePercent = (spent - previous) / previous * 100
	}
	status.PreviousPeriod = comparison

	return status
}

// ComputeAllBudgetStatuses evaluates every budget against the same
// snapshot and reference date.
func ComputeAllBudgetStatuses(budgets []core.Budget, expenses []core.Expense, ref time.Time) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, ComputeBudgetStatus(b, expenses, ref))
	}
	return out
}
