package analytics

import (
	"math"
	"sort"
	"time"

	"tally/internal/core"
)

// AnomalyDay is a day whose total spend sits far outside the window's
// daily distribution. Deviation is measured in standard deviations.
type AnomalyDay struct {
	Date      core.Date `json:"date"`
	Total     float64   `json:"total"`
	Deviation float64   `json:"deviation"`
}

// SpendingAnalytics summarizes expense activity over a trailing
// window, compared with the window immediately before it.
type SpendingAnalytics struct {
	WindowDays            int                `json:"windowDays"`
	CurrentTotal          float64            `json:"currentTotal"`
	PreviousTotal         float64            `json:"previousTotal"`
	TrendPercentage       float64            `json:"trendPercentage"`
	CategoryTotals        map[string]float64 `json:"categoryTotals"`
	MerchantTotals        map[string]float64 `json:"merchantTotals"`
	AverageDaily          float64            `json:"averageDaily"`
	AveragePerTransaction float64            `json:"averagePerTransaction"`
	TransactionCount      int                `json:"transactionCount"`
	AnomalousDays         []AnomalyDay       `json:"anomalousDays"`
}

// ComputeSpendingAnalytics summarizes the trailing windowDays ending
// at ref. The current window is the half-open span (ref-w, ref], the
// previous window the span before it, so no expense lands in both.
//
// Merchant totals only cover expenses that name a merchant. The trend
// percentage is zero when the previous window is empty, never
// infinite. Anomalous days are days with spend whose total deviates
// from the window's daily mean by more than two population standard
// deviations; a flat window has none.
func ComputeSpendingAnalytics(expenses []core.Expense, windowDays int, ref time.Time) SpendingAnalytics {
	if windowDays < 1 {
		windowDays = 1
	}

	refDay := dayOf(ref)
	currentStart := refDay.AddDate(0, 0, -windowDays)
	previousStart := refDay.AddDate(0, 0, -2*windowDays)

	result := SpendingAnalytics{
		WindowDays:     windowDays,
		CategoryTotals: make(map[string]float64),
		MerchantTotals: make(map[string]float64),
	}

	daily := make(map[core.Date]float64)
	for _, e := range expenses {
		d := dayOf(e.Date.Time)
		switch {
		case d.After(currentStart) && !d.After(refDay):
			result.CurrentTotal += e.Amount
			result.TransactionCount++
			result.CategoryTotals[e.Category.Name] += e.Amount
			if e.Merchant != "" {
				result.MerchantTotals[e.Merchant] += e.Amount
			}
			daily[core.DateOf(d)] += e.Amount
		case d.After(previousStart) && !d.After(currentStart):
			result.PreviousTotal += e.Amount
		}
	}

	if result.PreviousTotal > 0 {
		result.TrendPercentage = (result.CurrentTotal - result.PreviousTotal) / result.PreviousTotal * 100
	}
	result.AverageDaily = result.CurrentTotal / float64(windowDays)
	if result.TransactionCount > 0 {
		result.AveragePerTransaction = result.CurrentTotal / float64(result.TransactionCount)
	}
	result.AnomalousDays = anomalousDays(daily)

	return result
}

// anomalousDays flags outliers among days that saw any spend. Quiet
// days are not part of the population, so a sparse week of identical
// purchases reports nothing unusual.
func anomalousDays(daily map[core.Date]float64) []AnomalyDay {
	if len(daily) < 2 {
		return nil
	}

	var sum float64
	for _, v := range daily {
		sum += v
	}
	mean := sum / float64(len(daily))

	var squares float64
	for _, v := range daily {
		squares += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(squares / float64(len(daily)))
	if stddev == 0 {
		return nil
	}

	var out []AnomalyDay
	for day, total := range daily {
		if math.Abs(total-mean) > 2*stddev {
			out = append(out, AnomalyDay{
				Date:      day,
				Total:     total,
				Deviation: (total - mean) / stddev,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}
