package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	BudgetStandard      BudgetType = "standard"
	BudgetSavings       BudgetType = "savings"
	BudgetEnvelope      BudgetType = "envelope"
	BudgetAutoAdjusting BudgetType = "auto-adjusting"
)

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
	PaymentOther         PaymentMethod = "other"
)

const maxDescriptionLength = 200

type (
	// Period is the calendar cycle a budget or recurring expense runs on.
	Period string

	// BudgetType distinguishes budget behaviors. Aggregation treats all
	// types the same; savings and envelope budgets carry extra intent
	// for the presentation layer.
	BudgetType string

	// PaymentMethod is the optional payment channel of an expense.
	PaymentMethod string

	// Date is a calendar day, pinned to midnight UTC so day-granular
	// comparisons work directly on the embedded time.
	Date struct {
		time.Time
	}

	// Expense is a single spending record.
	Expense struct {
		ID            string        `json:"id"`
		Date          Date          `json:"date"`
		Amount        float64       `json:"amount"`
		Category      Category      `json:"category"`
		Description   string        `json:"description"`
		Merchant      string        `json:"merchant,omitempty"`
		PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
		Tags          []string      `json:"tags,omitempty"`
		Currency      string        `json:"currency,omitempty"`
		Receipts      []string      `json:"receipts,omitempty"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
	}

	// AutoAdjustSettings tunes auto-adjusting budgets. They ride along
	// with the budget record; the status engine does not act on them.
	AutoAdjustSettings struct {
		Enabled          bool    `json:"enabled"`
		BaselineMonths   int     `json:"baselineMonths"`
		AdjustmentFactor float64 `json:"adjustmentFactor"`
	}

	// Budget caps spending for one category, or for all spending when
	// the category is the total marker.
	Budget struct {
		ID              string              `json:"id"`
		Category        Category            `json:"category"`
		Amount          float64             `json:"amount"`
		Period          Period              `json:"period"`
		Type            BudgetType          `json:"type"`
		AlertThresholds []float64           `json:"alertThresholds,omitempty"`
		RolloverEnabled bool                `json:"rolloverEnabled"`
		TargetDate      Date                `json:"targetDate"`
		AutoAdjust      *AutoAdjustSettings `json:"autoAdjustSettings,omitempty"`
		CreatedAt       time.Time           `json:"createdAt"`
	}

	// CustomCategory is a user-defined category with display metadata.
	CustomCategory struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		Color          string `json:"color"`
		Icon           string `json:"icon,omitempty"`
		ParentCategory string `json:"parentCategory,omitempty"`
	}

	// TemplateBudget is a budget definition inside a template. It has
	// no id; ids are assigned when the template is applied.
	TemplateBudget struct {
		Category Category   `json:"category"`
		Amount   float64    `json:"amount"`
		Period   Period     `json:"period"`
		Type     BudgetType `json:"type"`
	}

	// BudgetTemplate is a named bundle of budget definitions that can
	// be applied in one step.
	BudgetTemplate struct {
		ID      string           `json:"id"`
		Name    string           `json:"name"`
		Budgets []TemplateBudget `json:"budgets"`
	}

	// RecurringExpense materializes a regular expense each time its
	// period elapses.
	RecurringExpense struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Amount      float64  `json:"amount"`
		Category    Category `json:"category"`
		Merchant    string   `json:"merchant,omitempty"`
		Every       Period   `json:"every"`
		StartDate   Date     `json:"startDate"`
		LastRun     Date     `json:"lastRun"`
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrInvalidBudgetType    = errors.New("invalid budget type")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyName            = errors.New("empty name")
	ErrDuplicateCategory    = errors.New("category already exists")
)

func (p Period) IsValid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t BudgetType) IsValid() bool {
	switch t {
	case BudgetStandard, BudgetSavings, BudgetEnvelope, BudgetAutoAdjusting:
		return true
	}
	return false
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentDigitalWallet, PaymentOther:
		return true
	}
	return false
}

// NewDate creates a new Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// dateLayouts are the accepted textual date forms, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02"}

// ParseDate parses a calendar date. It accepts ISO dates, RFC 3339
// timestamps (time of day is discarded), and slash-separated dates.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a bare ISO day, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !validAmount(e.Amount) || e.Amount < 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if e.Category.IsZero() {
		return ErrEmptyCategory
	}
	if e.PaymentMethod != "" && !e.PaymentMethod.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, e.PaymentMethod)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Category.IsZero() {
		return ErrEmptyCategory
	}
	if !validAmount(b.Amount) || b.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !b.Period.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, b.Period)
	}
	if b.Type != "" && !b.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBudgetType, b.Type)
	}
	for i := 1; i < len(b.AlertThresholds); i++ {
		if b.AlertThresholds[i] <= b.AlertThresholds[i-1] {
			return errors.New("alert thresholds must be strictly ascending")
		}
	}
	return nil
}

// Covers reports whether an expense counts toward the budget. A total
// budget covers every expense, otherwise the categories must match.
func (b Budget) Covers(e Expense) bool {
	return b.Category.IsTotal() || b.Category.Matches(e.Category)
}

func (c CustomCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t BudgetTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Budgets) == 0 {
		return errors.New("template must contain at least one budget")
	}
	for i, tb := range t.Budgets {
		b := Budget{Category: tb.Category, Amount: tb.Amount, Period: tb.Period, Type: tb.Type}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("template budget %d: %w", i+1, err)
		}
	}
	return nil
}

func (r RecurringExpense) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if !r.Every.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, r.Every)
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !validAmount(r.Amount) || r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.Category.IsZero() {
		return ErrEmptyCategory
	}
	return nil
}

// ExpensePatch carries optional field updates for an expense. Nil
// fields are left untouched by Apply.
type ExpensePatch struct {
	Date          *Date          `json:"date,omitempty"`
	Amount        *float64       `json:"amount,omitempty"`
	Category      *Category      `json:"category,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Merchant      *string        `json:"merchant,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Tags          *[]string      `json:"tags,omitempty"`
	Currency      *string        `json:"currency,omitempty"`
}

// Apply copies the set fields onto the expense. The result still needs
// validation; Apply itself never rejects anything.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Merchant != nil {
		e.Merchant = *p.Merchant
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.Category == nil &&
		p.Description == nil && p.Merchant == nil && p.PaymentMethod == nil &&
		p.Tags == nil && p.Currency == nil
}
