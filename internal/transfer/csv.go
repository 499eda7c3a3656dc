// Package transfer implements the CSV and JSON exchange formats:
// header-mapped CSV import, fixed-layout CSV export, and the JSON
// backup envelope.
package transfer

import (
	"fmt"
	"strings"
	"time"

	"tally/internal/core"
)

// FormatError reports structurally unusable input. It aborts the whole
// operation before anything is written; per-row problems are handled
// downstream and never raise it.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return e.Reason
}

// ImportRow is one parsed CSV data row. Values stay raw strings here;
// amount and date validation happens during bulk import so failures
// are reported per row instead of aborting the parse.
type ImportRow struct {
	Line          int // data row number, 1-based
	Date          string
	Amount        string
	Description   string
	Category      string
	Merchant      string
	PaymentMethod string
	Currency      string
}

// columnSynonyms maps each logical field to header substrings that
// identify its column. Matching is case-insensitive; for each field
// the first header containing any synonym claims the column.
var columnSynonyms = map[string][]string{
	"date":        {"date", "day"},
	"amount":      {"amount", "price", "cost", "value"},
	"description": {"description", "desc", "note", "memo", "detail"},
	"category":    {"category"},
	"merchant":    {"merchant", "vendor", "payee", "store"},
	"payment":     {"payment", "method"},
	"currency":    {"currency"},
}

type columnMap struct {
	date, amount, description          int
	category, merchant, payment, currency int
}

func detectColumns(header []string) columnMap {
	cols := columnMap{date: -1, amount: -1, description: -1, category: -1, merchant: -1, payment: -1, currency: -1}
	find := func(field string) int {
		for i, h := range header {
			h = strings.ToLower(h)
			for _, syn := range columnSynonyms[field] {
				if strings.Contains(h, syn) {
					return i
				}
			}
		}
		return -1
	}
	cols.date = find("date")
	cols.amount = find("amount")
	cols.description = find("description")
	cols.category = find("category")
	cols.merchant = find("merchant")
	cols.payment = find("payment")
	cols.currency = find("currency")
	return cols
}

// ParseCSV maps a CSV document onto import rows. It needs a header
// plus at least one data row, and the header must expose date, amount,
// and description columns. Data rows with fewer than three fields are
// skipped silently.
func ParseCSV(text string) ([]ImportRow, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, &FormatError{Reason: "file needs a header row and at least one data row"}
	}

	cols := detectColumns(splitFields(lines[0]))
	if cols.date < 0 || cols.amount < 0 || cols.description < 0 {
		return nil, &FormatError{Reason: "header is missing a date, amount, or description column"}
	}

	var rows []ImportRow
	for i, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) < 3 {
			continue
		}
		rows = append(rows, ImportRow{
			Line:          i + 1,
			Date:          pick(fields, cols.date),
			Amount:        pick(fields, cols.amount),
			Description:   pick(fields, cols.description),
			Category:      pick(fields, cols.category),
			Merchant:      pick(fields, cols.merchant),
			PaymentMethod: pick(fields, cols.payment),
			Currency:      pick(fields, cols.currency),
		})
	}
	return rows, nil
}

func pick(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// splitFields splits a CSV line on commas with minimal quote support:
// a field wrapped in double quotes may contain commas, and a doubled
// quote inside it stands for a literal quote. Deliberately not an
// RFC 4180 parser; quoted fields cannot span lines. Unquoted fields
// are trimmed, quoted fields are kept verbatim.
func splitFields(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		f := b.String()
		if !quoted {
			f = strings.TrimSpace(f)
		}
		fields = append(fields, f)
		b.Reset()
		quoted = false
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
			quoted = true
		case ch == ',' && !inQuotes:
			flush()
		default:
			b.WriteByte(ch)
		}
	}
	flush()
	return fields
}

// exportHeader is the fixed CSV export layout.
const exportHeader = "Date,Amount,Category,Description,Created At"

// ExportCSV renders expenses in the fixed five-column layout. The
// description is always quoted with embedded quotes doubled, so commas
// and quotes survive the reimport path.
func ExportCSV(expenses []core.Expense) []byte {
	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')
	for _, e := range expenses {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s\n",
			e.Date.Format("2006-01-02"),
			core.FormatAmount(e.Amount),
			e.Category.Name,
			quoteField(e.Description),
			e.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return []byte(b.String())
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
