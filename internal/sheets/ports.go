// Package sheets defines the ports for mirroring expense rows into an
// external spreadsheet.
package sheets

import (
	"context"

	"tally/internal/core"
)

// Ports for outbound adapters.
type (
	RowAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	RowDeleter interface {
		// DeleteByID removes the row holding the given expense id.
		// A missing row is not an error.
		DeleteByID(ctx context.Context, id string) error
	}

	// RowLister returns the expense ids currently present in the sheet.
	RowLister interface {
		ListIDs(ctx context.Context) ([]string, error)
	}

	// Mirror is the full sink a sync worker needs.
	Mirror interface {
		RowAppender
		RowDeleter
		RowLister
	}
)
