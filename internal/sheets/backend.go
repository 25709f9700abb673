package sheets

import "context"

// Backend is the spreadsheet API the catalog reads and writes through.
// Rows come back as rendered cell text; rows written are positional cell values.
type Backend interface {
	// Get reads every row addressed by rng (an A1 locator). A locator that
	// exists but holds no cells yields no rows and no error.
	Get(ctx context.Context, rng string) ([][]string, error)

	// Append adds one row after the last non-empty row of rng.
	Append(ctx context.Context, rng string, row []any) error

	// Update overwrites the cells addressed by rng (a single-row range).
	Update(ctx context.Context, rng string, row []any) error

	// DeleteRow removes the zero-based row rowIndex from the tab named sheet,
	// shifting the rows below it up.
	DeleteRow(ctx context.Context, sheet string, rowIndex int) error
}
