// Package classify decides whether a sheet holds a record table or free-form
// reference content.
package classify

import (
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Kind is the classification of a sheet.
type Kind int

// Sheet kinds.
const (
	Reference Kind = iota
	Table
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Table {
		return "table"
	}
	return "reference"
}

// Reason explains a reference classification.
type Reason string

// Reasons a sheet is not a table.
const (
	ReasonNone     Reason = ""
	ReasonTooFew   Reason = "fewer than 2 rows or columns"
	ReasonNoHeader Reason = "no header row in the first rows"
)

// Result is the classification of one sheet.
type Result struct {
	Sheet     string
	Kind      Kind
	HeaderRow int // 1-based, 0 for reference sheets
	Headers   fields.HeaderMap
	Reason    Reason
}

// IsTable reports whether the sheet is a record table.
func (r Result) IsTable() bool {
	return r.Kind == Table
}

// Classify inspects a sheet's shape and header row.
func Classify(sheet *workbook.Sheet) Result {
	res := Result{Sheet: sheet.Name, Kind: Reference}

	if sheet.MaxRow() < constants.MinTableRows || sheet.MaxCol() < constants.MinTableCols {
		res.Reason = ReasonTooFew
		return res
	}

	n := HeaderRow(sheet)
	if n == 0 {
		res.Reason = ReasonNoHeader
		return res
	}

	headers := fields.NewHeaderMap(sheet.Row(n))
	if headers.Len() == 0 {
		res.Reason = ReasonNoHeader
		return res
	}

	res.Kind = Table
	res.HeaderRow = n
	res.Headers = headers
	return res
}

// HeaderRow returns the first row within the scan window with at least two
// non-empty cells, or 0 when there is none.
func HeaderRow(sheet *workbook.Sheet) int {
	limit := min(constants.HeaderScanRows, sheet.MaxRow())
	for n := 1; n <= limit; n++ {
		if sheet.Row(n).NonEmpty() >= constants.MinHeaderCells {
			return n
		}
	}
	return 0
}
