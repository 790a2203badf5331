package workbook

import (
	"strconv"
	"strings"
	"time"
)

// CellKind is the value type of a cell as stored in the workbook.
type CellKind int

// Cell kinds.
const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
	CellDate
)

// DateLayout is the normalized form of date-typed cells.
const DateLayout = "2006-01-02"

// Cell is one typed value in a sheet grid.
type Cell struct {
	Kind  CellKind
	Value string
	Time  time.Time
}

// String returns the normalized text of the cell: dates as YYYY-MM-DD,
// everything else trimmed.
func (c Cell) String() string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellDate:
		return c.Time.Format(DateLayout)
	default:
		return strings.TrimSpace(c.Value)
	}
}

// IsEmpty reports whether the cell normalizes to an empty string.
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}

// StringCell builds a text cell.
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Value: s}
}

// NumberCell builds a numeric cell using the shortest decimal form.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

// BoolCell builds a boolean cell rendered the way spreadsheets display it.
func BoolCell(b bool) Cell {
	if b {
		return Cell{Kind: CellBool, Value: "TRUE"}
	}
	return Cell{Kind: CellBool, Value: "FALSE"}
}

// DateCell builds a date-typed cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// ValueCell converts a Go value into a Cell. Unknown types use their
// fmt-free string form where possible and are otherwise empty.
func ValueCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return StringCell(x)
	case int:
		return NumberCell(float64(x))
	case int64:
		return NumberCell(float64(x))
	case float64:
		return NumberCell(x)
	case bool:
		return BoolCell(x)
	case time.Time:
		return DateCell(x)
	default:
		return Cell{}
	}
}

// Row is one line of a sheet. Rows are ragged: trailing empty cells may be absent.
type Row []Cell

// At returns the cell at the 0-based column index and whether it exists.
func (r Row) At(col int) (Cell, bool) {
	if col < 0 || col >= len(r) {
		return Cell{}, false
	}
	return r[col], true
}

// NonEmpty counts cells that normalize to non-empty text.
func (r Row) NonEmpty() int {
	n := 0
	for _, c := range r {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

// Strings returns the normalized text of every cell.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}
