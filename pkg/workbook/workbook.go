// Package workbook reads spreadsheet workbooks into typed, in-memory sheet grids.
package workbook

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Sheet is a named grid of rows. Row i of Rows is sheet row i+1.
type Sheet struct {
	Name string
	Rows []Row
}

// NewSheet builds a sheet from literal values, one slice per row.
func NewSheet(name string, rows ...[]any) *Sheet {
	s := &Sheet{Name: name, Rows: make([]Row, len(rows))}
	for i, values := range rows {
		row := make(Row, len(values))
		for j, v := range values {
			row[j] = ValueCell(v)
		}
		s.Rows[i] = row
	}
	return s
}

// MaxRow returns the number of rows in the sheet.
func (s *Sheet) MaxRow() int {
	return len(s.Rows)
}

// MaxCol returns the width of the widest row.
func (s *Sheet) MaxCol() int {
	width := 0
	for _, r := range s.Rows {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// Row returns the 1-based sheet row, or nil past the end.
func (s *Sheet) Row(n int) Row {
	if n < 1 || n > len(s.Rows) {
		return nil
	}
	return s.Rows[n-1]
}

// Workbook is an ordered set of sheets read from one source file.
type Workbook struct {
	Path   string
	Sheets []*Sheet
}

// New assembles a workbook from already built sheets.
func New(path string, sheets ...*Sheet) *Workbook {
	return &Workbook{Path: path, Sheets: sheets}
}

// Sheet looks a sheet up by exact name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the sheet names in workbook order.
func (w *Workbook) Names() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Open reads the workbook at path. A missing or unreadable file is a
// fatal *errors.SourceError.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewSourceError(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewSourceError(path, err)
	}
	defer func() { _ = f.Close() }()

	return read(f, path)
}

func read(f *excelize.File, path string) (*Workbook, error) {
	wb := &Workbook{Path: path}
	styles := newStyleCache(f)

	for _, name := range f.GetSheetList() {
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.NewSheetError(path, name, errors.WrapParse("xlsx", path, err))
		}

		sheet := &Sheet{Name: name, Rows: make([]Row, len(raw))}
		for i, values := range raw {
			row := make(Row, len(values))
			for j, value := range values {
				if value == "" {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(j+1, i+1)
				if err != nil {
					return nil, errors.NewSheetError(path, name, err)
				}
				row[j] = decodeCell(f, styles, name, axis, value)
			}
			sheet.Rows[i] = row
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

// decodeCell turns a raw stored value into a typed cell, using the cell
// type and number format to recover booleans and dates.
func decodeCell(f *excelize.File, styles *styleCache, sheet, axis, value string) Cell {
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return StringCell(value)
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(value == "1" || strings.EqualFold(value, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return DateCell(t)
		}
		if t, err := time.Parse(DateLayout, value); err == nil {
			return DateCell(t)
		}
		return StringCell(value)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return StringCell(value)
		}
		if styles.isDate(sheet, axis) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return DateCell(t)
			}
		}
		return NumberCell(n)
	default:
		return StringCell(value)
	}
}
