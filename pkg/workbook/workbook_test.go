package workbook_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

func writeFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "NanaGarden Q1"))
	cells := map[string]any{
		"A1": "Species", "B1": "Tier", "C1": "Price (THB)", "D1": "Start Date", "E1": "Photos ready",
		"A2": "  Monstera  ", "B2": "Hero", "C2": 1200, "D2": time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "E2": true,
		"A3": "Pothos", "B3": "Standard", "C3": 12.5,
	}
	for axis, v := range cells {
		require.NoError(t, f.SetCellValue("NanaGarden Q1", axis, v))
	}

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "free text"))

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestOpen(t *testing.T) {
	wb, err := workbook.Open(writeFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"NanaGarden Q1", "Notes"}, wb.Names())

	sheet, ok := wb.Sheet("NanaGarden Q1")
	require.True(t, ok)
	assert.Equal(t, 3, sheet.MaxRow())
	assert.Equal(t, 5, sheet.MaxCol())

	row := sheet.Row(2)
	assert.Equal(t, "Monstera", row[0].String())
	assert.Equal(t, "1200", row[2].String())
	assert.Equal(t, workbook.CellDate, row[3].Kind)
	assert.Equal(t, "2025-01-15", row[3].String())
	assert.Equal(t, "TRUE", row[4].String())

	row = sheet.Row(3)
	assert.Equal(t, "12.5", row[2].String())
	_, ok = row.At(3)
	assert.False(t, ok, "ragged rows end at the last stored cell")
}

func TestOpenMissing(t *testing.T) {
	_, err := workbook.Open(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
}

func TestOpenNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, writeFile(path, "not a zip"))

	_, err := workbook.Open(path)
	require.Error(t, err)
	assert.True(t, errors.IsSourceMissing(err))
}

func TestNewSheet(t *testing.T) {
	date := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	s := workbook.NewSheet("Ops", []any{"A", nil, 3, date, false})

	row := s.Row(1)
	assert.Equal(t, []string{"A", "", "3", "2025-03-01", "FALSE"}, row.Strings())
	assert.Equal(t, 4, row.NonEmpty())
	assert.Nil(t, s.Row(2))
	assert.Nil(t, s.Row(0))
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"d-mmm-yy", true},
		{"mmm", true},
		{"[$-409]dddd, mmmm d, yyyy", true},
		{"h:mm:ss", false},
		{"0.00", false},
		{`"day "0`, false},
		{"General", false},
		{"@", false},
		{`#,##0 "THB";[Red]-#,##0`, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, workbook.IsDateFormat(tt.code))
		})
	}
}
