// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/internal/cmd/emoji"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ResultToTableData converts an import result to one row per sheet plus a
// totals row.
func ResultToTableData(result *sync.Result) Data {
	headers := []string{"Sheet", "Kind", "Created", "Updated", "Soft-deleted", "Docs"}
	rows := make([][]string, 0, len(result.SheetResults)+1)
	for _, sr := range result.SheetResults {
		kind := sr.Kind
		if sr.Absent {
			kind = emoji.Optional + " absent"
		}
		rows = append(rows, []string{
			sr.Sheet,
			kind,
			FormatCount(sr.Created),
			FormatCount(sr.Updated),
			FormatCount(sr.SoftDeleted),
			FormatCount(sr.Documents),
		})
	}
	rows = append(rows, []string{
		"TOTAL",
		"",
		FormatCount(result.Created),
		FormatCount(result.Updated),
		FormatCount(result.SoftDeleted),
		FormatCount(result.References),
	})

	return Data{
		Headers: headers,
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight,
		},
	}
}

// InspectionToTableData converts a workbook inspection to table format. The
// wide view adds one row per catalog field below each table sheet.
func InspectionToTableData(insp *sheetsync.Inspection, wide bool) Data {
	headers := []string{"Sheet", "Kind", "Size", "Header Row", "Records", "Unresolved"}
	if wide {
		headers = []string{"Sheet", "Kind", "Header Row", "Records", "Field", "Header", "Suggestions"}
	}

	var rows [][]string
	for _, s := range insp.Sheets {
		kind := s.Kind
		if s.Reason != "" {
			kind += " (" + s.Reason + ")"
		}
		headerRow := emoji.Optional
		if s.HeaderRow > 0 {
			headerRow = strconv.Itoa(s.HeaderRow)
		}

		if !wide {
			rows = append(rows, []string{
				s.Name,
				kind,
				strconv.Itoa(s.Rows) + "x" + strconv.Itoa(s.Cols),
				headerRow,
				FormatCount(s.Records),
				strings.Join(unresolved(s.Fields), ", "),
			})
			continue
		}

		if len(s.Fields) == 0 {
			rows = append(rows, []string{s.Name, kind, headerRow, FormatCount(s.Records), "", "", ""})
			continue
		}
		for i, f := range s.Fields {
			name, k, hr, rec := "", "", "", ""
			if i == 0 {
				name, k, hr, rec = s.Name, kind, headerRow, FormatCount(s.Records)
			}
			rows = append(rows, []string{name, k, hr, rec, f.Field, fieldHeader(f), strings.Join(f.Suggestions, ", ")})
		}
	}

	return Data{Headers: headers, Rows: rows}
}

// ManifestToTableData groups manifest tags by sheet.
func ManifestToTableData(m *manifest.Manifest) Data {
	groups := GroupTags(m)
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Sheet, FormatCount(len(g.Rows)), FormatRows(g.Rows)})
	}
	return Data{
		Headers:         []string{"Sheet", "Tags", "Rows"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
	}
}

// TagGroup is the rows one sheet contributed to a manifest.
type TagGroup struct {
	Sheet string `json:"sheet" yaml:"sheet"`
	Rows  []int  `json:"rows" yaml:"rows"`
}

// GroupTags groups the manifest's tags by their sheet segment, sheets in
// name order and rows ascending.
func GroupTags(m *manifest.Manifest) []TagGroup {
	if m == nil {
		return nil
	}
	bySheet := make(map[string][]int)
	for _, t := range m.SourceTags {
		bySheet[t.Sheet()] = append(bySheet[t.Sheet()], t.Row())
	}
	groups := make([]TagGroup, 0, len(bySheet))
	for sheet, rows := range bySheet {
		sort.Ints(rows)
		groups = append(groups, TagGroup{Sheet: sheet, Rows: rows})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Sheet < groups[j].Sheet
	})
	return groups
}

// FormatCount renders zero as "-" so tables highlight what changed.
func FormatCount(n int) string {
	if n == 0 {
		return emoji.Optional
	}
	return strconv.Itoa(n)
}

// FormatRows collapses sorted row numbers into ranges: 2-4, 7, 9-10.
func FormatRows(rows []int) string {
	var parts []string
	for i := 0; i < len(rows); {
		j := i
		for j+1 < len(rows) && rows[j+1] == rows[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(rows[i]))
		} else {
			parts = append(parts, strconv.Itoa(rows[i])+"-"+strconv.Itoa(rows[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ", ")
}

func unresolved(fields []sheetsync.FieldReport) []string {
	var out []string
	for _, f := range fields {
		if !f.Resolved() {
			out = append(out, f.Field)
		}
	}
	return out
}

func fieldHeader(f sheetsync.FieldReport) string {
	if !f.Resolved() {
		return emoji.Error
	}
	return emoji.Success + " " + f.Header + " (col " + strconv.Itoa(f.Column) + ")"
}
