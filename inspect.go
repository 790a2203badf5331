package sheetsync

import (
	"context"

	"github.com/agentstation/sheetsync/internal/matcher"
	"github.com/agentstation/sheetsync/pkg/classify"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Compile-time interface check to ensure proper implementation.
var _ Inspector = (*client)(nil)

// maxSuggestions caps the near-miss headers listed per unresolved field.
const maxSuggestions = 3

// Inspector reports how a workbook would be classified and read.
type Inspector interface {
	// Inspect classifies the sheets of the workbook at path that match
	// patterns (all sheets when none are given).
	Inspect(ctx context.Context, path string, patterns ...string) (*Inspection, error)
}

// Inspection describes every inspected sheet of a workbook.
type Inspection struct {
	Source string        `json:"source" yaml:"source"`
	Sheets []SheetReport `json:"sheets" yaml:"sheets"`
}

// SheetReport is the classification of one sheet and its resolved fields.
type SheetReport struct {
	Name      string        `json:"name" yaml:"name"`
	Kind      string        `json:"kind" yaml:"kind"`
	Reason    string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Rows      int           `json:"rows" yaml:"rows"`
	Cols      int           `json:"cols" yaml:"cols"`
	HeaderRow int           `json:"header_row,omitempty" yaml:"header_row,omitempty"`
	Records   int           `json:"records" yaml:"records"`
	Fields    []FieldReport `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldReport says which header a field resolves to, or which headers come close.
type FieldReport struct {
	Field       string   `json:"field" yaml:"field"`
	Header      string   `json:"header,omitempty" yaml:"header,omitempty"`
	Column      int      `json:"column,omitempty" yaml:"column,omitempty"` // 1-based
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Resolved reports whether the field maps to a header.
func (f FieldReport) Resolved() bool {
	return f.Header != ""
}

// Inspect implements Inspector.
func (c *client) Inspect(ctx context.Context, path string, patterns ...string) (*Inspection, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	selected, err := matcher.NewSet(patterns...)
	if err != nil {
		return nil, errors.WrapValidation("sheets", err)
	}

	wb := c.options.workbook
	if wb == nil {
		if wb, err = workbook.Open(path); err != nil {
			return nil, err
		}
	}

	out := &Inspection{Source: path}
	for _, sheet := range wb.Sheets {
		if selected.Match(sheet.Name) {
			out.Sheets = append(out.Sheets, inspectSheet(sheet))
		}
	}

	logging.FromContext(ctx).Debug().
		Str("source", path).
		Int("sheets", len(out.Sheets)).
		Msg("Inspected workbook")
	return out, nil
}

func inspectSheet(sheet *workbook.Sheet) SheetReport {
	res := classify.Classify(sheet)
	report := SheetReport{
		Name:   sheet.Name,
		Kind:   res.Kind.String(),
		Reason: string(res.Reason),
		Rows:   sheet.MaxRow(),
		Cols:   sheet.MaxCol(),
	}
	if !res.IsTable() {
		return report
	}

	report.HeaderRow = res.HeaderRow
	report.Records = len(fields.Extract(sheet, res.HeaderRow, res.Headers))
	for _, def := range fields.Catalog {
		fr := FieldReport{Field: string(def.Field)}
		if h, ok := res.Headers.Resolve(def.Keywords...); ok {
			fr.Header = h.Name
			fr.Column = h.Col + 1
		} else {
			for _, s := range fields.Suggest(res.Headers, def.Keywords, maxSuggestions) {
				fr.Suggestions = append(fr.Suggestions, s.Header.Name)
			}
		}
		report.Fields = append(report.Fields, fr)
	}
	return report
}
