// Package render produces the markdown bodies carried by actions: task
// notes, reference-sheet documents and the control document.
package render

import (
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// checklist is appended to every task's notes.
var checklist = []string{"Photos ready", "Title ready", "Copy ready", "Listing URL", "Status updated"}

// TaskTitle formats "<sheet>: <primary>" with an optional tier suffix.
func TaskTitle(rec fields.Record) string {
	title := rec.Sheet + ": " + rec.Primary()
	if tier := rec.Get(fields.Tier); tier != "" {
		title += " [Tier:" + tier + "]"
	}
	return title
}

// TaskNotes renders the notes body of an imported task. The first three
// lines carry the project marker, source file and source tag so the record
// can be found again by a notes scan.
func TaskNotes(projectMarker, sourceFile string, rec fields.Record) string {
	var sb strings.Builder
	doc := md.NewMarkdown(&sb).
		PlainText(projectMarker).
		PlainText("xl:file:" + sourceFile).
		PlainText(rec.Tag.String()).
		PlainText("")

	for _, def := range fields.Catalog {
		if def.Label == "" {
			continue
		}
		if v := rec.Get(def.Field); v != "" {
			doc.PlainText(def.Label + ": " + v)
		}
	}

	boxes := make([]md.CheckBoxSet, len(checklist))
	for i, item := range checklist {
		boxes[i] = md.CheckBoxSet{Text: item}
	}
	doc.PlainText("").CheckBox(boxes)

	return doc.String()
}

// ReferenceTitle formats the title of a reference-sheet document.
func ReferenceTitle(sheet, suffix string) string {
	if suffix == "" {
		return "Reference: " + sheet
	}
	return "Reference: " + sheet + " - " + suffix
}

// ReferenceDoc renders a reference sheet as a snapshot: a heading, the
// project marker and source file, then the leading rows as pipe rows padded
// to the sheet width.
func ReferenceDoc(projectMarker, sourceFile string, sheet *workbook.Sheet) string {
	var sb strings.Builder
	doc := md.NewMarkdown(&sb).
		H1(sheet.Name).
		PlainText("").
		PlainText(projectMarker).
		PlainText("xl:file:" + sourceFile).
		PlainText("")

	width := sheet.MaxCol()
	limit := min(sheet.MaxRow(), constants.ReferencePreviewRows)
	for n := 1; n <= limit; n++ {
		doc.PlainText(pipeRow(sheet.Row(n), width))
	}

	return doc.String() + "\n"
}

func pipeRow(row workbook.Row, width int) string {
	cells := make([]string, width)
	for i := range cells {
		if c, ok := row.At(i); ok {
			cells[i] = flatten(c)
		}
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// flatten keeps a cell on one line. Unlike field values, reference cells
// keep their surrounding whitespace except for line breaks.
func flatten(c workbook.Cell) string {
	var s string
	switch c.Kind {
	case workbook.CellEmpty:
		return ""
	case workbook.CellDate:
		s = c.String()
	default:
		s = c.Value
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
