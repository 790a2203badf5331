package render

import (
	"fmt"
	"strings"

	"github.com/agentstation/utc"
	md "github.com/nao1215/markdown"
)

// TimestampLayout formats run timestamps in documents and notes.
const TimestampLayout = "2006-01-02 15:04:05"

// SheetLine summarizes one processed sheet in the control document.
type SheetLine struct {
	Name        string
	Reference   bool
	Created     int
	Updated     int
	SoftDeleted int
}

// Control is everything the control document shows.
type Control struct {
	Title        string
	Marker       string
	SourceFile   string
	ImportedAt   utc.Time
	Mode         string
	RunID        string
	Created      int
	Updated      int
	SoftDeleted  int
	References   int
	Sheets       []SheetLine
	Instructions string
}

// ControlDoc renders the control document body.
func ControlDoc(c Control) string {
	var sb strings.Builder
	doc := md.NewMarkdown(&sb).
		H1(c.Title).
		PlainText("").
		PlainText(c.Marker).
		PlainText("").
		PlainText(md.Bold("Source File:") + " " + c.SourceFile).
		PlainText(md.Bold("Import Date:") + " " + c.ImportedAt.Format(TimestampLayout)).
		PlainText(md.Bold("Mode:") + " " + strings.ToUpper(c.Mode))
	if c.RunID != "" {
		doc.PlainText(md.Bold("Run:") + " " + md.Code(c.RunID))
	}

	doc.PlainText("").
		H2("Stats").
		BulletList(
			fmt.Sprintf("Tasks Created: %d", c.Created),
			fmt.Sprintf("Tasks Updated: %d", c.Updated),
			fmt.Sprintf("Tasks Soft-Deleted: %d", c.SoftDeleted),
			fmt.Sprintf("Reference Documents: %d", c.References),
		).
		PlainText("").
		H2("Sheets Processed")

	for _, s := range c.Sheets {
		doc.BulletList(sheetLine(s))
	}

	if c.Instructions != "" {
		doc.PlainText("").
			H2("Instructions").
			PlainText(c.Instructions)
	}

	return doc.String() + "\n"
}

func sheetLine(s SheetLine) string {
	name := md.Bold(s.Name)
	if s.Reference {
		return name + ": Created as Document"
	}
	line := fmt.Sprintf("%s: %d created, %d updated", name, s.Created, s.Updated)
	if s.SoftDeleted > 0 {
		line += fmt.Sprintf(", %d soft-deleted", s.SoftDeleted)
	}
	return line
}
