// Package output renders command results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/sheetsync/internal/cmd/table"
)

// Format names an output encoding.
type Format string

// Supported formats. Wide is a table with the optional columns shown.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatWide  Format = "wide"
)

// IsTable reports whether f renders as a table.
func (f Format) IsTable() bool {
	return f == FormatTable || f == FormatWide || f == ""
}

// Data is a prepared table.
type Data = table.Data

// Formatter writes a value in one encoding.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats render
// as tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// ParseFormat validates a user-supplied format name. Empty is allowed and
// means auto-detect.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, wide", s)
	}
}

// DetectFormat returns the explicit format when given. Otherwise it picks a
// table for terminals and JSON for pipes and redirects.
func DetectFormat(explicitFormat string, w io.Writer) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if f, ok := w.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return FormatTable
		}
	}
	return FormatJSON
}

// JSONFormatter writes JSON without HTML escaping so sheet names and titles
// stay readable.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter writes YAML with two-space indents.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter writes prepared tables. Structs and struct slices become
// tables by reflection; anything else falls back to JSON.
type TableFormatter struct{}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return renderTable(w, v)
	case *Data:
		return renderTable(w, *v)
	}
	if d := reflectTable(data); d != nil {
		return renderTable(w, *d)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

func renderTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			align[i] = twAlign(a)
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	t := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		t.Header(toAny(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := t.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func twAlign(a table.Align) tw.Align {
	switch a {
	case table.AlignLeft:
		return tw.AlignLeft
	case table.AlignCenter:
		return tw.AlignCenter
	case table.AlignRight:
		return tw.AlignRight
	default:
		return tw.Skip
	}
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// reflectTable lays out a struct as property/value rows and a struct slice
// as one row per element. It returns nil for other shapes.
func reflectTable(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Struct:
		var rows [][]string
		for i := 0; i < v.NumField(); i++ {
			if name, ok := columnName(v.Type().Field(i)); ok {
				rows = append(rows, []string{name, fmt.Sprint(v.Field(i).Interface())})
			}
		}
		return &Data{Headers: []string{"Property", "Value"}, Rows: rows}

	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		typ := v.Index(0).Type()
		var headers []string
		var columns []int
		for i := 0; i < typ.NumField(); i++ {
			if name, ok := columnName(typ.Field(i)); ok {
				headers = append(headers, name)
				columns = append(columns, i)
			}
		}
		rows := make([][]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			row := make([]string, 0, len(columns))
			for _, j := range columns {
				row = append(row, fmt.Sprint(v.Index(i).Field(j).Interface()))
			}
			rows = append(rows, row)
		}
		return &Data{Headers: headers, Rows: rows}
	}
	return nil
}

// columnName title-cases the json tag of an exported field. Fields tagged
// json:"-" are hidden.
func columnName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return "", false
	case "":
		return field.Name, true
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " ")), true
}
