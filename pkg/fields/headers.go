// Package fields resolves semantic fields from loosely labeled sheet columns.
//
// Resolution is a substring match of lowercased keywords against lowercased
// header text, scanning headers left to right. The first matching header
// wins; there is no further tie-break.
package fields

import (
	"strings"

	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Header is one named column.
type Header struct {
	Name string // lowercased, trimmed header text
	Col  int    // 0-based column index
}

// HeaderMap is an insertion-ordered map of header text to column index.
type HeaderMap struct {
	headers []Header
	index   map[string]int
}

// NewHeaderMap builds a header map from a header row. Empty cells are
// skipped. A repeated header keeps its first position but takes the later
// column index.
func NewHeaderMap(row workbook.Row) HeaderMap {
	h := HeaderMap{index: make(map[string]int)}
	for col, cell := range row {
		name := strings.ToLower(cell.String())
		if name == "" {
			continue
		}
		if i, ok := h.index[name]; ok {
			h.headers[i].Col = col
			continue
		}
		h.index[name] = len(h.headers)
		h.headers = append(h.headers, Header{Name: name, Col: col})
	}
	return h
}

// Len returns the number of distinct headers.
func (h HeaderMap) Len() int {
	return len(h.headers)
}

// Headers returns the headers in insertion order.
func (h HeaderMap) Headers() []Header {
	return append([]Header(nil), h.headers...)
}

// Names returns the header names in insertion order.
func (h HeaderMap) Names() []string {
	names := make([]string, len(h.headers))
	for i, hd := range h.headers {
		names[i] = hd.Name
	}
	return names
}

// Col returns the column of an exact header name.
func (h HeaderMap) Col(name string) (int, bool) {
	i, ok := h.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, false
	}
	return h.headers[i].Col, true
}

// Resolve returns the first header whose text contains any keyword.
func (h HeaderMap) Resolve(keywords ...string) (Header, bool) {
	for _, hd := range h.headers {
		if matchesAny(hd.Name, keywords) {
			return hd, true
		}
	}
	return Header{}, false
}

// Lookup returns the normalized value under the first matching header that
// exists in row. Matching headers beyond the end of a short row are passed
// over in favor of the next match.
func (h HeaderMap) Lookup(row workbook.Row, keywords ...string) (string, bool) {
	for _, hd := range h.headers {
		if !matchesAny(hd.Name, keywords) {
			continue
		}
		if cell, ok := row.At(hd.Col); ok {
			return cell.String(), true
		}
	}
	return "", false
}

// Get is Lookup without the found flag: absent values are "".
func (h HeaderMap) Get(row workbook.Row, keywords ...string) string {
	v, _ := h.Lookup(row, keywords...)
	return v
}

func matchesAny(header string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(header, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
