// Package tags derives the stable identity of a source row.
//
// A tag has the form src:xl:<sheet>:r<row>, where sheet is the sheet name
// with spaces replaced by underscores and row is the 1-based sheet row.
// Tags depend on position only, so editing a row keeps its tag while
// inserting rows above it shifts every tag below.
package tags

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefix starts every source tag.
const Prefix = "src:xl:"

// Pattern matches a tag embedded in free text. The sheet segment runs to the
// last ":r<digits>" before whitespace.
var Pattern = regexp.MustCompile(`src:xl:\S+:r\d+`)

// Tag is a source row identity.
type Tag string

// New builds the tag for a row of a sheet.
func New(sheet string, row int) Tag {
	return Tag(fmt.Sprintf("%s%s:r%d", Prefix, NormalizeSheet(sheet), row))
}

// NormalizeSheet replaces spaces with underscores.
func NormalizeSheet(sheet string) string {
	return strings.ReplaceAll(sheet, " ", "_")
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

// Sheet returns the normalized sheet segment of the tag.
func (t Tag) Sheet() string {
	sheet, _, _ := t.split()
	return sheet
}

// Row returns the row segment of the tag, or 0 if the tag is malformed.
func (t Tag) Row() int {
	_, row, _ := t.split()
	return row
}

// Valid reports whether t has the tag shape.
func (t Tag) Valid() bool {
	_, _, ok := t.split()
	return ok
}

func (t Tag) split() (string, int, bool) {
	rest, ok := strings.CutPrefix(string(t), Prefix)
	if !ok {
		return "", 0, false
	}
	i := strings.LastIndex(rest, ":r")
	if i <= 0 {
		return "", 0, false
	}
	row, err := strconv.Atoi(rest[i+2:])
	if err != nil || row < 1 {
		return "", 0, false
	}
	return rest[:i], row, true
}

// Find returns the first tag embedded in text.
func Find(text string) (Tag, bool) {
	m := Pattern.FindString(text)
	if m == "" {
		return "", false
	}
	return Tag(m), true
}

// Set is an insertion-ordered set of tags.
type Set struct {
	order []Tag
	index map[Tag]struct{}
}

// NewSet builds a set from tags, dropping duplicates.
func NewSet(tags ...Tag) *Set {
	s := &Set{index: make(map[Tag]struct{}, len(tags))}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was new.
func (s *Set) Add(t Tag) bool {
	if _, ok := s.index[t]; ok {
		return false
	}
	s.index[t] = struct{}{}
	s.order = append(s.order, t)
	return true
}

// Has reports membership.
func (s *Set) Has(t Tag) bool {
	_, ok := s.index[t]
	return ok
}

// Len returns the number of tags.
func (s *Set) Len() int {
	return len(s.order)
}

// Slice returns the tags in insertion order.
func (s *Set) Slice() []Tag {
	return append([]Tag(nil), s.order...)
}

// Difference returns the tags of s missing from other, in s's order.
func (s *Set) Difference(other *Set) []Tag {
	var out []Tag
	for _, t := range s.order {
		if other == nil || !other.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
