package fields

import (
	"strings"

	"github.com/agentstation/sheetsync/pkg/tags"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Record is one tagged data row with every catalog field resolved.
type Record struct {
	Sheet  string
	Row    int // absolute 1-based sheet row
	Tag    tags.Tag
	Values map[Field]string
}

// Get returns a field value, "" when unresolved.
func (r Record) Get(f Field) string {
	return r.Values[f]
}

// Primary returns the primary value.
func (r Record) Primary() string {
	return r.Values[Primary]
}

// Filter decides whether a record is kept.
type Filter func(Record) bool

// TierFilter keeps records whose tier contains any keyword, ignoring case.
func TierFilter(keywords ...string) Filter {
	return func(r Record) bool {
		tier := strings.ToLower(r.Get(Tier))
		return matchesAny(tier, keywords)
	}
}

// Option configures Extract.
type Option func(*extractor)

// WithFilter drops records rejected by f.
func WithFilter(f Filter) Option {
	return func(e *extractor) {
		if f != nil {
			e.filters = append(e.filters, f)
		}
	}
}

type extractor struct {
	catalog []Spec
	filters []Filter
}

// Extract resolves every data row below headerRow into a tagged record.
// A row whose primary field is empty falls back to its first cell; when that
// is empty too the row is skipped.
func Extract(sheet *workbook.Sheet, headerRow int, headers HeaderMap, opts ...Option) []Record {
	e := &extractor{catalog: Catalog}
	for _, opt := range opts {
		opt(e)
	}

	var records []Record
	for n := headerRow + 1; n <= sheet.MaxRow(); n++ {
		row := sheet.Row(n)
		rec, ok := e.record(sheet.Name, n, row, headers)
		if !ok {
			continue
		}
		if !e.keep(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (e *extractor) record(sheet string, n int, row workbook.Row, headers HeaderMap) (Record, bool) {
	values := make(map[Field]string, len(e.catalog))
	for _, spec := range e.catalog {
		values[spec.Field] = headers.Get(row, spec.Keywords...)
	}

	if values[Primary] == "" {
		first, _ := row.At(0)
		values[Primary] = first.String()
	}
	if values[Primary] == "" {
		return Record{}, false
	}

	return Record{
		Sheet:  sheet,
		Row:    n,
		Tag:    tags.New(sheet, n),
		Values: values,
	}, true
}

func (e *extractor) keep(r Record) bool {
	for _, f := range e.filters {
		if !f(r) {
			return false
		}
	}
	return true
}
