package workbook

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the predefined number format ids that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// styleCache memoizes whether a style index formats numbers as dates.
type styleCache struct {
	f     *excelize.File
	dates map[int]bool
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, dates: make(map[int]bool)}
}

func (c *styleCache) isDate(sheet, axis string) bool {
	idx, err := c.f.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := c.dates[idx]; ok {
		return v
	}

	isDate := false
	if style, err := c.f.GetStyle(idx); err == nil && style != nil {
		switch {
		case style.CustomNumFmt != nil:
			isDate = IsDateFormat(*style.CustomNumFmt)
		default:
			isDate = builtinDateFormats[style.NumFmt]
		}
	}
	c.dates[idx] = isDate
	return isDate
}

// IsDateFormat reports whether a custom number format code renders a date.
// Quoted literals, bracketed sections and escaped characters are ignored.
func IsDateFormat(code string) bool {
	code = strings.ToLower(code)
	if code == "" || code == "general" || code == "@" {
		return false
	}
	// Only the positive section decides.
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == '\\':
			i++
		case ch == 'y', ch == 'd':
			return true
		case ch == 'm' && !strings.ContainsAny(code, "hs"):
			return true
		}
	}
	return false
}
