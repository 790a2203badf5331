// Package matcher selects sheets by name using glob or regex patterns.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher tests names against one pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// New creates a Matcher for pattern.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := &Options{}
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern: %w", err)
	}
	return m, nil
}

func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if _, err := path.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
	case Regex:
		pattern := m.pattern
		if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^" + pattern
			}
			if !strings.HasSuffix(pattern, "$") {
				pattern += "$"
			}
		}
		if opts.CaseInsensitive && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		matched, _ := path.Match(m.globPattern, input)
		return matched
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType treats anything with regex-only syntax as a regex.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s",
		"(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches a name against any of several patterns. An empty set
// matches everything.
type Set struct {
	matchers []Matcher
}

// NewSet compiles patterns with auto-detected types, case-insensitively.
func NewSet(patterns ...string) (*Set, error) {
	s := &Set{matchers: make([]Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		m, err := New(Auto, pattern, &Options{CaseInsensitive: true})
		if err != nil {
			return nil, fmt.Errorf("failed to create matcher for pattern %q: %w", pattern, err)
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// Empty reports whether the set has no patterns.
func (s *Set) Empty() bool {
	return s == nil || len(s.matchers) == 0
}

// Match reports whether name matches any pattern, or true for an empty set.
func (s *Set) Match(name string) bool {
	if s.Empty() {
		return true
	}
	for _, m := range s.matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}
