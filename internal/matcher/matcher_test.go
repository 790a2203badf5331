package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{"valid glob", "*Garden*", Glob, Glob, false},
		{"valid regex", "^Ops.*", Regex, Regex, false},
		{"invalid regex", "(unclosed", Regex, Regex, true},
		{"invalid glob", "[unclosed", Glob, Glob, true},
		{"auto glob", "Nana*", Auto, Glob, false},
		{"auto regex", "^(Ops|CRM)$", Auto, Regex, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		typ     PatternType
		opts    *Options
		input   string
		want    bool
	}{
		{"*NanaGarden*", Glob, nil, "Q1 NanaGarden list", true},
		{"*NanaGarden*", Glob, nil, "q1 nanagarden", false},
		{"*NanaGarden*", Glob, &Options{CaseInsensitive: true}, "q1 nanagarden", true},
		{"Ops", Regex, &Options{Anchored: true}, "Ops Plan", false},
		{"Ops", Regex, nil, "Ops Plan", true},
		{"ops", Regex, &Options{CaseInsensitive: true}, "OPS", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			m, err := New(tt.typ, tt.pattern, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestSet(t *testing.T) {
	s, err := NewSet("*garden*", "", "^ops")
	require.NoError(t, err)
	assert.False(t, s.Empty())
	assert.True(t, s.Match("NanaGarden"))
	assert.True(t, s.Match("Ops Plan"))
	assert.False(t, s.Match("Reference"))

	empty, err := NewSet()
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.True(t, empty.Match("anything"))

	var nilSet *Set
	assert.True(t, nilSet.Match("x"))

	_, err = NewSet("(bad")
	assert.Error(t, err)
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(9).String())
}
