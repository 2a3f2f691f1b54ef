package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFiltersMatchEverything(t *testing.T) {
	assert.True(t, RegexFilters{}.Match("144"))
}

func TestMustMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("^14[0-9]$"))
	require.NoError(t, f.MustMatch.Set("^2"))
	assert.True(t, f.Match("144"))
	assert.True(t, f.Match("216"))
	assert.False(t, f.Match("1440"))
	assert.False(t, f.Match("355"))
}

func TestMustNotMatchWins(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("^1"))
	require.NoError(t, f.MustNotMatch.AddExact("144"))
	assert.False(t, f.Match("144"))
	assert.True(t, f.Match("1440"))
}

func TestInvalidPattern(t *testing.T) {
	var l IDPatternList
	assert.Error(t, l.Set("("))
	assert.False(t, l.IsDefined())
}

func TestPatternListString(t *testing.T) {
	var l IDPatternList
	require.NoError(t, l.Set("a"))
	require.NoError(t, l.Set("b"))
	assert.Equal(t, `"a" or "b"`, l.String())
	assert.Equal(t, "regex", l.Type())
}
