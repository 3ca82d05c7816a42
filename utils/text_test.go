package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	stops := []string{"how", "do", "the"}

	terms := Tokenize("How do I submit the timesheet, submit it now?", stops, 3)
	assert.Equal(t, []string{"submit", "timesheet", "now"}, terms)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize("", nil, 3))
	assert.Empty(t, Tokenize("a an to", []string{"a", "an", "to"}, 3))
}

func TestContainsToken(t *testing.T) {
	assert.True(t, ContainsToken("open the mobile app today", "app"))
	assert.False(t, ContainsToken("we are very happy", "app"))
	assert.True(t, ContainsToken("Timesheet Submission", "timesheet"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
}
