package grf

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unwrap feeds wrapped lines back through the reader and returns the
// folded value of the single record.
func unwrap(t *testing.T, lines []string) string {
	t.Helper()
	records, err := parseRecords(newScanner(strings.NewReader(strings.Join(lines, "\n"))))
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0].value
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "short", value: "hello world"},
		{name: "long without whitespace", value: strings.Repeat("a", 600)},
		{name: "long multibyte", value: strings.Repeat("é", 300) + strings.Repeat("日本", 100)},
		{name: "long with words", value: strings.Repeat("lorem ipsum dolor ", 40)},
		{name: "whitespace runs", value: strings.Repeat("x", 240) + "      " + strings.Repeat("y", 30)},
		{name: "embedded newlines", value: "first\nsecond\n\nfourth"},
		{name: "leading space", value: " indented"},
		{name: "long lines between newlines", value: strings.Repeat("b", 300) + "\n" + strings.Repeat("c", 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := wrap("0 @N1@ NOTE", 1, tt.value)

			for _, l := range lines {
				assert.LessOrEqual(t, len(l), maxLineBytes)
				assert.True(t, utf8.ValidString(l), "line %q is not valid UTF-8", l)
			}
			assert.Equal(t, tt.value, unwrap(t, lines))
		})
	}
}

func TestWrap_NoWhitespaceCutsAtLimit(t *testing.T) {
	lines := wrap("0 @N1@ NOTE", 1, strings.Repeat("a", 600))

	require.Len(t, lines, 3)
	assert.Len(t, lines[0], maxLineBytes)
	assert.True(t, strings.HasPrefix(lines[1], "1 CONC a"))
	assert.Len(t, lines[1], len("1 CONC ")+maxContinuationBytes)
	assert.True(t, strings.HasPrefix(lines[2], "1 CONC a"))
}

func TestWrap_SplitsBeforeWhitespaceRun(t *testing.T) {
	value := strings.Repeat("x", 240) + "   tail" + strings.Repeat("z", 20)
	lines := wrap("0 @N1@ NOTE", 1, value)

	require.Len(t, lines, 2)
	assert.Equal(t, "0 @N1@ NOTE "+strings.Repeat("x", 240), lines[0])
	assert.Equal(t, "1 CONC    tail"+strings.Repeat("z", 20), lines[1])
}

func TestWrap_ContinuationLevelFollowsHead(t *testing.T) {
	lines := wrap("2 NOTE", 3, "a\nb")

	assert.Equal(t, []string{"2 NOTE a", "3 CONT b"}, lines)
}

func TestWrap_EmptySegmentsOmitTrailingSpace(t *testing.T) {
	lines := wrap("0 @N1@ NOTE", 1, "\ntext")

	assert.Equal(t, []string{"0 @N1@ NOTE", "1 CONT text"}, lines)
}
