package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	chunks, err := Split("  short text.  ", DefaultSize, DefaultOverlap)
	require.NoError(t, err)
	assert.Equal(t, []string{"short text."}, chunks)
}

func TestSplitExactSizeIsSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 50)
	chunks, err := Split(text, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{text}, chunks)
}

func TestSplitRejectsBadParameters(t *testing.T) {
	_, err := Split(strings.Repeat("x", 10000), 50, 50)
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = Split("abc", 50, 60)
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = Split("abc", 50, -1)
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = Split("abc", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(10, 10)
	assert.ErrorIs(t, err, ErrInvalidOverlap)
}

func TestSplitFixedWindowsWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("abcdefghij", 25) // 250 runes, no '.' or '\n'
	chunks, err := Split(text, 100, 20)
	require.NoError(t, err)

	// windows start at 0, 80, 160 (the last reaches the end)
	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:100], chunks[0])
	assert.Equal(t, text[80:180], chunks[1])
	assert.Equal(t, text[160:250], chunks[2])
}

func TestSplitSnapsToSentenceBoundary(t *testing.T) {
	first := strings.Repeat("a", 70) + "."
	text := first + strings.Repeat("b", 100)

	chunks, err := Split(text, 100, 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, first, chunks[0], "cut lands just after the period")
	assert.True(t, strings.HasPrefix(chunks[1], strings.Repeat("a", 9)+"."), "next window starts overlap runes before the cut")
}

func TestSplitIgnoresBoundaryInFirstHalf(t *testing.T) {
	text := strings.Repeat("a", 20) + "." + strings.Repeat("b", 200)

	chunks, err := Split(text, 100, 10)
	require.NoError(t, err)
	assert.Len(t, []rune(chunks[0]), 100, "boundary before the midpoint keeps the raw cut")
}

func TestSplitNewlineBoundary(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 100)

	chunks, err := Split(text, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 60), chunks[0])
}

func TestSplitChunkLengthBoundAndCoverage(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteString("Sentence number ")
		sb.WriteString(strings.Repeat("x", i%17))
		sb.WriteString(". ")
		if i%9 == 0 {
			sb.WriteString("\n")
		}
	}
	text := sb.String()

	const size, overlap = 200, 40
	chunks, err := Split(text, size, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), size)
		total += utf8.RuneCountInString(c)
	}
	// every rune of the source appears in some chunk, so the sum with overlaps
	// removed cannot fall below the non-whitespace length
	nonSpace := len(strings.Join(strings.Fields(text), ""))
	assert.GreaterOrEqual(t, total, nonSpace)

	assert.Contains(t, chunks[len(chunks)-1], strings.TrimSpace(text[len(text)-20:]))
}

func TestSplitMultiByteText(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 50)
	chunks, err := Split(text, 64, 8)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 64)
	}
}

func TestSplitLargeOverlapStillTerminates(t *testing.T) {
	// snap lands just past the midpoint and overlap is close to size, so
	// end-overlap would move backwards without the progress guard
	unit := strings.Repeat("a", 55) + "."
	text := strings.Repeat(unit, 40)

	chunks, err := Split(text, 100, 90)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
	assert.Less(t, len(chunks), len(text))
}

func TestChunkerMethods(t *testing.T) {
	c, err := New(DefaultSize, DefaultOverlap)
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, c.Size())
	assert.Equal(t, DefaultOverlap, c.Overlap())
	assert.Equal(t, []string{"hello"}, c.Split("hello"))
}
