package captions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
)

func word(text string, start, end float64) types.WordChunk {
	return types.WordChunk{Text: text, Timestamp: []float64{start, end}}
}

func TestSegmentClosesAtSixWords(t *testing.T) {
	chunks := []types.WordChunk{
		word("one", 0, 1), word("two", 1, 2), word("three", 2, 3),
		word("four", 3, 4), word("five", 4, 5), word("six", 5, 6),
		word("seven", 6, 7), word("eight", 7, 8),
	}

	cues := Segment(chunks)
	require.Len(t, cues, 2)
	require.Equal(t, "one two three four five six", cues[0].Text)
	require.Equal(t, 0.0, cues[0].StartTime)
	require.Equal(t, 6.0, cues[0].EndTime)
	require.Equal(t, "seven eight", cues[1].Text)
	require.Equal(t, 6.0, cues[1].StartTime)
	require.Equal(t, 8.0, cues[1].EndTime)
}

func TestSegmentBreaksOnSentenceEndAfterFourWords(t *testing.T) {
	chunks := []types.WordChunk{
		word("this", 0, 1), word("is", 1, 2), word("a", 2, 3), word("sentence.", 3, 4),
		word("next", 4, 5), word("one", 5, 6),
	}

	cues := Segment(chunks)
	require.Len(t, cues, 2)
	require.Equal(t, "this is a sentence.", cues[0].Text)
	require.Equal(t, "next one", cues[1].Text)
}

func TestSegmentIgnoresEarlyPunctuation(t *testing.T) {
	// Punctuation before the fourth word must not close the cue.
	chunks := []types.WordChunk{
		word("no.", 0, 1), word("really?", 1, 2), word("keep", 2, 3),
		word("going", 3, 4), word("now", 4, 5), word("stop", 5, 6),
	}

	cues := Segment(chunks)
	require.Len(t, cues, 1)
	require.Equal(t, "no. really? keep going now stop", cues[0].Text)
}

func TestSegmentSkipsInvalidTimestamps(t *testing.T) {
	chunks := []types.WordChunk{
		word("good", 0, 1),
		{Text: "short", Timestamp: []float64{2}},
		{Text: "backwards", Timestamp: []float64{5, 3}},
		{Text: "negative", Timestamp: []float64{-1, 2}},
		word("kept", 1, 2),
	}

	cues := Segment(chunks)
	require.Len(t, cues, 1)
	require.Equal(t, "good kept", cues[0].Text)
	require.Equal(t, 0.0, cues[0].StartTime)
	require.Equal(t, 2.0, cues[0].EndTime)
}

func TestSegmentDeterministic(t *testing.T) {
	chunks := []types.WordChunk{
		word("a", 0, 1), word("b", 1, 2), word("c.", 2, 3),
		word("d", 3, 4), word("e", 4, 5),
	}
	first := Segment(chunks)
	second := Segment(chunks)
	require.Equal(t, first, second)
}

func TestSegmentEmptyInput(t *testing.T) {
	require.Empty(t, Segment(nil))
	require.Empty(t, Segment([]types.WordChunk{}))
}

func TestRenderWebVTT(t *testing.T) {
	cues := []types.CaptionCue{
		{Text: "hello there", StartTime: 0, EndTime: 1.5},
		{Text: "general kenobi", StartTime: 61.25, EndTime: 3723.004},
	}

	out := RenderWebVTT(cues)
	require.True(t, strings.HasPrefix(out, "WEBVTT\n"))
	require.Contains(t, out, "00:00:00.000 --> 00:00:01.500\nhello there")
	require.Contains(t, out, "00:01:01.250 --> 01:02:03.004\ngeneral kenobi")
}
