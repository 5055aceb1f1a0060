package captions

import (
	"fmt"
	"strings"

	types "github.com/courseatlas/courseatlas-backend/internal/domain"
)

const (
	// maxWordsPerCue closes a cue unconditionally.
	maxWordsPerCue = 6
	// minWordsForSentenceBreak closes a cue early when the latest word ends a
	// sentence.
	minWordsForSentenceBreak = 4
)

// Segment folds word-level timing chunks into ordered caption cues. A cue
// closes once it holds 6 words, or 4 words where the latest one ends with
// sentence-terminal punctuation. Chunks without valid [start, end] timestamps
// are skipped. Deterministic and order-preserving.
func Segment(chunks []types.WordChunk) []types.CaptionCue {
	cues := []types.CaptionCue{}

	var words []string
	var start, end float64

	flush := func() {
		if len(words) == 0 {
			return
		}
		cues = append(cues, types.CaptionCue{
			Text:      strings.Join(words, " "),
			StartTime: start,
			EndTime:   end,
		})
		words = words[:0]
	}

	for _, c := range chunks {
		if !c.Valid() {
			continue
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		if len(words) == 0 {
			start = c.Start()
		}
		words = append(words, text)
		end = c.End()

		if len(words) >= maxWordsPerCue ||
			(len(words) >= minWordsForSentenceBreak && endsSentence(text)) {
			flush()
		}
	}
	flush()

	return cues
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") ||
		strings.HasSuffix(word, "!") ||
		strings.HasSuffix(word, "?")
}

// RenderWebVTT serializes cues as a WebVTT document for native video players.
func RenderWebVTT(cues []types.CaptionCue) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for i, cue := range cues {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", vttTimestamp(cue.StartTime), vttTimestamp(cue.EndTime))
		b.WriteString(cue.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func vttTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	h := totalMillis / 3_600_000
	m := (totalMillis % 3_600_000) / 60_000
	s := (totalMillis % 60_000) / 1000
	ms := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
