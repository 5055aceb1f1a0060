package domain

// WordChunk is one recognized word with its [start, end] offsets in seconds.
// Timestamp may arrive short or malformed from a recognizer; Valid gates use.
type WordChunk struct {
	Text      string    `json:"text"`
	Timestamp []float64 `json:"timestamp"`
}

func (w WordChunk) Valid() bool {
	if len(w.Timestamp) < 2 {
		return false
	}
	start, end := w.Timestamp[0], w.Timestamp[1]
	return start >= 0 && end >= start
}

func (w WordChunk) Start() float64 { return w.Timestamp[0] }
func (w WordChunk) End() float64   { return w.Timestamp[1] }

// CaptionCue is a timed subtitle segment built from consecutive word chunks.
type CaptionCue struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// TranscriptionResult is the full output of one transcription request.
type TranscriptionResult struct {
	Text   string      `json:"text"`
	Chunks []WordChunk `json:"chunks"`
}
